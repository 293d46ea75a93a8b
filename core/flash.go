package core

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"html/template"
)

const flashKey = "flash"

// Flash is a message which is shown once, usually on the page after a redirect.
type Flash struct {
	Message string
	Style   string // bootstrap alert style: danger, info or success
}

func init() {
	gob.Register([]Flash{})
}

var flashTmpl = template.Must(template.New("flash").Parse(
	`{{ range . }}<div class="alert alert-{{ .Style }} mt-3" role="alert">{{ .Message }}</div>{{ end }}`,
))

func (req *Request) flash(style, message string) {
	var ctx = req.request.Context()
	flashes, _ := req.db.SessionManager.Get(ctx, flashKey).([]Flash)
	req.db.SessionManager.Put(ctx, flashKey, append(flashes, Flash{Message: message, Style: style}))
}

// Danger shows an error to the user.
func (req *Request) Danger(err error) {
	req.flash("danger", err.Error())
}

func (req *Request) Info(format string, args ...interface{}) {
	req.flash("info", fmt.Sprintf(format, args...))
}

func (req *Request) Success(format string, args ...interface{}) {
	req.flash("success", fmt.Sprintf(format, args...))
}

// RenderNotifications pops the flash messages from the session and renders them.
// After a redirect, the messages are kept for the next page.
func (req *Request) RenderNotifications() template.HTML {
	if req.statusWritten {
		return ""
	}
	flashes, _ := req.db.SessionManager.Pop(req.request.Context(), flashKey).([]Flash)
	if len(flashes) == 0 {
		return ""
	}
	var buf = &bytes.Buffer{}
	if err := flashTmpl.Execute(buf, flashes); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
