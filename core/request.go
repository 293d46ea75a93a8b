package core

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/wansing/blog/auth"
	"github.com/wansing/blog/workflow"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const uidKey = "uid"

var supportedTags = []language.Tag{
	language.AmericanEnglish,
	language.German,
}

var supportedLanguages = language.NewMatcher(supportedTags)

var germanMonths = strings.NewReplacer(
	"January", "Januar",
	"February", "Februar",
	"March", "März",
	"May", "Mai",
	"June", "Juni",
	"July", "Juli",
	"October", "Oktober",
	"December", "Dezember",
)

// Request carries the state of an HTTP request: the logged-in user, the negotiated language and whether a redirect has been sent.
// Its exported methods are meant to be called from templates.
type Request struct {
	User auth.DBUser // nil if nobody is logged in

	db            *CoreDB
	writer        http.ResponseWriter
	request       *http.Request
	statusWritten bool
	language      language.Tag
	principals    []string // cached by Can
}

func (c *CoreDB) NewRequest(w http.ResponseWriter, r *http.Request) *Request {

	var req = &Request{
		db:      c,
		writer:  w,
		request: r,
	}

	_, index := language.MatchStrings(supportedLanguages, r.Header.Get("Accept-Language"), c.Config.Language)
	req.language = supportedTags[index] // without the -u- extensions of the matched tag

	uid := c.SessionManager.GetInt(r.Context(), uidKey)
	if uid == 0 {
		return req
	}
	switch u, err := c.Auth.GetUser(uid); {
	case err != nil:
		c.Log.Debug("session user not found", zap.Int("uid", uid), zap.Error(err))
	default:
		req.User = u
	}
	return req
}

func (req *Request) Blog() *Blog {
	return req.db.Blog()
}

// Cleanup destroys the session if it has been modified and is empty now, so the browser drops the cookie.
func (req *Request) Cleanup() {
	var ctx = req.request.Context()
	var sm = req.db.SessionManager
	if sm.Status(ctx) != scs.Modified || len(sm.Keys(ctx)) > 0 {
		return
	}
	if err := sm.Destroy(ctx); err != nil {
		req.db.Log.Warn("error destroying session", zap.Error(err))
	}
}

// SeeOther redirects to the formatted location. Only the first call has an effect.
func (req *Request) SeeOther(format string, args ...interface{}) {
	if !req.statusWritten {
		http.Redirect(req.writer, req.request, fmt.Sprintf(format, args...), http.StatusSeeOther)
		req.statusWritten = true
	}
}

func (req *Request) StatusWritten() bool {
	return req.statusWritten
}

// Login checks the credentials and stores the user id in a renewed session.
// It returns auth.ErrAuth if the name or the password is wrong.
func (req *Request) Login(name, password string) error {
	if req.LoggedIn() {
		return nil
	}
	u, err := req.db.Auth.LoginUser(name, password)
	if err != nil {
		return err
	}
	var ctx = req.request.Context()
	if err := req.db.SessionManager.RenewToken(ctx); err != nil {
		return err
	}
	req.db.SessionManager.Put(ctx, uidKey, u.ID())
	req.User = u
	req.principals = nil
	req.Success("Welcome %s!", u.Name())
	return nil
}

func (req *Request) LoggedIn() bool {
	return req.User != nil
}

func (req *Request) Logout() {
	if req.User != nil {
		req.db.SessionManager.Remove(req.request.Context(), uidKey)
		req.User = nil
		req.principals = nil
	}
	req.Cleanup()
}

func (req *Request) IsAdmin() bool {
	isAdmin, err := req.db.Auth.IsAdmin(req.User)
	return err == nil && isAdmin
}

// Can returns whether the user may perform an action on an object. Errors are logged and deny access.
func (req *Request) Can(action string, obj workflow.Object) bool {
	if req.principals == nil {
		principals, err := req.db.Auth.Principals(req.User)
		if err != nil {
			req.db.Log.Error("error getting principals", zap.Error(err))
			return false
		}
		req.principals = principals
	}
	acl, err := req.db.Workflow.ResolveACL(obj)
	if err != nil {
		req.db.Log.Warn("error resolving acl", zap.Error(err))
		return false
	}
	return auth.Permits(acl, req.principals, action)
}

// IsPublic returns whether the object is in the public workflow state.
func (req *Request) IsPublic(obj workflow.Object) bool {
	return req.db.Workflow.InState(obj, StatePublic)
}

// Transitions returns the names of the workflow transitions which can be applied to the object.
func (req *Request) Transitions(obj workflow.Object) []string {
	return req.db.Workflow.AvailableTransitions(obj)
}

// Language returns the BCP 47 tag of the negotiated language.
func (req *Request) Language() string {
	return req.language.String()
}

// FormatDateTime formats t in the negotiated language. The zero time yields an empty string.
func (req *Request) FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if base, _ := req.language.Base(); base.String() == "de" {
		return germanMonths.Replace(t.Local().Format("2. January 2006, 15:04 Uhr"))
	}
	return t.Local().Format("January 2, 2006 at 3:04 PM")
}
