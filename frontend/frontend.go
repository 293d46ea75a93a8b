// Package frontend serves the public pages of the blog: the blog roll, tag rolls, posts and the RSS feed.
package frontend

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/core"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("not found")

type context struct {
	*core.Request
	Prefix string // with trailing slash
	db     *core.CoreDB
}

func (ctx *context) DisqusID() string {
	return ctx.db.Config.DisqusID
}

func middleware(db *core.CoreDB, prefix string, f func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error) func(http.ResponseWriter, *http.Request, httprouter.Params) {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var ctx = &context{
			Prefix:  prefix + "/",
			Request: db.NewRequest(w, req),
			db:      db,
		}
		defer ctx.Cleanup()

		// the blog container governs access to all public pages
		if !ctx.Can(core.ActionView, ctx.Blog()) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		if err := f(w, req, ctx, params); err != nil {
			if ctx.StatusWritten() {
				return
			}
			switch {
			case errors.Is(err, ErrNotFound), errors.Is(err, core.ErrUnauthorized), db.PostDB.IsNotFound(err):
				// don't reveal whether a private post exists
				http.NotFound(w, req)
			default:
				db.Log.Error("frontend error", zap.String("path", req.URL.Path), zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}
	}
}

func NewRouter(db *core.CoreDB, prefix string) http.Handler {

	var router = httprouter.New()

	router.GET("/", middleware(db, prefix, roll))
	router.GET("/page/:page", middleware(db, prefix, roll))
	router.GET("/tag/:tag", middleware(db, prefix, tagRoll))
	router.GET("/tag/:tag/page/:page", middleware(db, prefix, tagRoll))
	router.GET("/post/:slug", middleware(db, prefix, post))
	router.GET("/rss", middleware(db, prefix, rss))

	return router
}

// tmpl clones the page layout and parses text, which must define "content" and may define "title" and "head".
func tmpl(text string) *template.Template {
	t := template.Must(frontendTmpl.Clone())
	t = template.Must(t.Parse(text))
	return t
}

var frontendTmpl = template.Must(template.New("frontend").Parse(`
{{ define "metadata" }}
	<div class="blog-blogentry-date">
		{{ if .Post.IsPublished }}
			{{ .FormatDateTime .Post.PublishedAt }}
		{{ else }}
			{{ .FormatDateTime .Post.CreatedAt }}
		{{ end }}
		{{ with .Post.AuthorName }}
			&middot; {{ . }}
		{{ end }}
		{{ if not (.IsPublic .Post) }}
			&middot; <span class="blog-private">private</span>
		{{ end }}
		{{ with .Post.Tags }}
			&middot; Tags:
			{{ range $i, $tag := . }}
				{{- if $i }},{{ end }}
				<a href="tag/{{ $tag.Title }}">{{ $tag.Title }}</a>
			{{- end }}
		{{ end }}
	</div>
{{ end }}
<!DOCTYPE html>
<html lang="{{ .Language }}">
	<head>
		<base href="{{ .Prefix }}">
		<meta charset="utf-8">
		<meta name="viewport" content="width=device-width, initial-scale=1">
		<title>{{ block "title" . }}{{ .Blog.Title }}{{ end }}</title>
		<link rel="alternate" type="application/rss+xml" title="{{ .Blog.Title }}" href="rss">
		{{ block "head" . }}{{ end }}
	</head>
	<body>
		<header>
			<h1><a href="">{{ .Blog.Title }}</a></h1>
		</header>
		<main>
			{{ template "content" . }}
		</main>
		<footer>
			<a href="rss">RSS</a>
			{{ if .LoggedIn }}
				&middot; <a href="backend/">Backend</a>
			{{ end }}
		</footer>
	</body>
</html>`))
