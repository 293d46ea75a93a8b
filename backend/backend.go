package backend

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/auth"
	"github.com/wansing/blog/core"
	"go.uber.org/zap"
)

var ErrAuth = errors.New("unauthorized")

// we need the CoreDB in the backend
type context struct {
	*core.Request
	Prefix string // with trailing slash
	db     *core.CoreDB
}

func (ctx *context) requireAdmin() error {
	if !ctx.IsAdmin() {
		return ErrAuth
	}
	return nil
}

func statusOf(db *core.CoreDB, err error) int {
	switch {
	case errors.Is(err, ErrAuth), errors.Is(err, core.ErrUnauthorized):
		return http.StatusForbidden
	case db.PostDB.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func middleware(db *core.CoreDB, prefix string, requireLoggedIn bool, f func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error) func(http.ResponseWriter, *http.Request, httprouter.Params) {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var request = db.NewRequest(w, req)

		var ctx = &context{
			Prefix:  prefix + "/backend/",
			Request: request,
			db:      db,
		}
		defer ctx.Cleanup()

		if requireLoggedIn && !ctx.LoggedIn() {
			ctx.SeeOther("/login")
			return
		}

		if err := f(w, req, ctx, params); err != nil {
			if ctx.StatusWritten() {
				db.Log.Debug("error after redirect", zap.String("path", req.URL.Path), zap.Error(err))
				return
			}
			var status = statusOf(db, err)
			if status == http.StatusBadRequest {
				db.Log.Info("backend error", zap.String("path", req.URL.Path), zap.Error(err))
			}
			// probably no template has been executed, so execute error template
			w.WriteHeader(status)
			errorTmpl.Execute(w, struct {
				*context
				Err error
			}{
				context: ctx,
				Err:     err,
			})
		}
	}
}

var errorTmpl = tmpl(`
	<div class="alert alert-danger" role="alert">
		{{ .Err }}
	</div>`)

func NewBackendRouter(db *core.CoreDB, prefix string) http.Handler {

	var router = httprouter.New()

	var GETAndPOST = func(path string, handle httprouter.Handle) {
		router.GET(path, handle)
		router.POST(path, handle)
	}

	// public
	router.GET("/", middleware(db, prefix, false, root))
	GETAndPOST("/login", middleware(db, prefix, false, login))

	// private
	router.GET("/logout", middleware(db, prefix, true, logout))
	router.GET("/posts", middleware(db, prefix, true, posts))
	GETAndPOST("/posts/add", middleware(db, prefix, true, addPost))
	router.GET("/post/:id", middleware(db, prefix, true, post))
	GETAndPOST("/post/:id/edit", middleware(db, prefix, true, editPost))
	router.POST("/post/:id/publish", middleware(db, prefix, true, transit(core.TransitionPublish)))
	router.POST("/post/:id/retract", middleware(db, prefix, true, transit(core.TransitionHide)))
	GETAndPOST("/post/:id/delete", middleware(db, prefix, true, deletePost))

	// admin
	GETAndPOST("/tags", middleware(db, prefix, true, tags))
	GETAndPOST("/tag/:id", middleware(db, prefix, true, tag))
	GETAndPOST("/groups", middleware(db, prefix, true, groups))
	GETAndPOST("/group/:id", middleware(db, prefix, true, group))
	GETAndPOST("/users", middleware(db, prefix, true, users))
	GETAndPOST("/user/:id", middleware(db, prefix, true, user))
	router.GET("/workflow", middleware(db, prefix, true, workflowPage))

	return router
}

func tmpl(text string) *template.Template {
	t := template.Must(backendTmpl.Clone())
	t = template.Must(t.Parse(`{{ define "content" }}` + text + `{{ end }}`))
	return t
}

var backendTmpl = template.Must(template.New("backend").Funcs(
	template.FuncMap{
		"GroupLink": func(g auth.DBGroup) template.HTML {
			return template.HTML(fmt.Sprintf(`<a href="group/%d">%s</a>`, g.ID(), template.HTMLEscapeString(g.Name())))
		},
		"UserLink": func(u auth.DBUser) template.HTML {
			return template.HTML(fmt.Sprintf(`<a href="user/%d">%s</a>`, u.ID(), template.HTMLEscapeString(u.Name())))
		},
		"PostLink": func(p *core.Post) template.HTML {
			return template.HTML(fmt.Sprintf(`<a href="post/%s">%s</a>`, p.IDSlug(), template.HTMLEscapeString(p.Title)))
		},
	},
).Parse(`<!DOCTYPE html>
<html lang="{{ .Language }}">
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<base href="{{ .Prefix }}">
	<title>Backend &middot; {{ .Blog.Title }}</title>
	<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@4.6.2/dist/css/bootstrap.min.css">
	<style>
		h1 { font-size: 1.6rem; margin-bottom: 1rem; }
		h2 { font-size: 1.25rem; margin-top: 1.5rem; }
		textarea#body { min-height: 20rem; font-family: monospace; tab-size: 4; }
		tr.table-light td { color: #6c757d; }
	</style>
</head>
<body>
	{{ if .LoggedIn }}
		<nav class="navbar navbar-expand navbar-dark bg-dark">
			<a class="navbar-brand" href="posts">{{ .Blog.Title }}</a>
			<div class="navbar-nav mr-auto">
				<a class="nav-item nav-link" href="posts">Posts</a>
				{{ if .IsAdmin }}
					<a class="nav-item nav-link" href="tags">Tags</a>
					<a class="nav-item nav-link" href="users">Users</a>
					<a class="nav-item nav-link" href="groups">Groups</a>
					<a class="nav-item nav-link" href="workflow">Workflow</a>
				{{ end }}
			</div>
			<div class="navbar-nav">
				<a class="nav-item nav-link" href="../" target="_blank">Blog</a>
				<a class="nav-item nav-link" href="user/{{ .User.ID }}">{{ .User.Name }}</a>
				<a class="nav-item nav-link" href="logout">Logout</a>
			</div>
		</nav>
	{{ end }}
	<main class="container py-3">
		{{ .RenderNotifications }}
		{{ template "content" . }}
	</main>
</body>
</html>`))
