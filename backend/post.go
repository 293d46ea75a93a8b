package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/core"
)

var postTmpl = tmpl(`<h1>{{ .Post.Title }}</h1>

	<div class="mb-3">
		State: <strong>{{ .Post.State }}</strong>
		&middot; Author: {{ .Post.AuthorName }}
		&middot; Created: {{ .FormatDateTime .Post.CreatedAt }}
		{{ if .Post.IsPublished }}
			&middot; Published: {{ .FormatDateTime .Post.PublishedAt }}
		{{ end }}
		{{ if not .Post.UpdatedAt.IsZero }}
			&middot; Updated: {{ .FormatDateTime .Post.UpdatedAt }}
		{{ end }}
		{{ with .Post.Tags }}
			&middot; Tags: {{ range $i, $tag := . }}{{ if $i }}, {{ end }}{{ $tag.Title }}{{ end }}
		{{ end }}
	</div>

	<div class="mb-3">
		<a class="btn btn-secondary" href="post/{{ .Post.IDSlug }}/edit">Edit</a>
		{{ range .Transitions .Post }}
			{{ if eq . "publish" }}
				<form style="display: inline;" action="{{ $.Prefix }}post/{{ $.Post.IDSlug }}/publish" method="post">
					<button type="submit" class="btn btn-success" id="publish_button">Publish</button>
				</form>
			{{ else if eq . "hide" }}
				<form style="display: inline;" action="{{ $.Prefix }}post/{{ $.Post.IDSlug }}/retract" method="post">
					<button type="submit" class="btn btn-warning" id="retract_button">Unpublish</button>
				</form>
			{{ end }}
		{{ end }}
		<a class="btn btn-danger" href="post/{{ .Post.IDSlug }}/delete">Delete</a>
	</div>

	{{ with .Post.Excerpt }}
		<p class="lead">{{ . }}</p>
	{{ end }}

	<div>
		{{ .Post.BodyHTML }}
	</div>`)

type postData struct {
	*context
	Post *core.Post
}

func post(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	post, err := ctx.editablePost(params)
	if err != nil {
		return err
	}

	return postTmpl.Execute(w, &postData{
		context: ctx,
		Post:    post,
	})
}

// transit returns a handler which applies a workflow transition to a post.
func transit(transition string) func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error {
	return func(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

		if req.Method != http.MethodPost {
			return ErrPOSTOnly
		}

		post, err := ctx.editablePost(params)
		if err != nil {
			return err
		}

		var changed bool
		switch transition {
		case core.TransitionPublish:
			changed, err = ctx.db.Publish(post)
		case core.TransitionHide:
			changed, err = ctx.db.Retract(post)
		}
		if err != nil {
			return err
		}

		switch {
		case !changed:
			ctx.Info("Nothing has changed.")
		case transition == core.TransitionPublish:
			ctx.Success("The post has been published.")
		default:
			ctx.Success("The post has been retracted.")
		}

		ctx.SeeOther("/post/%s", post.IDSlug())
		return nil
	}
}
