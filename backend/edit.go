package backend

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/core"
)

var editTmpl = tmpl(`<h1>Edit &raquo;{{ .Post.Title }}&laquo;</h1>

	<p>
		<a class="btn btn-secondary" href="post/{{ .Post.IDSlug }}">Cancel</a>
	</p>
` + postForm)

type editData struct {
	formData
	Post *core.Post
}

func editPost(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	post, err := ctx.editablePost(params)
	if err != nil {
		return err
	}

	var form = &formPost{
		Title:   post.Title,
		Excerpt: post.Excerpt,
		Body:    post.Body,
		Tags:    strings.Join(post.TagTitles(), ", "),
	}

	if req.Method == http.MethodPost {
		form = readForm(req)
		if err := ctx.db.EditPost(post, form.Title, form.Excerpt, form.Body, form.tagTitles()); err == nil {
			ctx.Success("The post has been saved.")
			ctx.SeeOther("/post/%s", post.IDSlug())
			return nil
		} else {
			ctx.Danger(err)
		}
	}

	return editTmpl.Execute(w, &editData{
		formData: formData{
			context: ctx,
			Form:    form,
		},
		Post: post,
	})
}
