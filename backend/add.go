package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// shared by the add and the edit form
const postForm = `
	<form method="post">
		<div class="form-group">
			<label for="title">Title</label>
			<input class="form-control" id="title" name="title" maxlength="256" value="{{ .Form.Title }}" required autofocus>
		</div>
		<div class="form-group">
			<label for="excerpt">Excerpt</label>
			<textarea class="form-control" id="excerpt" name="excerpt" rows="3">{{ .Form.Excerpt }}</textarea>
		</div>
		<div class="form-group">
			<label for="body">Body (Markdown)</label>
			<textarea class="form-control" id="body" name="body">{{ .Form.Body }}</textarea>
		</div>
		<div class="form-group">
			<label for="tags">Tags (comma-separated)</label>
			<input class="form-control" id="tags" name="tags" value="{{ .Form.Tags }}">
		</div>
		<button type="submit" class="btn btn-primary" name="save">Save</button>
	</form>`

var addTmpl = tmpl(`<h1>Add post</h1>

	<p>
		<a class="btn btn-secondary" href="posts">Cancel</a>
	</p>
` + postForm)

type formData struct {
	*context
	Form *formPost
}

func readForm(req *http.Request) *formPost {
	return &formPost{
		Title:   req.PostFormValue("title"),
		Excerpt: req.PostFormValue("excerpt"),
		Body:    req.PostFormValue("body"),
		Tags:    req.PostFormValue("tags"),
	}
}

func addPost(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var form = &formPost{}

	if req.Method == http.MethodPost {
		form = readForm(req)
		if post, err := ctx.db.AddPost(ctx.User, form.Title, form.Excerpt, form.Body, form.tagTitles()); err == nil {
			ctx.Success("The post has been created.")
			ctx.SeeOther("/post/%s", post.IDSlug())
			return nil
		} else {
			ctx.Danger(err)
			// keep POST data
		}
	}

	return addTmpl.Execute(w, &formData{
		context: ctx,
		Form:    form,
	})
}
