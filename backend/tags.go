package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/core"
)

var tagsTmpl = tmpl(`<h1>Tags</h1>

	<ul>
		{{ range .Tags }}
			<li><a href="tag/{{ .IDSlug }}">{{ .Title }}</a></li>
		{{ else }}
			No tags.
		{{ end }}
	</ul>

	<h2>Create Tag</h2>

	<form method="post" class="form-inline">
		<div class="form-group">
			<input class="form-control" name="title" placeholder="Title">
			<button type="submit" class="btn btn-primary mx-sm-3" name="submit_add">Create tag</button>
		</div>
	</form>`)

type tagsData struct {
	*context
}

func (data *tagsData) Tags() ([]*core.Tag, error) {
	return data.db.GetAllTags()
}

func tags(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if err := ctx.requireAdmin(); err != nil {
		return err
	}

	if req.Method == http.MethodPost {

		tag, err := ctx.db.AddTag(req.PostFormValue("title"))
		if err != nil {
			return err
		}

		ctx.Success("tag %s has been created", tag.Title)
		ctx.SeeOther("/tags")
		return nil
	}

	return tagsTmpl.Execute(w, &tagsData{
		context: ctx,
	})
}
