package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/core"
)

var tagTmpl = tmpl(`<h1>Tag &raquo;{{ .Selected.Title }}&laquo;</h1>

	<p>
		<a class="btn btn-secondary" href="tags">Back</a>
	</p>

	<h2>Rename</h2>

	<form method="post" class="form-inline mb-3">
		<div class="form-group">
			<input class="form-control" name="title" value="{{ .Selected.Title }}">
			<button type="submit" class="btn btn-primary mx-sm-3" name="rename" value="rename">Rename</button>
		</div>
	</form>

	<h2>Delete</h2>

	<p>The tag is removed from all posts.</p>

	<form method="post">
		<button type="submit" class="btn btn-danger" name="delete" value="delete">Delete tag</button>
	</form>`)

type tagData struct {
	*context
	Selected *core.Tag
}

func tag(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if err := ctx.requireAdmin(); err != nil {
		return err
	}

	id, err := core.SlugToUUID(params.ByName("id"))
	if err != nil {
		return err
	}

	selected, err := ctx.db.GetTag(id)
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost {

		switch {
		case req.PostFormValue("delete") != "":
			if err := ctx.db.DeleteTag(selected); err != nil {
				return err
			}
			ctx.Success("tag %s has been deleted", selected.Title)
			ctx.SeeOther("/tags")
			return nil
		case req.PostFormValue("rename") != "":
			if err := ctx.db.RenameTag(selected, req.PostFormValue("title")); err != nil {
				ctx.Danger(err)
				break
			}
			ctx.Success("tag has been renamed to %s", selected.Title)
			ctx.SeeOther("/tag/%s", selected.IDSlug())
			return nil
		}
	}

	return tagTmpl.Execute(w, &tagData{
		context:  ctx,
		Selected: selected,
	})
}
