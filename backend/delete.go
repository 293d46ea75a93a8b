package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/core"
	"go.uber.org/zap"
)

var deleteTmpl = tmpl(`<h1>Delete &raquo;{{ .Post.Title }}&laquo;</h1>

	<p>
		<a class="btn btn-secondary" href="post/{{ .Post.IDSlug }}">Cancel</a>
	</p>

	<form method="post">
		<input type="submit" class="btn btn-danger" name="delete" value="Delete">
	</form>`)

type deleteData struct {
	*context
	Post *core.Post
}

func deletePost(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	post, err := ctx.editablePost(params)
	if err != nil {
		return err
	}

	if req.PostFormValue("delete") != "" {
		if err := ctx.db.DeletePost(post); err == nil {
			ctx.db.Log.Info("post deleted", zap.String("id", post.ID.String()), zap.Int("by", ctx.User.ID()))
			ctx.Success("The post has been deleted.")
			ctx.SeeOther("/posts")
			return nil
		} else {
			ctx.Danger(err)
		}
	}

	return deleteTmpl.Execute(w, &deleteData{
		context: ctx,
		Post:    post,
	})
}
