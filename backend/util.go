package backend

import (
	"errors"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/core"
)

var ErrPOSTOnly = errors.New("POST requests only")

// editablePost returns the post whose id slug is given in the "id" parameter, if the user can edit it.
func (ctx *context) editablePost(params httprouter.Params) (*core.Post, error) {
	return ctx.db.EditablePost(ctx.User, params.ByName("id"))
}

// formPost holds the values of the post form.
type formPost struct {
	Title   string
	Excerpt string
	Body    string
	Tags    string // comma-separated
}

func (f *formPost) tagTitles() []string {
	return core.SplitTags(f.Tags)
}
