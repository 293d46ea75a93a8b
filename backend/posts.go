package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/core"
)

var postsTmpl = tmpl(`<h1>Posts</h1>

	<p>
		<a class="btn btn-primary" href="posts/add">Add post</a>
	</p>

	<div class="table-responsive-sm">
		<table class="table table-sm">
			<thead>
				<tr>
					<th>Title</th>
					<th>State</th>
					<th>Created</th>
					<th>Published</th>
					<th>Author</th>
				</tr>
			</thead>
			<tbody>
				{{ range .Posts }}
					<tr {{ if not ($.IsPublic .) }}class="table-light"{{ end }}>
						<td>{{ PostLink . }}</td>
						<td>{{ .State }}</td>
						<td>{{ $.FormatDateTime .CreatedAt }}</td>
						<td>{{ $.FormatDateTime .PublishedAt }}</td>
						<td>{{ .AuthorName }}</td>
					</tr>
				{{ else }}
					<tr>
						<td colspan="5">No posts yet.</td>
					</tr>
				{{ end }}
			</tbody>
		</table>
	</div>`)

type postsData struct {
	*context
	Posts []*core.Post
}

func posts(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	posts, err := ctx.db.EditablePosts(ctx.User)
	if err != nil {
		return err
	}

	return postsTmpl.Execute(w, &postsData{
		context: ctx,
		Posts:   posts,
	})
}
