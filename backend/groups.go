package backend

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/auth"
)

var groupsTmpl = tmpl(`<h1>Groups</h1>

	<p class="text-muted">Members of {{ .AdminGroup }} manage all posts, the tags and the accounts.</p>

	<table class="table table-sm">
		<tbody>
			{{ range .Groups }}
				<tr>
					<td>{{ GroupLink . }}</td>
				</tr>
			{{ end }}
		</tbody>
	</table>

	<h2>New group</h2>

	<form method="post" class="form-inline">
		<label class="sr-only" for="name">Name</label>
		<input class="form-control mr-2" id="name" name="name" placeholder="Name" required>
		<button type="submit" class="btn btn-primary">Create</button>
	</form>`)

type groupsData struct {
	*context
	AdminGroup string
	Groups     []auth.DBGroup
}

func groups(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if err := ctx.requireAdmin(); err != nil {
		return err
	}

	if req.Method == http.MethodPost {
		created, err := ctx.db.Auth.InsertGroup(strings.TrimSpace(req.PostFormValue("name")))
		if err != nil {
			return err
		}
		ctx.Success("Group %s has been created.", created.Name())
		ctx.SeeOther("/group/%d", created.ID())
		return nil
	}

	all, err := ctx.db.Auth.GetAllGroups(10000, 0)
	if err != nil {
		return err
	}

	return groupsTmpl.Execute(w, &groupsData{
		context:    ctx,
		AdminGroup: auth.AdminGroup,
		Groups:     all,
	})
}
