package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/auth"
)

var usersTmpl = tmpl(`<h1>Users</h1>

	<table class="table table-sm">
		<tbody>
			{{ range .Users }}
				<tr>
					<td>{{ UserLink . }}</td>
				</tr>
			{{ end }}
		</tbody>
	</table>

	<h2>New user</h2>

	<form method="post" class="form-inline">
		<label class="sr-only" for="username">Username</label>
		<input class="form-control mr-2" id="username" name="username" placeholder="Username" required>
		<button type="submit" class="btn btn-primary">Create</button>
	</form>`)

type usersData struct {
	*context
	Users []auth.DBUser
}

func users(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if err := ctx.requireAdmin(); err != nil {
		return err
	}

	if req.Method == http.MethodPost {
		created, err := ctx.db.Auth.InsertUser(req.PostFormValue("username"))
		if err != nil {
			return err
		}
		ctx.Success("User %s has been created. Please set a password.", created.Name())
		ctx.SeeOther("/user/%d", created.ID())
		return nil
	}

	all, err := ctx.db.Auth.GetAllUsers(10000, 0)
	if err != nil {
		return err
	}

	return usersTmpl.Execute(w, &usersData{
		context: ctx,
		Users:   all,
	})
}
