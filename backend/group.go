package backend

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/auth"
)

var groupTmpl = tmpl(`<h1>Group {{ .Selected.Name }}</h1>

	<table class="table table-sm">
		<thead>
			<tr>
				<th>Member</th>
				<th></th>
			</tr>
		</thead>
		<tbody>
			{{ range .Members }}
				<tr>
					<td>{{ UserLink . }}</td>
					<td class="text-right">
						<form method="post">
							<button type="submit" class="btn btn-sm btn-outline-danger" name="remove" value="{{ .ID }}">Remove</button>
						</form>
					</td>
				</tr>
			{{ else }}
				<tr>
					<td colspan="2">The group has no members.</td>
				</tr>
			{{ end }}
		</tbody>
	</table>

	<form method="post" class="form-inline">
		<label class="sr-only" for="username">Username</label>
		<input class="form-control mr-2" id="username" name="username" placeholder="Username" required>
		<button type="submit" class="btn btn-primary">Add member</button>
	</form>`)

type groupData struct {
	*context
	Selected auth.DBGroup
	Members  []auth.DBUser
}

// membershipChange returns the user which has been submitted for joining or leaving the group.
func membershipChange(ctx *context, req *http.Request) (u auth.DBUser, join bool, err error) {
	if name := req.PostFormValue("username"); name != "" {
		u, err = ctx.db.Auth.GetUserByName(name)
		return u, true, err
	}
	id, err := strconv.Atoi(req.PostFormValue("remove"))
	if err != nil {
		return nil, false, err
	}
	u, err = ctx.db.Auth.GetUser(id)
	return u, false, err
}

func group(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if err := ctx.requireAdmin(); err != nil {
		return err
	}

	id, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return err
	}

	selected, err := ctx.db.Auth.GetGroup(id)
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost {

		u, join, err := membershipChange(ctx, req)
		if err != nil {
			return err
		}

		if join {
			err = ctx.db.Auth.JoinByName(selected.Name(), u)
		} else {
			err = ctx.db.Auth.Leave(selected, u)
		}
		if err != nil {
			return err
		}

		if join {
			ctx.Success("%s has joined %s.", u.Name(), selected.Name())
		} else {
			ctx.Success("%s has left %s.", u.Name(), selected.Name())
		}
		ctx.SeeOther("/group/%d", selected.ID())
		return nil
	}

	members, err := ctx.db.Auth.Members(selected)
	if err != nil {
		return err
	}

	return groupTmpl.Execute(w, &groupData{
		context:  ctx,
		Selected: selected,
		Members:  members,
	})
}
