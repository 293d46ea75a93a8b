package backend

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/auth"
)

var ErrPasswordMismatch = errors.New("the passwords don't match")

var userTmpl = tmpl(`<h1>{{ .Selected.Name }}</h1>

	<p>
		Groups:
		{{ range $i, $g := .Groups }}{{ if $i }}, {{ end }}{{ if $.IsAdmin }}{{ GroupLink $g }}{{ else }}{{ $g.Name }}{{ end }}{{ else }}none{{ end }}
	</p>

	<h2>Password</h2>

	<form method="post" style="max-width: 24rem;">
		{{ if .RequireOld }}
			<div class="form-group">
				<label for="old">Current password</label>
				<input type="password" class="form-control" id="old" name="old" required>
			</div>
		{{ end }}
		<div class="form-group">
			<label for="password">New password</label>
			<input type="password" class="form-control" id="password" name="password" required>
		</div>
		<div class="form-group">
			<label for="repeat">Repeat</label>
			<input type="password" class="form-control" id="repeat" name="repeat" required>
		</div>
		<button type="submit" class="btn btn-primary">Set password</button>
	</form>`)

type userData struct {
	*context
	Selected auth.DBUser
	Groups   []auth.DBGroup
}

// RequireOld returns whether the current password must be entered. Admins can set the passwords of other users without it.
func (data *userData) RequireOld() bool {
	return data.Selected.ID() == data.User.ID() || !data.IsAdmin()
}

func user(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	id, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return err
	}

	if id != ctx.User.ID() && !ctx.IsAdmin() {
		return ErrAuth
	}

	selected, err := ctx.db.Auth.GetUser(id)
	if err != nil {
		return err
	}

	var data = &userData{
		context:  ctx,
		Selected: selected,
	}

	if req.Method == http.MethodPost {

		var password = req.PostFormValue("password")
		if password != req.PostFormValue("repeat") {
			return ErrPasswordMismatch
		}

		if data.RequireOld() {
			err = ctx.db.Auth.ChangePassword(selected, req.PostFormValue("old"), password)
		} else {
			err = ctx.db.Auth.SetPassword(selected, password)
		}
		if err != nil {
			return err
		}

		ctx.Success("The password of %s has been changed.", selected.Name())
		ctx.SeeOther("/user/%d", selected.ID())
		return nil
	}

	if data.Groups, err = ctx.db.Auth.GetGroupsOf(selected); err != nil {
		return err
	}

	return userTmpl.Execute(w, data)
}
