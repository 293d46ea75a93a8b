package backend

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/auth"
	"go.uber.org/zap"
)

var ErrLogin = errors.New("wrong username or password")

var loginTmpl = tmpl(`<div class="card mx-auto mt-5" style="max-width: 22rem;">
		<div class="card-body">
			<h1 class="card-title">Sign in</h1>
			<form method="post">
				<div class="form-group">
					<label for="username">Username</label>
					<input class="form-control" id="username" name="username" value="{{ .Username }}" autocomplete="username" required autofocus>
				</div>
				<div class="form-group">
					<label for="password">Password</label>
					<input type="password" class="form-control" id="password" name="password" autocomplete="current-password" required>
				</div>
				<button type="submit" class="btn btn-primary btn-block">Sign in</button>
			</form>
		</div>
	</div>`)

type loginData struct {
	*context
	Username string // refilled after a failed attempt
}

func login(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if ctx.LoggedIn() {
		ctx.SeeOther("/posts")
		return nil
	}

	var data = &loginData{context: ctx}

	if req.Method == http.MethodPost {
		data.Username = req.PostFormValue("username")
		switch err := ctx.Login(data.Username, req.PostFormValue("password")); {
		case err == nil:
			ctx.SeeOther("/posts")
			return nil
		case errors.Is(err, auth.ErrAuth):
			ctx.db.Log.Info("login failed", zap.String("username", data.Username))
		default:
			ctx.db.Log.Error("login error", zap.String("username", data.Username), zap.Error(err))
		}
		ctx.Danger(ErrLogin)
	}

	return loginTmpl.Execute(w, data)
}
