package backend

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/blog/auth"
	"github.com/wansing/blog/core"
	"github.com/wansing/blog/sqldb/sqlitetest"
)

type client struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
}

func newServer(t *testing.T) (*core.CoreDB, *httptest.Server) {
	db := sqlitetest.New(t, nil)
	sqlitetest.User(t, db, "admin", "secret", auth.AdminGroup)
	sqlitetest.User(t, db, "alice", "secret")
	sqlitetest.User(t, db, "bob", "secret")
	srv := httptest.NewServer(db.SessionManager.LoadAndSave(NewBackendRouter(db, "")))
	t.Cleanup(srv.Close)
	return db, srv
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{
		t:   t,
		srv: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *client) do(resp *http.Response, err error) (int, string, string) {
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, resp.Header.Get("Location"), string(body)
}

func (c *client) get(path string) (int, string, string) {
	return c.do(c.client.Get(c.srv.URL + path))
}

func (c *client) post(path string, values url.Values) (int, string, string) {
	return c.do(c.client.PostForm(c.srv.URL+path, values))
}

func (c *client) login(name string) {
	status, location, _ := c.post("/login", url.Values{"username": {name}, "password": {"secret"}})
	require.Equal(c.t, http.StatusSeeOther, status)
	require.Equal(c.t, "/posts", location)
}

func TestLogin(t *testing.T) {
	_, srv := newServer(t)
	c := newClient(t, srv)

	status, location, _ := c.get("/")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", location)

	status, location, _ = c.get("/posts")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", location)

	status, _, body := c.post("/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, ErrLogin.Error())
	assert.Contains(t, body, `value="alice"`)

	c.login("alice")

	status, _, body = c.get("/posts")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Welcome alice!")
	assert.NotContains(t, body, `href="tags"`)

	status, location, _ = c.get("/logout")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", location)

	status, _, _ = c.get("/posts")
	assert.Equal(t, http.StatusSeeOther, status)
}

func createPost(t *testing.T, c *client, title string) string {
	status, location, _ := c.post("/posts/add", url.Values{
		"title":   {title},
		"excerpt": {"An excerpt"},
		"body":    {"Some *markdown*"},
		"tags":    {"go, misc"},
	})
	require.Equal(t, http.StatusSeeOther, status)
	require.True(t, strings.HasPrefix(location, "/post/"))
	return location
}

func TestPostLifecycle(t *testing.T) {
	db, srv := newServer(t)
	c := newClient(t, srv)
	c.login("alice")

	location := createPost(t, c, "Hello World")

	status, _, body := c.get(location)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Hello World")
	assert.Contains(t, body, "<em>markdown</em>")
	assert.Contains(t, body, "publish_button")
	assert.NotContains(t, body, "retract_button")

	status, _, _ = c.post(location+"/publish", nil)
	assert.Equal(t, http.StatusSeeOther, status)

	status, _, body = c.get(location)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "The post has been published.")
	assert.Contains(t, body, "retract_button")

	post, err := db.GetPostBySlug("hello-world")
	require.NoError(t, err)
	assert.Equal(t, core.StatePublic, post.State)
	assert.True(t, post.IsPublished())

	// publishing again changes nothing
	c.post(location+"/publish", nil)
	_, _, body = c.get(location)
	assert.Contains(t, body, "Nothing has changed.")

	c.post(location+"/retract", nil)
	_, _, body = c.get(location)
	assert.Contains(t, body, "The post has been retracted.")

	post, err = db.GetPostBySlug("hello-world")
	require.NoError(t, err)
	assert.Equal(t, core.StatePrivate, post.State)

	status, location2, _ := c.post(location+"/edit", url.Values{
		"title": {"Changed"},
		"body":  {"New body"},
		"tags":  {"go"},
	})
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, location, location2)

	post, err = db.GetPostBySlug("hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Changed", post.Title)
	assert.Equal(t, []string{"go"}, post.TagTitles())

	status, location2, _ = c.post(location+"/delete", url.Values{"delete": {"Delete"}})
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/posts", location2)

	_, err = db.GetPostBySlug("hello-world")
	assert.True(t, db.PostDB.IsNotFound(err))
}

func TestPublishRequiresPOST(t *testing.T) {
	_, srv := newServer(t)
	c := newClient(t, srv)
	c.login("alice")

	location := createPost(t, c, "Hello")
	status, _, _ := c.get(location + "/publish")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestPostPermissions(t *testing.T) {
	_, srv := newServer(t)

	alice := newClient(t, srv)
	alice.login("alice")
	location := createPost(t, alice, "Private")

	bob := newClient(t, srv)
	bob.login("bob")

	status, _, _ := bob.get(location)
	assert.Equal(t, http.StatusForbidden, status)

	status, _, _ = bob.post(location+"/publish", nil)
	assert.Equal(t, http.StatusForbidden, status)

	_, _, body := bob.get("/posts")
	assert.NotContains(t, body, "Private")

	admin := newClient(t, srv)
	admin.login("admin")

	status, _, _ = admin.get(location)
	assert.Equal(t, http.StatusOK, status)

	_, _, body = admin.get("/posts")
	assert.Contains(t, body, "Private")

	status, _, _ = admin.get("/post/AAAAAAAAAAAAAAAAAAAAAA")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTags(t *testing.T) {
	db, srv := newServer(t)

	alice := newClient(t, srv)
	alice.login("alice")
	status, _, _ := alice.get("/tags")
	assert.Equal(t, http.StatusForbidden, status)

	admin := newClient(t, srv)
	admin.login("admin")

	status, location, _ := admin.post("/tags", url.Values{"title": {"golang"}})
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/tags", location)

	tag, err := db.GetTagByTitle("golang")
	require.NoError(t, err)

	status, _, body := admin.get("/tag/" + tag.IDSlug())
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "golang")

	status, _, _ = admin.post("/tag/"+tag.IDSlug(), url.Values{"rename": {"rename"}, "title": {"go"}})
	assert.Equal(t, http.StatusSeeOther, status)
	_, err = db.GetTagByTitle("go")
	require.NoError(t, err)

	status, _, _ = admin.post("/tag/"+tag.IDSlug(), url.Values{"delete": {"delete"}})
	assert.Equal(t, http.StatusSeeOther, status)
	_, err = db.GetTagByTitle("go")
	assert.True(t, db.PostDB.IsNotFound(err))
}

func TestUsersAndGroups(t *testing.T) {
	db, srv := newServer(t)

	admin := newClient(t, srv)
	admin.login("admin")

	status, location, _ := admin.post("/users", url.Values{"username": {"carol"}})
	assert.Equal(t, http.StatusSeeOther, status)

	status, _, _ = admin.post(location, url.Values{"password": {"pw"}, "repeat": {"pw"}})
	assert.Equal(t, http.StatusSeeOther, status)
	_, err := db.Auth.LoginUser("carol", "pw")
	require.NoError(t, err)

	status, _, _ = admin.post("/groups", url.Values{"name": {"editors"}})
	assert.Equal(t, http.StatusSeeOther, status)

	group, err := db.Auth.GetGroupByName("editors")
	require.NoError(t, err)

	status, _, _ = admin.post("/group/"+itoa(group.ID()), url.Values{"username": {"carol"}})
	assert.Equal(t, http.StatusSeeOther, status)

	_, _, body := admin.get("/group/" + itoa(group.ID()))
	assert.Contains(t, body, "carol")

	status, _, body = admin.get("/workflow")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "system.Everyone")
	assert.Contains(t, body, "publish: private")

	// a user can change the own password only
	alice := newClient(t, srv)
	alice.login("alice")
	status, _, _ = alice.get("/user/1")
	assert.Equal(t, http.StatusForbidden, status)
	status, _, _ = alice.get("/workflow")
	assert.Equal(t, http.StatusForbidden, status)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
