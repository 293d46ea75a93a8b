package frontend

import (
	"encoding/xml"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/blog/auth"
	"github.com/wansing/blog/config"
	"github.com/wansing/blog/core"
	"github.com/wansing/blog/sqldb/sqlitetest"
)

type fixture struct {
	db    *core.CoreDB
	srv   *httptest.Server
	alice auth.DBUser
}

func newFixture(t *testing.T, perPage int) *fixture {
	var cfg = config.Default()
	cfg.Title = "Test Blog"
	cfg.PerPage = perPage
	cfg.RSSFeedEmail = "blog@example.com"

	db := sqlitetest.New(t, cfg)
	var clock = time.Date(2020, 10, 1, 12, 0, 0, 0, time.UTC)
	db.SetClock(func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	})
	alice := sqlitetest.User(t, db, "alice", "secret")

	var mux = http.NewServeMux()
	mux.Handle("/", NewRouter(db, ""))
	mux.HandleFunc("/login-as/", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/login-as/"))
		db.SessionManager.Put(r.Context(), "uid", id)
	})

	srv := httptest.NewServer(db.SessionManager.LoadAndSave(mux))
	t.Cleanup(srv.Close)

	return &fixture{
		db:    db,
		srv:   srv,
		alice: alice,
	}
}

func (f *fixture) addPost(t *testing.T, title, excerpt, body string, public bool, tags ...string) *core.Post {
	post, err := f.db.AddPost(f.alice, title, excerpt, body, tags)
	require.NoError(t, err)
	if public {
		_, err = f.db.Publish(post)
		require.NoError(t, err)
	}
	return post
}

func get(t *testing.T, client *http.Client, url string) (int, string) {
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRoll(t *testing.T) {
	f := newFixture(t, 10)
	f.addPost(t, "Public Post", "The excerpt", "The body", true, "go")
	f.addPost(t, "Secret Draft", "", "Draft body", false)

	status, body := get(t, http.DefaultClient, f.srv.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<title>Test Blog</title>")
	assert.Contains(t, body, "Public Post")
	assert.Contains(t, body, "The excerpt")
	assert.Contains(t, body, `href="post/public-post"`)
	assert.NotContains(t, body, "Secret Draft")

	// the author sees the draft, marked as private
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	var client = &http.Client{Jar: jar}
	get(t, client, f.srv.URL+"/login-as/"+strconv.Itoa(f.alice.ID()))

	_, body = get(t, client, f.srv.URL+"/")
	assert.Contains(t, body, "Secret Draft")
	assert.Contains(t, body, "blog-private")
	assert.Less(t, strings.Index(body, "Secret Draft"), strings.Index(body, "Public Post"))
}

func TestPagination(t *testing.T) {
	f := newFixture(t, 2)
	for i := 1; i <= 5; i++ {
		f.addPost(t, "Post "+strconv.Itoa(i), "", "", true)
	}

	_, body := get(t, http.DefaultClient, f.srv.URL+"/")
	assert.Contains(t, body, "Post 5")
	assert.Contains(t, body, "Post 4")
	assert.NotContains(t, body, "Post 3")
	assert.Contains(t, body, `href="page/2"`)

	status, body := get(t, http.DefaultClient, f.srv.URL+"/page/3")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Post 1")
	assert.NotContains(t, body, "Post 2")

	status, _ = get(t, http.DefaultClient, f.srv.URL+"/page/4")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = get(t, http.DefaultClient, f.srv.URL+"/page/x")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTagRoll(t *testing.T) {
	f := newFixture(t, 10)
	f.addPost(t, "Tagged", "", "", true, "go")
	f.addPost(t, "Untagged", "", "", true)

	status, body := get(t, http.DefaultClient, f.srv.URL+"/tag/go")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Tag: go")
	assert.Contains(t, body, "Tagged")
	assert.NotContains(t, body, "Untagged")

	status, _ = get(t, http.DefaultClient, f.srv.URL+"/tag/unknown")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPost(t *testing.T) {
	f := newFixture(t, 10)
	f.addPost(t, "Hello", "", "Some *markdown*", true)
	f.addPost(t, "Draft", "", "", false)

	status, body := get(t, http.DefaultClient, f.srv.URL+"/post/hello")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<em>markdown</em>")
	assert.NotContains(t, body, "disqus_thread")

	status, _ = get(t, http.DefaultClient, f.srv.URL+"/post/draft")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = get(t, http.DefaultClient, f.srv.URL+"/post/missing")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDisqus(t *testing.T) {
	f := newFixture(t, 10)
	f.db.Config.DisqusID = "myblog"
	f.addPost(t, "Hello", "", "", true)

	_, body := get(t, http.DefaultClient, f.srv.URL+"/post/hello")
	assert.Contains(t, body, "disqus_thread")
	assert.Contains(t, body, "myblog")
}

func TestRSS(t *testing.T) {
	f := newFixture(t, 10)
	f.addPost(t, "Hello", "An <b>excerpt</b>", "Some *markdown*", true)
	f.addPost(t, "Draft", "", "", false)

	resp, err := http.Get(f.srv.URL + "/rss")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/rss+xml")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var doc struct {
		Channel struct {
			Title    string `xml:"title"`
			Language string `xml:"language"`
			Items    []struct {
				Title       string `xml:"title"`
				Link        string `xml:"link"`
				Description string `xml:"description"`
				Content     string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	require.NoError(t, xml.Unmarshal(data, &doc))

	assert.Equal(t, "Test Blog", doc.Channel.Title)
	assert.Equal(t, "en-US", doc.Channel.Language)
	require.Len(t, doc.Channel.Items, 1)
	assert.Equal(t, "Hello", doc.Channel.Items[0].Title)
	assert.Equal(t, f.srv.URL+"/post/hello", doc.Channel.Items[0].Link)
	assert.Equal(t, "An excerpt", doc.Channel.Items[0].Description)
	assert.Contains(t, doc.Channel.Items[0].Content, "<em>markdown</em>")
}
