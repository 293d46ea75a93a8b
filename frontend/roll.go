package frontend

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/core"
	"github.com/wansing/blog/util"
)

var rollTmpl = tmpl(`
	{{ define "title" }}{{ with .Tag }}{{ .Title }} &middot; {{ end }}{{ .Blog.Title }}{{ end }}
	{{ define "head" }}{{ if eq .Page 1 }}<link rel="canonical" href="{{ .Link }}">{{ end }}{{ end }}

	{{ define "content" }}
	{{ with .Tag }}
		<h2>Tag: {{ .Title }}</h2>
	{{ end }}

	{{ range .Entries }}
		<div class="blog-blogentry">
			<h2><a href="post/{{ .Post.Slug }}" class="blog-blogentry-headline">{{ .Post.Title }}</a></h2>
			{{ template "metadata" . }}
			<div class="blog-blogentry-teaser">
				{{ .Teaser }}
				{{ if .Cut }}
					<p class="blog-blogentry-more">
						<a href="post/{{ .Post.Slug }}">Read more</a>
					</p>
				{{ end }}
			</div>
		</div>
	{{ else }}
		<p>No posts yet.</p>
	{{ end }}

	<div class="blog-pagelinks">
		{{ range .PageLinks }}
			{{ . }}
		{{ end }}
	</div>
	{{ end }}`)

type entry struct {
	*context
	Post   *core.Post
	Teaser template.HTML
	Cut    bool
}

type rollData struct {
	*context
	Entries []*entry
	Link    string // without page, relative to Prefix
	Page    int    // starting with 1
	Pages   int
	Tag     *core.Tag
}

func (data *rollData) PageLinks() []template.HTML {
	return util.PageLinks(
		data.Page,
		data.Pages,
		func(page int, name string) string {
			return `<a href="` + template.HTMLEscapeString(data.Link) + `page/` + strconv.Itoa(page) + `">` + name + `</a>`
		},
		func(page int, name string) string {
			return `<span>` + strconv.Itoa(page) + `</span>`
		},
	)
}

// newEntry uses the excerpt as teaser. If the post has no excerpt, the body is cut at util.CutMoreStr.
func newEntry(ctx *context, post *core.Post) *entry {
	var e = &entry{
		context: ctx,
		Post:    post,
	}
	if post.Excerpt != "" {
		e.Teaser = core.RenderMarkdown(post.Excerpt)
		e.Cut = true
	} else {
		body, cut := util.CutMore(post.Body)
		e.Teaser = core.RenderMarkdown(body)
		e.Cut = cut
	}
	return e
}

// paginate returns the posts of the given page. A page parameter which is not a number or out of range yields ErrNotFound.
func paginate(data *rollData, posts []*core.Post, perPage int, pageParam string) ([]*core.Post, error) {

	data.Page = 1
	if pageParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil || page < 1 {
			return nil, ErrNotFound
		}
		data.Page = page
	}

	data.Pages = (len(posts) + perPage - 1) / perPage
	if data.Pages == 0 {
		data.Pages = 1
	}
	if data.Page > data.Pages {
		return nil, ErrNotFound
	}

	var from = (data.Page - 1) * perPage
	var to = from + perPage
	if to > len(posts) {
		to = len(posts)
	}
	return posts[from:to], nil
}

func render(w http.ResponseWriter, ctx *context, data *rollData, posts []*core.Post, pageParam string) error {

	posts, err := paginate(data, posts, ctx.db.Config.PerPage, pageParam)
	if err != nil {
		return err
	}

	for _, post := range posts {
		data.Entries = append(data.Entries, newEntry(ctx, post))
	}

	return rollTmpl.Execute(w, data)
}

func roll(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	posts, err := ctx.db.ViewablePosts(ctx.User)
	if err != nil {
		return err
	}

	var data = &rollData{
		context: ctx,
		Link:    "",
	}
	return render(w, ctx, data, posts, params.ByName("page"))
}

func tagRoll(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	tag, posts, err := ctx.db.ViewablePostsByTag(ctx.User, params.ByName("tag"))
	if err != nil {
		return err
	}
	if tag == nil {
		return ErrNotFound
	}

	var data = &rollData{
		context: ctx,
		Link:    "tag/" + url.PathEscape(tag.Title) + "/",
		Tag:     tag,
	}
	return render(w, ctx, data, posts, params.ByName("page"))
}
