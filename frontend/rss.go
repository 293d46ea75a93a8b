package frontend

import (
	"net/http"
	"strings"

	"github.com/gorilla/feeds"
	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/core"
	"github.com/wansing/blog/util"
	"go.uber.org/zap"
)

const rssItems = 20

// absolute returns the absolute URL of a path below the prefix.
func (ctx *context) absolute(req *http.Request, path string) string {
	var scheme = "http"
	if req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + req.Host + ctx.Prefix + strings.TrimPrefix(path, "/")
}

// description returns the excerpt of a post as plain text.
func description(post *core.Post) (string, error) {
	var excerpt = post.Excerpt
	if excerpt == "" {
		excerpt, _ = util.CutMore(post.Body)
	}
	text, err := util.StripTags(string(core.RenderMarkdown(excerpt)))
	if err != nil {
		return "", err
	}
	return util.Trunc(text, 500), nil
}

// Feed builds the RSS feed of the posts which anonymous visitors can view.
func (ctx *context) Feed(req *http.Request) (*feeds.Feed, error) {

	posts, err := ctx.db.ViewablePosts(nil)
	if err != nil {
		return nil, err
	}

	var feed = &feeds.Feed{
		Title:       ctx.Blog().Title,
		Link:        &feeds.Link{Href: ctx.absolute(req, "")},
		Description: ctx.Blog().Title,
	}
	if email := ctx.db.Config.RSSFeedEmail; email != "" {
		feed.Author = &feeds.Author{Email: email}
	}

	for _, post := range posts {
		if !post.IsPublished() {
			continue
		}
		if len(feed.Items) == rssItems {
			break
		}
		desc, err := description(post)
		if err != nil {
			ctx.db.Log.Warn("error creating rss description", zap.String("slug", post.Slug), zap.Error(err))
		}
		var link = ctx.absolute(req, "post/"+post.Slug)
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       post.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Author:      &feeds.Author{Name: post.AuthorName},
			Description: desc,
			Content:     string(post.BodyHTML()),
			Created:     post.PublishedAt,
			Updated:     post.UpdatedAt,
		})
		if feed.Updated.Before(post.PublishedAt) {
			feed.Updated = post.PublishedAt
		}
		if feed.Updated.Before(post.UpdatedAt) {
			feed.Updated = post.UpdatedAt
		}
	}

	return feed, nil
}

func rss(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	feed, err := ctx.Feed(req)
	if err != nil {
		return err
	}

	var rssFeed = (&feeds.Rss{Feed: feed}).RssFeed()
	rssFeed.Language = ctx.Language()

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	return feeds.WriteXML(rssFeed, w)
}
