package core

import (
	"encoding/base64"
	"html/template"
	"strconv"
	"time"

	"github.com/gofrs/uuid"
)

type PostDB interface {
	DeletePost(p *Post) error
	GetAllPosts(firstState string) ([]*Post, error) // posts in firstState, then by published_at desc, created_at desc
	GetPost(id uuid.UUID) (*Post, error)
	GetPostBySlug(slug string) (*Post, error)
	GetPostsByTag(tagID uuid.UUID) ([]*Post, error) // by published_at desc
	InsertPost(p *Post, newTags []*Tag) error // newTags are inserted, p.Tags are linked
	IsNotFound(err error) bool
	SlugExists(slug string) (bool, error)
	UpdateCreated(p *Post) error
	UpdatePost(p *Post, newTags []*Tag) error // title, excerpt, body, updated_at, tags
	UpdateState(p *Post) error // state, published_at
}

// Post implements workflow.Object.
type Post struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	PublishedAt time.Time // zero if the post has never been published
	UpdatedAt   time.Time // zero if the post has never been edited
	Title       string
	Excerpt     string // shown in the blog roll and the RSS feed
	Body        string // markdown
	Slug        string
	AuthorID    int // zero if unknown
	AuthorName  string
	State       string
	Tags        []*Tag
}

func (p *Post) Attr(name string) string {
	switch name {
	case StateAttr:
		return p.State
	case "author_id":
		if p.AuthorID == 0 {
			return ""
		}
		return strconv.Itoa(p.AuthorID)
	case "slug":
		return p.Slug
	case "title":
		return p.Title
	}
	return ""
}

func (p *Post) SetAttr(name, value string) {
	if name == StateAttr {
		p.State = value
	}
}

func (p *Post) BodyHTML() template.HTML {
	return RenderMarkdown(p.Body)
}

func (p *Post) IsPublished() bool {
	return !p.PublishedAt.IsZero()
}

// TagTitles returns the titles of the tags of the post.
func (p *Post) TagTitles() []string {
	var titles = make([]string, len(p.Tags))
	for i, tag := range p.Tags {
		titles[i] = tag.Title
	}
	return titles
}

// IDSlug returns the post id as a short string, which is used in backend URLs.
func (p *Post) IDSlug() string {
	return UUIDToSlug(p.ID)
}

func UUIDToSlug(id uuid.UUID) string {
	return base64.RawURLEncoding.EncodeToString(id.Bytes())
}

func SlugToUUID(slug string) (uuid.UUID, error) {
	b, err := base64.RawURLEncoding.DecodeString(slug)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.FromBytes(b)
}
