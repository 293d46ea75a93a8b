package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gofrs/uuid"
	"github.com/wansing/blog/auth"
	"github.com/wansing/blog/config"
	"github.com/wansing/blog/workflow"
	"go.uber.org/zap"
)

var (
	ErrEmptyTitle   = errors.New("title can't be empty")
	ErrUnauthorized = errors.New("unauthorized")
)

type CoreDB struct {
	PostDB
	TagDB
	Auth           *auth.AuthDB
	Config         *config.Config
	Log            *zap.Logger
	SessionManager *scs.SessionManager
	Workflow       *workflow.Workflow

	now func() time.Time // for testing
}

func (c *CoreDB) Init(sessionStore scs.Store, cookiePath string) error {

	if c.Config == nil {
		c.Config = config.Default()
	}

	if c.Log == nil {
		c.Log = zap.NewNop()
	}

	if c.Workflow == nil {
		var err error
		c.Workflow, err = PostWorkflow(c.Config.Lenient, c.Log)
		if err != nil {
			return fmt.Errorf("error creating post workflow: %w", err)
		}
	}

	c.SessionManager = scs.New()
	c.SessionManager.Store = sessionStore
	c.SessionManager.Cookie.Path = cookiePath + "/"
	c.SessionManager.Cookie.Persist = false                 // don't store cookie across browser sessions
	c.SessionManager.Cookie.SameSite = http.SameSiteLaxMode // good CSRF protection if HTTP GET doesn't modify anything
	c.SessionManager.Cookie.Secure = false                  // else running on localhost or behind a http proxy fails
	c.SessionManager.IdleTimeout = 12 * time.Hour
	c.SessionManager.Lifetime = 720 * time.Hour

	return nil
}

func (c *CoreDB) Now() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now().UTC().Truncate(time.Second)
}

// SetClock replaces the clock of the receiver. It is used in tests.
func (c *CoreDB) SetClock(now func() time.Time) {
	c.now = now
}

// Permits returns whether the user is allowed to perform the action on the object.
// The ACL of the object is resolved by the workflow. The user can be nil.
func (c *CoreDB) Permits(obj workflow.Object, u auth.DBUser, action string) (bool, error) {
	acl, err := c.Workflow.ResolveACL(obj)
	if err != nil {
		return false, err
	}
	principals, err := c.Auth.Principals(u)
	if err != nil {
		return false, err
	}
	return auth.Permits(acl, principals, action), nil
}

// RequirePermission is like Permits but returns ErrUnauthorized if the action is not permitted.
func (c *CoreDB) RequirePermission(obj workflow.Object, u auth.DBUser, action string) error {
	ok, err := c.Permits(obj, u, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// AddPost creates a post in the default workflow state.
// Tags which don't exist yet are created along with the post. Duplicate tag titles are ignored.
func (c *CoreDB) AddPost(author auth.DBUser, title, excerpt, body string, tagTitles []string) (*Post, error) {

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	slug, err := c.UniqueSlug(title)
	if err != nil {
		return nil, err
	}

	tags, newTags, err := c.resolveTags(tagTitles)
	if err != nil {
		return nil, err
	}

	var post = &Post{
		ID:        id,
		CreatedAt: c.Now(),
		Title:     title,
		Excerpt:   strings.TrimSpace(excerpt),
		Body:      body,
		Slug:      slug,
		State:     c.Workflow.DefaultStateName(),
		Tags:      tags,
	}

	if author != nil {
		post.AuthorID = author.ID()
		post.AuthorName = author.Name()
	}

	if err := c.InsertPost(post, newTags); err != nil {
		return nil, err
	}

	c.Log.Info("post created", zap.String("id", post.ID.String()), zap.String("slug", post.Slug), zap.Int("author", post.AuthorID))
	return post, nil
}

// EditPost updates the content and the tags of a post. The slug is kept, so links stay valid.
func (c *CoreDB) EditPost(post *Post, title, excerpt, body string, tagTitles []string) error {

	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}

	tags, newTags, err := c.resolveTags(tagTitles)
	if err != nil {
		return err
	}

	var backup = *post

	post.Title = title
	post.Excerpt = strings.TrimSpace(excerpt)
	post.Body = body
	post.UpdatedAt = c.Now()
	post.Tags = tags

	if err := c.UpdatePost(post, newTags); err != nil {
		*post = backup
		return err
	}

	return nil
}

// Publish makes a post public and stamps its publication time. It returns false if the post had already been public.
func (c *CoreDB) Publish(post *Post) (bool, error) {

	var backup = *post

	changed, err := c.Workflow.TransitByName(TransitionPublish, post)
	if err != nil || !changed {
		return false, err
	}

	post.PublishedAt = c.Now()

	if err := c.UpdateState(post); err != nil {
		*post = backup
		return false, err
	}

	c.Log.Info("post published", zap.String("id", post.ID.String()))
	return true, nil
}

// Retract makes a post private. The publication time is kept.
func (c *CoreDB) Retract(post *Post) (bool, error) {

	var backup = *post

	changed, err := c.Workflow.TransitByName(TransitionHide, post)
	if err != nil || !changed {
		return false, err
	}

	if err := c.UpdateState(post); err != nil {
		*post = backup
		return false, err
	}

	c.Log.Info("post retracted", zap.String("id", post.ID.String()))
	return true, nil
}
