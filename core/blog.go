package core

import (
	"github.com/wansing/blog/auth"
	"go.uber.org/zap"
)

// Blog contains all posts. It implements workflow.Object and is always public, so its ACL is the one of public posts.
type Blog struct {
	Title string
}

func (b *Blog) Attr(name string) string {
	if name == StateAttr {
		return StatePublic
	}
	return ""
}

func (b *Blog) SetAttr(string, string) {}

// Blog returns the blog container.
func (c *CoreDB) Blog() *Blog {
	return &Blog{
		Title: c.Config.Title,
	}
}

// ViewablePosts returns all posts which the user can view.
// Private posts are listed first, then the latest posts.
func (c *CoreDB) ViewablePosts(u auth.DBUser) ([]*Post, error) {
	posts, err := c.GetAllPosts(c.Workflow.DefaultStateName())
	if err != nil {
		return nil, err
	}
	return c.filter(posts, u, ActionView)
}

// EditablePosts returns all posts which the user can edit, in the order of ViewablePosts.
func (c *CoreDB) EditablePosts(u auth.DBUser) ([]*Post, error) {
	posts, err := c.GetAllPosts(c.Workflow.DefaultStateName())
	if err != nil {
		return nil, err
	}
	return c.filter(posts, u, ActionEdit)
}

// ViewablePostsByTag returns the posts with the given tag which the user can view. If the tag does not exist, the result is empty.
func (c *CoreDB) ViewablePostsByTag(u auth.DBUser, tagTitle string) (*Tag, []*Post, error) {
	tag, err := c.GetTagByTitle(cleanTag(tagTitle))
	if err != nil {
		if c.PostDB.IsNotFound(err) {
			return nil, []*Post{}, nil
		}
		return nil, nil, err
	}
	posts, err := c.GetPostsByTag(tag.ID)
	if err != nil {
		return nil, nil, err
	}
	posts, err = c.filter(posts, u, ActionView)
	return tag, posts, err
}

// ViewablePost returns the post with the given slug if the user can view it.
func (c *CoreDB) ViewablePost(u auth.DBUser, slug string) (*Post, error) {
	post, err := c.GetPostBySlug(slug)
	if err != nil {
		return nil, err
	}
	if err := c.RequirePermission(post, u, ActionView); err != nil {
		return nil, err
	}
	return post, nil
}

// EditablePost returns the post with the given id slug if the user can edit it.
func (c *CoreDB) EditablePost(u auth.DBUser, idSlug string) (*Post, error) {
	id, err := SlugToUUID(idSlug)
	if err != nil {
		return nil, err
	}
	post, err := c.GetPost(id)
	if err != nil {
		return nil, err
	}
	if err := c.RequirePermission(post, u, ActionEdit); err != nil {
		return nil, err
	}
	return post, nil
}

// filter returns the posts on which the user may perform the action.
// TODO replace with an SQL filter once the ACL is expressible in SQL
func (c *CoreDB) filter(posts []*Post, u auth.DBUser, action string) ([]*Post, error) {
	principals, err := c.Auth.Principals(u)
	if err != nil {
		return nil, err
	}
	var result = make([]*Post, 0, len(posts))
	for _, post := range posts {
		acl, err := c.Workflow.ResolveACL(post)
		if err != nil {
			// one broken post should not hide all others
			c.Log.Warn("skipping post", zap.String("id", post.ID.String()), zap.Error(err))
			continue
		}
		if auth.Permits(acl, principals, action) {
			result = append(result, post)
		}
	}
	return result, nil
}
