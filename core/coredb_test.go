package core_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/blog/auth"
	"github.com/wansing/blog/core"
	"github.com/wansing/blog/sqldb/sqlitetest"
	"github.com/wansing/blog/workflow"
)

type fixture struct {
	db    *core.CoreDB
	admin auth.DBUser
	alice auth.DBUser
	bob   auth.DBUser
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	var f = &fixture{
		db:    sqlitetest.New(t, nil),
		clock: time.Date(2020, 10, 1, 12, 0, 0, 0, time.UTC),
	}
	f.db.SetClock(func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	})
	f.admin = sqlitetest.User(t, f.db, "admin", "secret", auth.AdminGroup)
	f.alice = sqlitetest.User(t, f.db, "alice", "secret")
	f.bob = sqlitetest.User(t, f.db, "bob", "secret")
	return f
}

func slugs(posts []*core.Post) []string {
	var result = []string{}
	for _, p := range posts {
		result = append(result, p.Slug)
	}
	return result
}

func TestAddPost(t *testing.T) {
	f := newFixture(t)

	post, err := f.db.AddPost(f.alice, " Hello World ", "Excerpt", "Body", []string{"go", "misc"})
	require.NoError(t, err)
	assert.Equal(t, "Hello World", post.Title)
	assert.Equal(t, "hello-world", post.Slug)
	assert.Equal(t, core.StatePrivate, post.State)
	assert.Equal(t, f.alice.ID(), post.AuthorID)
	assert.Equal(t, "alice", post.AuthorName)
	assert.False(t, post.IsPublished())

	second, err := f.db.AddPost(f.alice, "Hello World", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello-world-1", second.Slug)

	stored, err := f.db.GetPost(post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "misc"}, stored.TagTitles())

	_, err = f.db.AddPost(f.alice, "  ", "", "", nil)
	assert.ErrorIs(t, err, core.ErrEmptyTitle)

	_, err = f.db.AddPost(f.alice, "!!!", "", "", nil)
	assert.ErrorIs(t, err, core.ErrSlug)
}

func TestAddPostDuplicateTags(t *testing.T) {
	f := newFixture(t)

	post, err := f.db.AddPost(f.alice, "Hello", "", "", []string{"go", "go", " go", ""})
	require.NoError(t, err)
	assert.Len(t, post.Tags, 1)

	stored, err := f.db.GetPost(post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, stored.TagTitles())

	require.NoError(t, f.db.EditPost(post, "Hello", "", "", []string{"misc", "go", "misc "}))
	stored, err = f.db.GetPost(post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "misc"}, stored.TagTitles())

	tags, err := f.db.GetAllTags()
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestEditPost(t *testing.T) {
	f := newFixture(t)

	post, err := f.db.AddPost(f.alice, "Hello", "", "", []string{"go"})
	require.NoError(t, err)

	require.NoError(t, f.db.EditPost(post, "Changed", "New excerpt", "New body", []string{"misc"}))
	assert.Equal(t, "hello", post.Slug)
	assert.False(t, post.UpdatedAt.IsZero())

	stored, err := f.db.GetPost(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Changed", stored.Title)
	assert.Equal(t, "New body", stored.Body)
	assert.Equal(t, []string{"misc"}, stored.TagTitles())
	assert.Equal(t, post.UpdatedAt, stored.UpdatedAt)
}

func TestPublishRetract(t *testing.T) {
	f := newFixture(t)

	post, err := f.db.AddPost(f.alice, "Hello", "", "", nil)
	require.NoError(t, err)

	changed, err := f.db.Publish(post)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, core.StatePublic, post.State)
	var publishedAt = post.PublishedAt
	assert.False(t, publishedAt.IsZero())

	// idempotent
	changed, err = f.db.Publish(post)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, publishedAt, post.PublishedAt)

	stored, err := f.db.GetPost(post.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatePublic, stored.State)
	assert.Equal(t, publishedAt, stored.PublishedAt)

	changed, err = f.db.Retract(post)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.db.Retract(post)
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err = f.db.GetPost(post.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatePrivate, stored.State)
	assert.Equal(t, publishedAt, stored.PublishedAt)
}

func TestPublishUnknownState(t *testing.T) {
	f := newFixture(t)

	post, err := f.db.AddPost(f.alice, "Hello", "", "", nil)
	require.NoError(t, err)
	post.State = "deleted"

	_, err = f.db.Publish(post)
	assert.ErrorIs(t, err, workflow.ErrUnknownState)
	assert.Equal(t, "deleted", post.State)
}

func TestViewablePosts(t *testing.T) {
	f := newFixture(t)

	draft, err := f.db.AddPost(f.alice, "Draft", "", "", nil)
	require.NoError(t, err)
	first, err := f.db.AddPost(f.alice, "First", "", "", nil)
	require.NoError(t, err)
	second, err := f.db.AddPost(f.bob, "Second", "", "", nil)
	require.NoError(t, err)
	_, err = f.db.Publish(first)
	require.NoError(t, err)
	_, err = f.db.Publish(second)
	require.NoError(t, err)

	posts, err := f.db.ViewablePosts(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, slugs(posts))

	posts, err = f.db.ViewablePosts(f.alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"draft", "second", "first"}, slugs(posts))

	posts, err = f.db.ViewablePosts(f.bob)
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, slugs(posts))

	posts, err = f.db.ViewablePosts(f.admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"draft", "second", "first"}, slugs(posts))

	posts, err = f.db.EditablePosts(f.bob)
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, slugs(posts))

	_, err = f.db.ViewablePost(nil, draft.Slug)
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	post, err := f.db.ViewablePost(nil, first.Slug)
	require.NoError(t, err)
	assert.Equal(t, first.ID, post.ID)

	_, err = f.db.EditablePost(f.bob, first.IDSlug())
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	post, err = f.db.EditablePost(f.admin, first.IDSlug())
	require.NoError(t, err)
	assert.Equal(t, first.ID, post.ID)
}

func TestViewablePostsByTag(t *testing.T) {
	f := newFixture(t)

	draft, err := f.db.AddPost(f.alice, "Draft", "", "", []string{"go"})
	require.NoError(t, err)
	public, err := f.db.AddPost(f.alice, "Public", "", "", []string{"go"})
	require.NoError(t, err)
	_, err = f.db.Publish(public)
	require.NoError(t, err)

	tag, posts, err := f.db.ViewablePostsByTag(nil, " go ")
	require.NoError(t, err)
	assert.Equal(t, "go", tag.Title)
	assert.Equal(t, []string{"public"}, slugs(posts))

	_, posts, err = f.db.ViewablePostsByTag(f.alice, "go")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{draft.Slug, public.Slug}, slugs(posts))

	tag, posts, err = f.db.ViewablePostsByTag(nil, "unknown")
	require.NoError(t, err)
	assert.Nil(t, tag)
	assert.Empty(t, posts)
}

func TestPermits(t *testing.T) {
	f := newFixture(t)

	post, err := f.db.AddPost(f.alice, "Hello", "", "", nil)
	require.NoError(t, err)

	for _, tc := range []struct {
		user   auth.DBUser
		action string
		want   bool
	}{
		{nil, core.ActionView, false},
		{f.alice, core.ActionView, true},
		{f.alice, core.ActionEdit, true},
		{f.bob, core.ActionView, false},
		{f.admin, core.ActionEdit, true},
	} {
		ok, err := f.db.Permits(post, tc.user, tc.action)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok)
	}

	ok, err := f.db.Permits(f.db.Blog(), nil, core.ActionView)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateContent(t *testing.T) {
	f := newFixture(t)

	posts, err := f.db.CreateContent(core.ContentOptions{
		Posts:    10,
		Tags:     4,
		TagsMin:  1,
		TagsMax:  3,
		UserName: "alice",
		Rand:     rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	assert.Len(t, posts, 10)

	tags, err := f.db.GetAllTags()
	require.NoError(t, err)
	assert.LessOrEqual(t, len(tags), 4)

	for _, post := range posts {
		assert.Equal(t, f.alice.ID(), post.AuthorID)
		assert.GreaterOrEqual(t, len(post.Tags), 1)
		assert.LessOrEqual(t, len(post.Tags), 3)
		if post.State == core.StatePublic {
			assert.False(t, post.PublishedAt.Before(post.CreatedAt))
		}
	}

	_, err = f.db.CreateContent(core.ContentOptions{Posts: 1, Tags: 1, TagsMin: 0, TagsMax: 2, UserName: "alice"})
	assert.Error(t, err)

	_, err = f.db.CreateContent(core.ContentOptions{Posts: 1, UserName: "nobody"})
	assert.Error(t, err)
}
