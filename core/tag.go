package core

import (
	"errors"
	"strings"

	"github.com/gofrs/uuid"
)

type TagDB interface {
	DeleteTag(t *Tag) error
	GetAllTags() ([]*Tag, error)
	GetTag(id uuid.UUID) (*Tag, error)
	GetTagByTitle(title string) (*Tag, error)
	InsertTag(t *Tag) error
	RenameTag(t *Tag, title string) error
	SetPostTags(postID uuid.UUID, tags []*Tag) error
}

type Tag struct {
	ID    uuid.UUID
	Title string
}

func (t *Tag) String() string {
	return t.Title
}

func (t *Tag) IDSlug() string {
	return UUIDToSlug(t.ID)
}

var ErrEmptyTag = errors.New("tag title can't be empty")

func cleanTag(title string) string {
	return strings.TrimSpace(title)
}

// SplitTags splits a comma-separated list of tag titles. Empty and duplicate titles are dropped.
func SplitTags(s string) []string {
	var titles = []string{}
	var seen = make(map[string]struct{})
	for _, title := range strings.Split(s, ",") {
		title = cleanTag(title)
		if title == "" {
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		titles = append(titles, title)
	}
	return titles
}

// AddTag creates a tag.
func (c *CoreDB) AddTag(title string) (*Tag, error) {
	title = cleanTag(title)
	if title == "" {
		return nil, ErrEmptyTag
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	var tag = &Tag{
		ID:    id,
		Title: title,
	}
	return tag, c.TagDB.InsertTag(tag)
}

// RenameTag shadows TagDB.RenameTag.
func (c *CoreDB) RenameTag(t *Tag, title string) error {
	title = cleanTag(title)
	if title == "" {
		return ErrEmptyTag
	}
	return c.TagDB.RenameTag(t, title)
}

// resolveTags returns the tags with the given titles, without duplicates. Tags which don't exist yet are
// returned in newTags too. They are not stored, the caller must insert them.
func (c *CoreDB) resolveTags(titles []string) (tags []*Tag, newTags []*Tag, err error) {
	tags = make([]*Tag, 0, len(titles))
	var seen = make(map[string]struct{})
	for _, title := range titles {
		title = cleanTag(title)
		if title == "" {
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}

		tag, err := c.GetTagByTitle(title)
		switch {
		case err == nil:
		case c.PostDB.IsNotFound(err):
			id, err := uuid.NewV4()
			if err != nil {
				return nil, nil, err
			}
			tag = &Tag{ID: id, Title: title}
			newTags = append(newTags, tag)
		default:
			return nil, nil, err
		}
		tags = append(tags, tag)
	}
	return tags, newTags, nil
}
