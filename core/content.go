package core

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ContentOptions configures CreateContent.
type ContentOptions struct {
	Posts    int
	Tags     int
	TagsMin  int
	TagsMax  int
	UserName string // author of the posts, must exist
	Rand     *rand.Rand
}

var loremWords = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod tempor
incididunt ut labore et dolore magna aliqua enim ad minim veniam quis nostrud exercitation ullamco laboris
nisi aliquip ex ea commodo consequat duis aute irure in reprehenderit voluptate velit esse cillum fugiat nulla
pariatur excepteur sint occaecat cupidatat non proident sunt culpa qui officia deserunt mollit anim id est laborum`)

func lorem(r *rand.Rand, words int) string {
	var ws = make([]string, words)
	for i := range ws {
		ws[i] = loremWords[r.Intn(len(loremWords))]
	}
	var s = strings.Join(ws, " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

// CreateContent creates dummy tags and posts. Each post gets a random state, random dates within the last year and between TagsMin and TagsMax random tags.
func (c *CoreDB) CreateContent(opts ContentOptions) ([]*Post, error) {

	if opts.TagsMin < 0 || opts.TagsMax < opts.TagsMin {
		return nil, fmt.Errorf("invalid tag range %d..%d", opts.TagsMin, opts.TagsMax)
	}
	if opts.TagsMax > opts.Tags {
		return nil, fmt.Errorf("can't assign %d tags per post from %d tags", opts.TagsMax, opts.Tags)
	}

	var r = opts.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	author, err := c.Auth.GetUserByName(opts.UserName)
	if err != nil {
		return nil, fmt.Errorf("error getting author %q: %w", opts.UserName, err)
	}

	var tagTitles = make([]string, opts.Tags)
	for i := range tagTitles {
		tagTitles[i] = fmt.Sprintf("%s %d", lorem(r, 1), i+1)
	}

	var now = c.Now()
	var posts = make([]*Post, 0, opts.Posts)

	for i := 0; i < opts.Posts; i++ {

		var tags []string
		if opts.Tags > 0 {
			var n = opts.TagsMin + r.Intn(opts.TagsMax-opts.TagsMin+1)
			for _, j := range r.Perm(opts.Tags)[:n] {
				tags = append(tags, tagTitles[j])
			}
		}

		var paragraphs = make([]string, 1+r.Intn(4))
		for p := range paragraphs {
			paragraphs[p] = lorem(r, 20+r.Intn(60)) + "."
		}

		post, err := c.AddPost(author, lorem(r, 3+r.Intn(5)), lorem(r, 10+r.Intn(20))+".", strings.Join(paragraphs, "\n\n"), tags)
		if err != nil {
			return posts, err
		}

		post.CreatedAt = now.Add(-time.Duration(r.Int63n(int64(365 * 24 * time.Hour)))).Truncate(time.Second)
		if err := c.UpdateCreated(post); err != nil {
			return posts, err
		}

		if r.Intn(2) == 0 {
			if _, err := c.Publish(post); err != nil {
				return posts, err
			}
			// publication date between creation and now
			post.PublishedAt = post.CreatedAt.Add(time.Duration(r.Int63n(int64(now.Sub(post.CreatedAt)) + 1))).Truncate(time.Second)
			if err := c.UpdateState(post); err != nil {
				return posts, err
			}
		}

		posts = append(posts, post)
	}

	c.Log.Info("dummy content created", zap.Int("posts", len(posts)), zap.Int("tags", opts.Tags))
	return posts, nil
}
