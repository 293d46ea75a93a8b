package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBytes(t *testing.T) {
	cfg, err := LoadBytes([]byte(`
[blog]
title = My Blog
rss-email = mail@example.com
disqus-id = myblog
per-page = 5

[workflow]
lenient = true
`))
	require.NoError(t, err)
	assert.Equal(t, "My Blog", cfg.Title)
	assert.Equal(t, "mail@example.com", cfg.RSSFeedEmail)
	assert.Equal(t, "myblog", cfg.DisqusID)
	assert.Equal(t, 5, cfg.PerPage)
	assert.Equal(t, "en-US", cfg.Language)
	assert.True(t, cfg.Lenient)
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadBytes([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.Lenient)
}

func TestPerPage(t *testing.T) {
	_, err := LoadBytes([]byte("[blog]\nper-page = 0\n"))
	assert.ErrorIs(t, err, ErrPerPage)
}

func TestLoadFile(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "blog.ini")
	require.NoError(t, os.WriteFile(path, []byte("[blog]\nlanguage = de\n"), 0600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "de", cfg.Language)

	_, err = Load(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}
