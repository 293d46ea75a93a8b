// Package config holds the settings of a blog, which are read from an ini file.
//
//	[blog]
//	title = My Blog
//	rss-email = mail@example.com
//	disqus-id = myblog
//	per-page = 10
//	language = de
//
//	[workflow]
//	lenient = true
package config

import (
	"errors"
	"fmt"

	"gopkg.in/ini.v1"
)

var ErrPerPage = errors.New("per-page must be positive")

type Config struct {
	Title        string `ini:"title"`
	RSSFeedEmail string `ini:"rss-email"`
	DisqusID     string `ini:"disqus-id"`
	PerPage      int    `ini:"per-page"`
	Language     string `ini:"language"` // fallback if the Accept-Language header does not match

	Lenient bool `ini:"-"` // unknown post states fall back to the default state instead of failing
}

type workflowSection struct {
	Lenient bool `ini:"lenient"`
}

func Default() *Config {
	return &Config{
		Title:    "Blog",
		PerPage:  10,
		Language: "en-US",
	}
}

// Load reads the config from an ini file. Missing keys keep their default values.
func Load(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("error loading config file: %w", err)
	}
	return parse(file)
}

// LoadBytes is like Load but reads from a byte slice.
func LoadBytes(data []byte) (*Config, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return parse(file)
}

func parse(file *ini.File) (*Config, error) {

	var cfg = Default()
	if err := file.Section("blog").MapTo(cfg); err != nil {
		return nil, fmt.Errorf("error in section [blog]: %w", err)
	}

	var wf = workflowSection{}
	if err := file.Section("workflow").MapTo(&wf); err != nil {
		return nil, fmt.Errorf("error in section [workflow]: %w", err)
	}
	cfg.Lenient = wf.Lenient

	if cfg.PerPage <= 0 {
		return nil, ErrPerPage
	}
	return cfg, nil
}
