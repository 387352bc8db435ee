package main

import (
	"regexp"
	"time"
)

// Post is the record submitted to the blogging platform. It is built once and never mutated.
type Post struct {
	Title    string
	Content  string
	Labels   []string
	Category string
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// NewPost builds a post whose single label is the category with whitespace removed
func NewPost(title, html, category string) Post {
	return Post{
		Title:    title,
		Content:  html,
		Labels:   []string{whitespacePattern.ReplaceAllString(category, "")},
		Category: category,
	}
}

// PublishResult is what the platform reports back for an inserted post
type PublishResult struct {
	PostID      string
	URL         string
	Content     string
	PublishedAt time.Time
}

// RunStatus represents the outcome of a run
type RunStatus string

const (
	StatusSuccess RunStatus = "success"
	StatusSkipped RunStatus = "skipped"
	StatusError   RunStatus = "error"
)

// RunResult tracks the outcome of one generate-and-publish cycle
type RunResult struct {
	Status      RunStatus
	Category    string
	Title       string
	URL         string
	ArchiveFile string
	HTML        string
	Duration    time.Duration
	Error       error
}
