package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	slogctx "github.com/veqryn/slog-context"
)

var (
	slugInvalidPattern = regexp.MustCompile(`[^a-z0-9]+`)
	slugDashPattern    = regexp.MustCompile(`-+`)
)

// ArchivedPost is the data rendered into an archive file
type ArchivedPost struct {
	Title       string
	URL         string
	PostID      string
	Category    string
	Labels      []string
	PublishedAt time.Time
	Content     string
}

// Archiver keeps a local copy of published posts
type Archiver interface {
	Archive(ctx context.Context, post Post, result *PublishResult) (string, error)
}

// FileArchiver writes each published post as a markdown file with frontmatter
type FileArchiver struct {
	directory string
	template  *template.Template
	converter *md.Converter
}

// NewFileArchiver creates an archiver rooted at directory
func NewFileArchiver(directory string, tmpl *template.Template) *FileArchiver {
	return &FileArchiver{
		directory: directory,
		template:  tmpl,
		converter: md.NewConverter("", true, nil),
	}
}

// Archive implements Archiver. The body is the HTML the platform stored, converted back to markdown.
func (a *FileArchiver) Archive(ctx context.Context, post Post, result *PublishResult) (string, error) {
	content, err := a.converter.ConvertString(result.Content)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}

	archived := &ArchivedPost{
		Title:       post.Title,
		URL:         result.URL,
		PostID:      result.PostID,
		Category:    post.Category,
		Labels:      post.Labels,
		PublishedAt: result.PublishedAt,
		Content:     content,
	}

	filename := a.filename(archived)
	if err := a.save(filename, archived); err != nil {
		return "", err
	}

	slogctx.FromCtx(ctx).InfoContext(ctx, "✓ Archived post", slog.String("Filename", filename))
	return filename, nil
}

// filename uses the publish date in YYYY/MM/slug-hash.md format
func (a *FileArchiver) filename(post *ArchivedPost) string {
	year := post.PublishedAt.Format("2006")
	month := post.PublishedAt.Format("01")
	name := fmt.Sprintf("%s-%s.md", generateSlug(post.Title), generateURLHash(post.URL))
	return filepath.Join(a.directory, year, month, name)
}

func (a *FileArchiver) save(filename string, post *ArchivedPost) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}

	var buf bytes.Buffer
	if err := a.template.Execute(&buf, post); err != nil {
		return fmt.Errorf("executing archive template: %w", err)
	}

	return os.WriteFile(filename, buf.Bytes(), 0644)
}

// generateSlug creates a URL slug from a post title
func generateSlug(title string) string {
	slug := strings.ToLower(title)
	slug = slugInvalidPattern.ReplaceAllString(slug, "-")
	slug = slugDashPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	// Limit length to avoid filesystem issues
	if len(slug) > 50 {
		slug = strings.Trim(slug[:50], "-")
	}

	if slug == "" {
		return "post"
	}
	return slug
}

// generateURLHash returns the first 8 hex characters of the sha256 of url
func generateURLHash(url string) string {
	h := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x", h)[:8]
}
