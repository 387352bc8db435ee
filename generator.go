package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"
	"text/template"
	"unicode/utf8"

	slogctx "github.com/veqryn/slog-context"
)

var listMarkerPattern = regexp.MustCompile(`^\s*[\*\-\d\.]+\s*`)

const (
	contentFailedPrefix = "Content generation failed for '"
	contentErrorPrefix  = "An error occurred while generating content for '"
)

// ContentGenerator produces post titles and bodies from the text models
type ContentGenerator struct {
	titleModel    TextModel
	contentModel  TextModel
	titlePrompt   *template.Template
	contentPrompt *template.Template
	titleLength   LengthRange
	rng           *rand.Rand
}

// NewContentGenerator creates a generator using the prompts and title window from cfg
func NewContentGenerator(cfg *Config, titleModel, contentModel TextModel, rng *rand.Rand) *ContentGenerator {
	return &ContentGenerator{
		titleModel:    titleModel,
		contentModel:  contentModel,
		titlePrompt:   cfg.TitlePrompt,
		contentPrompt: cfg.ContentPrompt,
		titleLength:   cfg.Settings.Generator.TitleLength,
		rng:           rng,
	}
}

// GenerateTitle asks the title model for a title. It never fails: request
// errors and out-of-range titles are replaced by fallback titles.
func (g *ContentGenerator) GenerateTitle(ctx context.Context, category string) string {
	logger := slogctx.FromCtx(ctx)
	logger.InfoContext(ctx, "→ Generating title", slog.String("Category", category))

	prompt, err := renderPrompt(g.titlePrompt, TitlePromptData{
		Category:  category,
		MinLength: g.titleLength.Min,
		MaxLength: g.titleLength.Max,
	})
	if err != nil {
		logger.ErrorContext(ctx, "rendering title prompt failed", slog.Any("Error", err))
		return requestFailedTitle(category)
	}

	raw, err := g.titleModel.Generate(ctx, prompt)
	if err != nil {
		logger.ErrorContext(ctx, "title generation failed, using fallback", slog.Any("Error", err))
		return requestFailedTitle(category)
	}
	logger.DebugContext(ctx, "raw title response", slog.String("Response", raw))

	title := cleanTitle(raw)
	if title == "" {
		logger.WarnContext(ctx, "title response was empty, using fallback")
		return requestFailedTitle(category)
	}

	length := utf8.RuneCountInString(title)
	if length < g.titleLength.Min || length > g.titleLength.Max {
		fallback := g.fallbackTitle(category)
		logger.WarnContext(ctx, "generated title outside desired range, using fallback",
			slog.String("Title", title),
			slog.Int("Length", length),
			slog.String("Fallback", fallback),
		)
		return fallback
	}

	logger.InfoContext(ctx, "✓ Title generated", slog.String("Title", title), slog.Int("Length", length))
	return title
}

// GenerateContent streams the post body. Failures are reported through
// sentinel strings recognised by IsFailedContent.
func (g *ContentGenerator) GenerateContent(ctx context.Context, title, category string) string {
	logger := slogctx.FromCtx(ctx)
	logger.InfoContext(ctx, "→ Generating content", slog.String("Title", title))

	prompt, err := renderPrompt(g.contentPrompt, ContentPromptData{Title: title, Category: category})
	if err != nil {
		return contentErrorSentinel(title, err)
	}

	var content strings.Builder
	chunks := 0
	for chunk, err := range g.contentModel.Stream(ctx, prompt) {
		if err != nil {
			logger.ErrorContext(ctx, "content generation failed", slog.Any("Error", err))
			return contentErrorSentinel(title, err)
		}
		if chunk == "" {
			continue
		}
		content.WriteString(chunk)
		chunks++
	}

	cleaned := strings.TrimSpace(content.String())
	if cleaned == "" {
		logger.WarnContext(ctx, "content generation resulted in empty response")
		return contentFailedSentinel(title)
	}

	logger.InfoContext(ctx, "✓ Content generated", slog.Int("Chunks", chunks), slog.Int("Length", len(cleaned)))
	return cleaned
}

// IsFailedContent reports whether content is one of the generation failure sentinels
func IsFailedContent(content string) bool {
	return strings.TrimSpace(content) == "" ||
		strings.HasPrefix(content, contentFailedPrefix) ||
		strings.HasPrefix(content, contentErrorPrefix)
}

func (g *ContentGenerator) fallbackTitle(category string) string {
	options := []string{
		fmt.Sprintf("%s: Key Insights", category),
		fmt.Sprintf("Exploring %s Today", category),
		fmt.Sprintf("Your Guide to %s", category),
	}
	return options[g.rng.IntN(len(options))]
}

func requestFailedTitle(category string) string {
	return fmt.Sprintf("Exploring %s", category)
}

func contentFailedSentinel(title string) string {
	return fmt.Sprintf("%s%s'. Please try again.", contentFailedPrefix, title)
}

func contentErrorSentinel(title string, err error) string {
	return fmt.Sprintf("%s%s'. Details: %v", contentErrorPrefix, title, err)
}

// cleanTitle strips quoting and emphasis, keeps the first line and drops a leading list marker
func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	for _, cutset := range []string{`"`, `'`, `*`, "`"} {
		title = strings.Trim(title, cutset)
	}
	title = strings.TrimSpace(title)

	if i := strings.IndexAny(title, "\r\n"); i >= 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(title)

	return listMarkerPattern.ReplaceAllString(title, "")
}

func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
