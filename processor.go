package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime/debug"
	"time"

	slogctx "github.com/veqryn/slog-context"
)

// Runner drives one generate-and-publish cycle
type Runner struct {
	config      *Config
	credentials CredentialProvider
	generator   *ContentGenerator
	publishers  PublisherFactory
	archiver    Archiver
	rng         *rand.Rand
	dryRun      bool
}

// NewRunner creates a runner. archiver may be nil to disable archiving.
func NewRunner(cfg *Config, credentials CredentialProvider, generator *ContentGenerator, publishers PublisherFactory, archiver Archiver, rng *rand.Rand) *Runner {
	return &Runner{
		config:      cfg,
		credentials: credentials,
		generator:   generator,
		publishers:  publishers,
		archiver:    archiver,
		rng:         rng,
	}
}

// SetDryRun skips credential acquisition and publishing; the rendered HTML is returned in the result
func (r *Runner) SetDryRun(dryRun bool) {
	r.dryRun = dryRun
}

// Run performs exactly one cycle. Failures are reported in the result, and a
// panic inside the cycle is recovered so the duration is always reported.
func (r *Runner) Run(ctx context.Context) (result RunResult) {
	logger := slogctx.FromCtx(ctx)
	start := time.Now()
	logger.InfoContext(ctx, "=== Starting blog post generator ===", slog.Bool("DryRun", r.dryRun))

	defer func() {
		if p := recover(); p != nil {
			logger.ErrorContext(ctx, "unexpected error during run",
				slog.Any("Panic", p),
				slog.String("Stack", string(debug.Stack())),
			)
			result.Status = StatusError
			result.Error = fmt.Errorf("unexpected error: %v", p)
		}

		result.Duration = time.Since(start)
		logger.InfoContext(ctx, fmt.Sprintf("=== Finished in %.2f seconds ===", result.Duration.Seconds()),
			slog.String("Status", string(result.Status)),
		)
	}()

	r.run(ctx, &result)
	return result
}

func (r *Runner) run(ctx context.Context, result *RunResult) {
	logger := slogctx.FromCtx(ctx)

	var cred *Credential
	if !r.dryRun {
		var err error
		cred, err = r.credentials.Acquire(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "✗ Exiting due to authentication failure", slog.Any("Error", err))
			result.Status = StatusError
			result.Error = err
			return
		}
	}

	category := r.pickCategory()
	result.Category = category
	ctx = slogctx.With(ctx, slog.String("Category", category))
	logger = slogctx.FromCtx(ctx)
	logger.InfoContext(ctx, "Selected category")

	title := r.generator.GenerateTitle(ctx, category)
	result.Title = title

	content := r.generator.GenerateContent(ctx, title, category)
	if IsFailedContent(content) {
		logger.WarnContext(ctx, "✗ Content generation failed, skipping post", slog.String("Content", content))
		result.Status = StatusSkipped
		result.Error = newRunError(GenerationError, "generating content", errors.New(content))
		return
	}

	html := ConvertMarkdown(content)
	result.HTML = html
	logger.InfoContext(ctx, "✓ HTML conversion done", slog.Int("Length", len(html)))

	if r.dryRun {
		result.Status = StatusSuccess
		return
	}

	post := NewPost(title, html, category)

	publisher, err := r.publishers(ctx, cred)
	if err != nil {
		logger.ErrorContext(ctx, "✗ Failed to publish blog post", slog.Any("Error", err))
		result.Status = StatusError
		result.Error = newRunError(PublishError, "creating publisher", err)
		return
	}

	published, err := publisher.Publish(ctx, post)
	if err != nil {
		logger.ErrorContext(ctx, "✗ Failed to publish blog post", slog.Any("Error", err))
		result.Status = StatusError
		result.Error = err
		return
	}

	result.Status = StatusSuccess
	result.URL = published.URL
	logger.InfoContext(ctx, "✓ Blog post published successfully", slog.String("URL", published.URL))

	if r.archiver == nil {
		return
	}
	filename, err := r.archiver.Archive(ctx, post, published)
	if err != nil {
		logger.WarnContext(ctx, "archiving post failed", slog.Any("Error", err))
		return
	}
	result.ArchiveFile = filename
}

// pickCategory selects a category uniformly at random
func (r *Runner) pickCategory() string {
	categories := r.config.Categories()
	return categories[r.rng.IntN(len(categories))]
}
