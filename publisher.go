package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	slogctx "github.com/veqryn/slog-context"
	"google.golang.org/api/blogger/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Publisher submits a finished post to the blogging platform
type Publisher interface {
	Publish(ctx context.Context, post Post) (*PublishResult, error)
}

// PublisherFactory builds a publisher authenticated with the run credential
type PublisherFactory func(ctx context.Context, cred *Credential) (Publisher, error)

// BloggerPublisher inserts posts through the Blogger v3 API
type BloggerPublisher struct {
	blogID  string
	service *blogger.Service
}

// NewBloggerPublisher creates a publisher for blogID
func NewBloggerPublisher(ctx context.Context, blogID string, opts ...option.ClientOption) (*BloggerPublisher, error) {
	service, err := blogger.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("building Blogger service: %w", err)
	}
	return &BloggerPublisher{blogID: blogID, service: service}, nil
}

// BloggerPublisherFactory returns a factory that authenticates with the run credential
func BloggerPublisherFactory(blogID string) PublisherFactory {
	return func(ctx context.Context, cred *Credential) (Publisher, error) {
		return NewBloggerPublisher(ctx, blogID, option.WithTokenSource(cred.TokenSource()))
	}
}

// Publish implements Publisher. There is no retry.
func (p *BloggerPublisher) Publish(ctx context.Context, post Post) (*PublishResult, error) {
	logger := slogctx.FromCtx(ctx)

	if err := p.checkPost(post); err != nil {
		return nil, newRunError(PublishError, "validating post", err)
	}

	logger.InfoContext(ctx, "→ Inserting post",
		slog.String("Title", post.Title),
		slog.Any("Labels", post.Labels),
		slog.String("BlogID", p.blogID),
	)

	body := &blogger.Post{
		Kind:    "blogger#post",
		Blog:    &blogger.PostBlog{Id: p.blogID},
		Title:   post.Title,
		Content: post.Content,
		Labels:  post.Labels,
	}

	inserted, err := p.service.Posts.Insert(p.blogID, body).
		IsDraft(false).
		FetchBody(true).
		Context(ctx).
		Do()
	if err != nil {
		logPublishError(ctx, err)
		return nil, newRunError(PublishError, "inserting post", err)
	}

	result := &PublishResult{
		PostID:  inserted.Id,
		URL:     inserted.Url,
		Content: inserted.Content,
	}
	if result.Content == "" {
		result.Content = post.Content
	}
	if published, err := time.Parse(time.RFC3339, inserted.Published); err == nil {
		result.PublishedAt = published
	} else {
		result.PublishedAt = time.Now()
	}

	url := result.URL
	if url == "" {
		url = "N/A - Check Blogger Dashboard"
	}
	logger.InfoContext(ctx, "✓ Successfully posted", slog.String("Title", post.Title), slog.String("URL", url))
	return result, nil
}

func (p *BloggerPublisher) checkPost(post Post) error {
	if strings.TrimSpace(p.blogID) == "" {
		return errors.New("blog id is empty")
	}
	if len(post.Labels) != 1 {
		return fmt.Errorf("expected exactly one label, got %d", len(post.Labels))
	}
	if post.Labels[0] == "" || whitespacePattern.MatchString(post.Labels[0]) {
		return fmt.Errorf("invalid label %q", post.Labels[0])
	}
	return nil
}

// logPublishError logs the decoded API error payload when there is one, otherwise the raw error
func logPublishError(ctx context.Context, err error) {
	logger := slogctx.FromCtx(ctx)

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		logger.ErrorContext(ctx, "posting to Blogger failed", slog.Any("Error", err))
		return
	}

	var details bytes.Buffer
	if json.Indent(&details, []byte(apiErr.Body), "", "  ") == nil {
		logger.ErrorContext(ctx, "posting to Blogger failed",
			slog.Int("Code", apiErr.Code),
			slog.String("Message", apiErr.Message),
			slog.String("Details", details.String()),
		)
		return
	}

	logger.ErrorContext(ctx, "posting to Blogger failed",
		slog.Int("Code", apiErr.Code),
		slog.String("Message", apiErr.Message),
		slog.String("RawContent", apiErr.Body),
	)
}
