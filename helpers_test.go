package main

import (
	"bytes"
	"context"
	"iter"
	"log/slog"
	"math/rand/v2"
	"testing"
	"text/template"

	slogctx "github.com/veqryn/slog-context"
)

// newTestConfig builds a config from the embedded defaults without touching the filesystem
func newTestConfig(t *testing.T, categories ...string) *Config {
	t.Helper()

	settings, err := parseSettings([]byte(defaultSettings))
	if err != nil {
		t.Fatalf("parsing default settings: %v", err)
	}
	settings.BlogID = "1815753285740323273"
	settings.OAuth.ClientID = "client-id"
	settings.OAuth.ClientSecret = "client-secret"
	if len(categories) > 0 {
		settings.Categories = categories
	}

	titlePrompt, err := parsePromptTemplate("title", defaultTitlePrompt, "{{.Category}}")
	if err != nil {
		t.Fatalf("parsing title prompt: %v", err)
	}
	contentPrompt, err := parsePromptTemplate("content", defaultContentPrompt, "{{.Title}}", "{{.Category}}")
	if err != nil {
		t.Fatalf("parsing content prompt: %v", err)
	}

	return &Config{
		Settings:        *settings,
		APIKey:          "test-api-key",
		TitlePrompt:     titlePrompt,
		ContentPrompt:   contentPrompt,
		ArchiveTemplate: template.Must(template.New("archive").Parse(defaultArchiveTemplate)),
	}
}

func newTestRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// testContext returns a context whose logger writes into the returned buffer
func testContext() (context.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return slogctx.NewCtx(context.Background(), logger), &buf
}

func chunkStream(chunks ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func failingStream(err error, before ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, c := range before {
			if !yield(c, nil) {
				return
			}
		}
		yield("", err)
	}
}
