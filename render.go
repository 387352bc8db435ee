package main

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const (
	EngineBlogger  = "blogger"
	EngineGoldmark = "goldmark"
)

// preview is the full CommonMark renderer used for local previews
var preview = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithXHTML(),
		html.WithUnsafe(),
	),
)

// RenderMarkdown converts markdown with the named engine. The blogger engine
// produces exactly what gets published.
func RenderMarkdown(markdown, engine string) (string, error) {
	switch engine {
	case "", EngineBlogger:
		return ConvertMarkdown(markdown), nil
	case EngineGoldmark:
		var buf bytes.Buffer
		if err := preview.Convert([]byte(markdown), &buf); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("unknown render engine: %s", engine)
	}
}
