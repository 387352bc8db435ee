package main

import (
	"regexp"
	"strings"
)

// BlockKind identifies how a markdown line is rendered
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading2
	BlockHeading3
	BlockListItem
)

// Block is a single classified markdown line
type Block struct {
	Kind BlockKind
	Text string
}

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// ConvertMarkdown converts generated markdown into the HTML subset accepted by Blogger
func ConvertMarkdown(content string) string {
	return RenderBlocks(ParseBlocks(content))
}

// ParseBlocks splits content on blank lines and classifies every non-empty line.
// Heading text is kept verbatim; inline bold is applied to list items and paragraphs.
func ParseBlocks(content string) []Block {
	var blocks []Block

	for _, chunk := range strings.Split(strings.TrimSpace(content), "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}

		for _, line := range strings.Split(chunk, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			blocks = append(blocks, classifyLine(line))
		}
	}

	return blocks
}

func classifyLine(line string) Block {
	switch {
	case strings.HasPrefix(line, "### "):
		return Block{Kind: BlockHeading3, Text: strings.TrimSpace(line[4:])}
	case strings.HasPrefix(line, "## "):
		return Block{Kind: BlockHeading2, Text: strings.TrimSpace(line[3:])}
	case strings.HasPrefix(line, "* "), strings.HasPrefix(line, "- "):
		return Block{Kind: BlockListItem, Text: applyBold(strings.TrimSpace(line[2:]))}
	default:
		return Block{Kind: BlockParagraph, Text: applyBold(line)}
	}
}

func applyBold(text string) string {
	return boldPattern.ReplaceAllString(text, "<b>$1</b>")
}

// RenderBlocks emits one HTML element per block. Contiguous list items share
// a single <ul>, including items separated by a blank line.
func RenderBlocks(blocks []Block) string {
	var html []string
	inList := false

	for _, b := range blocks {
		if b.Kind == BlockListItem {
			if !inList {
				html = append(html, "<ul>")
				inList = true
			}
			html = append(html, "<li>"+b.Text+"</li>")
			continue
		}

		if inList {
			html = append(html, "</ul>")
			inList = false
		}

		switch b.Kind {
		case BlockHeading3:
			html = append(html, "<h3>"+b.Text+"</h3>")
		case BlockHeading2:
			html = append(html, "<h2>"+b.Text+"</h2>")
		default:
			html = append(html, "<p>"+b.Text+"</p>")
		}
	}

	if inList {
		html = append(html, "</ul>")
	}

	return strings.Join(html, "\n")
}
