package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var renderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// CleanMarkdown strips surrounding whitespace and an outer code fence, so model
// output that wraps the whole answer in ```markdown is usable as-is.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") && len(cleaned) >= 6 {
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimPrefix(cleaned, "```md")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// ValidateMarkdown reports whether input parses into at least one block.
// Goldmark accepts any text, so this only rejects empty or whitespace-only
// documents.
func ValidateMarkdown(input string) bool {
	reader := text.NewReader([]byte(input))
	doc := renderer.Parser().Parse(reader)
	return doc != nil && doc.FirstChild() != nil
}

// RenderHTML converts GitHub-flavoured markdown to an HTML fragment.
func RenderHTML(input string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(input), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Headline returns the plain text of the first heading or, failing that, the
// first strong span of the document. It returns "" when neither exists.
func Headline(input string) string {
	source := []byte(input)
	doc := renderer.Parser().Parse(text.NewReader(source))

	var heading, strong string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading:
			if heading == "" {
				heading = plainText(n, source)
			}
			return ast.WalkStop, nil
		case ast.KindEmphasis:
			if e := n.(*ast.Emphasis); e.Level == 2 && strong == "" {
				strong = plainText(n, source)
			}
		}
		return ast.WalkContinue, nil
	})
	if heading != "" {
		return heading
	}
	return strong
}

func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := c.(*ast.Text); ok {
				b.Write(t.Segment.Value(source))
				if t.SoftLineBreak() {
					b.WriteByte(' ')
				}
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
