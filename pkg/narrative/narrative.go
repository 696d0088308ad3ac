// Package narrative renders the Markdown narratives carried by badge criteria,
// evidence and assertions.
package narrative

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Rendered is a narrative in its display forms.
type Rendered struct {
	HTML  string   `json:"html"`
	Text  string   `json:"text"`
	Links []string `json:"links,omitempty"`
}

// Renderer converts Markdown narratives. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a renderer with GitHub flavoured Markdown enabled.
// Raw HTML in narratives is not passed through.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// HTML renders a narrative to HTML.
func (r *Renderer) HTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("narrative: failed to render: %w", err)
	}
	return buf.String(), nil
}

// Render parses a narrative once and returns its HTML, its plain text and
// the link destinations it mentions.
func (r *Renderer) Render(src string) (*Rendered, error) {
	source := []byte(src)
	doc := r.md.Parser().Parse(text.NewReader(source))

	var html bytes.Buffer
	if err := r.md.Renderer().Render(&html, source, doc); err != nil {
		return nil, fmt.Errorf("narrative: failed to render: %w", err)
	}

	out := &Rendered{HTML: html.String()}
	var blocks []string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			if t := extractText(node, source); t != "" {
				blocks = append(blocks, t)
			}
		case *ast.Link:
			out.Links = append(out.Links, string(node.Destination))
		case *ast.AutoLink:
			out.Links = append(out.Links, string(node.URL(source)))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("narrative: failed to walk AST: %w", err)
	}
	out.Text = strings.Join(blocks, "\n\n")
	return out, nil
}

// PlainText strips Markdown syntax from a narrative, keeping one blank line
// between blocks.
func (r *Renderer) PlainText(src string) string {
	rendered, err := r.Render(src)
	if err != nil {
		return src
	}
	return rendered.Text
}

// extractText collects the text under a node. Code spans keep their
// backticks.
func extractText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch child := c.(type) {
		case *ast.Text:
			buf.Write(child.Segment.Value(source))
			if child.HardLineBreak() || child.SoftLineBreak() {
				buf.WriteString(" ")
			}
		case *ast.String:
			buf.Write(child.Value)
		case *ast.CodeSpan:
			buf.WriteString("`")
			for seg := child.FirstChild(); seg != nil; seg = seg.NextSibling() {
				if t, ok := seg.(*ast.Text); ok {
					buf.Write(t.Segment.Value(source))
				}
			}
			buf.WriteString("`")
		case *ast.AutoLink:
			buf.Write(child.Label(source))
		default:
			buf.WriteString(extractText(c, source))
		}
	}
	return strings.TrimSpace(buf.String())
}
