package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/contractkit/playbookd/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var blocks []string
	paragraphs := 0

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if title := string(node.Text(src)); title != "" {
				blocks = append(blocks, title)
			}
		default:
			if t := extractMarkdownText(n, src); t != "" {
				blocks = append(blocks, t)
				paragraphs++
			}
		}
	}

	return &document.Document{
		Title:          strings.TrimSuffix(strings.TrimSuffix(filename, ".md"), ".markdown"),
		Format:         "md",
		Text:           strings.Join(blocks, "\n\n"),
		ParagraphCount: paragraphs,
	}, nil
}

// extractMarkdownText gets the text content of a goldmark AST node.
func extractMarkdownText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	// Also handle inline children.
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractMarkdownText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
