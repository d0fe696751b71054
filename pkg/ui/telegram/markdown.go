package telegram

import (
	"fmt"
	"strings"

	// Packages
	gte "github.com/igor-pavlenko/goldmark-telegram/extension"
	gteast "github.com/igor-pavlenko/goldmark-telegram/extension/ast"
	goldmark "github.com/yuin/goldmark"
	ast "github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	text "github.com/yuin/goldmark/text"
	tele "gopkg.in/telebot.v4"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// entityBuilder accumulates plain text and Telegram entities while
// walking a goldmark AST. Offsets are kept in UTF-16 code units, which
// is what Telegram expects.
type entityBuilder struct {
	text     strings.Builder
	entities tele.Entities
	utf16Off int
	listItem int // 1-based ordered list counter, 0 for unordered
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// markdownToEntities converts markdown into plain text plus Telegram
// message entities by walking the goldmark AST. Block elements
// (paragraphs, lists, headings, code blocks, blockquotes) become plain
// text with entities spanning the formatted ranges.
func markdownToEntities(markdown string) (string, tele.Entities) {
	source := []byte(markdown)
	parser := goldmark.New(goldmark.WithExtensions(gte.GTE))
	doc := parser.Parser().Parse(text.NewReader(source))

	b := &entityBuilder{}
	b.walkNode(doc, source)

	result := strings.TrimRight(b.text.String(), "\n")
	if len(b.entities) == 0 {
		return result, nil
	}
	return result, b.entities
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// writeString appends s and advances the UTF-16 offset.
func (b *entityBuilder) writeString(s string) {
	b.text.WriteString(s)
	b.utf16Off += utf16Len(s)
}

// span runs body and records an entity covering the text it produced,
// when non-empty.
func (b *entityBuilder) span(entity tele.MessageEntity, body func()) {
	start := b.utf16Off
	body()
	if length := b.utf16Off - start; length > 0 {
		entity.Offset = start
		entity.Length = length
		b.entities = append(b.entities, entity)
	}
}

// writeCode writes the raw lines of a code block, trimming the final
// newline for cleaner display.
func (b *entityBuilder) writeCode(lines *text.Segments, source []byte) {
	for i := 0; i < lines.Len(); i++ {
		b.writeString(string(lines.At(i).Value(source)))
	}
	if s := b.text.String(); len(s) > 0 && s[len(s)-1] == '\n' {
		b.text.Reset()
		b.text.WriteString(s[:len(s)-1])
		b.utf16Off--
	}
}

// ensureNewline writes a newline unless the buffer already ends with one.
func (b *entityBuilder) ensureNewline() {
	if s := b.text.String(); len(s) > 0 && s[len(s)-1] != '\n' {
		b.writeString("\n")
	}
}

// blockSeparator inserts a blank line before a new block when there is
// already content.
func (b *entityBuilder) blockSeparator() {
	s := b.text.String()
	n := len(s)
	switch {
	case n == 0:
	case n >= 2 && s[n-2] == '\n' && s[n-1] == '\n':
	case s[n-1] == '\n':
		b.writeString("\n")
	default:
		b.writeString("\n\n")
	}
}

func (b *entityBuilder) walkNode(node ast.Node, source []byte) {
	switch n := node.(type) {
	case *ast.Document:
		b.walkChildren(n, source)

	case *ast.Paragraph:
		b.blockSeparator()
		b.walkChildren(n, source)

	case *ast.TextBlock:
		// Tight list item content, no blank line before
		b.walkChildren(n, source)

	case *ast.Heading:
		b.blockSeparator()
		b.span(tele.MessageEntity{Type: tele.EntityBold}, func() {
			b.walkChildren(n, source)
		})

	case *ast.List:
		b.ensureNewline()
		saved := b.listItem
		if n.IsOrdered() {
			b.listItem = max(n.Start, 1)
		} else {
			b.listItem = 0
		}
		b.walkChildren(n, source)
		b.listItem = saved

	case *ast.ListItem:
		b.ensureNewline()
		if b.listItem > 0 {
			b.writeString(fmt.Sprintf("%d. ", b.listItem))
			b.listItem++
		} else {
			b.writeString("• ")
		}
		b.walkChildren(n, source)

	case *ast.Blockquote:
		b.blockSeparator()
		b.span(tele.MessageEntity{Type: tele.EntityBlockquote}, func() {
			b.walkChildren(n, source)
		})

	case *ast.FencedCodeBlock:
		b.blockSeparator()
		b.span(tele.MessageEntity{Type: tele.EntityCodeBlock, Language: string(n.Language(source))}, func() {
			b.writeCode(n.Lines(), source)
		})

	case *ast.CodeBlock:
		b.blockSeparator()
		b.span(tele.MessageEntity{Type: tele.EntityCodeBlock}, func() {
			b.writeCode(n.Lines(), source)
		})

	case *ast.ThematicBreak:
		b.blockSeparator()
		b.writeString("———")

	case *ast.Emphasis:
		entityType := tele.EntityItalic
		if n.Level == 2 {
			entityType = tele.EntityBold
		}
		b.span(tele.MessageEntity{Type: entityType}, func() {
			b.walkChildren(n, source)
		})

	case *ast.CodeSpan:
		b.span(tele.MessageEntity{Type: tele.EntityCode}, func() {
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					b.writeString(string(t.Segment.Value(source)))
				}
			}
		})

	case *ast.Link:
		b.span(tele.MessageEntity{Type: tele.EntityTextLink, URL: string(n.Destination)}, func() {
			b.walkChildren(n, source)
		})

	case *ast.AutoLink:
		b.writeString(string(n.URL(source)))

	case *ast.Image:
		// Alt text as plain text, linked to the image URL
		b.span(tele.MessageEntity{Type: tele.EntityTextLink, URL: string(n.Destination)}, func() {
			b.walkChildren(n, source)
		})

	case *ast.Text:
		b.writeString(string(n.Segment.Value(source)))
		if n.HardLineBreak() || n.SoftLineBreak() {
			b.writeString("\n")
		}

	case *ast.String:
		b.writeString(string(n.Value))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			b.writeString(string(n.Segments.At(i).Value(source)))
		}

	default:
		switch node.Kind() {
		case east.KindStrikethrough:
			b.span(tele.MessageEntity{Type: tele.EntityStrikethrough}, func() {
				b.walkChildren(node, source)
			})
		case gteast.KindUnderline:
			b.span(tele.MessageEntity{Type: tele.EntityUnderline}, func() {
				b.walkChildren(node, source)
			})
		default:
			// Unknown node, walk children to preserve the text
			b.walkChildren(node, source)
		}
	}
}

func (b *entityBuilder) walkChildren(node ast.Node, source []byte) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		b.walkNode(c, source)
	}
}

// utf16Len returns the length of s in UTF-16 code units.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
