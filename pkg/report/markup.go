package report

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Run is a stretch of text drawn in one style.
type Run struct {
	Text string
	Bold bool
}

// Paragraph is one entry of a definitions cell.
type Paragraph []Run

var markdown = goldmark.New()

// ParseMarkup parses a row blob into paragraphs of styled runs. Strong
// emphasis becomes bold; every other inline is drawn as regular text.
func ParseMarkup(blob string) []Paragraph {
	src := []byte(blob)
	doc := markdown.Parser().Parse(text.NewReader(src))

	var out []Paragraph
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		var para Paragraph
		_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			var value string
			switch t := node.(type) {
			case *ast.Text:
				value = string(util.UnescapePunctuations(t.Segment.Value(src)))
				if t.SoftLineBreak() || t.HardLineBreak() {
					value += " "
				}
			case *ast.String:
				value = string(t.Value)
			default:
				return ast.WalkContinue, nil
			}
			para = appendRun(para, value, insideStrong(node))
			return ast.WalkContinue, nil
		})
		if len(para) > 0 {
			out = append(out, para)
		}
	}
	return out
}

func insideStrong(n ast.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if em, ok := p.(*ast.Emphasis); ok && em.Level >= 2 {
			return true
		}
	}
	return false
}

func appendRun(p Paragraph, s string, bold bool) Paragraph {
	if s == "" {
		return p
	}
	if n := len(p); n > 0 && p[n-1].Bold == bold {
		p[n-1].Text += s
		return p
	}
	return append(p, Run{Text: s, Bold: bold})
}
