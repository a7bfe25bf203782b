package document

import (
	"math"
	"unicode"

	"github.com/wudi/pdfkit/coords"
	"github.com/wudi/pdfkit/ir/semantic"
)

// A TJ adjustment more negative than this (thousandths of an em) is read as
// a word gap.
const tjSpaceThreshold = -200

// Advance used for a code the font has no width for, in glyph space units.
const defaultGlyphWidth = 500

// textState is the part of the graphics state that places glyphs. It is
// saved and restored by q and Q.
type textState struct {
	ctm       coords.Matrix
	font      *semantic.Font
	size      float64
	charSpace float64
	wordSpace float64
	scale     float64
	leading   float64
	rise      float64
}

// textTracer follows the text and line matrices through a page's content
// streams and feeds every shown glyph to a wordBuilder.
type textTracer struct {
	gs    textState
	stack []textState
	tm    coords.Matrix
	tlm   coords.Matrix
	fonts map[string]*semantic.Font
	wb    wordBuilder
}

func newTextTracer(res *semantic.Resources) *textTracer {
	t := &textTracer{
		gs:  textState{ctm: coords.Identity(), scale: 1},
		tm:  coords.Identity(),
		tlm: coords.Identity(),
	}
	if res != nil {
		t.fonts = res.Fonts
	}
	return t
}

// extractWords traces the page's text operators and groups the shown
// glyphs into word boxes. Content streams of one page share text state.
func extractWords(page *semantic.Page) []Word {
	if page == nil {
		return nil
	}
	t := newTextTracer(page.Resources)
	for _, cs := range page.Contents {
		for _, op := range cs.Operations {
			t.apply(op)
		}
	}
	t.wb.flush()
	return t.wb.words
}

func (t *textTracer) apply(op semantic.Operation) {
	args := op.Operands
	switch op.Operator {
	case "q":
		t.stack = append(t.stack, t.gs)
	case "Q":
		if n := len(t.stack); n > 0 {
			t.gs = t.stack[n-1]
			t.stack = t.stack[:n-1]
		}
	case "cm":
		if len(args) == 6 {
			t.gs.ctm = matrix(args).Multiply(t.gs.ctm)
		}
	case "BT":
		t.tm = coords.Identity()
		t.tlm = coords.Identity()
	case "Tf":
		if len(args) == 2 {
			if name, ok := args[0].(semantic.NameOperand); ok {
				t.gs.font = t.fonts[name.Value]
			}
			t.gs.size = number(args[1])
		}
	case "Tc":
		if len(args) == 1 {
			t.gs.charSpace = number(args[0])
		}
	case "Tw":
		if len(args) == 1 {
			t.gs.wordSpace = number(args[0])
		}
	case "Tz":
		if len(args) == 1 {
			t.gs.scale = number(args[0]) / 100
		}
	case "TL":
		if len(args) == 1 {
			t.gs.leading = number(args[0])
		}
	case "Ts":
		if len(args) == 1 {
			t.gs.rise = number(args[0])
		}
	case "Td":
		if len(args) == 2 {
			t.moveLine(number(args[0]), number(args[1]))
		}
	case "TD":
		if len(args) == 2 {
			t.gs.leading = -number(args[1])
			t.moveLine(number(args[0]), number(args[1]))
		}
	case "Tm":
		if len(args) == 6 {
			t.tlm = matrix(args)
			t.tm = t.tlm
		}
	case "T*":
		t.nextLine()
	case "Tj":
		if len(args) == 1 {
			t.show(args[0])
		}
	case "'":
		if len(args) == 1 {
			t.nextLine()
			t.show(args[0])
		}
	case "\"":
		if len(args) == 3 {
			t.gs.wordSpace = number(args[0])
			t.gs.charSpace = number(args[1])
			t.nextLine()
			t.show(args[2])
		}
	case "TJ":
		if len(args) != 1 {
			return
		}
		arr, ok := args[0].(semantic.ArrayOperand)
		if !ok {
			return
		}
		for _, v := range arr.Values {
			switch val := v.(type) {
			case semantic.StringOperand:
				t.show(val)
			case semantic.NumberOperand:
				t.advance(-val.Value / 1000 * t.gs.size * t.gs.scale)
				if val.Value < tjSpaceThreshold {
					t.wb.flush()
				}
			}
		}
	}
}

func (t *textTracer) moveLine(tx, ty float64) {
	t.tlm = coords.Translate(tx, ty).Multiply(t.tlm)
	t.tm = t.tlm
}

func (t *textTracer) nextLine() { t.moveLine(0, -t.gs.leading) }

func (t *textTracer) advance(tx float64) {
	t.tm = coords.Translate(tx, 0).Multiply(t.tm)
}

func (t *textTracer) show(arg semantic.Operand) {
	s, ok := arg.(semantic.StringOperand)
	if !ok {
		return
	}
	for _, g := range decodeGlyphs(s.Value, t.gs.font) {
		w := g.width/1000*t.gs.size + t.gs.charSpace
		if g.space {
			w += t.gs.wordSpace
		}
		w *= t.gs.scale
		t.wb.add(g.text, t.glyphBox(w))
		t.advance(w)
	}
}

// glyphBox maps the glyph cell at the current text position to page space.
// The cell spans the font size upward from the baseline.
func (t *textTracer) glyphBox(width float64) Rect {
	m := t.tm.Multiply(t.gs.ctm)
	lo, hi := t.gs.rise, t.gs.rise+t.gs.size
	r := Rect{X0: math.Inf(1), Y0: math.Inf(1), X1: math.Inf(-1), Y1: math.Inf(-1)}
	for _, p := range []coords.Point{{X: 0, Y: lo}, {X: width, Y: lo}, {X: 0, Y: hi}, {X: width, Y: hi}} {
		q := m.Transform(p)
		r.X0 = min(r.X0, q.X)
		r.Y0 = min(r.Y0, q.Y)
		r.X1 = max(r.X1, q.X)
		r.Y1 = max(r.Y1, q.Y)
	}
	return r
}

func matrix(ops []semantic.Operand) coords.Matrix {
	return coords.Matrix{number(ops[0]), number(ops[1]), number(ops[2]), number(ops[3]), number(ops[4]), number(ops[5])}
}

func number(op semantic.Operand) float64 {
	if n, ok := op.(semantic.NumberOperand); ok {
		return n.Value
	}
	return 0
}

// glyph is one decoded character code. Width is in glyph space units.
type glyph struct {
	text  string
	width float64
	space bool
}

// decodeGlyphs splits a shown string into character codes. Type0 fonts use
// two-byte codes; everything else uses one byte per code.
func decodeGlyphs(b []byte, font *semantic.Font) []glyph {
	if font != nil && font.Subtype == "Type0" {
		out := make([]glyph, 0, len(b)/2)
		for i := 0; i+1 < len(b); i += 2 {
			code := int(b[i])<<8 | int(b[i+1])
			out = append(out, glyph{
				text:  toUnicode(font, code, unicode.ReplacementChar),
				width: cidWidth(font, code),
			})
		}
		return out
	}
	out := make([]glyph, 0, len(b))
	for _, c := range b {
		code := int(c)
		out = append(out, glyph{
			text:  toUnicode(font, code, rune(c)),
			width: simpleWidth(font, code),
			space: c == ' ',
		})
	}
	return out
}

func toUnicode(font *semantic.Font, code int, fallback rune) string {
	if font != nil {
		if runes, ok := font.ToUnicode[code]; ok {
			return string(runes)
		}
	}
	return string(fallback)
}

func simpleWidth(font *semantic.Font, code int) float64 {
	if font != nil {
		if w, ok := font.Widths[code]; ok {
			return float64(w)
		}
	}
	return defaultGlyphWidth
}

// cidWidth assumes an Identity encoding, so the code is the CID.
func cidWidth(font *semantic.Font, cid int) float64 {
	if d := font.DescendantFont; d != nil {
		if w, ok := d.W[cid]; ok {
			return float64(w)
		}
		if d.DW > 0 {
			return float64(d.DW)
		}
	}
	if w, ok := font.Widths[cid]; ok {
		return float64(w)
	}
	return 1000
}

// wordBuilder accumulates fragments. A fragment that continues the previous
// one on the same line without an intervening space extends the open word.
type wordBuilder struct {
	words   []Word
	cur     Word
	open    bool
	lastEnd Rect
}

func (wb *wordBuilder) add(text string, box Rect) {
	runes := []rune(text)
	if len(runes) == 0 || box.Empty() {
		return
	}
	if !wb.continues(box) || unicode.IsSpace(runes[0]) {
		wb.flush()
	}
	step := (box.X1 - box.X0) / float64(len(runes))
	start := -1
	for i, r := range runes {
		if unicode.IsSpace(r) {
			if start >= 0 {
				wb.extend(string(runes[start:i]), glyphSpan(box, step, start, i))
				start = -1
			}
			wb.flush()
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		wb.extend(string(runes[start:]), glyphSpan(box, step, start, len(runes)))
	}
	wb.lastEnd = box
}

func (wb *wordBuilder) continues(box Rect) bool {
	if !wb.open {
		return false
	}
	prev := wb.lastEnd
	height := box.Y1 - box.Y0
	sameLine := box.Y0 < prev.Y1 && prev.Y0 < box.Y1
	gap := box.X0 - prev.X1
	return sameLine && gap > -height*0.25 && gap < height*0.15
}

func (wb *wordBuilder) extend(text string, box Rect) {
	if !wb.open {
		wb.cur = Word{Rect: box, Text: text}
		wb.open = true
		return
	}
	wb.cur.Text += text
	wb.cur.Rect = union(wb.cur.Rect, box)
}

func (wb *wordBuilder) flush() {
	if wb.open {
		wb.words = append(wb.words, wb.cur)
	}
	wb.cur = Word{}
	wb.open = false
}

func glyphSpan(box Rect, step float64, from, to int) Rect {
	return Rect{
		X0: box.X0 + step*float64(from),
		Y0: box.Y0,
		X1: box.X0 + step*float64(to),
		Y1: box.Y1,
	}
}

func union(a, b Rect) Rect {
	return Rect{
		X0: min(a.X0, b.X0),
		Y0: min(a.Y0, b.Y0),
		X1: max(a.X1, b.X1),
		Y1: max(a.Y1, b.Y1),
	}
}
