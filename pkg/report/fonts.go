package report

import (
	"strings"

	"github.com/wudi/pdfkit/ir/semantic"
)

// Font resource names used on every report page.
const (
	fontRegular = "F1"
	fontBold    = "F2"
)

func standardFonts() map[string]*semantic.Font {
	return map[string]*semantic.Font{
		fontRegular: {Subtype: "Type1", BaseFont: "Helvetica", Encoding: "WinAnsiEncoding"},
		fontBold:    {Subtype: "Type1", BaseFont: "Helvetica-Bold", Encoding: "WinAnsiEncoding"},
	}
}

// Advance widths in 1/1000 em for the printable ASCII range, taken from the
// Adobe core font metrics.
var helveticaWidths = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278, // ' ' - '/'
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556, // '0' - '?'
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778, // '@' - 'O'
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556, // 'P' - '_'
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556, // '`' - 'o'
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584, // 'p' - '~'
}

var helveticaBoldWidths = [95]int{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333, 584, 584, 584, 611,
	975, 722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 333, 278, 333, 584, 556,
	333, 556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889, 611, 611,
	611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
}

// fallbackWidth is used for every glyph outside printable ASCII.
const fallbackWidth = 556

func glyphWidth(r rune, bold bool) int {
	if r < 32 || r > 126 {
		return fallbackWidth
	}
	if bold {
		return helveticaBoldWidths[r-32]
	}
	return helveticaWidths[r-32]
}

// textWidth returns the width of s in points at the given size.
func textWidth(s string, bold bool, size float64) float64 {
	total := 0
	for _, r := range s {
		total += glyphWidth(r, bold)
	}
	return float64(total) * size / 1000
}

var winAnsiExtras = map[rune]byte{
	'€': 0x80, '‚': 0x82, 'ƒ': 0x83, '„': 0x84,
	'…': 0x85, '†': 0x86, '‡': 0x87, 'ˆ': 0x88,
	'‰': 0x89, 'Š': 0x8a, '‹': 0x8b, 'Œ': 0x8c,
	'Ž': 0x8e, '‘': 0x91, '’': 0x92, '“': 0x93,
	'”': 0x94, '•': 0x95, '–': 0x96, '\u2014': 0x97,
	'˜': 0x98, '™': 0x99, 'š': 0x9a, '›': 0x9b,
	'œ': 0x9c, 'ž': 0x9e, 'Ÿ': 0x9f,
}

// winAnsi encodes s for a WinAnsiEncoding simple font. Runes the encoding
// lacks become '?'.
func winAnsi(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r < 0x80:
			b.WriteByte(byte(r))
		case r >= 0xa0 && r <= 0xff:
			b.WriteByte(byte(r))
		default:
			if c, ok := winAnsiExtras[r]; ok {
				b.WriteByte(c)
			} else {
				b.WriteByte('?')
			}
		}
	}
	return b.String()
}
