package report

import (
	"strconv"
	"strings"
)

// A4 page size in points.
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// Table metrics in points.
const (
	defaultMargin   = 30.0
	pageColWidth    = 80.0
	defsColWidth    = 400.0
	padX            = 6.0
	padTop          = 3.0
	padBottom       = 3.0
	headerPadBottom = 10.0
	cellFontSize    = 10.0
	cellLeading     = 12.0
	defsFontSize    = 8.0
	defsLeading     = 12.0
	gridWidth       = 0.5
)

const tableWidth = pageColWidth + defsColWidth

// span is text placed at X, relative to the left edge of the cell content.
type span struct {
	Text string
	Bold bool
	X    float64
}

// line is one line of a definitions cell. A nil line separates entries.
type line []span

func (l line) String() string {
	var b strings.Builder
	for _, sp := range l {
		b.WriteString(sp.Text)
	}
	return b.String()
}

// block is one table row placed on a page.
type block struct {
	Header bool
	Label  string
	Lines  []line
	Top    float64
	Height float64
}

// pageLayout is the set of rows drawn on one physical page.
type pageLayout struct {
	Blocks []block
}

// piece is a fragment of a word in one style.
type piece struct {
	Text string
	Bold bool
}

// unit is a word: consecutive pieces with no space between them.
type unit []piece

func (u unit) width(size float64) float64 {
	w := 0.0
	for _, p := range u {
		w += textWidth(p.Text, p.Bold, size)
	}
	return w
}

func splitUnits(p Paragraph) []unit {
	var units []unit
	var cur unit
	for _, run := range p {
		for _, r := range run.Text {
			if r == ' ' || r == '\t' {
				if len(cur) > 0 {
					units = append(units, cur)
					cur = nil
				}
				continue
			}
			if n := len(cur); n > 0 && cur[n-1].Bold == run.Bold {
				cur[n-1].Text += string(r)
			} else {
				cur = append(cur, piece{Text: string(r), Bold: run.Bold})
			}
		}
	}
	if len(cur) > 0 {
		units = append(units, cur)
	}
	return units
}

// breakUnit cuts a word wider than width into chunks that each fit.
func breakUnit(u unit, width, size float64) []unit {
	var out []unit
	var cur unit
	w := 0.0
	for _, p := range u {
		for _, r := range p.Text {
			rw := float64(glyphWidth(r, p.Bold)) * size / 1000
			if len(cur) > 0 && w+rw > width {
				out = append(out, cur)
				cur, w = nil, 0
			}
			if n := len(cur); n > 0 && cur[n-1].Bold == p.Bold {
				cur[n-1].Text += string(r)
			} else {
				cur = append(cur, piece{Text: string(r), Bold: p.Bold})
			}
			w += rw
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// wrap fills lines greedily up to width. Adjacent words in the same style
// share a span.
func wrap(p Paragraph, width, size float64) []line {
	space := textWidth(" ", false, size)
	var lines []line
	var cur line
	x := 0.0

	place := func(u unit, gap float64) {
		for i, pc := range u {
			if n := len(cur); n > 0 && cur[n-1].Bold == pc.Bold {
				if i == 0 && gap > 0 {
					cur[n-1].Text += " "
				}
				cur[n-1].Text += pc.Text
			} else {
				cur = append(cur, span{Text: pc.Text, Bold: pc.Bold, X: x + gap})
			}
			x += gap + textWidth(pc.Text, pc.Bold, size)
			gap = 0
		}
	}

	for _, u := range splitUnits(p) {
		w := u.width(size)
		if len(cur) > 0 && x+space+w > width {
			lines = append(lines, cur)
			cur, x = nil, 0
		}
		if len(cur) == 0 && w > width {
			chunks := breakUnit(u, width, size)
			for _, c := range chunks[:len(chunks)-1] {
				place(c, 0)
				lines = append(lines, cur)
				cur, x = nil, 0
			}
			u = chunks[len(chunks)-1]
		}
		gap := 0.0
		if len(cur) > 0 {
			gap = space
		}
		place(u, gap)
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

// cellLines wraps every paragraph of a row and puts a blank line between
// entries.
func cellLines(r Row, width float64) []line {
	var out []line
	for i, p := range ParseMarkup(r.Text()) {
		if i > 0 {
			out = append(out, nil)
		}
		out = append(out, wrap(p, width, defsFontSize)...)
	}
	return out
}

func headerHeight() float64 {
	return padTop + cellLeading + headerPadBottom
}

func rowHeight(lines int) float64 {
	h := padTop + float64(lines)*defsLeading + padBottom
	if floor := padTop + cellLeading + padBottom; h < floor {
		return floor
	}
	return h
}

// paginate places the header and rows on pages of the given height. The
// header opens every page. A row that does not fit the remaining space
// moves to a fresh page; a row taller than a fresh page is split by lines
// and continued under the same page number.
func paginate(rows []Row, pageHeight, margin float64) []pageLayout {
	top := pageHeight - margin
	bottom := margin
	contentWidth := defsColWidth - 2*padX

	var pages []pageLayout
	var cur *pageLayout
	var y float64
	newPage := func() {
		pages = append(pages, pageLayout{})
		cur = &pages[len(pages)-1]
		cur.Blocks = append(cur.Blocks, block{Header: true, Top: top, Height: headerHeight()})
		y = top - headerHeight()
	}
	newPage()

	for _, r := range rows {
		label := strconv.Itoa(r.Page)
		lines := cellLines(r, contentWidth)
		for {
			h := rowHeight(len(lines))
			avail := y - bottom
			if h <= avail {
				cur.Blocks = append(cur.Blocks, block{Label: label, Lines: lines, Top: y, Height: h})
				y -= h
				break
			}
			hasRows := len(cur.Blocks) > 1
			if hasRows && h <= top-headerHeight()-bottom {
				newPage()
				continue
			}
			n := int((avail - padTop - padBottom) / defsLeading)
			if n < 1 {
				if hasRows {
					newPage()
					continue
				}
				n = 1
			}
			if n >= len(lines) {
				n = len(lines)
			}
			part := lines[:n]
			cur.Blocks = append(cur.Blocks, block{Label: label, Lines: part, Top: y, Height: rowHeight(len(part))})
			y -= rowHeight(len(part))
			lines = trimBlank(lines[n:])
			if len(lines) == 0 {
				break
			}
			newPage()
		}
	}
	return pages
}

func trimBlank(lines []line) []line {
	for len(lines) > 0 && lines[0] == nil {
		lines = lines[1:]
	}
	return lines
}
