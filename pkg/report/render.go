// Package report assembles the page/definitions table and writes it as a PDF.
package report

import (
	"errors"

	"github.com/wudi/pdfkit/builder"
	"github.com/wudi/pdfkit/ir/semantic"
)

// ErrNoRows is returned when there is nothing to put in the table.
var ErrNoRows = errors.New("report has no rows")

var (
	headerFill = builder.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
	headerText = builder.Color{R: 0.96, G: 0.96, B: 0.96, A: 1}
	gridColor  = builder.Color{A: 1}
)

// Renderer lays out report rows as a two-column table on A4 pages.
type Renderer struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	Title      string
}

// NewRenderer returns a Renderer for A4 pages with 30pt margins.
func NewRenderer() *Renderer {
	return &Renderer{
		PageWidth:  A4Width,
		PageHeight: A4Height,
		Margin:     defaultMargin,
		Title:      "Highlighted word definitions",
	}
}

// Render builds the report document.
func (r *Renderer) Render(rows []Row) (*semantic.Document, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	b := builder.NewBuilder()
	fonts := standardFonts()
	b.RegisterFont(fontRegular, fonts[fontRegular])
	b.RegisterFont(fontBold, fonts[fontBold])
	b.SetInfo(&semantic.DocumentInfo{Title: r.Title, Producer: "hldict"})

	x0 := r.Margin + (r.PageWidth-2*r.Margin-tableWidth)/2
	for _, pl := range paginate(rows, r.PageHeight, r.Margin) {
		page := b.NewPage(r.PageWidth, r.PageHeight)
		for _, blk := range pl.Blocks {
			drawBlock(page, blk, x0)
		}
		page.Finish()
	}
	return b.Build()
}

func drawBlock(page builder.PageBuilder, blk block, x0 float64) {
	bottom := blk.Top - blk.Height
	x1 := x0 + pageColWidth

	if blk.Header {
		page.DrawRectangle(x0, bottom, tableWidth, blk.Height, builder.RectOptions{Fill: true, FillColor: headerFill})
		label := Header[0]
		lw := textWidth(label, true, cellFontSize)
		baseline := blk.Top - padTop - cellFontSize
		page.DrawText(winAnsi(label), x0+(pageColWidth-lw)/2, baseline, builder.TextOptions{Font: fontBold, FontSize: cellFontSize, Color: headerText})
		page.DrawText(winAnsi(Header[1]), x1+padX, baseline, builder.TextOptions{Font: fontBold, FontSize: cellFontSize, Color: headerText})
	} else {
		lw := textWidth(blk.Label, false, cellFontSize)
		page.DrawText(blk.Label, x0+(pageColWidth-lw)/2, blk.Top-padTop-cellFontSize, builder.TextOptions{Font: fontRegular, FontSize: cellFontSize})
		for i, ln := range blk.Lines {
			baseline := blk.Top - padTop - defsFontSize - float64(i)*defsLeading
			for _, sp := range ln {
				font := fontRegular
				if sp.Bold {
					font = fontBold
				}
				page.DrawText(winAnsi(sp.Text), x1+padX+sp.X, baseline, builder.TextOptions{Font: font, FontSize: defsFontSize})
			}
		}
	}

	grid := builder.RectOptions{Stroke: true, StrokeColor: gridColor, LineWidth: gridWidth}
	page.DrawRectangle(x0, bottom, pageColWidth, blk.Height, grid)
	page.DrawRectangle(x1, bottom, defsColWidth, blk.Height, grid)
}
