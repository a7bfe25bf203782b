package document

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document.go -package=mocks github.com/japaniel/hldict/pkg/document Opener,Document

import (
	"context"
	"fmt"
)

// AnnotationType is the numeric annotation type code. The values follow the
// order of annotation subtypes in the PDF reference, so a highlight is 8.
type AnnotationType int

const (
	AnnotText AnnotationType = iota
	AnnotLink
	AnnotFreeText
	AnnotLine
	AnnotSquare
	AnnotCircle
	AnnotPolygon
	AnnotPolyLine
	AnnotHighlight
	AnnotUnderline
	AnnotSquiggly
	AnnotStrikeOut
	AnnotStamp
	AnnotCaret
	AnnotInk
	AnnotPopup
	AnnotFileAttachment
	AnnotSound
	AnnotMovie
	AnnotWidget
	AnnotScreen
	AnnotPrinterMark
	AnnotTrapNet
	AnnotWatermark
	Annot3D
	AnnotRedact
	AnnotUnknown AnnotationType = -1
)

var subtypeCodes = map[string]AnnotationType{
	"Text":           AnnotText,
	"Link":           AnnotLink,
	"FreeText":       AnnotFreeText,
	"Line":           AnnotLine,
	"Square":         AnnotSquare,
	"Circle":         AnnotCircle,
	"Polygon":        AnnotPolygon,
	"PolyLine":       AnnotPolyLine,
	"Highlight":      AnnotHighlight,
	"Underline":      AnnotUnderline,
	"Squiggly":       AnnotSquiggly,
	"StrikeOut":      AnnotStrikeOut,
	"Stamp":          AnnotStamp,
	"Caret":          AnnotCaret,
	"Ink":            AnnotInk,
	"Popup":          AnnotPopup,
	"FileAttachment": AnnotFileAttachment,
	"Sound":          AnnotSound,
	"Movie":          AnnotMovie,
	"Widget":         AnnotWidget,
	"Screen":         AnnotScreen,
	"PrinterMark":    AnnotPrinterMark,
	"TrapNet":        AnnotTrapNet,
	"Watermark":      AnnotWatermark,
	"3D":             Annot3D,
	"Redact":         AnnotRedact,
}

// AnnotationTypeFromSubtype maps a /Subtype name to its type code.
func AnnotationTypeFromSubtype(subtype string) AnnotationType {
	if t, ok := subtypeCodes[subtype]; ok {
		return t
	}
	return AnnotUnknown
}

// Point is a position in page space.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle with X0 <= X1 and Y0 <= Y1 when well formed.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.X0 >= r.X1 || r.Y0 >= r.Y1 }

// Word is a word glyph run with its bounding box.
type Word struct {
	Rect Rect
	Text string
}

// Annotation is a page annotation reduced to its type and geometry. For
// markup annotations Points holds the quad corners, four points per quad.
type Annotation struct {
	Type   AnnotationType
	Points []Point
}

// Page is one page of a document. Number is 1-based.
type Page struct {
	Number      int
	Words       []Word
	Annotations []Annotation
}

// Document yields pages in document order. Implementations are not safe for
// concurrent use.
type Document interface {
	PageCount() int
	Page(ctx context.Context, number int) (Page, error)
	Close() error
}

// Opener opens documents by path.
type Opener interface {
	Open(ctx context.Context, path string) (Document, error)
}

// OpenError reports a path that could not be opened as a PDF.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }
