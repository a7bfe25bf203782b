package document

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/japaniel/hldict/pkg/logging"
	"github.com/wudi/pdfkit/ir"
	"github.com/wudi/pdfkit/ir/raw"
	"github.com/wudi/pdfkit/ir/semantic"
)

// PDFOpener opens PDF files using the pdfkit parse pipeline.
type PDFOpener struct{}

// NewPDFOpener returns an Opener backed by pdfkit.
func NewPDFOpener() *PDFOpener { return &PDFOpener{} }

// Open parses the file at path. Any failure is returned as an *OpenError.
func (o *PDFOpener) Open(ctx context.Context, path string) (Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	doc, err := ir.NewDefault().Parse(ctx, file)
	if err != nil {
		_ = file.Close()
		return nil, &OpenError{Path: path, Err: fmt.Errorf("parse pdf: %w", err)}
	}
	dec := doc.Decoded()
	if dec == nil || dec.Raw == nil {
		_ = file.Close()
		return nil, &OpenError{Path: path, Err: errors.New("pipeline produced no decoded document")}
	}

	pageDicts := collectPageDicts(dec.Raw)
	if len(pageDicts) != len(doc.Pages) {
		logging.WithComponent(ctx, "document").Warn("page tree mismatch, annotations may be misplaced",
			"path", path, "pages", len(doc.Pages), "page_dicts", len(pageDicts))
	}

	return &pdfDocument{
		file:      file,
		sem:       doc,
		raw:       dec.Raw,
		pageDicts: pageDicts,
	}, nil
}

type pdfDocument struct {
	file      *os.File
	sem       *semantic.Document
	raw       *raw.Document
	pageDicts []*raw.DictObj
}

func (d *pdfDocument) PageCount() int { return len(d.sem.Pages) }

func (d *pdfDocument) Page(ctx context.Context, number int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if number < 1 || number > len(d.sem.Pages) {
		return Page{}, fmt.Errorf("page %d out of range 1..%d", number, len(d.sem.Pages))
	}

	page := Page{
		Number: number,
		Words:  extractWords(d.sem.Pages[number-1]),
	}
	// The semantic layer does not carry annotations, so they are read from
	// the raw page dictionary at the same position in the page tree.
	if number-1 < len(d.pageDicts) {
		page.Annotations = readAnnotations(d.raw, d.pageDicts[number-1])
	}
	return page, nil
}

func (d *pdfDocument) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// collectPageDicts walks the page tree from the trailer's /Root and returns
// leaf page dictionaries in document order. It classifies nodes the way the
// semantic page parser does, so both lists line up: a node typed /Page is a
// leaf even with /Kids, an untyped node is a leaf only without /Kids, and a
// node that is neither a leaf nor a valid /Pages node is dropped.
func collectPageDicts(doc *raw.Document) []*raw.DictObj {
	if doc == nil || doc.Trailer == nil {
		return nil
	}
	rootObj, ok := doc.Trailer.Get(raw.NameLiteral("Root"))
	if !ok {
		return nil
	}
	root := derefDict(doc, rootObj)
	if root == nil {
		return nil
	}
	var pages []*raw.DictObj
	visited := make(map[*raw.DictObj]bool)
	var walk func(obj raw.Object)
	walk = func(obj raw.Object) {
		node := derefDict(doc, obj)
		if node == nil || visited[node] {
			return
		}
		visited[node] = true

		typeObj := dictValue(node, "Type")
		kidsObj := dictValue(node, "Kids")
		typ, _ := nameValue(typeObj)
		if typ == "Page" || (typeObj == nil && kidsObj == nil) {
			pages = append(pages, node)
			return
		}
		kids := derefArray(doc, kidsObj)
		if kids == nil {
			return
		}
		for _, kid := range kids.Items {
			walk(kid)
		}
	}
	walk(dictValue(root, "Pages"))
	return pages
}

// readAnnotations converts the page's /Annots array. Markup annotations use
// /QuadPoints; annotations without quads fall back to the corners of /Rect.
func readAnnotations(doc *raw.Document, page *raw.DictObj) []Annotation {
	arr := derefArray(doc, dictValue(page, "Annots"))
	if arr == nil {
		return nil
	}
	out := make([]Annotation, 0, len(arr.Items))
	for _, item := range arr.Items {
		dict := derefDict(doc, item)
		if dict == nil {
			continue
		}
		subtype, _ := nameValue(dictValue(dict, "Subtype"))
		annot := Annotation{Type: AnnotationTypeFromSubtype(subtype)}
		if quads := floats(derefArray(doc, dictValue(dict, "QuadPoints"))); len(quads) >= 8 {
			annot.Points = pairs(quads)
		} else if rect := floats(derefArray(doc, dictValue(dict, "Rect"))); len(rect) == 4 {
			x0, y0, x1, y1 := rect[0], rect[1], rect[2], rect[3]
			annot.Points = []Point{{x0, y1}, {x1, y1}, {x0, y0}, {x1, y0}}
		}
		out = append(out, annot)
	}
	return out
}

func pairs(vals []float64) []Point {
	pts := make([]Point, 0, len(vals)/2)
	for i := 0; i+1 < len(vals); i += 2 {
		pts = append(pts, Point{X: vals[i], Y: vals[i+1]})
	}
	return pts
}

const maxRefDepth = 32

func resolve(doc *raw.Document, obj raw.Object) raw.Object {
	for i := 0; i < maxRefDepth; i++ {
		ref, ok := obj.(raw.Reference)
		if !ok {
			return obj
		}
		if doc == nil {
			return nil
		}
		obj = doc.Objects[ref.Ref()]
	}
	return nil
}

func derefDict(doc *raw.Document, obj raw.Object) *raw.DictObj {
	dict, _ := resolve(doc, obj).(*raw.DictObj)
	return dict
}

func derefArray(doc *raw.Document, obj raw.Object) *raw.ArrayObj {
	arr, _ := resolve(doc, obj).(*raw.ArrayObj)
	return arr
}

func dictValue(dict *raw.DictObj, key string) raw.Object {
	if dict == nil {
		return nil
	}
	val, _ := dict.Get(raw.NameLiteral(key))
	return val
}

func nameValue(obj raw.Object) (string, bool) {
	if name, ok := obj.(raw.Name); ok {
		return name.Value(), true
	}
	return "", false
}

func floats(arr *raw.ArrayObj) []float64 {
	if arr == nil {
		return nil
	}
	out := make([]float64, 0, len(arr.Items))
	for _, item := range arr.Items {
		if num, ok := item.(raw.Number); ok {
			out = append(out, num.Float())
		}
	}
	return out
}
