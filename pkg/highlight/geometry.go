package highlight

import "github.com/japaniel/hldict/pkg/document"

// QuadRect reduces one quadrilateral to its axis-aligned bounding box.
func QuadRect(quad []document.Point) document.Rect {
	r := document.Rect{X0: quad[0].X, Y0: quad[0].Y, X1: quad[0].X, Y1: quad[0].Y}
	for _, p := range quad[1:] {
		r.X0 = min(r.X0, p.X)
		r.Y0 = min(r.Y0, p.Y)
		r.X1 = max(r.X1, p.X)
		r.Y1 = max(r.Y1, p.Y)
	}
	return r
}

// Quads groups points four at a time. A trailing partial group is dropped.
func Quads(points []document.Point) []document.Rect {
	rects := make([]document.Rect, 0, len(points)/4)
	for i := 0; i+4 <= len(points); i += 4 {
		rects = append(rects, QuadRect(points[i:i+4]))
	}
	return rects
}

// Intersects reports a strict overlap. Rectangles that only share an edge
// or a corner do not intersect, and empty rectangles never intersect.
func Intersects(a, b document.Rect) bool {
	if a.Empty() || b.Empty() {
		return false
	}
	return a.X0 < b.X1 && b.X0 < a.X1 && a.Y0 < b.Y1 && b.Y0 < a.Y1
}
