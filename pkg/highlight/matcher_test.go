package highlight

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/japaniel/hldict/pkg/document"
	"github.com/japaniel/hldict/pkg/document/mocks"
	"go.uber.org/mock/gomock"
)

func quad(x0, y0, x1, y1 float64) []document.Point {
	return []document.Point{{X: x0, Y: y1}, {X: x1, Y: y1}, {X: x0, Y: y0}, {X: x1, Y: y0}}
}

func word(text string, x0, y0, x1, y1 float64) document.Word {
	return document.Word{Text: text, Rect: document.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}}
}

func highlightAnnot(quads ...[]document.Point) document.Annotation {
	var pts []document.Point
	for _, q := range quads {
		pts = append(pts, q...)
	}
	return document.Annotation{Type: document.AnnotHighlight, Points: pts}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Hello!":     "Hello",
		"don't":      "dont",
		"café,":      "café",
		"(x2)":       "x2",
		"...":        "",
		"\u2014":     "",
		"Straße":     "Straße",
		"日本語。":       "日本語",
		"already123": "already123",
	}
	for in, want := range cases {
		got := Normalize(in)
		if got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
		if again := Normalize(got); again != got {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, got, again)
		}
	}
}

func TestQuadsDropsPartialGroup(t *testing.T) {
	pts := append(quad(0, 0, 10, 10), document.Point{X: 50, Y: 50}, document.Point{X: 60, Y: 60})
	rects := Quads(pts)
	if len(rects) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(rects))
	}
	if rects[0] != (document.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}) {
		t.Fatalf("unexpected quad rect %+v", rects[0])
	}
}

func TestQuadRectSkewed(t *testing.T) {
	r := QuadRect([]document.Point{{X: 5, Y: 20}, {X: 40, Y: 25}, {X: 3, Y: 8}, {X: 38, Y: 12}})
	want := document.Rect{X0: 3, Y0: 8, X1: 40, Y1: 25}
	if r != want {
		t.Fatalf("expected %+v, got %+v", want, r)
	}
}

func TestIntersects(t *testing.T) {
	base := document.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}
	if !Intersects(base, document.Rect{X0: 5, Y0: 5, X1: 15, Y1: 15}) {
		t.Error("expected partial overlap to intersect")
	}
	if !Intersects(base, document.Rect{X0: 2, Y0: 2, X1: 3, Y1: 3}) {
		t.Error("expected containment to intersect")
	}
	if Intersects(base, document.Rect{X0: 10, Y0: 0, X1: 20, Y1: 10}) {
		t.Error("edge-touching rectangles must not intersect")
	}
	if Intersects(base, document.Rect{X0: 10, Y0: 10, X1: 20, Y1: 20}) {
		t.Error("corner-touching rectangles must not intersect")
	}
	if Intersects(base, document.Rect{X0: 20, Y0: 20, X1: 30, Y1: 30}) {
		t.Error("disjoint rectangles must not intersect")
	}
	if Intersects(base, document.Rect{X0: 5, Y0: 5, X1: 5, Y1: 5}) {
		t.Error("empty rectangle must not intersect")
	}
}

func TestMatchPageExactCover(t *testing.T) {
	page := document.Page{
		Number: 1,
		Words: []document.Word{
			word("Hello!", 10, 100, 60, 112),
			word("world", 70, 100, 110, 112),
		},
		Annotations: []document.Annotation{highlightAnnot(quad(10, 100, 60, 112))},
	}
	got := MatchPage(page)
	if !reflect.DeepEqual(got, []string{"Hello"}) {
		t.Fatalf("expected [Hello], got %v", got)
	}
}

func TestMatchPageIgnoresOtherAnnotationTypes(t *testing.T) {
	cover := quad(0, 0, 200, 200)
	page := document.Page{
		Words: []document.Word{word("under", 10, 10, 50, 20)},
		Annotations: []document.Annotation{
			{Type: document.AnnotUnderline, Points: cover},
			{Type: document.AnnotSquare, Points: cover},
			{Type: document.AnnotUnknown, Points: cover},
		},
	}
	if got := MatchPage(page); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestMatchPageDisjointQuad(t *testing.T) {
	page := document.Page{
		Words:       []document.Word{word("alpha", 10, 10, 50, 20), word("beta", 60, 10, 90, 20)},
		Annotations: []document.Annotation{highlightAnnot(quad(300, 300, 400, 320))},
	}
	if got := MatchPage(page); len(got) != 0 {
		t.Fatalf("expected no matches for disjoint quad, got %v", got)
	}
}

func TestMatchPageDropsPunctuationAndKeepsDuplicates(t *testing.T) {
	page := document.Page{
		Words: []document.Word{
			word("the", 10, 10, 30, 20),
			word("--", 32, 10, 40, 20),
			word("cat,", 42, 10, 60, 20),
		},
		Annotations: []document.Annotation{
			highlightAnnot(quad(0, 5, 70, 25)),
			highlightAnnot(quad(41, 5, 61, 25)),
		},
	}
	got := MatchPage(page)
	want := []string{"the", "cat", "cat"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMatchPageMultiQuadHighlight(t *testing.T) {
	page := document.Page{
		Words: []document.Word{
			word("first", 10, 100, 50, 112),
			word("skip", 60, 100, 90, 112),
			word("second", 10, 80, 60, 92),
		},
		Annotations: []document.Annotation{
			highlightAnnot(quad(10, 100, 50, 112), quad(10, 80, 60, 92)),
		},
	}
	got := MatchPage(page)
	if !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Fatalf("expected [first second], got %v", got)
	}
}

func TestIndexPagesAndWordSet(t *testing.T) {
	idx := Index{
		7: {"zeta", "Alpha"},
		2: {"beta", "Alpha", "beta"},
	}
	if got := idx.Pages(); !reflect.DeepEqual(got, []int{2, 7}) {
		t.Fatalf("expected [2 7], got %v", got)
	}
	if got := idx.WordSet(); !reflect.DeepEqual(got, []string{"Alpha", "beta", "zeta"}) {
		t.Fatalf("unexpected word set %v", got)
	}
}

func TestBuildSkipsPagesWithoutHighlights(t *testing.T) {
	ctrl := gomock.NewController(t)
	doc := mocks.NewMockDocument(ctrl)

	doc.EXPECT().PageCount().Return(3).AnyTimes()
	doc.EXPECT().Page(gomock.Any(), 1).Return(document.Page{
		Number: 1,
		Words:  []document.Word{word("plain", 10, 10, 50, 20)},
	}, nil)
	doc.EXPECT().Page(gomock.Any(), 2).Return(document.Page{}, errors.New("broken content stream"))
	doc.EXPECT().Page(gomock.Any(), 3).Return(document.Page{
		Number:      3,
		Words:       []document.Word{word("Hello!", 10, 100, 60, 112)},
		Annotations: []document.Annotation{highlightAnnot(quad(10, 100, 60, 112))},
	}, nil)

	var logs []string
	idx, err := Build(context.Background(), doc, func(s string) { logs = append(logs, s) })
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !reflect.DeepEqual(map[int][]string(idx), map[int][]string{3: {"Hello"}}) {
		t.Fatalf("unexpected index %v", idx)
	}

	want := []string{
		"Processing page 1...",
		"Processing page 2...",
		"Skipping page 2: broken content stream",
		"Processing page 3...",
		"Found highlighted words on page 3: [Hello]",
	}
	if !reflect.DeepEqual(logs, want) {
		t.Fatalf("unexpected log lines:\n%s", strings.Join(logs, "\n"))
	}
}

func TestBuildStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	doc := mocks.NewMockDocument(ctrl)
	doc.EXPECT().PageCount().Return(5).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, doc, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
