package report

import (
	"fmt"
	"strings"
	"testing"
)

func TestWrapFitsWidth(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 20)
	p := Paragraph{{Text: "Word", Bold: true}, {Text: ": " + text}}
	lines := wrap(p, 200, defsFontSize)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %d line(s)", len(lines))
	}
	for i, ln := range lines {
		last := ln[len(ln)-1]
		end := last.X + textWidth(last.Text, last.Bold, defsFontSize)
		if end > 200+1e-9 {
			t.Fatalf("line %d overflows: %v > 200 (%q)", i, end, ln.String())
		}
	}
	if first := lines[0]; !first[0].Bold || first[0].Text != "Word" || first[0].X != 0 {
		t.Fatalf("expected bold word first, got %+v", first[0])
	}
	if !strings.HasPrefix(lines[0][1].Text, ": lorem") {
		t.Fatalf("expected definition to follow the word, got %q", lines[0][1].Text)
	}

	var words []string
	for _, ln := range lines {
		words = append(words, strings.Fields(ln.String())...)
	}
	if got, want := strings.Join(words, " "), "Word: "+strings.TrimSpace(text); got != want {
		t.Fatalf("wrapping lost text:\n got %q\nwant %q", got, want)
	}
}

func TestWrapBreaksOverlongWord(t *testing.T) {
	long := strings.Repeat("x", 300)
	lines := wrap(Paragraph{{Text: long}}, 100, defsFontSize)
	if len(lines) < 2 {
		t.Fatalf("expected the word to be broken, got %d line(s)", len(lines))
	}
	var joined strings.Builder
	for _, ln := range lines {
		if w := textWidth(ln.String(), false, defsFontSize); w > 100+1e-9 {
			t.Fatalf("chunk too wide: %v", w)
		}
		joined.WriteString(ln.String())
	}
	if joined.String() != long {
		t.Fatal("broken word does not reassemble")
	}
}

func TestCellLinesSeparatesEntries(t *testing.T) {
	r := Row{Page: 1, Entries: []Entry{{"Hello", "a greeting"}, {"World", "the earth"}}}
	lines := cellLines(r, defsColWidth-2*padX)
	if len(lines) != 3 || lines[1] != nil {
		t.Fatalf("expected entry, blank, entry; got %+v", lines)
	}
	if lines[0].String() != "Hello: a greeting" || lines[2].String() != "World: the earth" {
		t.Fatalf("unexpected lines %q / %q", lines[0].String(), lines[2].String())
	}
}

func manyRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{Page: i + 1, Entries: []Entry{{fmt.Sprintf("word%d", i), "short"}}}
	}
	return rows
}

func TestPaginateSinglePage(t *testing.T) {
	pages := paginate(manyRows(3), A4Height, defaultMargin)
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	blocks := pages[0].Blocks
	if len(blocks) != 4 || !blocks[0].Header {
		t.Fatalf("expected header plus 3 rows, got %+v", blocks)
	}
	if blocks[0].Top != A4Height-defaultMargin || blocks[0].Height != 25 {
		t.Fatalf("unexpected header geometry %+v", blocks[0])
	}
	for i, b := range blocks[1:] {
		if b.Label != fmt.Sprint(i+1) {
			t.Fatalf("row %d has label %q", i, b.Label)
		}
		if b.Height != 18 {
			t.Fatalf("row %d has height %v", i, b.Height)
		}
		if prev := blocks[i]; b.Top != prev.Top-prev.Height {
			t.Fatalf("row %d not stacked under previous", i)
		}
	}
}

func TestPaginateRepeatsHeader(t *testing.T) {
	rows := manyRows(120)
	pages := paginate(rows, A4Height, defaultMargin)
	if len(pages) < 2 {
		t.Fatalf("expected several pages, got %d", len(pages))
	}
	next := 1
	for i, pl := range pages {
		if !pl.Blocks[0].Header {
			t.Fatalf("page %d does not start with the header", i)
		}
		for _, b := range pl.Blocks[1:] {
			if b.Header {
				t.Fatalf("page %d has a second header", i)
			}
			if b.Label != fmt.Sprint(next) {
				t.Fatalf("page %d: expected row %d, got %s", i, next, b.Label)
			}
			if b.Top-b.Height < defaultMargin-1e-9 {
				t.Fatalf("page %d: row %s runs into the bottom margin", i, b.Label)
			}
			next++
		}
	}
	if next != 121 {
		t.Fatalf("expected 120 rows placed, got %d", next-1)
	}
}

func TestPaginateSplitsTallRow(t *testing.T) {
	entries := make([]Entry, 150)
	for i := range entries {
		entries[i] = Entry{Word: fmt.Sprintf("w%03d", i), Definition: "definition text"}
	}
	tall := Row{Page: 9, Entries: entries}
	rows := []Row{{Page: 1, Entries: []Entry{{"a", "b"}}}, tall}

	pages := paginate(rows, A4Height, defaultMargin)
	if len(pages) < 2 {
		t.Fatalf("expected the tall row to span pages, got %d", len(pages))
	}

	want := 0
	for _, ln := range cellLines(tall, defsColWidth-2*padX) {
		if ln != nil {
			want++
		}
	}
	got := 0
	for _, pl := range pages {
		for _, b := range pl.Blocks {
			if b.Label != "9" {
				continue
			}
			if len(b.Lines) == 0 || b.Lines[0] == nil {
				t.Fatal("continued row starts with a blank line")
			}
			for _, ln := range b.Lines {
				if ln != nil {
					got++
				}
			}
		}
	}
	if got != want {
		t.Fatalf("split lost lines: got %d, want %d", got, want)
	}
	if pages[0].Blocks[len(pages[0].Blocks)-1].Label != "9" {
		t.Fatal("expected the tall row to start on the first page")
	}
}
