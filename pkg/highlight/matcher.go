// Package highlight matches highlight annotations against the words under
// them and collects the results per page.
package highlight

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/japaniel/hldict/pkg/document"
)

// Normalize strips every rune that is neither a letter nor a number.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return -1
	}, s)
}

// MatchPage returns the normalized words on the page that overlap any
// highlight quad, in annotation, quad, then word order. A word under two
// quads is returned twice.
func MatchPage(page document.Page) []string {
	var out []string
	for _, annot := range page.Annotations {
		if annot.Type != document.AnnotHighlight {
			continue
		}
		for _, quad := range Quads(annot.Points) {
			for _, w := range page.Words {
				if !Intersects(w.Rect, quad) {
					continue
				}
				if norm := Normalize(w.Text); norm != "" {
					out = append(out, norm)
				}
			}
		}
	}
	return out
}

// Index maps a page number to the words matched on it. Pages without a
// match are absent.
type Index map[int][]string

// Pages returns the indexed page numbers in ascending order.
func (idx Index) Pages() []int {
	pages := make([]int, 0, len(idx))
	for p := range idx {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// WordSet returns the distinct words across all pages, sorted.
func (idx Index) WordSet() []string {
	seen := make(map[string]struct{})
	for _, words := range idx {
		for _, w := range words {
			seen[w] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Distinct returns the sorted distinct words of one page.
func Distinct(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build reads the document one page at a time and matches each page.
// A page that fails to load is logged and skipped; only context
// cancellation aborts the walk.
func Build(ctx context.Context, doc document.Document, logf func(string)) (Index, error) {
	if logf == nil {
		logf = func(string) {}
	}
	idx := make(Index)
	for n := 1; n <= doc.PageCount(); n++ {
		if err := ctx.Err(); err != nil {
			return idx, err
		}
		logf(fmt.Sprintf("Processing page %d...", n))

		page, err := doc.Page(ctx, n)
		if err != nil {
			if ctx.Err() != nil {
				return idx, ctx.Err()
			}
			logf(fmt.Sprintf("Skipping page %d: %v", n, err))
			continue
		}

		words := MatchPage(page)
		if len(words) == 0 {
			continue
		}
		idx[n] = words
		logf(fmt.Sprintf("Found highlighted words on page %d: [%s]", n, strings.Join(Distinct(words), ", ")))
	}
	return idx, nil
}
