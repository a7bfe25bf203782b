package report

import (
	"sort"
	"strings"

	"github.com/japaniel/hldict/pkg/dictionary"
	"github.com/japaniel/hldict/pkg/highlight"
)

// Header holds the captions of the table's first row.
var Header = [2]string{"Page number", "Definitions"}

// Entry is one word and the definition printed next to it.
type Entry struct {
	Word       string
	Definition string
}

// Row is one table row: a page and the distinct words highlighted on it.
type Row struct {
	Page    int
	Entries []Entry
}

// BuildRows turns the highlight index into table rows in ascending page
// order. Words are deduplicated per page and sorted; a word without a
// definition gets dictionary.NotFound.
func BuildRows(idx highlight.Index, defs dictionary.Definitions) []Row {
	rows := make([]Row, 0, len(idx))
	for _, page := range idx.Pages() {
		words := idx[page]
		seen := make(map[string]struct{}, len(words))
		entries := make([]Entry, 0, len(words))
		for _, w := range words {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			entries = append(entries, Entry{Word: w, Definition: defs.Lookup(w)})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Word < entries[j].Word })
		rows = append(rows, Row{Page: page, Entries: entries})
	}
	return rows
}

// Text returns the row's definitions blob: one "**word**: definition"
// paragraph per entry, separated by a blank line.
func (r Row) Text() string {
	parts := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		parts[i] = "**" + escapeMarkup(e.Word) + "**: " + escapeMarkup(e.Definition)
	}
	return strings.Join(parts, "\n\n")
}

var markupEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"&", `\&`,
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

// escapeMarkup keeps definition text literal inside the blob and on a
// single line.
func escapeMarkup(s string) string {
	return markupEscaper.Replace(s)
}
