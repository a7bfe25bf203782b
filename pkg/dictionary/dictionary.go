// Package dictionary looks up English definitions over the Free Dictionary
// API and fans the lookups out over a bounded worker pool.
package dictionary

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_definer.go -package=mocks github.com/japaniel/hldict/pkg/dictionary Definer

import (
	"context"
	"encoding/json"
	"fmt"
)

// NotFound is the definition recorded for any word whose lookup failed.
const NotFound = "Definition not found."

// Definer returns the short definition of one word.
type Definer interface {
	Define(ctx context.Context, word string) (string, error)
}

// Definitions maps a normalized word to its definition or NotFound.
type Definitions map[string]string

// Lookup returns the definition of word, or NotFound when it has none.
func (d Definitions) Lookup(word string) string {
	if def, ok := d[word]; ok {
		return def
	}
	return NotFound
}

// NotFoundCount returns how many words carry the NotFound placeholder.
func (d Definitions) NotFoundCount() int {
	n := 0
	for _, def := range d {
		if def == NotFound {
			n++
		}
	}
	return n
}

// Entry is one element of the API's top-level array.
type Entry struct {
	Word     string    `json:"word"`
	Phonetic string    `json:"phonetic,omitempty"`
	Meanings []Meaning `json:"meanings"`
}

// Meaning groups definitions under a part of speech.
type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech,omitempty"`
	Definitions  []Definition `json:"definitions"`
}

// Definition is a single sense.
type Definition struct {
	Definition string `json:"definition"`
	Example    string `json:"example,omitempty"`
}

// FirstDefinition decodes an API response body and returns the first
// entry's first meaning's first definition. A body that is not JSON fails
// with ErrDecode; a body that decodes but lacks that path fails with ErrShape.
func FirstDefinition(body []byte) (string, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return "", fmt.Errorf("%w: %v", ErrShape, err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("%w: no entries", ErrShape)
	}
	if len(entries[0].Meanings) == 0 {
		return "", fmt.Errorf("%w: no meanings", ErrShape)
	}
	if len(entries[0].Meanings[0].Definitions) == 0 {
		return "", fmt.Errorf("%w: no definitions", ErrShape)
	}
	def := entries[0].Meanings[0].Definitions[0].Definition
	if def == "" {
		return "", fmt.Errorf("%w: empty definition", ErrShape)
	}
	return def, nil
}
