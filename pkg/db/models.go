package db

import "time"

// Word is a stored vocabulary word with the last definition fetched for it.
type Word struct {
	ID         int64
	Word       string
	Language   string
	Definition string
	UpdatedAt  time.Time
}

// Source is a document words were highlighted in.
type Source struct {
	ID         int64
	SourceType string
	Title      string
	Path       string
	PageCount  int
	AddedAt    time.Time
}

// WordSource links a Word with a Source. Pages lists the pages the word was
// highlighted on in the most recent run over that source.
type WordSource struct {
	ID              int64
	WordID          int64
	SourceID        int64
	OccurrenceCount int
	Pages           []int
	FirstSeenAt     time.Time
	LastSeenAt      time.Time
}

// VocabEntry is a row of a source's vocabulary listing.
type VocabEntry struct {
	Word            string
	Definition      string
	OccurrenceCount int
	Pages           []int
}

// Run records one report generation.
type Run struct {
	ID            string
	SourceID      int64
	OutputPath    string
	WordCount     int
	NotFoundCount int
	CreatedAt     time.Time
}
