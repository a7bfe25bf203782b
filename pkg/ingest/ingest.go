package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/japaniel/hldict/pkg/db"
	"github.com/japaniel/hldict/pkg/logging"
)

// SourceTypePDF is the source type recorded for highlighted documents.
const SourceTypePDF = "pdf"

// Vocabulary is the outcome of one run, reduced to what the store keeps.
type Vocabulary struct {
	RunID      string
	SourcePath string
	Title      string
	PageCount  int
	OutputPath string
	// Pages maps a page number to the words highlighted on it, duplicates
	// included.
	Pages map[int][]string
	// Definitions maps a word to its definition. An empty string means the
	// lookup failed and any stored definition is kept.
	Definitions map[string]string
}

// Recorder writes run vocabularies into the vocabulary store.
type Recorder struct {
	DB        *sql.DB
	BatchSize int
	Language  string
	// OnProgress is called after each word is queued with the number of
	// words queued so far and the total.
	OnProgress func(current, total int)
}

// NewRecorder creates a Recorder over conn.
func NewRecorder(conn *sql.DB) *Recorder {
	return &Recorder{
		DB:        conn,
		BatchSize: 50,
		Language:  "en",
	}
}

// wordUsage is the per-source aggregate of one word.
type wordUsage struct {
	Word       string
	Definition string
	Count      int
	Pages      []int
}

// aggregate folds the per-page words into one usage per word, sorted by word.
func aggregate(v Vocabulary) []wordUsage {
	byWord := make(map[string]*wordUsage)
	pages := make([]int, 0, len(v.Pages))
	for p := range v.Pages {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	for _, p := range pages {
		for _, w := range v.Pages[p] {
			u, ok := byWord[w]
			if !ok {
				u = &wordUsage{Word: w, Definition: v.Definitions[w]}
				byWord[w] = u
			}
			u.Count++
			if n := len(u.Pages); n == 0 || u.Pages[n-1] != p {
				u.Pages = append(u.Pages, p)
			}
		}
	}

	out := make([]wordUsage, 0, len(byWord))
	for _, u := range byWord {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out
}

// Record stores the source, every word with its definition and per-source
// usage, and the run itself. It returns the number of words linked.
func (r *Recorder) Record(ctx context.Context, v Vocabulary) (int, error) {
	if r.DB == nil {
		return 0, fmt.Errorf("recorder has no database")
	}
	logger := logging.FromContext(ctx)

	sourceID, err := db.CreateOrGetSource(r.DB, SourceTypePDF, v.Title, v.SourcePath, v.PageCount)
	if err != nil {
		return 0, fmt.Errorf("persist source: %w", err)
	}

	usages := aggregate(v)
	total := len(usages)
	seenAt := time.Now()
	var linked int64
	var notFound int

	bw := NewBatchWriter(r.DB, r.BatchSize, 0)
	bw.OnError = func(e error) {
		logger.Warn("vocabulary batch failed", "source", v.SourcePath, "error", e)
	}

	var submitErr error
	for i, u := range usages {
		if err := ctx.Err(); err != nil {
			submitErr = err
			break
		}
		if u.Definition == "" {
			notFound++
		}
		err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			wordID, err := db.CreateOrGetWord(tx, u.Word, u.Definition, r.Language)
			if err != nil {
				return fmt.Errorf("failed to persist word %s: %w", u.Word, err)
			}
			if err := db.LinkWordToSource(tx, wordID, sourceID, u.Pages, u.Count, seenAt); err != nil {
				return fmt.Errorf("failed to link word %d: %w", wordID, err)
			}
			atomic.AddInt64(&linked, 1)
			return nil
		})
		if err != nil {
			submitErr = err
			break
		}
		if r.OnProgress != nil {
			r.OnProgress(i+1, total)
		}
	}

	// Words no longer highlighted in this source keep no link.
	var pruned int64
	if submitErr == nil {
		submitErr = bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			n, err := db.PruneSourceLinks(tx, sourceID, seenAt)
			pruned = n
			return err
		})
	}

	if submitErr == nil && v.RunID != "" {
		run := db.Run{
			ID:            v.RunID,
			SourceID:      sourceID,
			OutputPath:    v.OutputPath,
			WordCount:     total,
			NotFoundCount: notFound,
			CreatedAt:     seenAt,
		}
		submitErr = bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			return db.RecordRun(tx, run)
		})
	}

	closeErr := bw.Close()
	n := int(atomic.LoadInt64(&linked))
	if submitErr != nil {
		return n, submitErr
	}
	if closeErr != nil {
		return n, closeErr
	}
	logger.Debug("vocabulary recorded", "source", v.SourcePath, "words", n, "not_found", notFound, "pruned", pruned)
	return n, nil
}

// Lookup returns the stored source for path with its vocabulary.
func (r *Recorder) Lookup(path string) (db.Source, []db.VocabEntry, error) {
	src, err := db.GetSourceByPath(r.DB, path)
	if err != nil {
		return db.Source{}, nil, err
	}
	entries, err := db.GetWordsBySource(r.DB, src.ID)
	if err != nil {
		return src, nil, fmt.Errorf("list vocabulary: %w", err)
	}
	return src, entries, nil
}
