// Package hldict runs one highlighted-words-to-definitions job: read the
// highlights of a PDF, look the words up, and write the definitions table.
package hldict

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/japaniel/hldict/pkg/dictionary"
	"github.com/japaniel/hldict/pkg/document"
	"github.com/japaniel/hldict/pkg/highlight"
	"github.com/japaniel/hldict/pkg/ingest"
	"github.com/japaniel/hldict/pkg/logging"
	"github.com/japaniel/hldict/pkg/report"
)

var (
	// ErrOpenDocument wraps any failure to open the input PDF.
	ErrOpenDocument = errors.New("error opening PDF")
	// ErrWriteOutput wraps any failure to produce the report file.
	ErrWriteOutput = errors.New("error writing PDF")
)

// Outcome is how a successful run ended.
type Outcome int

const (
	// OutcomeGenerated means a report was written.
	OutcomeGenerated Outcome = iota
	// OutcomeNoHighlights means the document had no highlighted words and
	// nothing was written.
	OutcomeNoHighlights
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGenerated:
		return "generated"
	case OutcomeNoHighlights:
		return "no_highlights"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result describes a finished run.
type Result struct {
	Outcome     Outcome
	RunID       string
	OutputPath  string
	PageCount   int
	Index       highlight.Index
	Definitions dictionary.Definitions
	Rows        int
	NotFound    int
	// Recorded is the number of words written to the vocabulary store.
	Recorded int
}

// VocabularyRecorder stores the vocabulary of a finished run.
type VocabularyRecorder interface {
	Record(ctx context.Context, v ingest.Vocabulary) (int, error)
}

// Options configures a Processor. Zero values pick the defaults.
type Options struct {
	// Log receives the human-readable progress lines.
	Log      func(string)
	Opener   document.Opener
	Definer  dictionary.Definer
	Workers  int
	Metrics  *dictionary.Metrics
	Renderer *report.Renderer
	// Recorder is optional. Its failures are logged and never fail a run.
	Recorder VocabularyRecorder
}

// Processor turns highlighted PDFs into definition tables. It keeps no
// state between calls to Process.
type Processor struct {
	opts Options
}

// New creates a Processor, filling unset options with the PDF reader, the
// Free Dictionary API client and the A4 renderer.
func New(opts Options) *Processor {
	if opts.Log == nil {
		opts.Log = func(string) {}
	}
	if opts.Opener == nil {
		opts.Opener = document.NewPDFOpener()
	}
	if opts.Definer == nil {
		opts.Definer = dictionary.NewClient(dictionary.DefaultBaseURL, dictionary.DefaultTimeout)
	}
	if opts.Renderer == nil {
		opts.Renderer = report.NewRenderer()
	}
	return &Processor{opts: opts}
}

// Process reads the highlights of the PDF at path, fetches a definition for
// every distinct highlighted word and writes the table to the resolved
// output name. A document without highlights ends with OutcomeNoHighlights
// and no file.
func (p *Processor) Process(ctx context.Context, path, outputName string) (Result, error) {
	runID, ok := logging.RunID(ctx)
	if !ok {
		runID = logging.NewRunID()
		ctx = logging.WithRunID(ctx, runID)
	}
	logger := logging.FromContext(ctx)
	logf := p.opts.Log
	res := Result{RunID: runID}

	logf("Opening PDF: " + path)
	doc, err := p.opts.Opener.Open(ctx, path)
	if err != nil {
		logf(fmt.Sprintf("Error opening PDF: %v", err))
		return res, fmt.Errorf("%w: %w", ErrOpenDocument, err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			logger.Warn("failed to close document", "path", path, "error", cerr)
		}
	}()
	res.PageCount = doc.PageCount()

	idx, err := highlight.Build(ctx, doc, logf)
	if err != nil {
		return res, fmt.Errorf("read highlights: %w", err)
	}
	res.Index = idx
	if len(idx) == 0 {
		logf("No highlighted words found.")
		res.Outcome = OutcomeNoHighlights
		return res, nil
	}

	logf("Fetching definitions for highlighted words...")
	fetcher := dictionary.NewFetcher(p.opts.Definer, p.opts.Workers)
	fetcher.Metrics = p.opts.Metrics
	fetcher.OnProgress = func(word string, done, total int) {
		logf(fmt.Sprintf("Fetched definition for '%s' (%d/%d)", word, done, total))
	}
	defs := fetcher.Fetch(ctx, idx.WordSet())
	res.Definitions = defs
	res.NotFound = defs.NotFoundCount()
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("fetch definitions: %w", err)
	}
	logger.Info("definitions fetched", "words", len(defs), "not_found", res.NotFound)

	logf("Generating output PDF...")
	rows := report.BuildRows(idx, defs)
	res.Rows = len(rows)
	out := report.OutputPath(outputName)

	pdf, err := p.opts.Renderer.Render(rows)
	if err == nil {
		err = report.WriteFile(ctx, out, pdf)
	}
	if err != nil {
		logf(fmt.Sprintf("Error writing PDF: %v", err))
		return res, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	res.OutputPath = out
	res.Outcome = OutcomeGenerated
	logf("PDF successfully generated: " + out)

	if p.opts.Recorder != nil {
		n, err := p.opts.Recorder.Record(ctx, vocabulary(runID, path, out, res.PageCount, idx, defs))
		if err != nil {
			logger.Warn("failed to record vocabulary", "path", path, "error", err)
		}
		res.Recorded = n
	}
	return res, nil
}

// vocabulary converts a run into what the store keeps. Failed lookups are
// stored without a definition.
func vocabulary(runID, path, out string, pageCount int, idx highlight.Index, defs dictionary.Definitions) ingest.Vocabulary {
	source := path
	if abs, err := filepath.Abs(path); err == nil {
		source = abs
	}
	definitions := make(map[string]string, len(defs))
	for w, d := range defs {
		if d == dictionary.NotFound {
			d = ""
		}
		definitions[w] = d
	}
	return ingest.Vocabulary{
		RunID:       runID,
		SourcePath:  source,
		Title:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		PageCount:   pageCount,
		OutputPath:  out,
		Pages:       idx,
		Definitions: definitions,
	}
}
