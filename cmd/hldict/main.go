package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/japaniel/hldict/pkg/config"
	"github.com/japaniel/hldict/pkg/db"
	"github.com/japaniel/hldict/pkg/dictionary"
	"github.com/japaniel/hldict/pkg/hldict"
	"github.com/japaniel/hldict/pkg/ingest"
	"github.com/japaniel/hldict/pkg/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 2
	}

	pdfFlag := flag.String("pdf", "", "Path to the highlighted PDF (prompted for when empty)")
	outFlag := flag.String("out", cfg.Output, "Output PDF name")
	workersFlag := flag.Int("workers", cfg.Workers, "Concurrent definition lookups")
	timeoutFlag := flag.Duration("timeout", cfg.RequestTimeout, "Timeout for each definition lookup")
	vocabFlag := flag.String("vocab-db", cfg.VocabDB, "Path to SQLite vocabulary database (disabled when empty)")
	metricsFlag := flag.String("metrics-file", cfg.MetricsFile, "Write lookup metrics in Prometheus text format to this file")
	listFlag := flag.Bool("list-vocab", false, "Print the stored vocabulary of -pdf and exit")
	flag.Parse()

	cfg.Output = *outFlag
	cfg.Workers = *workersFlag
	cfg.RequestTimeout = *timeoutFlag
	cfg.VocabDB = *vocabFlag
	cfg.MetricsFile = *metricsFlag
	if err := cfg.Validate(); err != nil {
		log.Printf("Invalid configuration: %v", err)
		return 2
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	path := *pdfFlag
	if path == "" {
		path, err = promptPath(os.Stdin, os.Stdout)
		if err != nil {
			log.Printf("Failed to read PDF path: %v", err)
			return 2
		}
	}

	var recorder *ingest.Recorder
	if cfg.VocabDB != "" {
		conn, err := db.Open(cfg.VocabDB)
		if err != nil {
			log.Printf("Failed to open vocabulary database: %v", err)
			return 1
		}
		defer conn.Close()
		recorder = ingest.NewRecorder(conn)
	}

	if *listFlag {
		if recorder == nil {
			log.Printf("-list-vocab needs -vocab-db")
			return 2
		}
		if err := listVocabulary(os.Stdout, recorder, path); err != nil {
			log.Printf("Failed to list vocabulary: %v", err)
			return 1
		}
		return 0
	}

	opts := hldict.Options{
		Log:     func(line string) { fmt.Println(line) },
		Definer: dictionary.NewClient(cfg.DictionaryURL, cfg.RequestTimeout).
			WithHTTPClient(dictionary.NewHTTPClient(cfg.Workers)),
		Workers: cfg.Workers,
	}
	if cfg.MetricsFile != "" {
		opts.Metrics = dictionary.NewMetrics()
	}
	if recorder != nil {
		opts.Recorder = recorder
	}

	res, err := hldict.New(opts).Process(ctx, path, cfg.Output)

	if opts.Metrics != nil {
		if merr := opts.Metrics.WriteTextfile(cfg.MetricsFile); merr != nil {
			slog.Warn("failed to write metrics", "path", cfg.MetricsFile, "error", merr)
		}
	}

	if err != nil {
		switch {
		case errors.Is(err, hldict.ErrOpenDocument), errors.Is(err, hldict.ErrWriteOutput):
		case errors.Is(err, context.Canceled):
			fmt.Println("Cancelled.")
		default:
			fmt.Printf("Processing failed: %v\n", err)
		}
		slog.Error("run failed", "run_id", res.RunID, "error", err)
		return 1
	}
	slog.Info("run finished",
		"run_id", res.RunID,
		"outcome", res.Outcome.String(),
		"pages", res.PageCount,
		"rows", res.Rows,
		"not_found", res.NotFound,
		"recorded", res.Recorded,
	)
	return 0
}

// promptPath asks for the PDF path on stdin. Surrounding quotes, as left by
// dragging a file into a terminal, are removed.
func promptPath(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Please enter the path of pdf: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	path := cleanPath(line)
	if path == "" {
		return "", errors.New("no path given")
	}
	return path, nil
}

func cleanPath(s string) string {
	return strings.Trim(strings.TrimSpace(s), `'"`)
}

func listVocabulary(w io.Writer, rec *ingest.Recorder, path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	src, entries, err := rec.Lookup(path)
	if errors.Is(err, db.ErrNotFound) {
		fmt.Fprintf(w, "No vocabulary recorded for %s\n", path)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%d pages, %d words)\n", src.Title, src.PageCount, len(entries))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WORD\tCOUNT\tPAGES\tDEFINITION")
	for _, e := range entries {
		pages := make([]string, len(e.Pages))
		for i, p := range e.Pages {
			pages[i] = fmt.Sprint(p)
		}
		def := e.Definition
		if def == "" {
			def = dictionary.NotFound
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.Word, e.OccurrenceCount, strings.Join(pages, ","), def)
	}
	return tw.Flush()
}
