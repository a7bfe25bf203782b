package dictionary

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/japaniel/hldict/pkg/ingest"
	"github.com/japaniel/hldict/pkg/logging"
)

const (
	// DefaultWorkers is the lookup concurrency when none is configured.
	DefaultWorkers = 16
	// MaxWorkers caps the lookup concurrency.
	MaxWorkers = 256
)

// Pool abstracts the worker pool so tests can inject their own.
type Pool interface {
	Start(ctx context.Context)
	SubmitCtx(ctx context.Context, job ingest.Job) error
	Close()
}

// Fetcher resolves a set of words concurrently.
type Fetcher struct {
	Definer Definer
	Workers int
	// OnProgress is called once per finished lookup with the number of
	// lookups done so far. Calls are serialized.
	OnProgress func(word string, done, total int)
	// Metrics is optional.
	Metrics *Metrics
	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) Pool
}

// NewFetcher creates a fetcher over d with the given concurrency.
func NewFetcher(d Definer, workers int) *Fetcher {
	return &Fetcher{Definer: d, Workers: workers}
}

// EffectiveWorkers clamps n to [1, MaxWorkers], mapping non-positive values
// to DefaultWorkers.
func EffectiveWorkers(n int) int {
	if n <= 0 {
		return DefaultWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// Fetch looks up every word once and returns a map with exactly one entry
// per distinct word. Any failed or unrun lookup leaves NotFound in place, so
// the result is complete even when ctx is cancelled mid-fetch.
func (f *Fetcher) Fetch(ctx context.Context, words []string) Definitions {
	defs := make(Definitions, len(words))
	var unique []string
	for _, w := range words {
		if _, ok := defs[w]; ok {
			continue
		}
		defs[w] = NotFound
		unique = append(unique, w)
	}
	total := len(unique)
	if total == 0 {
		return defs
	}

	workers := min(EffectiveWorkers(f.Workers), total)
	var pool Pool
	if f.PoolFactory != nil {
		pool = f.PoolFactory(workers, workers*2)
	} else {
		pool = ingest.NewWorkerPool(workers, workers*2)
	}
	logger := logging.WithComponent(ctx, "dictionary")
	if wp, ok := pool.(*ingest.WorkerPool); ok && wp.OnError == nil {
		wp.OnError = func(err error) {
			var word string
			var le *LookupError
			if errors.As(err, &le) {
				word = le.Word
			}
			logger.Debug("definition lookup failed", "word", word, "kind", KindOf(err), "error", err)
		}
	}
	pool.Start(ctx)

	var mu sync.Mutex
	done := 0

	for i, word := range unique {
		job := func(ctx context.Context) error {
			if f.Metrics != nil {
				f.Metrics.InFlight.Inc()
				defer f.Metrics.InFlight.Dec()
			}
			start := time.Now()
			def, err := f.Definer.Define(ctx, word)
			if f.Metrics != nil {
				f.Metrics.Observe(err, time.Since(start))
			}

			mu.Lock()
			defer mu.Unlock()
			if err == nil && def != "" {
				defs[word] = def
			}
			done++
			if f.OnProgress != nil {
				f.OnProgress(word, done, total)
			}
			return err
		}
		if err := pool.SubmitCtx(ctx, job); err != nil {
			logger.Warn("stopped submitting lookups", "submitted", i, "total", total, "error", err)
			break
		}
	}
	pool.Close()

	mu.Lock()
	defer mu.Unlock()
	out := make(Definitions, len(defs))
	for w, d := range defs {
		out[w] = d
	}
	return out
}
