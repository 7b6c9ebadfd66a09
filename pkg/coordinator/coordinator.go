// Package coordinator fans library files out to a fixed set of workers.
//
// Files go into one shared queue, largest first, and every worker pulls
// until the queue is empty. Each worker owns its rule instances and domain
// objects, prints into a private buffer and flushes it under one mutex after
// every file, so the console output of two files never interleaves. A
// failing file never stops the other workers.
package coordinator

import (
	"context"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/nsxbet/klc-reviewer/pkg/logger"
	"github.com/nsxbet/klc-reviewer/pkg/report"
)

// Worker checks one file at a time. Implementations are used by a single
// goroutine and need no locking.
type Worker interface {
	Process(ctx context.Context, path string, out *report.Printer) error
}

// Options configure a run.
type Options struct {
	// Workers is the number of goroutines; values below one mean one.
	Workers int
	// Output receives the flushed console output. Defaults to os.Stdout.
	Output io.Writer
	// Color enables ANSI colors in the worker printers.
	Color bool
	// Logger defaults to logger.New().
	Logger *logger.Logger
}

// FileError is a file whose processing failed.
type FileError struct {
	Worker int
	Path   string
	Err    error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// Outcome holds the workers ordered by index, so their results can be merged
// deterministically, plus the files that failed.
type Outcome[W Worker] struct {
	Workers []W
	Failed  []FileError
}

// SortBySize orders paths by file size, largest first. Paths that cannot be
// stat'ed sort last, in their original order, so the worker can report them.
func SortBySize(paths []string) []string {
	sizes := make(map[string]int64, len(paths))
	for _, p := range paths {
		sizes[p] = -1
		if info, err := os.Stat(p); err == nil {
			sizes[p] = info.Size()
		}
	}
	sorted := append([]string(nil), paths...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sizes[sorted[i]] > sizes[sorted[j]]
	})
	return sorted
}

// Run processes files with the workers built by newWorker. newWorker is
// called once per worker index before any file is processed. Run only
// returns an error when a worker cannot be built or ctx is cancelled; file
// failures are listed in the outcome.
func Run[W Worker](ctx context.Context, files []string, opts Options, newWorker func(i int) (W, error)) (*Outcome[W], error) {
	n := opts.Workers
	if n < 1 {
		n = 1
	}
	if len(files) > 0 && n > len(files) {
		n = len(files)
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	log := opts.Logger
	if log == nil {
		log = logger.New()
	}

	outcome := &Outcome[W]{Workers: make([]W, n)}
	for i := range outcome.Workers {
		w, err := newWorker(i)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create worker %d", i)
		}
		outcome.Workers[i] = w
	}

	queue := make(chan string, len(files))
	for _, f := range files {
		queue <- f
	}
	close(queue)

	var (
		flushMu sync.Mutex
		failed  = make([][]FileError, n)
	)
	eg := new(errgroup.Group)
	for i, w := range outcome.Workers {
		i, w := i, w
		wlog := log.ForWorker(i)
		eg.Go(func() error {
			printer := report.NewBufferedPrinter(opts.Color)
			for path := range queue {
				if err := ctx.Err(); err != nil {
					return err
				}
				wlog.Debug("Processing file", logger.File(path))
				if err := w.Process(ctx, path, printer); err != nil {
					wlog.Error("File check failed", logger.File(path), logger.Error(err))
					failed[i] = append(failed[i], FileError{Worker: i, Path: path, Err: err})
				}
				if err := printer.Flush(out, &flushMu); err != nil {
					wlog.Warn("Failed to flush output", logger.Error(err))
				}
			}
			return nil
		})
	}
	err := eg.Wait()

	for _, fe := range failed {
		outcome.Failed = append(outcome.Failed, fe...)
	}
	if err != nil {
		return outcome, errors.Wrap(err, "check run cancelled")
	}
	return outcome, nil
}
