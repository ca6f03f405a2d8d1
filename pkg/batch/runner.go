package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/japaniel/vocabmark/pkg/scan"
	"github.com/japaniel/vocabmark/pkg/widget"
)

var errNotProcessed = errors.New("not processed")

// Task annotates one input file into one output file.
type Task struct {
	Input  string
	Output string
}

// Result is the outcome of a Task.
type Result struct {
	Task  Task
	Stats scan.Stats
	Err   error
}

// Runner annotates files in parallel with one widget session per file.
type Runner struct {
	// NewSession creates the session for a single file.
	NewSession func() (*widget.Session, error)
	Workers    int
	// Pool overrides the worker pool, mostly for tests.
	Pool Pool
	Log  *zap.Logger
}

// Tasks maps inputs to outputs in outDir, keeping base names. An ".annotated"
// suffix is added before the extension when outDir holds the inputs.
func Tasks(inputs []string, outDir string) []Task {
	tasks := make([]Task, 0, len(inputs))
	for _, in := range inputs {
		base := filepath.Base(in)
		if sameDir(filepath.Dir(in), outDir) {
			ext := filepath.Ext(base)
			base = strings.TrimSuffix(base, ext) + ".annotated" + ext
		}
		tasks = append(tasks, Task{Input: in, Output: filepath.Join(outDir, base)})
	}
	return tasks
}

func sameDir(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}

// Run processes tasks and returns one result per task in input order. The
// error aggregates every failed task.
func (r *Runner) Run(ctx context.Context, tasks []Task) ([]Result, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	if r.NewSession == nil {
		return nil, fmt.Errorf("batch: runner has no session factory")
	}

	pool := r.Pool
	if pool == nil {
		pool = NewWorkerPool(r.Workers, len(tasks))
	}

	results := make([]Result, len(tasks))
	for i, t := range tasks {
		results[i] = Result{Task: t, Err: errNotProcessed}
	}

	start := time.Now()
	pool.Start(ctx)
	var submitErr error
	for i := range tasks {
		err := pool.SubmitCtx(ctx, func(ctx context.Context) error {
			st, err := r.annotate(ctx, tasks[i])
			results[i].Stats, results[i].Err = st, err
			if err != nil {
				log.Warn("Failed to annotate", zap.String("input", tasks[i].Input), zap.Error(err))
			}
			return err
		})
		if err != nil {
			submitErr = fmt.Errorf("submit %s: %w", tasks[i].Input, err)
			break
		}
	}
	pool.Close()

	var errs error
	errs = multierr.Append(errs, submitErr)
	done := 0
	for i := range results {
		if errors.Is(results[i].Err, errNotProcessed) && ctx.Err() != nil {
			results[i].Err = fmt.Errorf("%w: %w", errNotProcessed, ctx.Err())
		}
		if results[i].Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", results[i].Task.Input, results[i].Err))
			continue
		}
		done++
	}
	log.Info("Batch finished",
		zap.Int("files", len(tasks)),
		zap.Int("annotated", done),
		zap.Duration("took", time.Since(start)))
	return results, errs
}

func (r *Runner) annotate(ctx context.Context, t Task) (st scan.Stats, err error) {
	if err := ctx.Err(); err != nil {
		return st, err
	}
	s, err := r.NewSession()
	if err != nil {
		return st, fmt.Errorf("create session: %w", err)
	}

	in, err := os.Open(t.Input)
	if err != nil {
		return st, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(t.Output), 0o755); err != nil {
		return st, err
	}
	out, err := os.Create(t.Output)
	if err != nil {
		return st, err
	}
	defer func() { err = multierr.Append(err, out.Close()) }()

	return s.AnnotateHTML(in, out)
}

var _ Pool = (*WorkerPool)(nil)
