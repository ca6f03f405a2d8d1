package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/multierr"

	"github.com/japaniel/vocabmark/pkg/widget"
)

func newSession() (*widget.Session, error) {
	return widget.New(widget.DefaultConfig())
}

func writeInputs(t *testing.T, dir string, pages map[string]string) []string {
	t.Helper()
	var paths []string
	for name, body := range pages {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestTasks(t *testing.T) {
	tasks := Tasks([]string{"in/a.html", "in/b.htm"}, "out")
	want := []Task{
		{Input: "in/a.html", Output: filepath.Join("out", "a.html")},
		{Input: "in/b.htm", Output: filepath.Join("out", "b.htm")},
	}
	if !reflect.DeepEqual(tasks, want) {
		t.Fatalf("Tasks() = %v, want %v", tasks, want)
	}

	tasks = Tasks([]string{"in/a.html"}, "in")
	if got := tasks[0].Output; got != filepath.Join("in", "a.annotated.html") {
		t.Fatalf("expected suffixed output in input dir, got %s", got)
	}
}

func TestRunWritesOneOutputPerInput(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	inputs := writeInputs(t, in, map[string]string{
		"one.html":   `<p>[run:跑]</p>`,
		"two.html":   `<p>[_:answer] [x]</p>`,
		"three.html": `<p>nothing here</p>`,
	})

	r := &Runner{NewSession: newSession, Workers: 2}
	results, err := r.Run(context.Background(), Tasks(inputs, out))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("%s: %v", res.Task.Input, res.Err)
		}
		body, err := os.ReadFile(res.Task.Output)
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		if !strings.Contains(string(body), `id="vocabmark-data"`) {
			t.Errorf("%s: records were not embedded", res.Task.Output)
		}
		st := res.Stats
		switch filepath.Base(res.Task.Input) {
		case "one.html":
			if st.Vocabs != 1 {
				t.Errorf("one.html: expected 1 vocab, got %+v", st)
			}
		case "two.html":
			if st.Blanks != 1 || st.Literals != 1 {
				t.Errorf("two.html: expected 1 blank and 1 literal, got %+v", st)
			}
		case "three.html":
			if st.Candidates != 0 {
				t.Errorf("three.html: expected no candidates, got %+v", st)
			}
		}
	}
}

func TestRunAggregatesErrors(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	inputs := writeInputs(t, in, map[string]string{"ok.html": `<p>[a:b]</p>`})
	inputs = append(inputs, filepath.Join(in, "missing1.html"), filepath.Join(in, "missing2.html"))

	r := &Runner{NewSession: newSession, Workers: 3}
	results, err := r.Run(context.Background(), Tasks(inputs, out))
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", n, err)
	}
	if results[0].Err != nil {
		t.Fatalf("ok.html failed: %v", results[0].Err)
	}
	if !strings.Contains(err.Error(), "missing1.html") {
		t.Fatalf("error does not name the input: %v", err)
	}
}

type failingPool struct{}

func (f *failingPool) Start(ctx context.Context) {}
func (f *failingPool) Submit(job Job) error      { return errors.New("submit failed") }
func (f *failingPool) SubmitCtx(ctx context.Context, job Job) error {
	return errors.New("submit failed")
}
func (f *failingPool) Close() {}

func TestRunHandlesSubmitError(t *testing.T) {
	r := &Runner{NewSession: newSession, Pool: &failingPool{}}
	results, err := r.Run(context.Background(), []Task{{Input: "a", Output: "b"}, {Input: "c", Output: "d"}})
	if err == nil || !strings.Contains(err.Error(), "submit failed") {
		t.Fatalf("expected submit error, got %v", err)
	}
	for _, res := range results {
		if !errors.Is(res.Err, errNotProcessed) {
			t.Errorf("%s: expected errNotProcessed, got %v", res.Task.Input, res.Err)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	inputs := writeInputs(t, in, map[string]string{"a.html": `<p>[a:b]</p>`})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Runner{NewSession: newSession}
	results, err := r.Run(ctx, Tasks(inputs, out))
	if err == nil {
		t.Fatalf("expected error for cancelled run")
	}
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", results[0].Err)
	}
	if _, err := os.Stat(results[0].Task.Output); !os.IsNotExist(err) {
		t.Fatalf("output should not exist, stat err = %v", err)
	}
}

func TestRunRequiresSessionFactory(t *testing.T) {
	if _, err := (&Runner{}).Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error without session factory")
	}
}
