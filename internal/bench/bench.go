// Package bench checks a selector's prediction against measured runs of every sort.
package bench

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/sortwise-cli/internal/optimizer"
	"github.com/KaramelBytes/sortwise-cli/internal/sorting"
)

// Options controls an evaluation.
type Options struct {
	// QuadraticLimit skips bubble and insertion above this size unless one was predicted.
	QuadraticLimit int
	// Repeats is how many timed runs each algorithm gets; the fastest is kept.
	Repeats int
}

// DefaultOptions mirrors the large-dataset threshold of the selectors.
func DefaultOptions() Options {
	return Options{QuadraticLimit: 1000, Repeats: 3}
}

var sorters = map[optimizer.Algorithm]sorting.Func{
	optimizer.Bubble:    sorting.Bubble,
	optimizer.Insertion: sorting.Insertion,
	optimizer.Merge:     sorting.Merge,
	optimizer.Quick:     sorting.Quick,
}

// SorterFor returns the implementation that runs a.
func SorterFor(a optimizer.Algorithm) (sorting.Func, bool) {
	fn, ok := sorters[a]
	return fn, ok
}

// Run is the measurement of one algorithm.
type Run struct {
	Algorithm optimizer.Algorithm
	Metrics   sorting.Metrics
	Skipped   bool
}

// Result is the outcome of an evaluation.
type Result struct {
	ID        string
	Name      string
	Size      int
	Decision  optimizer.Decision
	Runs      []Run
	Fastest   optimizer.Algorithm
	Correct   bool
	Completed time.Time
}

// Evaluate runs the algorithms on copies of data and compares the fastest with the
// decision's algorithm. Elapsed time decides the winner; comparisons break ties.
func Evaluate(name string, data []int, d optimizer.Decision, opt Options) (*Result, error) {
	if opt.Repeats <= 0 {
		opt.Repeats = 1
	}
	if _, ok := sorters[d.Algorithm]; !ok {
		return nil, fmt.Errorf("no sorter for algorithm %d", int(d.Algorithm))
	}
	res := &Result{ID: uuid.NewString(), Name: name, Size: len(data), Decision: d}

	best := -1
	for _, a := range optimizer.Algorithms() {
		run := Run{Algorithm: a}
		if a.Quadratic() && len(data) > opt.QuadraticLimit && a != d.Algorithm {
			run.Skipped = true
			res.Runs = append(res.Runs, run)
			continue
		}
		run.Metrics = measure(a, data, opt.Repeats)
		if !run.Metrics.Sorted {
			return nil, fmt.Errorf("%s produced unsorted output", a)
		}
		if best < 0 || faster(run.Metrics, res.Runs[best].Metrics) {
			best = len(res.Runs)
		}
		res.Runs = append(res.Runs, run)
	}
	if best < 0 {
		return nil, errors.New("no algorithm was run")
	}
	res.Fastest = res.Runs[best].Algorithm
	res.Correct = res.Fastest == d.Algorithm
	res.Completed = time.Now()
	return res, nil
}

func measure(a optimizer.Algorithm, data []int, repeats int) sorting.Metrics {
	var m sorting.Metrics
	for i := 0; i < repeats; i++ {
		runtime.GC()
		cur := sorting.Measure(a.String(), sorters[a], data)
		if i == 0 || cur.Elapsed < m.Elapsed {
			m = cur
		}
	}
	return m
}

func faster(a, b sorting.Metrics) bool {
	if a.Elapsed != b.Elapsed {
		return a.Elapsed < b.Elapsed
	}
	return a.Comparisons < b.Comparisons
}

// Markdown renders the evaluation as a table plus verdict.
func (r *Result) Markdown() string {
	var b strings.Builder
	b.WriteString("[BENCHMARK]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Run: %s\n", r.ID))
	b.WriteString(fmt.Sprintf("Size: %d\n", r.Size))
	b.WriteString(fmt.Sprintf("Predicted: %s (%s selector)\n\n", r.Decision.Algorithm, r.Decision.Selector))

	b.WriteString("| Algorithm | Comparisons | Time (ms) |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, run := range r.Runs {
		if run.Skipped {
			b.WriteString(fmt.Sprintf("| %s | skipped (O(N^2)) | - |\n", run.Algorithm))
			continue
		}
		ms := float64(run.Metrics.Elapsed.Nanoseconds()) / 1e6
		b.WriteString(fmt.Sprintf("| %s | %d | %.3f |\n", run.Algorithm, run.Metrics.Comparisons, ms))
	}

	b.WriteString(fmt.Sprintf("\nActual fastest: %s\n", r.Fastest))
	if r.Correct {
		b.WriteString("Result: prediction was CORRECT\n")
	} else {
		b.WriteString("Result: prediction was INCORRECT\n")
	}
	return b.String()
}
