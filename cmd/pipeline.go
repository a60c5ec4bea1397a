package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/sortwise-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/sortwise-cli/internal/config"
	"github.com/KaramelBytes/sortwise-cli/internal/dataset"
	"github.com/KaramelBytes/sortwise-cli/internal/optimizer"
)

// analyzeRequest carries per-command overrides on top of the loaded configuration.
type analyzeRequest struct {
	Selector   string
	K          int
	Sampler    string
	SampleSize int
	Preview    int
}

// analyzed is one dataset after extraction and selection.
type analyzed struct {
	Path     string
	Seq      []int
	Report   *analysis.Report
	Decision optimizer.Decision
}

// buildSelector applies request overrides and constructs the selector.
func buildSelector(c *cfgpkg.Global, req analyzeRequest) (optimizer.Selector, error) {
	local := *c
	if req.K > 0 {
		local.KNNK = req.K
	}
	return local.NewSelector(req.Selector)
}

func extractOptions(c *cfgpkg.Global, req analyzeRequest) analysis.Options {
	opt := c.ExtractOptions()
	if req.Sampler != "" {
		opt.Sampler = analysis.Sampler(req.Sampler)
	}
	if req.SampleSize > 0 {
		opt.SampleSize = req.SampleSize
	}
	return opt
}

// analyzeFile reads path, extracts features and asks sel for a decision.
func analyzeFile(path string, sel optimizer.Selector, opt analysis.Options, preview int) (*analyzed, error) {
	seq, err := dataset.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := analysis.Extract(seq, opt)
	if err != nil {
		return nil, err
	}
	d, err := sel.Select(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rep := analysis.NewReport(filepath.Base(path), seq, f, preview)
	rep.Rec = d.Recommendation()
	return &analyzed{Path: path, Seq: seq, Report: rep, Decision: d}, nil
}

// printTrace writes the k-NN neighbour table to stderr.
func printTrace(d optimizer.Decision) {
	if d.Trace == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "[knn] nearest neighbours (k=%d):\n", d.Trace.K)
	for _, nb := range d.Trace.Neighbors {
		fmt.Fprintf(os.Stderr, "  rank %d: %s (dist %.4f, weight %.4g)\n", nb.Rank, nb.Exemplar.Best, nb.Distance, nb.Weight)
	}
	fmt.Fprintf(os.Stderr, "[knn] raw prediction: %s\n", d.Trace.Raw)
	if d.Trace.Overridden {
		fmt.Fprintf(os.Stderr, "[knn] safety override: %s -> %s\n", d.Trace.Raw, d.Algorithm)
	}
}

// expandInputs resolves globs, drops duplicates and sorts the result.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}
