package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag in the tree to its default. Flag values and their
// Changed state persist across Execute calls on the shared rootCmd.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns its error.
func execCmd(args ...string) error {
	resetFlags(rootCmd)
	cfg = nil
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	if err := execCmd(args...); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

// tempHome points HOME at a fresh directory for the duration of the test.
func tempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })
	os.Setenv("HOME", home)
	return home
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestCLI_Generate_Analyze_Tree(t *testing.T) {
	home := tempHome(t)

	rev := filepath.Join(home, "rev.txt.gz")
	runCmd(t, "generate", "reversed", "--size", "2000", "--seed", "1", "-o", rev)
	if _, err := os.Stat(rev); err != nil {
		t.Fatalf("dataset not written: %v", err)
	}

	out := filepath.Join(home, "rev.md")
	runCmd(t, "analyze", rev, "--selector", "tree", "-o", out)
	body := readFile(t, out)
	for _, want := range []string{"[DATASET SUMMARY]", "[FEATURES]", "[RECOMMENDATION]", "Size: 2000", "Predicted best algorithm: Merge Sort"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in report:\n%s", want, body)
		}
	}

	tiny := filepath.Join(home, "tiny.txt")
	runCmd(t, "generate", "nearly-sorted", "--size", "40", "--seed", "2", "-o", tiny)
	out = filepath.Join(home, "tiny.md")
	runCmd(t, "analyze", tiny, "--selector", "tree", "-o", out)
	if body := readFile(t, out); !strings.Contains(body, "Predicted best algorithm: Insertion Sort") {
		t.Fatalf("expected insertion sort for a tiny dataset:\n%s", body)
	}
}

func TestCLI_Analyze_KNN_NeverQuadraticWhenLarge(t *testing.T) {
	home := tempHome(t)

	data := filepath.Join(home, "rev.zst")
	runCmd(t, "generate", "reversed", "--size", "5000", "-o", data)
	out := filepath.Join(home, "rev.json")
	runCmd(t, "analyze", data, "--selector", "knn", "-k", "3", "--format", "json", "-o", out)
	var rep struct {
		Rec struct {
			Algorithm string `json:"algorithm"`
			Rule      string `json:"rule"`
		} `json:"rec"`
	}
	if err := json.Unmarshal([]byte(readFile(t, out)), &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.Rec.Algorithm != "Merge Sort" && rep.Rec.Algorithm != "Quick Sort" {
		t.Fatalf("large dataset got %q", rep.Rec.Algorithm)
	}
	if rep.Rec.Rule != "k=3" {
		t.Fatalf("expected the k override in the rule, got %q", rep.Rec.Rule)
	}
}

func TestCLI_Analyze_Errors(t *testing.T) {
	home := tempHome(t)

	if err := execCmd("analyze", filepath.Join(home, "missing.txt")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
	empty := filepath.Join(home, "empty.txt")
	if err := os.WriteFile(empty, []byte("# nothing\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// An empty dataset is trivially sorted and still gets a recommendation.
	out := filepath.Join(home, "empty.md")
	runCmd(t, "analyze", empty, "--selector", "tree", "-o", out)
	if body := readFile(t, out); !strings.Contains(body, "Size: 0") {
		t.Fatalf("expected an empty report:\n%s", body)
	}
	bad := filepath.Join(home, "bad.txt")
	if err := os.WriteFile(bad, []byte("1 2 three\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := execCmd("analyze", bad); err == nil || !strings.Contains(err.Error(), "three") {
		t.Fatalf("expected parse error naming the token, got %v", err)
	}
	ok := filepath.Join(home, "ok.txt")
	if err := os.WriteFile(ok, []byte("3 1 2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := execCmd("analyze", ok, "--selector", "oracle"); err == nil {
		t.Fatalf("expected error for an unknown selector")
	}
	if err := execCmd("analyze", ok, "--format", "xml"); err == nil {
		t.Fatalf("expected error for an unknown format")
	}
}

func TestCLI_Generate_Errors(t *testing.T) {
	home := tempHome(t)
	out := filepath.Join(home, "x.txt")
	if err := execCmd("generate", "zigzag", "-o", out); err == nil {
		t.Fatalf("expected error for an unknown kind")
	}
	if err := execCmd("generate", "random", "--size", "0", "-o", out); err == nil {
		t.Fatalf("expected error for size 0")
	}
	if err := execCmd("generate", "random"); err == nil {
		t.Fatalf("expected error without --output")
	}
}

func TestCLI_Bench(t *testing.T) {
	home := tempHome(t)

	data := filepath.Join(home, "rand.lz4")
	runCmd(t, "generate", "random", "--size", "300", "--seed", "7", "-o", data)
	out := filepath.Join(home, "bench.md")
	runCmd(t, "bench", data, "--repeats", "1", "-o", out)
	body := readFile(t, out)
	for _, want := range []string{"[RECOMMENDATION]", "[BENCHMARK]", "| Merge Sort |", "| Quick Sort |", "Actual fastest:", "Result: prediction was"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in benchmark:\n%s", want, body)
		}
	}

	// Above the limit the quadratic sorts are skipped unless predicted.
	runCmd(t, "bench", data, "--selector", "tree", "--limit", "100", "--repeats", "1", "-o", out)
	if body := readFile(t, out); !strings.Contains(body, "| Bubble Sort | skipped") {
		t.Fatalf("expected bubble sort to be skipped:\n%s", body)
	}
}

func TestCLI_ConfigSetAndReload(t *testing.T) {
	home := tempHome(t)

	runCmd(t, "config", "set", "selector", "knn")
	runCmd(t, "config", "set", "knn_k", "3")
	runCmd(t, "config", "set", "reversed_policy", "quick")
	body := readFile(t, filepath.Join(home, ".sortwise", "config.yaml"))
	for _, want := range []string{"selector: knn", "knn_k: 3", "reversed_policy: quick"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in saved config:\n%s", want, body)
		}
	}

	if err := execCmd("config", "set", "selector", "oracle"); err == nil {
		t.Fatalf("expected error for an invalid selector")
	}
	if err := execCmd("config", "set", "no_such_key", "1"); err == nil {
		t.Fatalf("expected error for an unknown key")
	}
	if err := execCmd("config", "set", "sorted_threshold", "1.5"); err == nil {
		t.Fatalf("expected error for a ratio above 1")
	}
	if body2 := readFile(t, filepath.Join(home, ".sortwise", "config.yaml")); body2 != body {
		t.Fatalf("rejected values must not be saved:\n%s", body2)
	}

	// The saved selector is used by analyze.
	data := filepath.Join(home, "d.txt")
	runCmd(t, "generate", "random", "--size", "100", "--seed", "3", "-o", data)
	out := filepath.Join(home, "d.md")
	runCmd(t, "analyze", data, "-o", out)
	if got := readFile(t, out); !strings.Contains(got, "Selector: knn") {
		t.Fatalf("expected the configured knn selector:\n%s", got)
	}
	runCmd(t, "config", "show")
}

func TestCLI_ConfigSetIgnoresFlagOverrides(t *testing.T) {
	home := tempHome(t)

	runCmd(t, "--large-threshold", "50", "--selector", "knn", "config", "set", "knn_k", "3")
	body := readFile(t, filepath.Join(home, ".sortwise", "config.yaml"))
	for _, want := range []string{"knn_k: 3", "large_threshold: 1000", "quadratic_limit: 1000", "selector: tree"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in saved config:\n%s", want, body)
		}
	}
}

func TestCLI_KnowledgeBase_ExportAndUse(t *testing.T) {
	home := tempHome(t)

	kbPath := filepath.Join(home, "kb.yaml")
	runCmd(t, "kb", "export", "-o", kbPath)
	body := readFile(t, kbPath)
	if !strings.Contains(body, "exemplars:") || !strings.Contains(body, "best: insertion") {
		t.Fatalf("unexpected export:\n%s", body)
	}
	runCmd(t, "kb", "show", "--file", kbPath)

	// A one-exemplar base predicts its own label for anything small.
	custom := filepath.Join(home, "custom.yaml")
	doc := "exemplars:\n  - {size: 10, sortedness: 0.5, reversedness: 0.5, uniqueness: 1.0, best: bubble}\n"
	if err := os.WriteFile(custom, []byte(doc), 0o644); err != nil {
		t.Fatalf("write kb: %v", err)
	}
	runCmd(t, "config", "set", "knowledge_base_file", custom)
	data := filepath.Join(home, "d.txt")
	if err := os.WriteFile(data, []byte("5 3 8 1 9 2\n"), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	out := filepath.Join(home, "d.md")
	runCmd(t, "analyze", data, "--selector", "knn", "-o", out)
	if got := readFile(t, out); !strings.Contains(got, "Predicted best algorithm: Bubble Sort") {
		t.Fatalf("expected the custom knowledge base to decide:\n%s", got)
	}

	if err := execCmd("kb", "show", "--file", filepath.Join(home, "missing.yaml")); err == nil {
		t.Fatalf("expected error for a missing knowledge base")
	}
}
