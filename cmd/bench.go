package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/sortwise-cli/internal/bench"
	"github.com/KaramelBytes/sortwise-cli/internal/utils"
)

var (
	benchK       int
	benchLimit   int
	benchRepeats int
	benchOutput  string
)

var benchCmd = &cobra.Command{
	Use:   "bench <file>",
	Short: "Predict an algorithm, then run the sorts and check the prediction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		req := analyzeRequest{Selector: flagSelector, K: benchK, Preview: c.Preview}
		sel, err := buildSelector(c, req)
		if err != nil {
			return err
		}
		res, err := analyzeFile(args[0], sel, extractOptions(c, req), req.Preview)
		if err != nil {
			return err
		}
		if debug {
			printTrace(res.Decision)
		}

		opt := bench.Options{QuadraticLimit: c.QuadraticLimit, Repeats: c.BenchRepeats}
		if cmd.Flags().Changed("limit") {
			opt.QuadraticLimit = benchLimit
		}
		if cmd.Flags().Changed("repeats") {
			opt.Repeats = benchRepeats
		}
		result, err := bench.Evaluate(filepath.Base(args[0]), res.Seq, res.Decision, opt)
		if err != nil {
			return err
		}

		out := res.Report.Markdown() + "\n" + result.Markdown()
		if benchOutput != "" {
			if err := utils.SafeWriteFile(benchOutput, []byte(out)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote benchmark to %s\n", benchOutput)
			return nil
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().IntVarP(&benchK, "neighbors", "k", 0, "k-NN neighbour count (overrides config)")
	benchCmd.Flags().IntVar(&benchLimit, "limit", 1000, "skip bubble and insertion sort above this size unless predicted")
	benchCmd.Flags().IntVar(&benchRepeats, "repeats", 3, "timed runs per algorithm; the fastest is kept")
	benchCmd.Flags().StringVarP(&benchOutput, "output", "o", "", "optional path to write the report")
}
