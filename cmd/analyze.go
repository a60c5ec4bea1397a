package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/sortwise-cli/internal/utils"
)

var (
	anaOutputPath string
	anaK          int
	anaPreview    int
	anaSampler    string
	anaSampleSize int
	anaExplain    bool
	anaFormat     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Extract dataset features and predict the fastest sorting algorithm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		req := analyzeRequest{Selector: flagSelector, K: anaK, Sampler: anaSampler, SampleSize: anaSampleSize, Preview: c.Preview}
		if cmd.Flags().Changed("preview") {
			req.Preview = anaPreview
		}
		switch strings.ToLower(anaFormat) {
		case "", "markdown", "md", "json":
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|json)", anaFormat)
		}

		sel, err := buildSelector(c, req)
		if err != nil {
			return err
		}
		res, err := analyzeFile(path, sel, extractOptions(c, req), req.Preview)
		if err != nil {
			return err
		}
		debugf("%s: %d values, fingerprint %016x", path, len(res.Seq), res.Report.Fingerprint)
		if anaExplain || debug {
			printTrace(res.Decision)
		}

		var out []byte
		if strings.ToLower(anaFormat) == "json" {
			out, err = utils.PrettyJSON(res.Report)
			if err != nil {
				return err
			}
		} else {
			out = []byte(res.Report.Markdown())
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().IntVarP(&anaK, "neighbors", "k", 0, "k-NN neighbour count (overrides config)")
	analyzeCmd.Flags().IntVar(&anaPreview, "preview", 20, "number of leading values to show")
	analyzeCmd.Flags().StringVar(&anaSampler, "sampler", "", "uniqueness sampler: strided | prefix")
	analyzeCmd.Flags().IntVar(&anaSampleSize, "sample-size", 0, "elements probed for uniqueness on large inputs")
	analyzeCmd.Flags().BoolVar(&anaExplain, "explain", false, "print the k-NN neighbour trace to stderr")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "markdown", "report format: markdown | json")
}
