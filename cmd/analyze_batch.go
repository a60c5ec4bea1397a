package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/sortwise-cli/internal/utils"
)

var (
	abK         int
	abJobs      int
	abOutDir    string
	abSampler   string
	abQuiet     bool
	abKeepGoing bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple datasets concurrently and print one report per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		req := analyzeRequest{Selector: flagSelector, K: abK, Sampler: abSampler, Preview: c.Preview}
		sel, err := buildSelector(c, req)
		if err != nil {
			return err
		}
		opt := extractOptions(c, req)
		if err := opt.Validate(); err != nil {
			return err
		}

		jobs := abJobs
		if !cmd.Flags().Changed("jobs") && c.Jobs > 0 {
			jobs = c.Jobs
		}
		if jobs <= 0 {
			jobs = 1
		}

		// Selectors are read-only after construction, so one instance serves every worker.
		results := make([]*analyzed, len(files))
		errs := make([]error, len(files))
		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(jobs)
		total := len(files)
		for i, path := range files {
			g.Go(func() error {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				res, err := analyzeFile(path, sel, opt, req.Preview)
				if err != nil {
					if abKeepGoing {
						errs[i] = err
						return nil
					}
					return err
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if abOutDir != "" {
			if err := utils.EnsureDir(abOutDir); err != nil {
				return err
			}
		}
		failed := 0
		used := map[string]int{}
		for i, path := range files {
			if !abQuiet {
				fmt.Printf("[%d/%d] %s\n", i+1, total, filepath.Base(path))
			}
			if errs[i] != nil {
				failed++
				fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", errs[i])
				continue
			}
			res := results[i]
			md := res.Report.Markdown()
			if abOutDir != "" {
				base := filepath.Base(path)
				safe := strings.TrimSuffix(base, filepath.Ext(base))
				// Same basename from different directories gets a numeric suffix.
				used[safe]++
				if n := used[safe]; n > 1 {
					safe = fmt.Sprintf("%s__%d", safe, n)
				}
				outFile := filepath.Join(abOutDir, safe+".report.md")
				if err := utils.SafeWriteFile(outFile, []byte(md)); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				if !abQuiet {
					fmt.Printf("✓ %s -> %s (%s)\n", base, filepath.Base(outFile), res.Decision.Algorithm)
				}
				continue
			}
			if abQuiet {
				fmt.Printf("%s\t%s\n", path, res.Decision.Algorithm)
			} else {
				fmt.Println(md)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().IntVarP(&abK, "neighbors", "k", 0, "k-NN neighbour count (overrides config)")
	analyzeBatchCmd.Flags().IntVarP(&abJobs, "jobs", "j", 4, "number of files analyzed concurrently")
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "write one <name>.report.md per input into this directory")
	analyzeBatchCmd.Flags().StringVar(&abSampler, "sampler", "", "uniqueness sampler: strided | prefix")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "print only '<file>\\t<algorithm>' lines")
	analyzeBatchCmd.Flags().BoolVar(&abKeepGoing, "keep-going", false, "report unreadable files and continue with the rest")
}
