package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/sortwise-cli/internal/config"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Overrides applied on top of the loaded configuration
	flagSelector string
	flagLarge    int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "sortwise",
	Short: "Sortwise: predict the fastest sorting algorithm for an integer dataset",
	Long: `Sortwise measures the structure of an integer dataset (size, sortedness, reversedness,
uniqueness) and predicts which classical comparison sort will run fastest on it, using either
a decision tree or a weighted k-nearest-neighbour vote with a safety override.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.sortwise/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagSelector, "selector", "", "selector to use: tree or knn (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagLarge, "large-threshold", 0, "size above which a dataset is large (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	debugf("config loaded (selector=%s, large=%d)", cfg.Selector, cfg.LargeThreshold)

	f := rootCmd.PersistentFlags()
	if f.Changed("selector") && flagSelector != "" {
		cfg.Selector = flagSelector
	}
	if f.Changed("large-threshold") && flagLarge > 0 {
		cfg.LargeThreshold = flagLarge
		cfg.QuadraticLimit = flagLarge
	}
}

// loadedConfig returns the configuration, retrying the load if startup failed.
func loadedConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

func debugf(format string, args ...any) {
	if debug {
		fmt.Fprintf(os.Stderr, "[debug] "+format+"\n", args...)
	}
}
