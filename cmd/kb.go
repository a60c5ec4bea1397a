package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/sortwise-cli/internal/optimizer"
	"github.com/KaramelBytes/sortwise-cli/internal/utils"
)

var (
	kbFile   string
	kbOutput string
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect or export the k-NN knowledge base",
}

var kbShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List the exemplars of the knowledge base in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		kb, src, err := resolveKnowledgeBase()
		if err != nil {
			return err
		}
		fmt.Printf("Knowledge base: %s (%d exemplars)\n\n", src, kb.Len())
		fmt.Println("| # | Size | Sortedness | Reversedness | Uniqueness | Best |")
		fmt.Println("|---:|---:|---:|---:|---:|---|")
		for i, e := range kb.Exemplars() {
			f := e.Features
			fmt.Printf("| %d | %d | %.2f | %.2f | %.2f | %s |\n", i+1, f.Size, f.Sortedness, f.Reversedness, f.Uniqueness, e.Best)
		}
		return nil
	},
}

var kbExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the knowledge base in use as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		kb, _, err := resolveKnowledgeBase()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(kb)
		if err != nil {
			return err
		}
		if kbOutput == "" {
			fmt.Print(string(data))
			return nil
		}
		if err := utils.SafeWriteFile(kbOutput, data); err != nil {
			return fmt.Errorf("write knowledge base: %w", err)
		}
		fmt.Printf("✓ Exported %d exemplars to %s\n", kb.Len(), kbOutput)
		return nil
	},
}

// resolveKnowledgeBase prefers --file, then the configured file, then the built-in set.
func resolveKnowledgeBase() (*optimizer.KnowledgeBase, string, error) {
	if kbFile != "" {
		kb, err := optimizer.LoadKnowledgeBase(kbFile)
		return kb, kbFile, err
	}
	c, err := loadedConfig()
	if err != nil {
		return nil, "", err
	}
	kb, err := c.KnowledgeBase()
	if err != nil {
		return nil, "", err
	}
	src := "built-in"
	if c.KnowledgeBaseFile != "" {
		src = c.KnowledgeBaseFile
	}
	return kb, src, nil
}

func init() {
	rootCmd.AddCommand(kbCmd)
	kbCmd.AddCommand(kbShowCmd)
	kbCmd.AddCommand(kbExportCmd)
	kbCmd.PersistentFlags().StringVar(&kbFile, "file", "", "YAML knowledge base to read instead of the configured one")
	kbExportCmd.Flags().StringVarP(&kbOutput, "output", "o", "", "path to write (default: stdout)")
}
