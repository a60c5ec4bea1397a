package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/sortwise-cli/internal/analysis"
	"github.com/KaramelBytes/sortwise-cli/internal/optimizer"
	"github.com/KaramelBytes/sortwise-cli/internal/utils"
)

// Global configuration structure.
type Global struct {
	Selector          string `mapstructure:"selector" yaml:"selector"`
	KNNK              int    `mapstructure:"knn_k" yaml:"knn_k"`
	KnowledgeBaseFile string `mapstructure:"knowledge_base_file" yaml:"knowledge_base_file"`
	// k-NN distance tuning
	KNNSizeScale          float64 `mapstructure:"knn_size_scale" yaml:"knn_size_scale"`
	KNNWeightSize         float64 `mapstructure:"knn_weight_size" yaml:"knn_weight_size"`
	KNNWeightSortedness   float64 `mapstructure:"knn_weight_sortedness" yaml:"knn_weight_sortedness"`
	KNNWeightReversedness float64 `mapstructure:"knn_weight_reversedness" yaml:"knn_weight_reversedness"`
	KNNWeightUniqueness   float64 `mapstructure:"knn_weight_uniqueness" yaml:"knn_weight_uniqueness"`

	// Decision-tree thresholds
	SmallThreshold    int     `mapstructure:"small_threshold" yaml:"small_threshold"`
	LargeThreshold    int     `mapstructure:"large_threshold" yaml:"large_threshold"`
	SortedThreshold   float64 `mapstructure:"sorted_threshold" yaml:"sorted_threshold"`
	ReversedThreshold float64 `mapstructure:"reversed_threshold" yaml:"reversed_threshold"`
	UniqueThreshold   float64 `mapstructure:"unique_threshold" yaml:"unique_threshold"`
	ReversedPolicy    string  `mapstructure:"reversed_policy" yaml:"reversed_policy"`

	// Feature extraction
	SampleThreshold int    `mapstructure:"sample_threshold" yaml:"sample_threshold"`
	SampleSize      int    `mapstructure:"sample_size" yaml:"sample_size"`
	Sampler         string `mapstructure:"sampler" yaml:"sampler"`

	// CLI behaviour
	QuadraticLimit int `mapstructure:"quadratic_limit" yaml:"quadratic_limit"`
	BenchRepeats   int `mapstructure:"bench_repeats" yaml:"bench_repeats"`
	Preview        int `mapstructure:"preview" yaml:"preview"`
	Jobs           int `mapstructure:"jobs" yaml:"jobs"`
}

// Dir returns ~/.sortwise.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".sortwise"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.sortwise/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	th := optimizer.DefaultThresholds()
	ex := analysis.DefaultOptions()
	w := optimizer.DefaultWeights()

	v.SetDefault("selector", string(optimizer.KindTree))
	v.SetDefault("knn_k", 5)
	v.SetDefault("knowledge_base_file", "")
	v.SetDefault("knn_size_scale", 10000.0)
	v.SetDefault("knn_weight_size", w.Size)
	v.SetDefault("knn_weight_sortedness", w.Sortedness)
	v.SetDefault("knn_weight_reversedness", w.Reversedness)
	v.SetDefault("knn_weight_uniqueness", w.Uniqueness)
	// Thresholds
	v.SetDefault("small_threshold", th.Small)
	v.SetDefault("large_threshold", th.Large)
	v.SetDefault("sorted_threshold", th.Sorted)
	v.SetDefault("reversed_threshold", th.Reversed)
	v.SetDefault("unique_threshold", th.Unique)
	v.SetDefault("reversed_policy", th.ReversedPolicy.Key())
	// Extraction
	v.SetDefault("sample_threshold", ex.SampleThreshold)
	v.SetDefault("sample_size", ex.SampleSize)
	v.SetDefault("sampler", string(ex.Sampler))
	// CLI
	v.SetDefault("quadratic_limit", th.Large)
	v.SetDefault("bench_repeats", 3)
	v.SetDefault("preview", 20)
	v.SetDefault("jobs", 4)
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SORTWISE")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Thresholds converts the decision-tree settings.
func (c *Global) Thresholds() (optimizer.Thresholds, error) {
	policy, err := optimizer.ParseAlgorithm(c.ReversedPolicy)
	if err != nil {
		return optimizer.Thresholds{}, fmt.Errorf("reversed_policy: %w", err)
	}
	th := optimizer.Thresholds{
		Small:          c.SmallThreshold,
		Large:          c.LargeThreshold,
		Sorted:         c.SortedThreshold,
		Reversed:       c.ReversedThreshold,
		Unique:         c.UniqueThreshold,
		ReversedPolicy: policy,
	}
	return th, th.Validate()
}

// ExtractOptions converts the feature-extraction settings.
func (c *Global) ExtractOptions() analysis.Options {
	o := analysis.DefaultOptions()
	o.SampleThreshold = c.SampleThreshold
	o.SampleSize = c.SampleSize
	o.LargeThreshold = c.LargeThreshold
	o.Cutoffs = analysis.Cutoffs{Sorted: c.SortedThreshold, Reversed: c.ReversedThreshold, Unique: c.UniqueThreshold}
	if c.Sampler != "" {
		o.Sampler = analysis.Sampler(strings.ToLower(c.Sampler))
	}
	return o
}

// KNNOptions converts the k-NN settings.
func (c *Global) KNNOptions() []optimizer.KNNOption {
	return []optimizer.KNNOption{
		optimizer.WithK(c.KNNK),
		optimizer.WithSizeScale(c.KNNSizeScale),
		optimizer.WithWeights(optimizer.Weights{
			Size:         c.KNNWeightSize,
			Sortedness:   c.KNNWeightSortedness,
			Reversedness: c.KNNWeightReversedness,
			Uniqueness:   c.KNNWeightUniqueness,
		}),
	}
}

// KnowledgeBase loads knowledge_base_file (a leading ~/ is expanded), or returns the built-in exemplars when unset.
func (c *Global) KnowledgeBase() (*optimizer.KnowledgeBase, error) {
	if c.KnowledgeBaseFile == "" {
		return optimizer.DefaultKnowledgeBase(), nil
	}
	path, err := utils.ExpandHome(c.KnowledgeBaseFile)
	if err != nil {
		return nil, err
	}
	return optimizer.LoadKnowledgeBase(path)
}

// NewSelector builds the configured selector. kind overrides the selector key when non-empty.
func (c *Global) NewSelector(kind string) (optimizer.Selector, error) {
	if kind == "" {
		kind = c.Selector
	}
	th, err := c.Thresholds()
	if err != nil {
		return nil, err
	}
	sc := optimizer.Config{Kind: optimizer.Kind(strings.ToLower(kind)), Thresholds: th}
	if sc.Kind == optimizer.KindKNN {
		kb, err := c.KnowledgeBase()
		if err != nil {
			return nil, err
		}
		sc.KnowledgeBase = kb
		sc.KNN = c.KNNOptions()
	}
	return optimizer.New(sc)
}

// Set updates one key from its string form, validating the value.
func (c *Global) Set(key, val string) error {
	switch key {
	case "selector":
		switch strings.ToLower(val) {
		case "tree", "knn":
			c.Selector = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid selector: %s (use tree or knn)", val)
		}
	case "knowledge_base_file":
		c.KnowledgeBaseFile = val
	case "reversed_policy":
		a, err := optimizer.ParseAlgorithm(val)
		if err != nil || (a != optimizer.Merge && a != optimizer.Quick) {
			return fmt.Errorf("invalid reversed_policy: %s (use merge or quick)", val)
		}
		c.ReversedPolicy = a.Key()
	case "sampler":
		switch analysis.Sampler(strings.ToLower(val)) {
		case analysis.SamplerStrided, analysis.SamplerPrefix:
			c.Sampler = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid sampler: %s (use strided or prefix)", val)
		}
	default:
		if p, ok := c.intField(key); ok {
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			*p = i
			return nil
		}
		if p, ok := c.floatField(key); ok {
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for %s: %v", key, val)
			}
			*p = f
			return nil
		}
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func (c *Global) intField(key string) (*int, bool) {
	m := map[string]*int{
		"knn_k":            &c.KNNK,
		"small_threshold":  &c.SmallThreshold,
		"large_threshold":  &c.LargeThreshold,
		"sample_threshold": &c.SampleThreshold,
		"sample_size":      &c.SampleSize,
		"quadratic_limit":  &c.QuadraticLimit,
		"bench_repeats":    &c.BenchRepeats,
		"preview":          &c.Preview,
		"jobs":             &c.Jobs,
	}
	p, ok := m[key]
	return p, ok
}

func (c *Global) floatField(key string) (*float64, bool) {
	m := map[string]*float64{
		"knn_size_scale":          &c.KNNSizeScale,
		"knn_weight_size":         &c.KNNWeightSize,
		"knn_weight_sortedness":   &c.KNNWeightSortedness,
		"knn_weight_reversedness": &c.KNNWeightReversedness,
		"knn_weight_uniqueness":   &c.KNNWeightUniqueness,
		"sorted_threshold":        &c.SortedThreshold,
		"reversed_threshold":      &c.ReversedThreshold,
		"unique_threshold":        &c.UniqueThreshold,
	}
	p, ok := m[key]
	return p, ok
}
