package analysis

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is returned when extraction options cannot produce a valid estimate.
var ErrInvalidOptions = errors.New("invalid extraction options")

// Sampler selects how uniqueness is estimated on inputs above the sample threshold.
type Sampler string

const (
	// SamplerStrided probes a deterministic pseudo-random index sequence.
	SamplerStrided Sampler = "strided"
	// SamplerPrefix uses the first SampleSize elements. Biased when duplicates cluster early.
	SamplerPrefix Sampler = "prefix"
)

// Options controls feature extraction.
type Options struct {
	// SampleThreshold is the largest size measured exactly; larger inputs are sampled.
	SampleThreshold int
	// SampleSize is how many elements the sampler probes.
	SampleSize int
	// LargeThreshold marks datasets with Size > LargeThreshold as large.
	LargeThreshold int
	Sampler        Sampler
	// Stride and Offset drive the strided sampler: idx = (i*Stride + Offset) mod N.
	Stride int
	Offset int
	// Cutoffs drive the Shape label only; the zero value means DefaultCutoffs.
	Cutoffs Cutoffs
}

// DefaultOptions returns the canonical extraction settings.
func DefaultOptions() Options {
	return Options{
		SampleThreshold: 100,
		SampleSize:      100,
		LargeThreshold:  1000,
		Sampler:         SamplerStrided,
		Stride:          997,
		Offset:          13,
		Cutoffs:         DefaultCutoffs(),
	}
}

// Validate reports whether the options are usable.
func (o Options) Validate() error {
	if o.SampleSize <= 0 {
		return fmt.Errorf("%w: sample size must be positive, got %d", ErrInvalidOptions, o.SampleSize)
	}
	if o.SampleThreshold < 0 {
		return fmt.Errorf("%w: sample threshold must be non-negative, got %d", ErrInvalidOptions, o.SampleThreshold)
	}
	if o.LargeThreshold < 0 {
		return fmt.Errorf("%w: large threshold must be non-negative, got %d", ErrInvalidOptions, o.LargeThreshold)
	}
	if err := o.Cutoffs.validate(); err != nil {
		return err
	}
	switch o.Sampler {
	case SamplerStrided, "":
		if o.Stride <= 0 {
			return fmt.Errorf("%w: stride must be positive, got %d", ErrInvalidOptions, o.Stride)
		}
		if o.Offset < 0 {
			return fmt.Errorf("%w: offset must be non-negative, got %d", ErrInvalidOptions, o.Offset)
		}
	case SamplerPrefix:
	default:
		return fmt.Errorf("%w: unknown sampler %q", ErrInvalidOptions, o.Sampler)
	}
	return nil
}

// Features is the compact description of a dataset used to choose an algorithm.
type Features struct {
	Size int `json:"size"`
	// Sortedness is the fraction of adjacent pairs with a[i] <= a[i+1].
	Sortedness float64 `json:"sortedness"`
	// Reversedness is the fraction of adjacent pairs with a[i] >= a[i+1].
	// Equal neighbours count toward both ratios.
	Reversedness float64 `json:"reversedness"`
	// Uniqueness is the distinct fraction, exact for small inputs and sampled otherwise.
	Uniqueness float64 `json:"uniqueness"`
	IsLarge    bool    `json:"is_large"`

	UniqueCount int   `json:"unique_count"`
	SampleSize  int   `json:"sample_size"`
	Sampled     bool  `json:"sampled"`
	Shape       Shape `json:"shape"`
}

// ExtractDefault runs Extract with DefaultOptions.
func ExtractDefault(seq []int) Features {
	f, _ := Extract(seq, DefaultOptions())
	return f
}

// Extract computes the feature vector of seq in a single ordering pass plus a bounded
// uniqueness pass. seq is never modified.
func Extract(seq []int, opt Options) (Features, error) {
	if err := opt.Validate(); err != nil {
		return Features{}, err
	}
	n := len(seq)
	f := Features{Size: n}
	if n <= 1 {
		f.Sortedness = 1.0
		f.Reversedness = 0.0
		f.Uniqueness = 1.0
		f.UniqueCount = n
		f.SampleSize = n
		f.Shape = ShapeSingle
		return f, nil
	}

	f.IsLarge = n > opt.LargeThreshold

	var asc, desc int
	for i := 0; i < n-1; i++ {
		if seq[i] <= seq[i+1] {
			asc++
		}
		if seq[i] >= seq[i+1] {
			desc++
		}
	}
	pairs := float64(n - 1)
	f.Sortedness = float64(asc) / pairs
	f.Reversedness = float64(desc) / pairs

	f.UniqueCount, f.SampleSize, f.Sampled = uniqueness(seq, opt)
	f.Uniqueness = float64(f.UniqueCount) / float64(f.SampleSize)
	f.Shape = Classify(f, opt.Cutoffs)
	return f, nil
}

// uniqueness returns the distinct count, the number of probed elements and whether
// sampling was used.
func uniqueness(seq []int, opt Options) (distinct, probed int, sampled bool) {
	n := len(seq)
	if n <= opt.SampleThreshold {
		seen := make(map[int]struct{}, n)
		for _, v := range seq {
			seen[v] = struct{}{}
		}
		return len(seen), n, false
	}

	size := min(opt.SampleSize, n)
	seen := make(map[int]struct{}, size)
	switch opt.Sampler {
	case SamplerPrefix:
		for _, v := range seq[:size] {
			seen[v] = struct{}{}
		}
	default:
		stride := coprimeStride(opt.Stride, n)
		for i := 0; i < size; i++ {
			idx := int((int64(i)*int64(stride) + int64(opt.Offset)) % int64(n))
			seen[seq[idx]] = struct{}{}
		}
	}
	return len(seen), size, true
}

// coprimeStride advances stride until gcd(stride, n) == 1 so that the first n probes
// visit n distinct indices.
func coprimeStride(stride, n int) int {
	stride %= n
	if stride == 0 {
		stride = 1
	}
	for gcd(stride, n) != 1 {
		stride += 2
		if stride >= n {
			stride = 1
		}
	}
	return stride
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
