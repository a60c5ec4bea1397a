package dataset

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// ErrInvalidSize is returned for a non-positive dataset size.
var ErrInvalidSize = errors.New("dataset size must be positive")

// Kind names a synthetic dataset shape.
type Kind string

const (
	KindRandom       Kind = "random"
	KindNearlySorted Kind = "nearly_sorted"
	KindReversed     Kind = "reversed"
	KindFewUnique    Kind = "few_unique"
	KindLargeRandom  Kind = "large_random"
)

// LargeRandomMin is the smallest size produced for KindLargeRandom.
const LargeRandomMin = 10000

// Kinds lists the generator kinds in menu order.
func Kinds() []Kind {
	return []Kind{KindRandom, KindNearlySorted, KindReversed, KindFewUnique, KindLargeRandom}
}

// ParseKind accepts a kind name with either '-' or '_' separators.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown dataset kind %q", s)
}

// Generator produces synthetic datasets from an explicit random source, so the same
// seed always reproduces the same data.
type Generator struct {
	rng *rand.Rand
	// Unique is the number of distinct values for KindFewUnique.
	Unique int
	// SwapPercent is the share of random pair swaps applied to KindNearlySorted.
	SwapPercent float64
}

// NewGenerator seeds a PCG source with seed.
func NewGenerator(seed uint64) *Generator {
	return NewGeneratorFrom(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewGeneratorFrom wraps an existing source.
func NewGeneratorFrom(rng *rand.Rand) *Generator {
	return &Generator{rng: rng, Unique: 10, SwapPercent: 1}
}

// Generate builds a dataset of the given kind and size.
func (g *Generator) Generate(kind Kind, size int) ([]int, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	switch kind {
	case KindRandom:
		return g.Random(size), nil
	case KindLargeRandom:
		return g.Random(max(size, LargeRandomMin)), nil
	case KindNearlySorted:
		return g.NearlySorted(size), nil
	case KindReversed:
		return Reversed(size), nil
	case KindFewUnique:
		if g.Unique <= 0 {
			return nil, fmt.Errorf("few_unique needs a positive value count, got %d", g.Unique)
		}
		return g.FewUnique(size, g.Unique), nil
	default:
		return nil, fmt.Errorf("unknown dataset kind %q", kind)
	}
}

// Random draws values uniformly from [1, size*10].
func (g *Generator) Random(size int) []int {
	out := make([]int, size)
	for i := range out {
		out[i] = 1 + g.rng.IntN(size*10)
	}
	return out
}

// NearlySorted returns 1..size with SwapPercent% of positions swapped at random (at least one swap).
func (g *Generator) NearlySorted(size int) []int {
	out := make([]int, size)
	for i := range out {
		out[i] = i + 1
	}
	swaps := max(1, int(float64(size)*g.SwapPercent/100))
	for i := 0; i < swaps; i++ {
		a, b := g.rng.IntN(size), g.rng.IntN(size)
		out[a], out[b] = out[b], out[a]
	}
	return out
}

// Reversed returns size, size-1, ..., 1.
func Reversed(size int) []int {
	out := make([]int, size)
	for i := range out {
		out[i] = size - i
	}
	return out
}

// FewUnique fills size slots from k distinct values drawn from [1, max(100, k)].
func (g *Generator) FewUnique(size, k int) []int {
	pool := g.rng.Perm(max(100, k))[:k]
	out := make([]int, size)
	for i := range out {
		out[i] = pool[g.rng.IntN(k)] + 1
	}
	return out
}
