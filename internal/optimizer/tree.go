package optimizer

import (
	"fmt"

	"github.com/KaramelBytes/sortwise-cli/internal/analysis"
)

// Thresholds tunes the decision tree.
type Thresholds struct {
	Small    int     // Size <= Small is tiny
	Large    int     // Size > Large is large
	Sorted   float64 // Sortedness >= Sorted is nearly sorted
	Reversed float64 // Reversedness >= Reversed is reversed
	Unique   float64 // Uniqueness < Unique is few-unique
	// ReversedPolicy is what reversed input gets: Merge or Quick.
	ReversedPolicy Algorithm
}

// DefaultThresholds returns the canonical threshold set. Reversed input goes to merge
// sort because the companion quicksort pivots on the last element.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Small:          50,
		Large:          1000,
		Sorted:         0.90,
		Reversed:       0.90,
		Unique:         0.40,
		ReversedPolicy: Merge,
	}
}

// Validate reports out-of-range thresholds.
func (t Thresholds) Validate() error {
	if t.Small < 0 || t.Large < 0 {
		return fmt.Errorf("%w: size thresholds must be non-negative (small=%d, large=%d)", ErrInvalidThresholds, t.Small, t.Large)
	}
	for _, r := range []struct {
		name string
		v    float64
	}{{"sorted", t.Sorted}, {"reversed", t.Reversed}, {"unique", t.Unique}} {
		if r.v < 0 || r.v > 1 {
			return fmt.Errorf("%w: %s ratio %.3f outside [0,1]", ErrInvalidThresholds, r.name, r.v)
		}
	}
	if t.ReversedPolicy != Merge && t.ReversedPolicy != Quick {
		return fmt.Errorf("%w: reversed policy must be merge or quick, got %s", ErrInvalidThresholds, t.ReversedPolicy.Key())
	}
	return nil
}

// TreeSelector is the fixed decision-tree policy.
type TreeSelector struct {
	th Thresholds
}

// NewTreeSelector validates th and returns a selector using it.
func NewTreeSelector(th Thresholds) (*TreeSelector, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return &TreeSelector{th: th}, nil
}

// Name implements Selector.
func (s *TreeSelector) Name() string { return string(KindTree) }

// Thresholds returns the active thresholds.
func (s *TreeSelector) Thresholds() Thresholds { return s.th }

// Select implements Selector. It never fails once constructed.
func (s *TreeSelector) Select(f analysis.Features) (Decision, error) {
	alg, rule, reason := s.evaluate(f)
	final, overridden := EnforceSafety(alg, f.Size, s.th.Large)
	d := Decision{
		Algorithm:  final,
		Raw:        alg,
		Overridden: overridden,
		Selector:   s.Name(),
		Rule:       rule,
		Reason:     reason,
	}
	if overridden {
		d.Reason += fmt.Sprintf(" Overridden: %s is quadratic and size %d exceeds %d.", alg, f.Size, s.th.Large)
	}
	return d, nil
}

// evaluate walks the rules top-down; the first match wins.
func (s *TreeSelector) evaluate(f analysis.Features) (Algorithm, string, string) {
	th := s.th
	if f.Size <= th.Small {
		return Insertion, "tiny",
			fmt.Sprintf("Dataset is very small (<= %d). Insertion Sort overhead is lower than recursive sorts.", th.Small)
	}

	if f.IsLarge || f.Size > th.Large {
		if f.Uniqueness < th.Unique {
			return Merge, "large_few_unique",
				fmt.Sprintf("Large dataset (> %d) with high duplication. Merge Sort keeps O(N log N) on repeated keys.", th.Large)
		}
		if f.Reversedness >= th.Reversed {
			return th.ReversedPolicy, "large_reversed",
				fmt.Sprintf("Large dataset (> %d) that is mostly reversed. %s", th.Large, reversedReason(th.ReversedPolicy))
		}
		return Quick, "large_default",
			fmt.Sprintf("Large dataset (> %d). Skipping O(N^2) algorithms; Quick Sort has the best average case.", th.Large)
	}

	if f.Sortedness >= th.Sorted {
		return Insertion, "nearly_sorted",
			"Data is nearly sorted. Insertion Sort runs in near O(N) time."
	}
	if f.Reversedness >= th.Reversed {
		return th.ReversedPolicy, "reversed", reversedReason(th.ReversedPolicy)
	}
	if f.Uniqueness < th.Unique {
		return Merge, "few_unique",
			"High duplication detected. Merge Sort stays O(N log N) and stable on repeated keys."
	}
	return Quick, "random_default",
		"No special structure. Quick Sort is selected for the best average performance."
}

func reversedReason(policy Algorithm) string {
	if policy == Quick {
		return "High reversedness detected. Quick Sort is used assuming randomized or median-of-three pivots."
	}
	return "High reversedness detected. Merge Sort avoids the fixed-pivot Quick Sort worst case O(N^2)."
}
