package optimizer

import (
	"fmt"
	"strings"
)

// Algorithm identifies one of the supported comparison sorts. The ordinal order is also
// the tie-break order for k-NN votes.
type Algorithm int

const (
	Bubble Algorithm = iota
	Insertion
	Merge
	Quick
)

// numAlgorithms sizes vote arrays indexed by Algorithm.
const numAlgorithms = 4

// Algorithms lists every Algorithm in ordinal order.
func Algorithms() []Algorithm {
	return []Algorithm{Bubble, Insertion, Merge, Quick}
}

func (a Algorithm) String() string {
	switch a {
	case Bubble:
		return "Bubble Sort"
	case Insertion:
		return "Insertion Sort"
	case Merge:
		return "Merge Sort"
	case Quick:
		return "Quick Sort"
	default:
		return "Unknown"
	}
}

// Key is the lowercase identifier used in config files and flags.
func (a Algorithm) Key() string {
	switch a {
	case Bubble:
		return "bubble"
	case Insertion:
		return "insertion"
	case Merge:
		return "merge"
	case Quick:
		return "quick"
	default:
		return "unknown"
	}
}

// Valid reports whether a is one of the enumerated algorithms.
func (a Algorithm) Valid() bool { return a >= Bubble && a <= Quick }

// Quadratic reports whether a runs in O(N^2) on its bad inputs.
func (a Algorithm) Quadratic() bool { return a == Bubble || a == Insertion }

// ParseAlgorithm accepts "quick", "Quick Sort", "quicksort" and similar spellings.
func ParseAlgorithm(s string) (Algorithm, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.TrimSuffix(k, "sort")
	k = strings.TrimSpace(strings.TrimSuffix(k, "_"))
	switch k {
	case "bubble":
		return Bubble, nil
	case "insertion":
		return Insertion, nil
	case "merge":
		return Merge, nil
	case "quick":
		return Quick, nil
	}
	return 0, fmt.Errorf("unknown algorithm %q (use bubble, insertion, merge or quick)", s)
}

// MarshalYAML writes the algorithm key.
func (a Algorithm) MarshalYAML() (interface{}, error) {
	return a.Key(), nil
}

// UnmarshalYAML accepts any spelling ParseAlgorithm understands.
func (a *Algorithm) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseAlgorithm(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
