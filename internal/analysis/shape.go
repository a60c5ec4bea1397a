package analysis

import "fmt"

// Shape is a coarse, human-facing label for a dataset. Algorithm selection never reads it.
type Shape string

const (
	ShapeSingle       Shape = "single"
	ShapeNearlySorted Shape = "nearly_sorted"
	ShapeReversed     Shape = "reversed"
	ShapeFewUnique    Shape = "few_unique"
	ShapeLargeRandom  Shape = "large_random"
	ShapeRandom       Shape = "random"
)

// Cutoffs are the ratios behind the Shape label. They follow the decision-tree
// thresholds so that the label agrees with the rule that fired.
type Cutoffs struct {
	Sorted   float64 // Sortedness >= Sorted is nearly sorted
	Reversed float64 // Reversedness >= Reversed is reversed
	Unique   float64 // Uniqueness < Unique is few-unique
}

// DefaultCutoffs matches the default decision-tree thresholds.
func DefaultCutoffs() Cutoffs {
	return Cutoffs{Sorted: 0.90, Reversed: 0.90, Unique: 0.40}
}

func (c Cutoffs) validate() error {
	for _, r := range []struct {
		name string
		v    float64
	}{{"sorted", c.Sorted}, {"reversed", c.Reversed}, {"unique", c.Unique}} {
		if !(r.v >= 0 && r.v <= 1) {
			return fmt.Errorf("%w: %s cutoff %.3f outside [0,1]", ErrInvalidOptions, r.name, r.v)
		}
	}
	return nil
}

// Classify labels a feature vector. Checks run in order, first match wins.
func Classify(f Features, c Cutoffs) Shape {
	if c == (Cutoffs{}) {
		c = DefaultCutoffs()
	}
	switch {
	case f.Size <= 1:
		return ShapeSingle
	case f.Sortedness >= c.Sorted:
		return ShapeNearlySorted
	case f.Reversedness >= c.Reversed:
		return ShapeReversed
	case f.Uniqueness < c.Unique:
		return ShapeFewUnique
	case f.IsLarge:
		return ShapeLargeRandom
	default:
		return ShapeRandom
	}
}

// Title returns the display form used in reports.
func (s Shape) Title() string {
	switch s {
	case ShapeSingle:
		return "Single Element"
	case ShapeNearlySorted:
		return "Nearly Sorted"
	case ShapeReversed:
		return "Reversed"
	case ShapeFewUnique:
		return "Few Unique"
	case ShapeLargeRandom:
		return "Large Random"
	case ShapeRandom:
		return "Random"
	default:
		return "Unknown"
	}
}
