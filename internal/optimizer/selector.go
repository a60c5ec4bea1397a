package optimizer

import (
	"fmt"

	"github.com/KaramelBytes/sortwise-cli/internal/analysis"
)

// Selector maps a feature vector to an algorithm choice.
type Selector interface {
	Name() string
	Select(f analysis.Features) (Decision, error)
}

// Decision is the outcome of one selection.
type Decision struct {
	Algorithm Algorithm
	// Raw is the choice before the safety override.
	Raw        Algorithm
	Overridden bool
	Selector   string
	Rule       string
	Reason     string
	Trace      *Trace // k-NN only
}

// Recommendation converts the decision into the report view.
func (d Decision) Recommendation() *analysis.Recommendation {
	rec := &analysis.Recommendation{
		Selector:   d.Selector,
		Algorithm:  d.Algorithm.String(),
		Rule:       d.Rule,
		Reason:     d.Reason,
		Raw:        d.Raw.String(),
		Overridden: d.Overridden,
	}
	if d.Trace != nil {
		for _, nb := range d.Trace.Neighbors {
			rec.Neighbors = append(rec.Neighbors, analysis.NeighborLine{
				Rank:      nb.Rank,
				Algorithm: nb.Exemplar.Best.String(),
				Distance:  nb.Distance,
				Weight:    nb.Weight,
				Exemplar:  nb.Exemplar.Features,
			})
		}
		for _, a := range Algorithms() {
			if w := d.Trace.Votes[a]; w > 0 {
				rec.Votes = append(rec.Votes, analysis.VoteLine{Algorithm: a.String(), Weight: w})
			}
		}
	}
	return rec
}

// Kind names a selector implementation.
type Kind string

const (
	KindTree Kind = "tree"
	KindKNN  Kind = "knn"
)

// Config bundles everything needed to build either selector.
type Config struct {
	Kind       Kind
	Thresholds Thresholds
	// KnowledgeBase defaults to DefaultKnowledgeBase when nil.
	KnowledgeBase *KnowledgeBase
	KNN           []KNNOption
}

// New builds the selector described by cfg.
func New(cfg Config) (Selector, error) {
	th := cfg.Thresholds
	if th == (Thresholds{}) {
		th = DefaultThresholds()
	}
	switch cfg.Kind {
	case KindTree, "":
		return NewTreeSelector(th)
	case KindKNN:
		kb := cfg.KnowledgeBase
		if kb == nil {
			kb = DefaultKnowledgeBase()
		}
		opts := append([]KNNOption{WithLargeThreshold(th.Large)}, cfg.KNN...)
		return NewKNNSelector(kb, opts...)
	default:
		return nil, fmt.Errorf("%w: %q (use tree or knn)", ErrUnknownSelector, cfg.Kind)
	}
}
