package optimizer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/sortwise-cli/internal/analysis"
)

// Weights scales each feature's contribution to the distance.
type Weights struct {
	Size         float64
	Sortedness   float64
	Reversedness float64
	Uniqueness   float64
}

// DefaultWeights favours order structure over size and uniqueness.
func DefaultWeights() Weights {
	return Weights{Size: 1.5, Sortedness: 2.0, Reversedness: 2.0, Uniqueness: 1.0}
}

// KNNSelector votes among the k nearest exemplars, weighted by inverse squared distance.
type KNNSelector struct {
	kb        *KnowledgeBase
	k         int
	weights   Weights
	sizeScale float64
	eps       float64
	large     int
}

// KNNOption configures a KNNSelector.
type KNNOption func(*KNNSelector)

// WithK sets the neighbour count.
func WithK(k int) KNNOption { return func(s *KNNSelector) { s.k = k } }

// WithWeights replaces the feature weights.
func WithWeights(w Weights) KNNOption { return func(s *KNNSelector) { s.weights = w } }

// WithLargeThreshold sets the size above which quadratic picks are overridden.
func WithLargeThreshold(n int) KNNOption { return func(s *KNNSelector) { s.large = n } }

// WithSizeScale sets the size that normalizes to 1.0.
func WithSizeScale(v float64) KNNOption { return func(s *KNNSelector) { s.sizeScale = v } }

// WithEpsilon sets the constant added to squared distances before inversion.
func WithEpsilon(v float64) KNNOption { return func(s *KNNSelector) { s.eps = v } }

// NewKNNSelector returns a selector over kb.
func NewKNNSelector(kb *KnowledgeBase, opts ...KNNOption) (*KNNSelector, error) {
	if kb.Len() == 0 {
		return nil, ErrEmptyKnowledgeBase
	}
	s := &KNNSelector{
		kb:        kb,
		k:         5,
		weights:   DefaultWeights(),
		sizeScale: 10000,
		eps:       1e-5,
		large:     DefaultThresholds().Large,
	}
	for _, o := range opts {
		o(s)
	}
	if s.k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, s.k)
	}
	if s.sizeScale <= 0 || s.eps <= 0 {
		return nil, fmt.Errorf("size scale and epsilon must be positive (scale=%g, eps=%g)", s.sizeScale, s.eps)
	}
	return s, nil
}

// Name implements Selector.
func (s *KNNSelector) Name() string { return string(KindKNN) }

// K returns the configured neighbour count.
func (s *KNNSelector) K() int { return s.k }

// KnowledgeBase returns the exemplars the selector votes over.
func (s *KNNSelector) KnowledgeBase() *KnowledgeBase { return s.kb }

// Neighbor is one exemplar that took part in a vote.
type Neighbor struct {
	Rank     int
	Exemplar Exemplar
	Distance float64
	Weight   float64
}

// Trace records how a k-NN decision was reached.
type Trace struct {
	K         int
	Neighbors []Neighbor
	// Votes is indexed by Algorithm.
	Votes      [numAlgorithms]float64
	Raw        Algorithm
	Overridden bool
}

// normSize maps Size onto [0,1]; sizes at or above the scale saturate.
func (s *KNNSelector) normSize(n int) float64 {
	return math.Min(float64(n)/s.sizeScale, 1.0)
}

// Distance is the weighted Euclidean distance between two feature vectors.
func (s *KNNSelector) Distance(a, b analysis.Features) float64 {
	ds := s.normSize(a.Size) - s.normSize(b.Size)
	dso := a.Sortedness - b.Sortedness
	dr := a.Reversedness - b.Reversedness
	du := a.Uniqueness - b.Uniqueness
	w := s.weights
	return math.Sqrt(w.Size*ds*ds + w.Sortedness*dso*dso + w.Reversedness*dr*dr + w.Uniqueness*du*du)
}

// Select implements Selector using the configured k.
func (s *KNNSelector) Select(f analysis.Features) (Decision, error) {
	return s.SelectK(f, s.k)
}

// SelectK votes among the k nearest exemplars. k is clamped to the knowledge base size.
// Equal distances keep knowledge-base order and equal vote totals go to the lower
// Algorithm ordinal.
func (s *KNNSelector) SelectK(f analysis.Features, k int) (Decision, error) {
	if k <= 0 {
		return Decision{}, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	exemplars := s.kb.Exemplars()
	k = min(k, len(exemplars))

	ranked := make([]Neighbor, len(exemplars))
	for i, e := range exemplars {
		ranked[i] = Neighbor{Exemplar: e, Distance: s.Distance(f, e.Features)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Distance < ranked[j].Distance })

	tr := &Trace{K: k, Neighbors: ranked[:k]}
	for i := range tr.Neighbors {
		nb := &tr.Neighbors[i]
		nb.Rank = i + 1
		nb.Weight = 1.0 / (nb.Distance*nb.Distance + s.eps)
		tr.Votes[nb.Exemplar.Best] += nb.Weight
	}

	best := Algorithm(0)
	for a := Algorithm(1); a < numAlgorithms; a++ {
		if tr.Votes[a] > tr.Votes[best] {
			best = a
		}
	}
	final, overridden := EnforceSafety(best, f.Size, s.large)
	tr.Raw, tr.Overridden = best, overridden

	d := Decision{
		Algorithm:  final,
		Raw:        best,
		Overridden: overridden,
		Selector:   s.Name(),
		Rule:       fmt.Sprintf("k=%d", k),
		Reason:     s.reason(tr),
		Trace:      tr,
	}
	if overridden {
		d.Reason += fmt.Sprintf(" Overridden: %s is quadratic and size %d exceeds %d.", best, f.Size, s.large)
	}
	return d, nil
}

func (s *KNNSelector) reason(tr *Trace) string {
	var parts []string
	for _, a := range Algorithms() {
		if tr.Votes[a] > 0 {
			parts = append(parts, fmt.Sprintf("%s %.2f", a, tr.Votes[a]))
		}
	}
	return fmt.Sprintf("Nearest %d exemplars voted by inverse squared distance (%s); %s wins.",
		tr.K, strings.Join(parts, ", "), tr.Raw)
}
