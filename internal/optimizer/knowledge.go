package optimizer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/sortwise-cli/internal/analysis"
)

// Exemplar is one labelled point of the knowledge base.
type Exemplar struct {
	Features analysis.Features
	Best     Algorithm
}

// KnowledgeBase is an immutable set of exemplars. Safe for concurrent reads.
type KnowledgeBase struct {
	exemplars []Exemplar
}

// NewKnowledgeBase copies exemplars into a knowledge base. An empty set or an
// exemplar failing validation is a configuration error.
func NewKnowledgeBase(exemplars []Exemplar) (*KnowledgeBase, error) {
	if len(exemplars) == 0 {
		return nil, ErrEmptyKnowledgeBase
	}
	for i, e := range exemplars {
		if err := validateExemplar(e); err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrInvalidExemplar, i, err)
		}
	}
	cp := make([]Exemplar, len(exemplars))
	copy(cp, exemplars)
	return &KnowledgeBase{exemplars: cp}, nil
}

// validateExemplar rejects labels outside the enum, negative sizes and ratios that are
// not finite values in [0,1]. A NaN feature would poison its neighbour weight.
func validateExemplar(e Exemplar) error {
	if !e.Best.Valid() {
		return fmt.Errorf("algorithm %d", int(e.Best))
	}
	f := e.Features
	if f.Size < 0 {
		return fmt.Errorf("negative size %d", f.Size)
	}
	for _, r := range []struct {
		name string
		v    float64
	}{{"sortedness", f.Sortedness}, {"reversedness", f.Reversedness}, {"uniqueness", f.Uniqueness}} {
		if !(r.v >= 0 && r.v <= 1) {
			return fmt.Errorf("%s %g outside [0,1]", r.name, r.v)
		}
	}
	return nil
}

// Len returns the number of exemplars.
func (kb *KnowledgeBase) Len() int {
	if kb == nil {
		return 0
	}
	return len(kb.exemplars)
}

// Exemplars returns a copy of the exemplars in insertion order.
func (kb *KnowledgeBase) Exemplars() []Exemplar {
	out := make([]Exemplar, kb.Len())
	if kb != nil {
		copy(out, kb.exemplars)
	}
	return out
}

func ex(size int, sorted, reversed, unique float64, best Algorithm) Exemplar {
	return Exemplar{
		Features: analysis.Features{Size: size, Sortedness: sorted, Reversedness: reversed, Uniqueness: unique},
		Best:     best,
	}
}

// DefaultKnowledgeBase returns the built-in exemplars covering small, nearly sorted,
// reversed, few-unique and large random datasets.
func DefaultKnowledgeBase() *KnowledgeBase {
	kb, _ := NewKnowledgeBase([]Exemplar{
		// small
		ex(30, 0.1, 0.1, 1.0, Insertion),
		ex(50, 0.9, 0.0, 1.0, Insertion),
		ex(40, 0.0, 0.9, 1.0, Insertion),
		// nearly sorted
		ex(500, 0.95, 0.0, 1.0, Insertion),
		ex(900, 0.92, 0.0, 1.0, Insertion),
		// reversed
		ex(500, 0.0, 0.95, 1.0, Quick),
		ex(2000, 0.0, 0.99, 1.0, Quick),
		ex(5000, 0.0, 1.00, 1.0, Quick),
		// few unique
		ex(1000, 0.3, 0.3, 0.05, Merge),
		ex(5000, 0.5, 0.2, 0.10, Merge),
		ex(800, 0.2, 0.2, 0.20, Merge),
		// large random
		ex(2000, 0.5, 0.5, 1.0, Quick),
		ex(5000, 0.4, 0.4, 0.9, Quick),
		ex(10000, 0.5, 0.5, 1.0, Quick),
	})
	return kb
}

type exemplarFile struct {
	Exemplars []exemplarEntry `yaml:"exemplars"`
}

type exemplarEntry struct {
	Size         int       `yaml:"size"`
	Sortedness   float64   `yaml:"sortedness"`
	Reversedness float64   `yaml:"reversedness"`
	Uniqueness   float64   `yaml:"uniqueness"`
	Best         Algorithm `yaml:"best"`
}

// LoadKnowledgeBase reads exemplars from a YAML file of the form
//
//	exemplars:
//	  - {size: 30, sortedness: 0.1, reversedness: 0.1, uniqueness: 1.0, best: insertion}
func LoadKnowledgeBase(path string) (*KnowledgeBase, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	var doc exemplarFile
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	exemplars := make([]Exemplar, 0, len(doc.Exemplars))
	for _, e := range doc.Exemplars {
		exemplars = append(exemplars, ex(e.Size, e.Sortedness, e.Reversedness, e.Uniqueness, e.Best))
	}
	kb, err := NewKnowledgeBase(exemplars)
	if err != nil {
		return nil, fmt.Errorf("knowledge base %s: %w", path, err)
	}
	return kb, nil
}

// MarshalYAML writes the knowledge base in the format LoadKnowledgeBase reads.
func (kb *KnowledgeBase) MarshalYAML() (interface{}, error) {
	doc := exemplarFile{}
	for _, e := range kb.Exemplars() {
		f := e.Features
		doc.Exemplars = append(doc.Exemplars, exemplarEntry{
			Size: f.Size, Sortedness: f.Sortedness, Reversedness: f.Reversedness, Uniqueness: f.Uniqueness, Best: e.Best,
		})
	}
	return doc, nil
}
