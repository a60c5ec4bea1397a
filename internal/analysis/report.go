package analysis

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Recommendation is the report-facing view of a selector decision.
type Recommendation struct {
	Selector  string `json:"selector"`
	Algorithm string `json:"algorithm"`
	Rule      string `json:"rule"`
	Reason    string `json:"reason"`
	// Raw is the pre-override choice; it equals Algorithm unless Overridden.
	Raw        string         `json:"raw"`
	Overridden bool           `json:"overridden"`
	Neighbors  []NeighborLine `json:"neighbors"`
	Votes      []VoteLine     `json:"votes"`
}

// NeighborLine is one knowledge-base exemplar considered by a k-NN vote.
type NeighborLine struct {
	Rank      int      `json:"rank"`
	Algorithm string   `json:"algorithm"`
	Distance  float64  `json:"distance"`
	Weight    float64  `json:"weight"`
	Exemplar  Features `json:"exemplar"`
}

// VoteLine is the accumulated weight for one algorithm.
type VoteLine struct {
	Algorithm string  `json:"algorithm"`
	Weight    float64 `json:"weight"`
}

// Report is a markdown-friendly analysis of an integer dataset.
type Report struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Fingerprint uint64          `json:"fingerprint"`
	Features    Features        `json:"features"`
	Preview     []int           `json:"preview"`
	Total       int             `json:"total"`
	Rec         *Recommendation `json:"rec"`
}

// NewReport builds a report for seq, keeping at most preview leading values.
func NewReport(name string, seq []int, f Features, preview int) *Report {
	if preview < 0 {
		preview = 0
	}
	if preview > len(seq) {
		preview = len(seq)
	}
	p := make([]int, preview)
	copy(p, seq[:preview])
	return &Report{
		ID:          uuid.NewString(),
		Name:        name,
		Fingerprint: Fingerprint(seq),
		Features:    f,
		Preview:     p,
		Total:       len(seq),
	}
}

// Fingerprint is the xxHash64 of the sequence encoded as little-endian int64 values.
func Fingerprint(seq []int) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, v := range seq {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// Markdown renders the report.
func (r *Report) Markdown() string {
	var b strings.Builder
	f := r.Features
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Report: %s\n", r.ID))
	b.WriteString(fmt.Sprintf("Fingerprint: %016x\n", r.Fingerprint))
	sizeNote := "Small/Medium"
	if f.IsLarge {
		sizeNote = "Large"
	}
	b.WriteString(fmt.Sprintf("Size: %d (%s)\n", f.Size, sizeNote))
	b.WriteString(fmt.Sprintf("Type: %s\n", f.Shape.Title()))
	if len(r.Preview) > 0 {
		b.WriteString("Preview: [")
		for i, v := range r.Preview {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(fmt.Sprintf("%d", v))
		}
		if r.Total > len(r.Preview) {
			b.WriteString(fmt.Sprintf(", ... (%d more)", r.Total-len(r.Preview)))
		}
		b.WriteString("]\n")
	}

	b.WriteString("\n[FEATURES]\n")
	b.WriteString(fmt.Sprintf("- sortedness: %.1f%%\n", f.Sortedness*100))
	b.WriteString(fmt.Sprintf("- reversedness: %.1f%%\n", f.Reversedness*100))
	if f.Sampled {
		b.WriteString(fmt.Sprintf("- uniqueness: %.1f%% (estimated from %d samples, %d distinct)\n", f.Uniqueness*100, f.SampleSize, f.UniqueCount))
	} else {
		b.WriteString(fmt.Sprintf("- uniqueness: %.1f%% (exact, %d distinct)\n", f.Uniqueness*100, f.UniqueCount))
	}

	if r.Rec == nil {
		return b.String()
	}
	rec := r.Rec
	b.WriteString("\n[RECOMMENDATION]\n")
	b.WriteString(fmt.Sprintf("Selector: %s\n", rec.Selector))
	if rec.Rule != "" {
		b.WriteString(fmt.Sprintf("Rule: %s\n", rec.Rule))
	}
	if rec.Reason != "" {
		b.WriteString(fmt.Sprintf("Reasoning: %s\n", rec.Reason))
	}
	if rec.Overridden {
		b.WriteString(fmt.Sprintf("Safety override: %s replaced for a large dataset\n", rec.Raw))
	}
	b.WriteString(fmt.Sprintf(">>> Predicted best algorithm: %s <<<\n", rec.Algorithm))

	if len(rec.Neighbors) > 0 {
		b.WriteString("\n[NEIGHBORS]\n")
		for _, nb := range rec.Neighbors {
			e := nb.Exemplar
			b.WriteString(fmt.Sprintf("%d. %s (dist %.4f, weight %.4g) size=%d sorted=%.2f reversed=%.2f unique=%.2f\n",
				nb.Rank, nb.Algorithm, nb.Distance, nb.Weight, e.Size, e.Sortedness, e.Reversedness, e.Uniqueness))
		}
		if len(rec.Votes) > 0 {
			b.WriteString("Votes: ")
			for i, v := range rec.Votes {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s=%.4g", v.Algorithm, v.Weight))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
