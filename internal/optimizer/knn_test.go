package optimizer

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/sortwise-cli/internal/analysis"
)

func feat(size int, sorted, reversed, unique float64) analysis.Features {
	return analysis.Features{Size: size, Sortedness: sorted, Reversedness: reversed, Uniqueness: unique}
}

func TestKNN_ConstructionErrors(t *testing.T) {
	_, err := NewKNNSelector(nil)
	assert.ErrorIs(t, err, ErrEmptyKnowledgeBase)

	_, err = NewKnowledgeBase(nil)
	assert.ErrorIs(t, err, ErrEmptyKnowledgeBase)

	_, err = NewKNNSelector(DefaultKnowledgeBase(), WithK(0))
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = NewKNNSelector(DefaultKnowledgeBase(), WithK(-3))
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = NewKnowledgeBase([]Exemplar{{Best: Algorithm(9)}})
	assert.Error(t, err)
}

func TestKNN_SelectKRejectsNonPositive(t *testing.T) {
	s, err := NewKNNSelector(DefaultKnowledgeBase())
	require.NoError(t, err)
	_, err = s.SelectK(feat(100, 0.5, 0.5, 1), 0)
	assert.ErrorIs(t, err, ErrInvalidK)
}

func TestKNN_DefaultKnowledgeBase(t *testing.T) {
	s, err := NewKNNSelector(DefaultKnowledgeBase())
	require.NoError(t, err)
	assert.Equal(t, 5, s.K())
	assert.Equal(t, 14, s.KnowledgeBase().Len())

	cases := []struct {
		f    analysis.Features
		want Algorithm
	}{
		{feat(35, 0.1, 0.1, 1.0), Insertion},
		{feat(600, 0.94, 0.0, 1.0), Insertion},
		{feat(4000, 0.0, 0.99, 1.0), Quick},
		{feat(1000, 0.3, 0.3, 0.05), Merge},
		{feat(9000, 0.5, 0.5, 1.0), Quick},
	}
	for _, c := range cases {
		d, err := s.Select(c.f)
		require.NoError(t, err)
		assert.Equal(t, c.want, d.Algorithm, "%+v", c.f)
		require.NotNil(t, d.Trace)
		assert.Len(t, d.Trace.Neighbors, 5)
	}
}

func TestKNN_ExactMatchDominates(t *testing.T) {
	s, err := NewKNNSelector(DefaultKnowledgeBase(), WithK(3))
	require.NoError(t, err)
	d, err := s.Select(feat(800, 0.2, 0.2, 0.20))
	require.NoError(t, err)
	assert.Equal(t, Merge, d.Algorithm)
	assert.Equal(t, 0.0, d.Trace.Neighbors[0].Distance)
	assert.InDelta(t, 1e5, d.Trace.Neighbors[0].Weight, 1e-6)
}

func TestKNN_OverrideFiresOnReversedLargeInput(t *testing.T) {
	// every exemplar is an insertion-sort win, so the raw vote can only be insertion
	kb, err := NewKnowledgeBase([]Exemplar{
		{Features: feat(1500, 0.0, 0.95, 1.0), Best: Insertion},
		{Features: feat(2500, 0.0, 0.97, 1.0), Best: Insertion},
		{Features: feat(3000, 0.0, 0.90, 1.0), Best: Insertion},
		{Features: feat(200, 0.9, 0.1, 1.0), Best: Insertion},
		{Features: feat(100, 0.5, 0.5, 1.0), Best: Insertion},
		{Features: feat(9000, 0.5, 0.5, 1.0), Best: Quick},
	})
	require.NoError(t, err)
	s, err := NewKNNSelector(kb, WithK(5))
	require.NoError(t, err)

	d, err := s.Select(feat(2000, 0.0, 0.95, 1.0))
	require.NoError(t, err)
	assert.Equal(t, Quick, d.Algorithm)
	assert.Equal(t, Insertion, d.Raw)
	assert.True(t, d.Overridden)
	require.NotNil(t, d.Trace)
	assert.True(t, d.Trace.Overridden)
	assert.Equal(t, Insertion, d.Trace.Raw)
	assert.Greater(t, d.Trace.Votes[Insertion], d.Trace.Votes[Quick])
	assert.Contains(t, d.Reason, "Overridden")

	rec := d.Recommendation()
	assert.True(t, rec.Overridden)
	assert.Equal(t, "Insertion Sort", rec.Raw)
	assert.Len(t, rec.Neighbors, 5)
}

func TestKNN_NeverQuadraticWhenLarge(t *testing.T) {
	kb, err := NewKnowledgeBase([]Exemplar{
		{Features: feat(50, 0.9, 0.1, 1.0), Best: Bubble},
		{Features: feat(60, 0.1, 0.9, 1.0), Best: Insertion},
	})
	require.NoError(t, err)
	s, err := NewKNNSelector(kb, WithK(2))
	require.NoError(t, err)

	for size := 1001; size < 50000; size += 3331 {
		for _, r := range []float64{0, 0.3, 0.9, 1} {
			d, err := s.Select(feat(size, 1-r, r, 1-r/2))
			require.NoError(t, err)
			assert.False(t, d.Algorithm.Quadratic(), "size=%d got %s", size, d.Algorithm)
		}
	}
}

func TestKNN_KClampedToKnowledgeBase(t *testing.T) {
	kb, err := NewKnowledgeBase([]Exemplar{
		{Features: feat(10, 1, 0, 1), Best: Insertion},
		{Features: feat(5000, 0.5, 0.5, 1), Best: Quick},
	})
	require.NoError(t, err)
	s, err := NewKNNSelector(kb, WithK(10))
	require.NoError(t, err)

	d, err := s.Select(feat(20, 0.9, 0.1, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, d.Trace.K)
	assert.Len(t, d.Trace.Neighbors, 2)
	assert.Equal(t, "k=2", d.Rule)
}

func TestKNN_TieGoesToLowerOrdinal(t *testing.T) {
	// two exemplars equidistant from the query with different labels
	kb, err := NewKnowledgeBase([]Exemplar{
		{Features: feat(500, 0.6, 0.4, 1), Best: Quick},
		{Features: feat(500, 0.4, 0.6, 1), Best: Merge},
	})
	require.NoError(t, err)
	s, err := NewKNNSelector(kb, WithK(2))
	require.NoError(t, err)

	d, err := s.Select(feat(500, 0.5, 0.5, 1))
	require.NoError(t, err)
	assert.Equal(t, d.Trace.Votes[Quick], d.Trace.Votes[Merge])
	assert.Equal(t, Merge, d.Algorithm)
	// equal distances keep knowledge-base order
	assert.Equal(t, Quick, d.Trace.Neighbors[0].Exemplar.Best)
}

func TestKNN_DistanceSaturatesSize(t *testing.T) {
	s, err := NewKNNSelector(DefaultKnowledgeBase())
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Distance(feat(10000, 0.5, 0.5, 1), feat(90000, 0.5, 0.5, 1)))
	assert.InDelta(t, math.Sqrt(2.0*0.25), s.Distance(feat(10, 0.5, 0, 1), feat(10, 0, 0, 1)), 1e-12)

	w, err := NewKNNSelector(DefaultKnowledgeBase(), WithWeights(Weights{Size: 1}), WithSizeScale(100))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, w.Distance(feat(50, 0.9, 0.1, 0.2), feat(100, 0, 1, 1)), 1e-12)
}

func TestKNN_ConcurrentSelect(t *testing.T) {
	s, err := NewKNNSelector(DefaultKnowledgeBase())
	require.NoError(t, err)
	want, err := s.Select(feat(3000, 0.4, 0.6, 0.8))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				d, err := s.Select(feat(3000, 0.4, 0.6, 0.8))
				if assert.NoError(t, err) {
					assert.Equal(t, want.Algorithm, d.Algorithm)
				}
			}
		}()
	}
	wg.Wait()
}

func TestKnowledgeBase_IsImmutable(t *testing.T) {
	src := []Exemplar{{Features: feat(10, 1, 0, 1), Best: Insertion}}
	kb, err := NewKnowledgeBase(src)
	require.NoError(t, err)
	src[0].Best = Bubble
	got := kb.Exemplars()
	got[0].Best = Quick
	assert.Equal(t, Insertion, kb.Exemplars()[0].Best)
}

func TestKnowledgeBase_YAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kb.yaml")
	b, err := yaml.Marshal(DefaultKnowledgeBase())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))

	kb, err := LoadKnowledgeBase(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultKnowledgeBase().Exemplars(), kb.Exemplars())
}

func TestLoadKnowledgeBase_Errors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("exemplars: []\n"), 0o644))
	_, err := LoadKnowledgeBase(empty)
	assert.ErrorIs(t, err, ErrEmptyKnowledgeBase)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("exemplars:\n  - {size: 10, best: heap}\n"), 0o644))
	_, err = LoadKnowledgeBase(bad)
	assert.Error(t, err)

	_, err = LoadKnowledgeBase(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	for name, doc := range map[string]string{
		"nan":           "exemplars:\n  - {size: 10, sortedness: .nan, reversedness: 0, uniqueness: 1, best: quick}\n",
		"ratio above 1": "exemplars:\n  - {size: 10, sortedness: 5, reversedness: 0, uniqueness: 1, best: quick}\n",
		"negative size": "exemplars:\n  - {size: -3, sortedness: 1, reversedness: 0, uniqueness: 1, best: quick}\n",
	} {
		path := filepath.Join(dir, "kb.yaml")
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
		_, err = LoadKnowledgeBase(path)
		assert.ErrorIs(t, err, ErrInvalidExemplar, name)
	}
}

func TestNewKnowledgeBase_RejectsUnusableFeatures(t *testing.T) {
	good := Exemplar{Features: feat(500, 1, 0, 1), Best: Merge}
	cases := map[string]Exemplar{
		"nan sortedness":    {Features: feat(500, math.NaN(), 0, 1), Best: Quick},
		"inf uniqueness":    {Features: feat(500, 0, 0, math.Inf(1)), Best: Quick},
		"negative ratio":    {Features: feat(500, 0, -0.1, 1), Best: Quick},
		"negative size":     {Features: feat(-1, 0, 0, 1), Best: Quick},
		"algorithm too big": {Features: feat(500, 0, 0, 1), Best: Algorithm(9)},
	}
	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewKnowledgeBase([]Exemplar{bad, good})
			assert.ErrorIs(t, err, ErrInvalidExemplar)
		})
	}
	_, err := NewKnowledgeBase([]Exemplar{good, {Features: feat(0, 0, 0, 0), Best: Bubble}})
	assert.NoError(t, err)
}
