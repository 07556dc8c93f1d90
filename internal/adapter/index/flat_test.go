package index

import (
	"math"
	"path/filepath"
	"testing"

	"ragqa/internal/domain"
	"ragqa/internal/port"
)

func newTestIndex(t *testing.T, indexType string, threshold float64) *FlatIndex {
	t.Helper()
	idx, err := NewFlatIndex(Config{
		IndexType:           indexType,
		Dimension:           3,
		TopK:                5,
		SimilarityThreshold: threshold,
	})
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func addThree(t *testing.T, idx *FlatIndex) {
	t.Helper()
	err := idx.Add(
		[]string{"alpha", "beta", "gamma"},
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0.9, 0.1, 0}},
		[]domain.Metadata{
			{Source: "wikipedia", Title: "Alpha"},
			{Source: "news", Title: "Beta"},
			{Source: "github", Title: "Gamma"},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
}

func TestAddLengthMismatch(t *testing.T) {
	idx := newTestIndex(t, TypeInnerProduct, 0.5)

	err := idx.Add([]string{"a", "b"}, [][]float32{{1, 0, 0}}, nil)
	if err == nil {
		t.Fatal("expected error for mismatched text/embedding counts")
	}
	if idx.Stats().TotalDocuments != 0 {
		t.Error("failed batch must not partially insert")
	}
}

func TestAddDimensionMismatch(t *testing.T) {
	idx := newTestIndex(t, TypeInnerProduct, 0.5)

	err := idx.Add([]string{"a"}, [][]float32{{1, 0}}, nil)
	if err == nil {
		t.Fatal("expected error for wrong embedding dimension")
	}
}

func TestSearchRanking(t *testing.T) {
	idx := newTestIndex(t, TypeInnerProduct, 0.01)
	addThree(t, idx)

	dists, ids, err := idx.Search([]float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if ids[0] != 0 {
		t.Errorf("nearest entry should be position 0, got %d", ids[0])
	}
	if ids[1] != 2 {
		t.Errorf("second entry should be position 2, got %d", ids[1])
	}
	if dists[0] < dists[1] || dists[1] < dists[2] {
		t.Errorf("inner product scores not descending: %v", dists)
	}
}

func TestSearchPadsWithSentinel(t *testing.T) {
	idx := newTestIndex(t, TypeInnerProduct, 0.01)
	addThree(t, idx)

	_, ids, err := idx.Search([]float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 10 {
		t.Fatalf("expected 10 slots, got %d", len(ids))
	}
	for i := 3; i < 10; i++ {
		if ids[i] != port.NoEntry {
			t.Errorf("slot %d should be sentinel, got %d", i, ids[i])
		}
	}
}

func TestSearchDimensionMismatch(t *testing.T) {
	idx := newTestIndex(t, TypeInnerProduct, 0.01)
	addThree(t, idx)

	if _, _, err := idx.Search([]float32{1, 0}, 3); err == nil {
		t.Fatal("expected dimensionality error")
	}
}

func TestSearchWithMetadataThreshold(t *testing.T) {
	idx := newTestIndex(t, TypeInnerProduct, 0.8)
	addThree(t, idx)

	results, err := idx.SearchWithMetadata([]float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Similarity < 0.8 {
			t.Errorf("result %q below threshold: %f", r.Text, r.Similarity)
		}
	}
	// beta is orthogonal to the query and must be filtered out.
	for _, r := range results {
		if r.Text == "beta" {
			t.Error("orthogonal entry passed the threshold filter")
		}
	}
}

func TestSearchWithMetadataCanReturnEmpty(t *testing.T) {
	idx := newTestIndex(t, TypeInnerProduct, 0.99)
	addThree(t, idx)

	results, err := idx.SearchWithMetadata([]float32{0.5, 0.5, 0.7}, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Similarity < 0.99 {
			t.Errorf("threshold filter leaked %q at %f", r.Text, r.Similarity)
		}
	}
}

func TestL2SimilarityClamped(t *testing.T) {
	idx := newTestIndex(t, TypeL2, 0.01)
	err := idx.Add(
		[]string{"near", "mid", "far"},
		[][]float32{{0, 0, 0}, {0.4, 0, 0}, {10, 10, 10}},
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}

	// The far entry's 1-distance would be strongly negative without
	// clamping; every reported similarity must stay in [0,1].
	results, err := idx.SearchWithMetadata([]float32{0, 0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) < 2 {
		t.Fatalf("expected near and mid entries, got %d results", len(results))
	}
	for _, r := range results {
		if r.Similarity < 0 || r.Similarity > 1 {
			t.Errorf("similarity out of [0,1]: %f", r.Similarity)
		}
		if r.Text == "far" {
			t.Error("far entry should fall below the threshold")
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	idx := newTestIndex(t, TypeInnerProduct, 0.1)
	addThree(t, idx)

	path := filepath.Join(t.TempDir(), "index.db")
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	restored, err := NewFlatIndex(Config{IndexType: TypeInnerProduct, Dimension: 3})
	if err != nil {
		t.Fatal(err)
	}
	if err := restored.Load(path); err != nil {
		t.Fatal(err)
	}

	query := []float32{1, 0, 0}
	before, err := idx.SearchWithMetadata(query, 3)
	if err != nil {
		t.Fatal(err)
	}
	after, err := restored.SearchWithMetadata(query, 3)
	if err != nil {
		t.Fatal(err)
	}

	if len(before) != len(after) {
		t.Fatalf("result counts differ: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Text != after[i].Text {
			t.Errorf("result %d text differs: %q vs %q", i, before[i].Text, after[i].Text)
		}
		if before[i].Metadata.Title != after[i].Metadata.Title {
			t.Errorf("result %d metadata differs", i)
		}
		if math.Abs(before[i].Similarity-after[i].Similarity) > 1e-6 {
			t.Errorf("result %d similarity differs: %f vs %f", i, before[i].Similarity, after[i].Similarity)
		}
	}
}

func TestClearRestartsPositions(t *testing.T) {
	idx := newTestIndex(t, TypeInnerProduct, 0.01)
	addThree(t, idx)

	gen := idx.Generation()
	if err := idx.Clear(); err != nil {
		t.Fatal(err)
	}
	if idx.Stats().TotalDocuments != 0 {
		t.Error("clear left entries behind")
	}
	if idx.Generation() == gen {
		t.Error("clear must bump the generation")
	}

	if err := idx.Add([]string{"fresh"}, [][]float32{{0, 0, 1}}, nil); err != nil {
		t.Fatal(err)
	}
	_, ids, err := idx.Search([]float32{0, 0, 1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if ids[0] != 0 {
		t.Errorf("positions should restart at zero, got %d", ids[0])
	}
}
