package embedding

import "github.com/viant/vec/search"

// CosineSimilarity returns the cosine similarity of two vectors. Zero
// vectors and mismatched lengths score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	va := search.Float32s(a)
	vb := search.Float32s(b)
	ma := va.Magnitude()
	mb := vb.Magnitude()
	if ma == 0 || mb == 0 {
		return 0
	}

	return 1 - float64(va.CosineDistanceWithMagnitudesNeon(b, ma, mb))
}

// BatchSimilarity returns the cosine similarity of the query against
// each candidate.
func BatchSimilarity(query []float32, candidates [][]float32) []float64 {
	sims := make([]float64, len(candidates))
	for i, c := range candidates {
		sims[i] = CosineSimilarity(query, c)
	}
	return sims
}

// EuclideanDistance returns the L2 distance between two vectors.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	return float64(search.Float32s(a).EuclideanDistance(b))
}

// Normalize scales v to unit length in place and returns it. Zero
// vectors are left untouched.
func Normalize(v []float32) []float32 {
	m := search.Float32s(v).Magnitude()
	if m == 0 {
		return v
	}
	for i := range v {
		v[i] /= m
	}
	return v
}
