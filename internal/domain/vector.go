package domain

import "math"

// CosineSimilarity computes the cosine similarity between two vectors:
// dot(a,b) / (|a| * |b|). Vectors of different lengths, and vectors whose
// norm is zero, score 0 rather than producing NaN. This is a deliberate
// policy for degenerate inputs, not a mathematical identity.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
