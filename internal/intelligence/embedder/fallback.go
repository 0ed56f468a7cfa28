package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
)

// deterministic hashes token n-grams into a fixed-dimension vector.  The
// output is stable across processes, which keeps similarity scores and chunk
// retrieval reproducible when no real model is installed.
type deterministic struct {
	dimension int
}

// NewDeterministic returns the hashing fallback embedder.  A non-positive
// dimension defaults to 384 to match the primary model.
func NewDeterministic(dimension int) Embedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &deterministic{dimension: dimension}
}

func (d *deterministic) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = d.embedOne(truncateWords(t, maxEmbedWords))
	}
	return out, nil
}

func (d *deterministic) embedOne(text string) []float32 {
	vec := make([]float32, d.dimension)
	words := strings.Fields(strings.ToLower(text))
	for i, w := range words {
		// Unigrams plus bigrams give the hash some word-order sensitivity.
		d.accumulate(vec, w, 1.0)
		if i+1 < len(words) {
			d.accumulate(vec, w+" "+words[i+1], 0.5)
		}
	}
	normalize(vec)
	return vec
}

func (d *deterministic) accumulate(vec []float32, token string, weight float32) {
	sum := sha256.Sum256([]byte(token))
	idx := int(binary.BigEndian.Uint32(sum[:4])) % d.dimension
	if idx < 0 {
		idx += d.dimension
	}
	sign := float32(1)
	if sum[4]&1 == 1 {
		sign = -1
	}
	vec[idx] += sign * weight
}

func (d *deterministic) Dimension() int    { return d.dimension }
func (d *deterministic) ModelName() string { return "deterministic-hash" }
func (d *deterministic) Close() error      { return nil }

// normalize scales vec to unit length in place.  The zero vector stays zero.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
}
