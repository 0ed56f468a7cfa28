// Package embedder produces dense vector representations of judgment text.
// The primary backend runs a sentence-transformer ONNX model through hugot;
// when the model cannot be loaded the package degrades to a deterministic
// hashing embedder so the pipeline keeps moving.
package embedder

import (
	"context"
	"strings"

	"github.com/juristack/juristack/internal/config"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
)

// maxEmbedWords caps the text handed to the model; sentence transformers
// truncate silently past their window, so we trim up front for determinism.
const maxEmbedWords = 400

// Embedder converts text into fixed-dimension vectors.
type Embedder interface {
	// Embed returns one vector per input text, each of Dimension() length.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelName() string
	Close() error
}

// New builds the configured embedder, falling back to the deterministic
// hashing backend when the ONNX model is unavailable.
func New(cfg config.EmbeddingConfig, log logging.Logger) Embedder {
	if log == nil {
		log = logging.NewNopLogger()
	}
	emb, err := newMiniLM(cfg)
	if err != nil {
		log.Warn("embedding model unavailable, using deterministic fallback",
			logging.String("model", cfg.ModelName), logging.Err(err))
		return NewDeterministic(cfg.Dimension)
	}
	log.Info("embedding model loaded",
		logging.String("model", cfg.ModelName),
		logging.Int("dimension", cfg.Dimension))
	return emb
}

// truncateWords keeps at most n whitespace-separated words of s.
func truncateWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) <= n {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[:n], " ")
}
