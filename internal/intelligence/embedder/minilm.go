package embedder

import (
	"context"
	"os"
	"path/filepath"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/juristack/juristack/internal/config"
	"github.com/juristack/juristack/pkg/errors"
)

// miniLM runs a sentence-transformer feature extraction pipeline on the Go
// backend of hugot.
type miniLM struct {
	session   *hugot.Session
	pipeline  *pipelines.FeatureExtractionPipeline
	modelName string
	dimension int
}

func newMiniLM(cfg config.EmbeddingConfig) (*miniLM, error) {
	modelPath, err := resolveModel(cfg)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAIModelNotAvailable, "create hugot session")
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "judgment-embedder",
	})
	if err != nil {
		_ = session.Destroy()
		return nil, errors.Wrap(err, errors.ErrCodeAIModelNotAvailable, "create feature extraction pipeline")
	}

	return &miniLM{
		session:   session,
		pipeline:  pipeline,
		modelName: cfg.ModelName,
		dimension: cfg.Dimension,
	}, nil
}

// resolveModel returns the on-disk model directory, downloading the model on
// first use when only a model name is configured.
func resolveModel(cfg config.EmbeddingConfig) (string, error) {
	if cfg.ModelPath == "" {
		return "", errors.New(errors.ErrCodeAIModelNotAvailable, "no embedding model path configured")
	}
	if _, err := os.Stat(cfg.ModelPath); err == nil {
		return cfg.ModelPath, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.ModelPath), 0o755); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAIModelNotAvailable, "create model directory")
	}
	opts := hugot.NewDownloadOptions()
	opts.OnnxFilePath = "onnx/model.onnx"
	downloaded, err := hugot.DownloadModel(cfg.ModelName, filepath.Dir(cfg.ModelPath), opts)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAIModelNotAvailable, "download embedding model")
	}
	return downloaded, nil
}

func (m *miniLM) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAIInferenceFailed, "embed cancelled")
	}

	trimmed := make([]string, len(texts))
	for i, t := range texts {
		trimmed[i] = truncateWords(t, maxEmbedWords)
	}

	out, err := m.pipeline.RunPipeline(trimmed)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAIInferenceFailed, "run embedding pipeline")
	}
	if len(out.Embeddings) != len(texts) {
		return nil, errors.Newf(errors.ErrCodeAIInferenceFailed,
			"embedding count mismatch: got %d for %d texts", len(out.Embeddings), len(texts))
	}
	return out.Embeddings, nil
}

func (m *miniLM) Dimension() int    { return m.dimension }
func (m *miniLM) ModelName() string { return m.modelName }

func (m *miniLM) Close() error {
	if m.session == nil {
		return nil
	}
	return m.session.Destroy()
}
