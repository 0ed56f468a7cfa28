// Package genai wraps the Gemini API behind a small text-generation contract.
// All callers must tolerate an unavailable generator: summaries, translations
// and chat answers each carry a rule-based fallback path.
package genai

import (
	"context"
	"strings"

	gemini "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/juristack/juristack/internal/config"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/pkg/errors"
)

// Generator produces free text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Available reports whether a real model backs this generator.
	Available() bool
	ModelName() string
	Close() error
}

type geminiGenerator struct {
	client *gemini.Client
	model  *gemini.GenerativeModel
	name   string
}

// New builds a Gemini-backed generator.  Without an API key it returns the
// disabled generator rather than an error so callers degrade uniformly.
func New(ctx context.Context, cfg config.GenAIConfig, log logging.Logger) (Generator, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.APIKey == "" {
		log.Warn("no generative API key configured, model-backed text generation disabled")
		return Disabled(), nil
	}

	client, err := gemini.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAIModelNotAvailable, "create gemini client")
	}

	model := client.GenerativeModel(cfg.Model)
	log.Info("generative model ready", logging.String("model", cfg.Model))
	return &geminiGenerator{client: client, model: model, name: cfg.Model}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, gemini.Text(prompt))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAIInferenceFailed, "generate content")
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(gemini.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", errors.New(errors.ErrCodeAIInferenceFailed, "model returned no text")
	}
	return out, nil
}

func (g *geminiGenerator) Available() bool   { return true }
func (g *geminiGenerator) ModelName() string { return g.name }

func (g *geminiGenerator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// disabled satisfies Generator when no model is configured.
type disabled struct{}

// Disabled returns a Generator whose Generate always fails with
// AI_MODEL_NOT_AVAILABLE.
func Disabled() Generator { return disabled{} }

func (disabled) Generate(context.Context, string) (string, error) {
	return "", errors.New(errors.ErrCodeAIModelNotAvailable, "generative model not configured")
}

func (disabled) Available() bool   { return false }
func (disabled) ModelName() string { return "disabled" }
func (disabled) Close() error      { return nil }
