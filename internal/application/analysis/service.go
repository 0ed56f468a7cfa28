package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/juristack/juristack/internal/domain/judgment"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/internal/intelligence/genai"
	"github.com/juristack/juristack/pkg/errors"
)

// Service defines the analysis operations backing the FACTS, SUMMARY and
// TRANSLATE stages, plus on-demand translation for the query surface.
type Service interface {
	// RunFacts performs the FACTS stage: score sentences, extract the legal
	// keyword set, replace both artifacts.
	RunFacts(ctx context.Context, caseID uuid.UUID) error

	// RunSummary performs the SUMMARY stage with the rule-based engine; a
	// configured generative model refines the short summary when reachable.
	RunSummary(ctx context.Context, caseID uuid.UUID) error

	// RunTranslate performs the TRANSLATE stage: translate the basic summary
	// and key points into each configured target language.
	RunTranslate(ctx context.Context, caseID uuid.UUID) error

	// Translate returns the stored translation for (case, language, mode),
	// producing and caching it on a miss.  Output is never empty: when no
	// model is reachable the English source text comes back unchanged.
	Translate(ctx context.Context, caseID uuid.UUID, language string, mode judgment.TranslationMode) (*judgment.Translation, error)
}

// Deps lists the collaborators of the analysis service.
type Deps struct {
	Cases     judgment.CaseRepository
	Artifacts judgment.ArtifactRepository
	Store     judgment.DocumentStore
	Gen       genai.Generator

	// Targets are the languages RunTranslate produces automatically.
	Targets []string

	Logger logging.Logger
}

type service struct {
	cases     judgment.CaseRepository
	artifacts judgment.ArtifactRepository
	store     judgment.DocumentStore
	gen       genai.Generator
	targets   []string
	log       logging.Logger
}

// NewService creates the analysis application service.
func NewService(deps Deps) Service {
	log := deps.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	gen := deps.Gen
	if gen == nil {
		gen = genai.Disabled()
	}
	targets := deps.Targets
	if len(targets) == 0 {
		targets = []string{"hi", "te"}
	}
	return &service{
		cases:     deps.Cases,
		artifacts: deps.Artifacts,
		store:     deps.Store,
		gen:       gen,
		targets:   targets,
		log:       log.Named("analysis"),
	}
}

func (s *service) loadText(ctx context.Context, c *judgment.Case) (string, error) {
	if c.TextKey == "" {
		return "", errors.New(errors.ErrCodeCaseNotProcessed, "case has no extracted text yet").
			WithDetail("case_number=" + c.CaseNumber)
	}
	raw, err := s.store.Get(ctx, c.TextKey)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "fetch case text")
	}
	return string(raw), nil
}

func (s *service) RunFacts(ctx context.Context, caseID uuid.UUID) error {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	text, err := s.loadText(ctx, c)
	if err != nil {
		return err
	}

	sentences := ExtractFacts(text)
	facts := make([]judgment.Fact, len(sentences))
	for i, sc := range sentences {
		facts[i] = judgment.Fact{
			ID:      uuid.New(),
			CaseID:  c.ID,
			Ordinal: i + 1,
			Text:    sc.Text,
			Score:   sc.Score,
		}
	}
	if err := s.artifacts.ReplaceFacts(ctx, c.ID, facts); err != nil {
		return err
	}

	keywords := ExtractKeywords(text)
	if err := s.artifacts.SaveKeywords(ctx, &judgment.Keywords{CaseID: c.ID, Keywords: keywords}); err != nil {
		return err
	}

	s.log.Info("facts extracted",
		logging.String("case_number", c.CaseNumber),
		logging.Int("facts", len(facts)),
		logging.Int("keywords", len(keywords)))
	return nil
}

func (s *service) RunSummary(ctx context.Context, caseID uuid.UUID) error {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	text, err := s.loadText(ctx, c)
	if err != nil {
		return err
	}

	structured := Summarize(text)
	model := "rule-based"

	if s.gen.Available() {
		refined, genErr := s.refineShortSummary(ctx, structured.Short, structured.Detailed)
		if genErr != nil {
			s.log.Warn("generative refinement failed, keeping rule-based summary",
				logging.String("case_number", c.CaseNumber),
				logging.Err(genErr))
		} else {
			structured.Short = refined
			model = s.gen.ModelName()
		}
	}

	summary := &judgment.Summary{
		ID:        uuid.New(),
		CaseID:    c.ID,
		Short:     structured.Short,
		Detailed:  structured.Detailed,
		Basic:     structured.Basic,
		KeyPoints: structured.KeyPoints,
		Model:     model,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.artifacts.SaveSummary(ctx, summary); err != nil {
		return err
	}

	s.log.Info("case summarized",
		logging.String("case_number", c.CaseNumber),
		logging.String("model", model))
	return nil
}

func (s *service) refineShortSummary(ctx context.Context, short, detailed string) (string, error) {
	prompt := "Rewrite the following case summary as one plain-English paragraph of " +
		"at most five sentences for a reader with no legal training. Keep every name, " +
		"number and date exactly as written and add nothing that is not in the input.\n\n" +
		short + "\n\n" + detailed
	out, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New(errors.ErrCodeAIInferenceFailed, "model returned empty summary")
	}
	return out, nil
}

func (s *service) RunTranslate(ctx context.Context, caseID uuid.UUID) error {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	summary, err := s.artifacts.GetSummary(ctx, c.ID)
	if err != nil {
		return err
	}

	source := summarySource(summary)
	extra := protectedNames(c)

	for _, lang := range s.translateTargets(c) {
		translated, modelUsed := s.translateText(ctx, source, lang, extra)
		tr := &judgment.Translation{
			ID:        uuid.New(),
			CaseID:    c.ID,
			Language:  lang,
			Mode:      judgment.TranslateSummary,
			Text:      translated,
			ModelUsed: modelUsed,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.artifacts.SaveTranslation(ctx, tr); err != nil {
			return err
		}
		s.log.Info("summary translated",
			logging.String("case_number", c.CaseNumber),
			logging.String("language", lang),
			logging.String("model", modelUsed))
	}
	return nil
}

// translateTargets returns the configured target languages, plus the case's
// detected language when it is a supported non-English one.
func (s *service) translateTargets(c *judgment.Case) []string {
	targets := make([]string, 0, len(s.targets)+1)
	seen := make(map[string]bool)
	for _, lang := range s.targets {
		lang = strings.ToLower(lang)
		if SupportedLanguage(lang) && !seen[lang] {
			targets = append(targets, lang)
			seen[lang] = true
		}
	}
	if lang := strings.ToLower(c.Language); lang != "" && lang != "en" &&
		SupportedLanguage(lang) && !seen[lang] {
		targets = append(targets, lang)
	}
	return targets
}

func (s *service) Translate(ctx context.Context, caseID uuid.UUID, language string, mode judgment.TranslationMode) (*judgment.Translation, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if !SupportedLanguage(language) {
		return nil, errors.New(errors.ErrCodeValidation, "unsupported translation language").
			WithDetail("language=" + language)
	}
	if mode != judgment.TranslateSummary && mode != judgment.TranslateRaw {
		return nil, errors.New(errors.ErrCodeValidation, "unknown translation mode").
			WithDetail("mode=" + string(mode))
	}

	if cached, err := s.artifacts.GetTranslation(ctx, caseID, language, mode); err == nil {
		return cached, nil
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	var source string
	switch mode {
	case judgment.TranslateSummary:
		summary, err := s.artifacts.GetSummary(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		source = summarySource(summary)
	case judgment.TranslateRaw:
		source, err = s.loadText(ctx, c)
		if err != nil {
			return nil, err
		}
	}

	translated, modelUsed := s.translateText(ctx, source, language, protectedNames(c))
	tr := &judgment.Translation{
		ID:        uuid.New(),
		CaseID:    c.ID,
		Language:  language,
		Mode:      mode,
		Text:      translated,
		ModelUsed: modelUsed,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.artifacts.SaveTranslation(ctx, tr); err != nil {
		return nil, err
	}
	return tr, nil
}

// translateText translates source into language and reports which backend
// produced the output.  It never returns empty text: any failure falls back
// to the English source.
func (s *service) translateText(ctx context.Context, source, language string, extraTerms []string) (text, modelUsed string) {
	switch language {
	case "en":
		return source, "passthrough"
	case "simple_en":
		protected, terms := protectLegalTokens(source, extraTerms)
		return restoreLegalTokens(SimplifyEnglish(protected), terms), "rule-based"
	}

	if !s.gen.Available() {
		return source, "english-fallback"
	}

	protected, terms := protectLegalTokens(source, extraTerms)
	parts := make([]string, 0, 1)
	for _, chunk := range chunkForTranslation(protected) {
		out, err := s.gen.Generate(ctx, translatePrompt(language, chunk))
		if err != nil || strings.TrimSpace(out) == "" {
			s.log.Warn("translation failed, returning english text",
				logging.String("language", language),
				logging.Err(err))
			return source, "english-fallback"
		}
		parts = append(parts, strings.TrimSpace(out))
	}
	return restoreLegalTokens(strings.Join(parts, "\n"), terms), s.gen.ModelName()
}

func translatePrompt(language, chunk string) string {
	return fmt.Sprintf("Translate the following text into %s. Keep every token of the "+
		"form __LAW<number>__ exactly as written, translate nothing inside them, and "+
		"reply with the translation only.\n\n%s", LanguageName(language), chunk)
}

// summarySource builds the compact translation source: the basic summary
// followed by the numbered key points.
func summarySource(summary *judgment.Summary) string {
	var sb strings.Builder
	sb.WriteString(summary.Basic)
	if len(summary.KeyPoints) > 0 {
		sb.WriteString("\n\nKey Points:\n")
		for i, kp := range summary.KeyPoints {
			fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, kp.Label, kp.Explanation)
		}
	}
	return strings.TrimSpace(sb.String())
}

// protectedNames collects the proper nouns of a case that must never be
// translated.
func protectedNames(c *judgment.Case) []string {
	var names []string
	add := func(v string) {
		if v = strings.TrimSpace(v); v != "" {
			names = append(names, v)
		}
	}
	add(c.Metadata.Parties.Petitioner)
	add(c.Metadata.Parties.Respondent)
	add(c.Metadata.CourtName)
	for _, j := range c.Metadata.Judges {
		add(j)
	}
	return names
}
