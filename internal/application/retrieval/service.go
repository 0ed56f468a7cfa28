// Package retrieval implements the vector side of the pipeline: deterministic
// chunking and embedding of case text, hybrid keyword/semantic similarity
// between cases, and the retrieval-augmented chatbot that answers questions
// strictly from stored artifacts and retrieved passages.
package retrieval

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/juristack/juristack/internal/application/analysis"
	"github.com/juristack/juristack/internal/config"
	"github.com/juristack/juristack/internal/domain/judgment"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/internal/intelligence/embedder"
	"github.com/juristack/juristack/pkg/errors"
)

// Service defines the operations backing the CHUNK_EMBED and SIMILARITY
// stages plus the chat endpoint.
type Service interface {
	// RunChunkEmbed performs the CHUNK_EMBED stage: split the case text into
	// overlapping word windows, embed each, replace the stored chunks.
	RunChunkEmbed(ctx context.Context, caseID uuid.UUID) error

	// RunSimilarity performs the SIMILARITY stage: score the case against
	// every completed case and replace its ranked similarity edges.  An empty
	// corpus yields an empty edge set, not an error.
	RunSimilarity(ctx context.Context, caseID uuid.UUID) error

	// Ask answers one chat query about a case and logs the exchange.
	Ask(ctx context.Context, caseID uuid.UUID, query string) (*judgment.ChatExchange, error)
}

// Deps lists the collaborators of the retrieval service.
type Deps struct {
	Cases     judgment.CaseRepository
	Artifacts judgment.ArtifactRepository
	Chunks    judgment.ChunkRepository
	Exchanges judgment.ChatRepository
	Store     judgment.DocumentStore
	Embedder  embedder.Embedder

	// Analysis serves the summarize and translate chat intents.
	Analysis analysis.Service

	Pipeline   config.PipelineConfig
	Similarity config.SimilarityConfig
	Chat       config.ChatConfig

	Logger logging.Logger
}

type service struct {
	cases     judgment.CaseRepository
	artifacts judgment.ArtifactRepository
	chunks    judgment.ChunkRepository
	exchanges judgment.ChatRepository
	store     judgment.DocumentStore
	embedder  embedder.Embedder
	analysis  analysis.Service

	pipeline   config.PipelineConfig
	similarity config.SimilarityConfig
	chat       config.ChatConfig

	log logging.Logger
}

// NewService creates the retrieval application service.  Zero-valued scoring
// knobs fall back to the shipped defaults so a partially-populated config
// never produces a degenerate score.
func NewService(deps Deps) Service {
	log := deps.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	if deps.Similarity.KeywordWeight <= 0 && deps.Similarity.SemanticWeight <= 0 {
		deps.Similarity.KeywordWeight = config.DefaultKeywordWeight
		deps.Similarity.SemanticWeight = config.DefaultSemanticWeight
	}
	if deps.Similarity.TopK <= 0 {
		deps.Similarity.TopK = config.DefaultSimilarityTopK
	}
	if deps.Chat.TopK <= 0 {
		deps.Chat.TopK = config.DefaultChatTopK
	}
	if deps.Chat.ScoreThreshold <= 0 {
		deps.Chat.ScoreThreshold = config.DefaultChatThreshold
	}
	return &service{
		cases:      deps.Cases,
		artifacts:  deps.Artifacts,
		chunks:     deps.Chunks,
		exchanges:  deps.Exchanges,
		store:      deps.Store,
		embedder:   deps.Embedder,
		analysis:   deps.Analysis,
		pipeline:   deps.Pipeline,
		similarity: deps.Similarity,
		chat:       deps.Chat,
		log:        log.Named("retrieval"),
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

func (s *service) RunChunkEmbed(ctx context.Context, caseID uuid.UUID) error {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	text, err := s.loadText(ctx, c)
	if err != nil {
		return err
	}

	parts := ChunkText(text, s.pipeline.ChunkSize, s.pipeline.ChunkOverlap)
	if len(parts) == 0 {
		return errors.New(errors.ErrCodeCaseNotProcessed, "case text is empty, nothing to chunk").
			WithDetail("case_number=" + c.CaseNumber)
	}

	vectors, err := s.embedder.Embed(ctx, parts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeAIInferenceFailed, "embed case chunks")
	}
	if len(vectors) != len(parts) {
		return errors.New(errors.ErrCodeAIInferenceFailed, "embedder returned wrong vector count")
	}

	chunks := make([]judgment.Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = judgment.Chunk{
			ID:        uuid.New(),
			CaseID:    c.ID,
			Ordinal:   i + 1,
			Text:      p,
			Embedding: vectors[i],
		}
	}
	if err := s.chunks.ReplaceChunks(ctx, c.ID, chunks); err != nil {
		return err
	}

	s.log.Info("case chunked and embedded",
		logging.String("case_number", c.CaseNumber),
		logging.Int("chunks", len(chunks)),
		logging.String("model", s.embedder.ModelName()))
	return nil
}

func (s *service) RunSimilarity(ctx context.Context, caseID uuid.UUID) error {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}

	sourceKW, err := s.caseKeywords(ctx, c.ID)
	if err != nil {
		return err
	}

	completed, err := s.cases.ListCompleted(ctx)
	if err != nil {
		return err
	}
	candidateIDs := make([]uuid.UUID, 0, len(completed))
	for _, id := range completed {
		if id != c.ID {
			candidateIDs = append(candidateIDs, id)
		}
	}
	if len(candidateIDs) == 0 {
		if err := s.artifacts.ReplaceSimilarityEdges(ctx, c.ID, nil); err != nil {
			return err
		}
		s.log.Info("no completed cases to compare against",
			logging.String("case_number", c.CaseNumber))
		return nil
	}

	cosines, err := s.chunks.MaxCosineAcross(ctx, c.ID, candidateIDs)
	if err != nil {
		return err
	}

	type match struct {
		c        *judgment.Case
		score    float64
		kwScore  float64
		cosScore float64
	}
	var matches []match
	for _, id := range candidateIDs {
		cand, err := s.cases.GetByID(ctx, id)
		if err != nil {
			// A case deleted mid-scan just drops out of the ranking.
			if errors.IsNotFound(err) {
				continue
			}
			return err
		}
		candKW, err := s.caseKeywords(ctx, id)
		if err != nil {
			return err
		}
		kwScore := jaccard(sourceKW, candKW)
		cosScore := clamp01(cosines[id])
		score := clamp01(s.similarity.KeywordWeight*kwScore + s.similarity.SemanticWeight*cosScore)
		if score == 0 {
			continue
		}
		matches = append(matches, match{c: cand, score: score, kwScore: kwScore, cosScore: cosScore})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		di, dj := matches[i].c.Metadata.DecisionDate, matches[j].c.Metadata.DecisionDate
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return matches[i].c.CaseNumber < matches[j].c.CaseNumber
	})
	if len(matches) > s.similarity.TopK {
		matches = matches[:s.similarity.TopK]
	}

	now := time.Now().UTC()
	edges := make([]judgment.SimilarityEdge, len(matches))
	for i, m := range matches {
		edges[i] = judgment.SimilarityEdge{
			CaseID:        c.ID,
			SimilarCaseID: m.c.ID,
			Rank:          i + 1,
			Score:         m.score,
			KeywordScore:  m.kwScore,
			CosineScore:   m.cosScore,
			ComputedAt:    now,
		}
	}
	if err := s.artifacts.ReplaceSimilarityEdges(ctx, c.ID, edges); err != nil {
		return err
	}

	s.log.Info("similarity computed",
		logging.String("case_number", c.CaseNumber),
		logging.Int("candidates", len(candidateIDs)),
		logging.Int("matches", len(edges)))
	return nil
}

// caseKeywords fetches the extracted keyword set, treating absence as empty.
func (s *service) caseKeywords(ctx context.Context, caseID uuid.UUID) ([]string, error) {
	kw, err := s.artifacts.GetKeywords(ctx, caseID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return kw.Keywords, nil
}

func (s *service) Ask(ctx context.Context, caseID uuid.UUID, query string) (*judgment.ChatExchange, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New(errors.ErrCodeChatEmptyQuery, "query must not be empty")
	}
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	intent := classifyIntent(query)

	var (
		response   string
		contextIDs []uuid.UUID
	)
	switch intent {
	case IntentSummarize:
		response, err = s.answerSummary(ctx, c)
	case IntentTranslate:
		response, err = s.answerTranslation(ctx, c, query)
	case IntentMetadata:
		response = answerMetadata(c, query)
	default:
		response, contextIDs, err = s.answerFromDocument(ctx, c, query)
	}
	if err != nil {
		return nil, err
	}

	ex := &judgment.ChatExchange{
		ID:         uuid.New(),
		CaseID:     c.ID,
		Query:      query,
		Response:   response,
		Intent:     string(intent),
		ContextIDs: contextIDs,
		LatencyMS:  time.Since(start).Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.exchanges.Append(ctx, ex); err != nil {
		// The user still gets their answer; only the audit trail is short.
		s.log.Warn("chat exchange not logged",
			logging.String("case_number", c.CaseNumber), logging.Err(err))
	}
	return ex, nil
}

func (s *service) answerSummary(ctx context.Context, c *judgment.Case) (string, error) {
	summary, err := s.artifacts.GetSummary(ctx, c.ID)
	if errors.IsNotFound(err) {
		if runErr := s.analysis.RunSummary(ctx, c.ID); runErr != nil {
			return "", errors.Wrap(runErr, errors.ErrCodeChatCaseNotReady, "case summary is not available yet")
		}
		summary, err = s.artifacts.GetSummary(ctx, c.ID)
	}
	if err != nil {
		return "", err
	}
	if summary.Short != "" {
		return summary.Short, nil
	}
	return summary.Basic, nil
}

func (s *service) answerTranslation(ctx context.Context, c *judgment.Case, query string) (string, error) {
	lang := requestedLanguage(query)
	if lang == "" {
		if analysis.SupportedLanguage(c.Language) && c.Language != "en" {
			lang = c.Language
		} else {
			lang = "hi"
		}
	}
	tr, err := s.analysis.Translate(ctx, c.ID, lang, judgment.TranslateSummary)
	if err != nil {
		return "", err
	}
	return tr.Text, nil
}

func (s *service) answerFromDocument(ctx context.Context, c *judgment.Case, query string) (string, []uuid.UUID, error) {
	all, err := s.chunks.GetChunks(ctx, c.ID)
	if err != nil {
		return "", nil, err
	}
	if len(all) == 0 {
		return "", nil, errors.New(errors.ErrCodeChatCaseNotReady, "case has not been indexed for chat yet").
			WithDetail("case_number=" + c.CaseNumber)
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrCodeAIInferenceFailed, "embed chat query")
	}
	scored, err := s.chunks.SearchWithin(ctx, c.ID, vectors[0], s.chat.TopK)
	if err != nil {
		return "", nil, err
	}

	var (
		texts      []string
		contextIDs []uuid.UUID
	)
	for _, sc := range scored {
		if sc.Score >= s.chat.ScoreThreshold {
			texts = append(texts, sc.Chunk.Text)
			contextIDs = append(contextIDs, sc.Chunk.ID)
		}
	}

	tokens := queryTokens(query)
	if len(texts) == 0 {
		// Secondary lexical retriever for queries the embedding space misses.
		texts, contextIDs = lexicalRetrieve(all, tokens, s.chat.TopK)
	}

	minOverlap := 2
	if len(tokens) < minOverlap {
		minOverlap = len(tokens)
	}
	if minOverlap > 0 {
		if sentences := relevantSentences(texts, tokens, minOverlap, 5); len(sentences) > 0 {
			return composeAnswer(sentences), contextIDs, nil
		}
	}
	if explanation := answerLegalConcept(query); explanation != "" {
		return explanation, nil, nil
	}
	return msgNotInJudgment, nil, nil
}

// lexicalRetrieve ranks chunks by how many query tokens they contain.
func lexicalRetrieve(chunks []judgment.Chunk, tokens map[string]struct{}, limit int) ([]string, []uuid.UUID) {
	type scored struct {
		chunk   judgment.Chunk
		overlap int
	}
	var hits []scored
	for _, ch := range chunks {
		if overlap := tokenOverlap(ch.Text, tokens); overlap > 0 {
			hits = append(hits, scored{chunk: ch, overlap: overlap})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].overlap != hits[j].overlap {
			return hits[i].overlap > hits[j].overlap
		}
		return hits[i].chunk.Ordinal < hits[j].chunk.Ordinal
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	texts := make([]string, len(hits))
	ids := make([]uuid.UUID, len(hits))
	for i, h := range hits {
		texts[i] = h.chunk.Text
		ids[i] = h.chunk.ID
	}
	return texts, ids
}
