package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/juristack/juristack/internal/domain/judgment"
	"github.com/juristack/juristack/pkg/errors"
)

// CaseRepoMock is a function-field mock for judgment.CaseRepository.
// Unset fields behave as an empty store.
type CaseRepoMock struct {
	CreateFn        func(ctx context.Context, c *judgment.Case) error
	GetByIDFn       func(ctx context.Context, id uuid.UUID) (*judgment.Case, error)
	GetByNumberFn   func(ctx context.Context, caseNumber string) (*judgment.Case, error)
	UpdateFn        func(ctx context.Context, c *judgment.Case) error
	ListCompletedFn func(ctx context.Context) ([]uuid.UUID, error)
}

func (m *CaseRepoMock) Create(ctx context.Context, c *judgment.Case) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *CaseRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*judgment.Case, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errors.New(errors.ErrCodeCaseNotFound, "case not found")
}

func (m *CaseRepoMock) GetByNumber(ctx context.Context, caseNumber string) (*judgment.Case, error) {
	if m.GetByNumberFn != nil {
		return m.GetByNumberFn(ctx, caseNumber)
	}
	return nil, errors.New(errors.ErrCodeCaseNotFound, "case not found")
}

func (m *CaseRepoMock) Update(ctx context.Context, c *judgment.Case) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, c)
	}
	return nil
}

func (m *CaseRepoMock) ListCompleted(ctx context.Context) ([]uuid.UUID, error) {
	if m.ListCompletedFn != nil {
		return m.ListCompletedFn(ctx)
	}
	return nil, nil
}

// ArtifactRepoMock is an in-memory judgment.ArtifactRepository.  Individual
// methods can be overridden through the function fields; everything else runs
// against the internal maps, which makes round-trip service tests cheap.
type ArtifactRepoMock struct {
	mu sync.Mutex

	Paragraphs  map[uuid.UUID][]judgment.Paragraph
	Facts       map[uuid.UUID][]judgment.Fact
	Summaries   map[uuid.UUID]*judgment.Summary
	Keywords    map[uuid.UUID]*judgment.Keywords
	Edges       map[uuid.UUID][]judgment.SimilarityEdge
	Predictions map[uuid.UUID][]*judgment.Prediction

	SaveTranslationFn func(ctx context.Context, tr *judgment.Translation) error
	GetTranslationFn  func(ctx context.Context, caseID uuid.UUID, language string, mode judgment.TranslationMode) (*judgment.Translation, error)

	translations map[string]*judgment.Translation
}

// NewArtifactRepoMock returns an ArtifactRepoMock with all maps initialised.
func NewArtifactRepoMock() *ArtifactRepoMock {
	return &ArtifactRepoMock{
		Paragraphs:   make(map[uuid.UUID][]judgment.Paragraph),
		Facts:        make(map[uuid.UUID][]judgment.Fact),
		Summaries:    make(map[uuid.UUID]*judgment.Summary),
		Keywords:     make(map[uuid.UUID]*judgment.Keywords),
		Edges:        make(map[uuid.UUID][]judgment.SimilarityEdge),
		Predictions:  make(map[uuid.UUID][]*judgment.Prediction),
		translations: make(map[string]*judgment.Translation),
	}
}

func (m *ArtifactRepoMock) ReplaceParagraphs(_ context.Context, caseID uuid.UUID, paragraphs []judgment.Paragraph) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Paragraphs[caseID] = paragraphs
	return nil
}

func (m *ArtifactRepoMock) GetParagraphs(_ context.Context, caseID uuid.UUID) ([]judgment.Paragraph, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Paragraphs[caseID], nil
}

func (m *ArtifactRepoMock) ReplaceFacts(_ context.Context, caseID uuid.UUID, facts []judgment.Fact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Facts[caseID] = facts
	return nil
}

func (m *ArtifactRepoMock) GetFacts(_ context.Context, caseID uuid.UUID) ([]judgment.Fact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Facts[caseID], nil
}

func (m *ArtifactRepoMock) SaveSummary(_ context.Context, s *judgment.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Summaries[s.CaseID] = s
	return nil
}

func (m *ArtifactRepoMock) GetSummary(_ context.Context, caseID uuid.UUID) (*judgment.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Summaries[caseID]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "summary not found")
	}
	return s, nil
}

func translationKey(caseID uuid.UUID, language string, mode judgment.TranslationMode) string {
	return caseID.String() + "/" + language + "/" + string(mode)
}

func (m *ArtifactRepoMock) SaveTranslation(ctx context.Context, tr *judgment.Translation) error {
	if m.SaveTranslationFn != nil {
		return m.SaveTranslationFn(ctx, tr)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.translations[translationKey(tr.CaseID, tr.Language, tr.Mode)] = tr
	return nil
}

func (m *ArtifactRepoMock) GetTranslation(ctx context.Context, caseID uuid.UUID, language string, mode judgment.TranslationMode) (*judgment.Translation, error) {
	if m.GetTranslationFn != nil {
		return m.GetTranslationFn(ctx, caseID, language, mode)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tr, ok := m.translations[translationKey(caseID, language, mode)]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "translation not found")
	}
	return tr, nil
}

func (m *ArtifactRepoMock) SaveKeywords(_ context.Context, kw *judgment.Keywords) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Keywords[kw.CaseID] = kw
	return nil
}

func (m *ArtifactRepoMock) GetKeywords(_ context.Context, caseID uuid.UUID) (*judgment.Keywords, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kw, ok := m.Keywords[caseID]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "keywords not found")
	}
	return kw, nil
}

func (m *ArtifactRepoMock) ReplaceSimilarityEdges(_ context.Context, caseID uuid.UUID, edges []judgment.SimilarityEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Edges[caseID] = edges
	return nil
}

func (m *ArtifactRepoMock) GetSimilarityEdges(_ context.Context, caseID uuid.UUID) ([]judgment.SimilarityEdge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Edges[caseID], nil
}

func (m *ArtifactRepoMock) AppendPrediction(_ context.Context, p *judgment.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Predictions[p.CaseID] = append(m.Predictions[p.CaseID], p)
	return nil
}

func (m *ArtifactRepoMock) GetLatestPrediction(_ context.Context, caseID uuid.UUID) (*judgment.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps := m.Predictions[caseID]
	if len(ps) == 0 {
		return nil, errors.New(errors.CodeNotFound, "no prediction recorded")
	}
	return ps[len(ps)-1], nil
}

// ChunkRepoMock is a function-field mock for judgment.ChunkRepository.
type ChunkRepoMock struct {
	ReplaceChunksFn   func(ctx context.Context, caseID uuid.UUID, chunks []judgment.Chunk) error
	GetChunksFn       func(ctx context.Context, caseID uuid.UUID) ([]judgment.Chunk, error)
	SearchWithinFn    func(ctx context.Context, caseID uuid.UUID, embedding []float32, limit int) ([]judgment.ScoredChunk, error)
	MaxCosineAcrossFn func(ctx context.Context, sourceCaseID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]float64, error)
}

func (m *ChunkRepoMock) ReplaceChunks(ctx context.Context, caseID uuid.UUID, chunks []judgment.Chunk) error {
	if m.ReplaceChunksFn != nil {
		return m.ReplaceChunksFn(ctx, caseID, chunks)
	}
	return nil
}

func (m *ChunkRepoMock) GetChunks(ctx context.Context, caseID uuid.UUID) ([]judgment.Chunk, error) {
	if m.GetChunksFn != nil {
		return m.GetChunksFn(ctx, caseID)
	}
	return nil, nil
}

func (m *ChunkRepoMock) SearchWithin(ctx context.Context, caseID uuid.UUID, embedding []float32, limit int) ([]judgment.ScoredChunk, error) {
	if m.SearchWithinFn != nil {
		return m.SearchWithinFn(ctx, caseID, embedding, limit)
	}
	return nil, nil
}

func (m *ChunkRepoMock) MaxCosineAcross(ctx context.Context, sourceCaseID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	if m.MaxCosineAcrossFn != nil {
		return m.MaxCosineAcrossFn(ctx, sourceCaseID, candidateIDs)
	}
	return map[uuid.UUID]float64{}, nil
}

// ChatRepoMock records appended exchanges in memory.
type ChatRepoMock struct {
	mu        sync.Mutex
	Exchanges []*judgment.ChatExchange

	AppendFn func(ctx context.Context, ex *judgment.ChatExchange) error
}

func (m *ChatRepoMock) Append(ctx context.Context, ex *judgment.ChatExchange) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, ex)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Exchanges = append(m.Exchanges, ex)
	return nil
}

func (m *ChatRepoMock) ListByCase(_ context.Context, caseID uuid.UUID, limit int) ([]judgment.ChatExchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []judgment.ChatExchange
	for _, ex := range m.Exchanges {
		if ex.CaseID == caseID {
			out = append(out, *ex)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// StatsRepoMock is an in-memory judgment.StatsRepository.
type StatsRepoMock struct {
	mu    sync.Mutex
	Stats map[string]*judgment.OutcomeStat
}

// NewStatsRepoMock returns an empty StatsRepoMock.
func NewStatsRepoMock() *StatsRepoMock {
	return &StatsRepoMock{Stats: make(map[string]*judgment.OutcomeStat)}
}

// Seed installs a bucket, replacing any existing one.
func (m *StatsRepoMock) Seed(feature, value string, wins, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stats[feature+"/"+value] = &judgment.OutcomeStat{
		Feature: feature, Value: value, Wins: wins, Total: total,
	}
}

func (m *StatsRepoMock) Upsert(_ context.Context, feature, value string, winDelta, totalDelta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := feature + "/" + value
	s, ok := m.Stats[key]
	if !ok {
		s = &judgment.OutcomeStat{Feature: feature, Value: value}
		m.Stats[key] = s
	}
	s.Wins += winDelta
	s.Total += totalDelta
	return nil
}

func (m *StatsRepoMock) Get(_ context.Context, feature, value string) (*judgment.OutcomeStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Stats[feature+"/"+value]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "stat bucket not found")
	}
	return s, nil
}

func (m *StatsRepoMock) ListByFeature(_ context.Context, feature string) ([]judgment.OutcomeStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []judgment.OutcomeStat
	for _, s := range m.Stats {
		if s.Feature == feature {
			out = append(out, *s)
		}
	}
	return out, nil
}

// DocumentStoreMock is an in-memory judgment.DocumentStore.
type DocumentStoreMock struct {
	mu      sync.Mutex
	Objects map[string][]byte

	PutFn func(ctx context.Context, key string, data []byte, contentType string) error
	GetFn func(ctx context.Context, key string) ([]byte, error)
}

// NewDocumentStoreMock returns an empty DocumentStoreMock.
func NewDocumentStoreMock() *DocumentStoreMock {
	return &DocumentStoreMock{Objects: make(map[string][]byte)}
}

func (m *DocumentStoreMock) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, key, data, contentType)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = data
	return nil
}

func (m *DocumentStoreMock) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[key]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "object not found")
	}
	return data, nil
}

func (m *DocumentStoreMock) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	return nil
}
