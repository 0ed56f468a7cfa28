package query

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juristack/juristack/internal/domain/judgment"
	"github.com/juristack/juristack/internal/domain/pipeline"
	"github.com/juristack/juristack/internal/testutil"
	"github.com/juristack/juristack/pkg/errors"
	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

type mockOrchestrator struct {
	statusFn func(ctx context.Context, caseNumber string) (*pipeline.QueueEntry, error)
}

func (m *mockOrchestrator) Enqueue(_ context.Context, caseID uuid.UUID, caseNumber string) (*pipeline.QueueEntry, error) {
	return pipeline.NewQueueEntry(caseID, caseNumber), nil
}

func (m *mockOrchestrator) Tick(context.Context) (*pipeline.TickResult, error) {
	return &pipeline.TickResult{Outcome: pipeline.OutcomeIdle}, nil
}

func (m *mockOrchestrator) Status(ctx context.Context, caseNumber string) (*pipeline.QueueEntry, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, caseNumber)
	}
	return nil, errors.New(errors.ErrCodeQueueEntryNotFound, "no entry")
}

func (m *mockOrchestrator) Reset(_ context.Context, caseNumber string, _ pipeline.Stage) (*pipeline.QueueEntry, error) {
	return nil, errors.New(errors.ErrCodeQueueEntryNotFound, "no entry")
}

// fakeCache is a map-backed redis.Cache stand-in reusing the real JSON
// round-trip so cached values behave like they came off the wire.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.entries[key]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "cache miss")
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = data
	f.sets++
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.entries, k)
	}
	return nil
}

func (f *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok, nil
}

func (f *fakeCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	if err := f.Get(ctx, key, dest); err == nil {
		return nil
	}
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	if err := f.Set(ctx, key, v, ttl); err != nil {
		return err
	}
	return f.Get(ctx, key, dest)
}

func (f *fakeCache) DeleteByPrefix(_ context.Context, prefix string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k := range f.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(f.entries, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeCache) Expire(context.Context, string, time.Duration) error { return nil }
func (f *fakeCache) TTL(context.Context, string) (time.Duration, error)  { return 0, nil }
func (f *fakeCache) Ping(context.Context) error                          { return nil }

func completedEntry(caseNumber string) *pipeline.QueueEntry {
	e := pipeline.NewQueueEntry(uuid.New(), caseNumber)
	e.Stage = jtypes.StageCompleted
	e.Status = jtypes.StatusDone
	return e
}

func seedCase(t *testing.T, number string) *judgment.Case {
	t.Helper()
	c, err := judgment.NewCase(number, "Pradeep Kumar vs State")
	require.NoError(t, err)
	return c
}

func TestStatus_MapsQueueEntry(t *testing.T) {
	t.Parallel()

	enqueued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	orc := &mockOrchestrator{
		statusFn: func(_ context.Context, caseNumber string) (*pipeline.QueueEntry, error) {
			return &pipeline.QueueEntry{
				CaseNumber: caseNumber,
				Stage:      jtypes.StageFacts,
				Status:     jtypes.StatusRunning,
				Attempts:   2,
				LastError:  "transient",
				EnqueuedAt: enqueued,
				UpdatedAt:  enqueued.Add(time.Minute),
			}, nil
		},
	}
	svc := NewService(Deps{Cases: &testutil.CaseRepoMock{}, Artifacts: testutil.NewArtifactRepoMock(), Pipeline: orc})

	st, err := svc.Status(context.Background(), "CRL.A. 1482/2012")
	require.NoError(t, err)
	assert.Equal(t, jtypes.StageFacts, st.Stage)
	assert.Equal(t, jtypes.StatusRunning, st.Status)
	assert.Equal(t, 2, st.Attempts)
	assert.Equal(t, "transient", st.LastError)
	assert.Equal(t, "2024-03-01T10:00:00Z", st.EnqueuedAt)
}

func TestAnalyze_UnknownCase(t *testing.T) {
	t.Parallel()

	svc := NewService(Deps{Cases: &testutil.CaseRepoMock{}, Artifacts: testutil.NewArtifactRepoMock(), Pipeline: &mockOrchestrator{}})

	_, err := svc.Analyze(context.Background(), "W.P.(C) 404/2020", "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeCaseNotFound))
}

func TestAnalyze_UnsupportedLanguage(t *testing.T) {
	t.Parallel()

	svc := NewService(Deps{Cases: &testutil.CaseRepoMock{}, Artifacts: testutil.NewArtifactRepoMock(), Pipeline: &mockOrchestrator{}})

	_, err := svc.Analyze(context.Background(), "CRL.A. 1482/2012", "xx")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestAnalyze_PartialCaseReportsMissing(t *testing.T) {
	t.Parallel()

	c := seedCase(t, "CRL.A. 1482/2012")
	cases := &testutil.CaseRepoMock{
		GetByNumberFn: func(_ context.Context, _ string) (*judgment.Case, error) { return c, nil },
	}
	orc := &mockOrchestrator{
		statusFn: func(_ context.Context, caseNumber string) (*pipeline.QueueEntry, error) {
			e := pipeline.NewQueueEntry(c.ID, caseNumber)
			e.Stage = jtypes.StageFacts
			return e, nil
		},
	}
	svc := NewService(Deps{Cases: cases, Artifacts: testutil.NewArtifactRepoMock(), Pipeline: orc})

	res, err := svc.Analyze(context.Background(), c.CaseNumber, "hi")
	require.NoError(t, err)
	assert.Nil(t, res.Summaries)
	assert.Nil(t, res.Translation)
	assert.Nil(t, res.Prediction)
	assert.Empty(t, res.SimilarCases)
	assert.ElementsMatch(t,
		[]string{"summaries", "translation", "similar_cases", "prediction"}, res.Missing)
}

func TestAnalyze_CompleteCase(t *testing.T) {
	t.Parallel()

	c := seedCase(t, "CRL.A. 1482/2012")
	similar := seedCase(t, "CRL.A. 77/2010")
	similar.Metadata.CourtName = "High Court of Delhi"
	similar.Metadata.DecisionDate = time.Date(2011, 6, 2, 0, 0, 0, 0, time.UTC)

	cases := &testutil.CaseRepoMock{
		GetByNumberFn: func(_ context.Context, _ string) (*judgment.Case, error) { return c, nil },
		GetByIDFn: func(_ context.Context, id uuid.UUID) (*judgment.Case, error) {
			if id == similar.ID {
				return similar, nil
			}
			return nil, errors.New(errors.ErrCodeCaseNotFound, "case not found")
		},
	}
	artifacts := testutil.NewArtifactRepoMock()
	require.NoError(t, artifacts.SaveSummary(context.Background(), &judgment.Summary{
		CaseID: c.ID, Short: "Appeal allowed.", Basic: "The appeal was allowed.",
		KeyPoints: []judgment.KeyPoint{{Label: "Outcome", Explanation: "Appeal allowed"}},
		Model:     "rules/v1",
	}))
	require.NoError(t, artifacts.ReplaceSimilarityEdges(context.Background(), c.ID, []judgment.SimilarityEdge{
		{CaseID: c.ID, SimilarCaseID: similar.ID, Rank: 1, Score: 0.82, KeywordScore: 0.7, CosineScore: 0.9},
	}))
	require.NoError(t, artifacts.AppendPrediction(context.Background(), &judgment.Prediction{
		CaseID: c.ID, Outcome: "Likely Favors Plaintiff", Probability: 0.71, Confidence: 0.6,
		Factors: []judgment.PredictionFactor{{Name: "Evidence strength", Weight: 0.3}},
	}))

	orc := &mockOrchestrator{
		statusFn: func(_ context.Context, caseNumber string) (*pipeline.QueueEntry, error) {
			return completedEntry(caseNumber), nil
		},
	}
	svc := NewService(Deps{Cases: cases, Artifacts: artifacts, Pipeline: orc})

	res, err := svc.Analyze(context.Background(), c.CaseNumber, "")
	require.NoError(t, err)
	assert.Empty(t, res.Missing)
	require.NotNil(t, res.Summaries)
	assert.Equal(t, "Appeal allowed.", res.Summaries.Short)
	require.Len(t, res.SimilarCases, 1)
	assert.Equal(t, "CRL.A. 77/2010", res.SimilarCases[0].CaseNumber)
	assert.Equal(t, "High Court of Delhi", res.SimilarCases[0].CourtName)
	assert.Equal(t, "2011-06-02", res.SimilarCases[0].DecisionDate)
	assert.InDelta(t, 0.82, res.SimilarCases[0].Score, 1e-9)
	require.NotNil(t, res.Prediction)
	assert.Equal(t, "Likely Favors Plaintiff", res.Prediction.Outcome)
	// No translation requested, so none is reported missing.
	assert.Nil(t, res.Translation)
}

func TestAnalyze_CompleteResultIsCachedAndInvalidated(t *testing.T) {
	t.Parallel()

	c := seedCase(t, "CS(OS) 89/2020")
	calls := 0
	cases := &testutil.CaseRepoMock{
		GetByNumberFn: func(_ context.Context, _ string) (*judgment.Case, error) { return c, nil },
	}
	artifacts := testutil.NewArtifactRepoMock()
	require.NoError(t, artifacts.SaveSummary(context.Background(), &judgment.Summary{
		CaseID: c.ID, Short: "Suit decreed.", Basic: "The suit was decreed.",
	}))
	require.NoError(t, artifacts.AppendPrediction(context.Background(), &judgment.Prediction{
		CaseID: c.ID, Outcome: "Uncertain", Probability: 0.5, Confidence: 0.4,
	}))

	orc := &mockOrchestrator{
		statusFn: func(_ context.Context, caseNumber string) (*pipeline.QueueEntry, error) {
			calls++
			return completedEntry(caseNumber), nil
		},
	}
	cache := newFakeCache()
	svc := NewService(Deps{Cases: cases, Artifacts: artifacts, Pipeline: orc, Cache: cache})

	first, err := svc.Analyze(context.Background(), c.CaseNumber, "")
	require.NoError(t, err)
	require.Empty(t, first.Missing)
	assert.Equal(t, 1, cache.sets)

	// Second read is served from the cache, not reassembled.
	statusCallsAfterFirst := calls
	second, err := svc.Analyze(context.Background(), c.CaseNumber, "")
	require.NoError(t, err)
	assert.Equal(t, first.Summaries.Short, second.Summaries.Short)
	assert.Equal(t, statusCallsAfterFirst, calls)

	require.NoError(t, svc.InvalidateCase(context.Background(), c.CaseNumber))
	_, err = svc.Analyze(context.Background(), c.CaseNumber, "")
	require.NoError(t, err)
	assert.Greater(t, calls, statusCallsAfterFirst)
}

func TestAnalyze_PartialResultIsNotCached(t *testing.T) {
	t.Parallel()

	c := seedCase(t, "W.P.(C) 456/2021")
	cases := &testutil.CaseRepoMock{
		GetByNumberFn: func(_ context.Context, _ string) (*judgment.Case, error) { return c, nil },
	}
	orc := &mockOrchestrator{
		statusFn: func(_ context.Context, caseNumber string) (*pipeline.QueueEntry, error) {
			return pipeline.NewQueueEntry(c.ID, caseNumber), nil
		},
	}
	cache := newFakeCache()
	svc := NewService(Deps{Cases: cases, Artifacts: testutil.NewArtifactRepoMock(), Pipeline: orc, Cache: cache})

	res, err := svc.Analyze(context.Background(), c.CaseNumber, "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Missing)
	assert.Zero(t, cache.sets)
}
