package ingest

import (
	"context"
	"testing"

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
	enqueueFn func(ctx context.Context, caseID uuid.UUID, caseNumber string) (*pipeline.QueueEntry, error)
}

func (m *mockOrchestrator) Enqueue(ctx context.Context, caseID uuid.UUID, caseNumber string) (*pipeline.QueueEntry, error) {
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, caseID, caseNumber)
	}
	return pipeline.NewQueueEntry(caseID, caseNumber), nil
}

func (m *mockOrchestrator) Tick(context.Context) (*pipeline.TickResult, error) {
	return &pipeline.TickResult{Outcome: pipeline.OutcomeIdle}, nil
}

func (m *mockOrchestrator) Status(_ context.Context, caseNumber string) (*pipeline.QueueEntry, error) {
	return nil, errors.New(errors.ErrCodeQueueEntryNotFound, "no entry")
}

func (m *mockOrchestrator) Reset(_ context.Context, caseNumber string, _ pipeline.Stage) (*pipeline.QueueEntry, error) {
	return nil, errors.New(errors.ErrCodeQueueEntryNotFound, "no entry")
}

func newTestService(store *testutil.DocumentStoreMock, cases *testutil.CaseRepoMock,
	artifacts *testutil.ArtifactRepoMock, orc pipeline.Orchestrator) Service {
	return NewService(Deps{
		Cases:     cases,
		Artifacts: artifacts,
		Store:     store,
		Pipeline:  orc,
	})
}

func TestUpload_StoresDocumentAndEnqueues(t *testing.T) {
	t.Parallel()

	store := testutil.NewDocumentStoreMock()
	var created *judgment.Case
	cases := &testutil.CaseRepoMock{
		CreateFn: func(_ context.Context, c *judgment.Case) error {
			created = c
			return nil
		},
	}
	svc := newTestService(store, cases, testutil.NewArtifactRepoMock(), &mockOrchestrator{})

	res, err := svc.Upload(context.Background(), &UploadInput{
		CaseNumber:  "CRL.A. 1482/2012",
		Title:       "Pradeep Kumar vs State",
		FileName:    "judgment.txt",
		ContentType: "text/plain",
		Data:        []byte("The appeal is allowed."),
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, jtypes.StageExtraction, res.Stage)
	assert.Equal(t, jtypes.StatusPending, res.Status)

	stored, err := store.Get(context.Background(), created.SourceKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("The appeal is allowed."), stored)
}

func TestUpload_RejectsEmptyFile(t *testing.T) {
	t.Parallel()

	svc := newTestService(testutil.NewDocumentStoreMock(), &testutil.CaseRepoMock{},
		testutil.NewArtifactRepoMock(), &mockOrchestrator{})

	_, err := svc.Upload(context.Background(), &UploadInput{CaseNumber: "OS 12/2020"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyDocument))
}

func TestUpload_RejectsInvalidCaseNumber(t *testing.T) {
	t.Parallel()

	svc := newTestService(testutil.NewDocumentStoreMock(), &testutil.CaseRepoMock{},
		testutil.NewArtifactRepoMock(), &mockOrchestrator{})

	_, err := svc.Upload(context.Background(), &UploadInput{
		CaseNumber: "??",
		Data:       []byte("text"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCaseNumberInvalid))
}

func TestUpload_PropagatesDuplicateCase(t *testing.T) {
	t.Parallel()

	orc := &mockOrchestrator{
		enqueueFn: func(_ context.Context, _ uuid.UUID, _ string) (*pipeline.QueueEntry, error) {
			return nil, errors.Duplicate("case already enqueued")
		},
	}
	svc := newTestService(testutil.NewDocumentStoreMock(), &testutil.CaseRepoMock{},
		testutil.NewArtifactRepoMock(), orc)

	_, err := svc.Upload(context.Background(), &UploadInput{
		CaseNumber: "OS 12/2020",
		FileName:   "a.txt",
		Data:       []byte("text"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDuplicateCase))
}

func seedCase(t *testing.T, store *testutil.DocumentStoreMock, body string) (*judgment.Case, *testutil.CaseRepoMock) {
	t.Helper()
	c, err := judgment.NewCase("CRL.A. 1482/2012", "")
	require.NoError(t, err)
	c.SourceKey = "cases/" + c.ID.String() + "/source/judgment.txt"
	require.NoError(t, store.Put(context.Background(), c.SourceKey, []byte(body), "text/plain"))

	cases := &testutil.CaseRepoMock{
		GetByIDFn: func(_ context.Context, id uuid.UUID) (*judgment.Case, error) {
			if id == c.ID {
				return c, nil
			}
			return nil, errors.New(errors.ErrCodeCaseNotFound, "case not found")
		},
	}
	return c, cases
}

func TestRunExtraction_StoresTextAndLanguage(t *testing.T) {
	t.Parallel()

	store := testutil.NewDocumentStoreMock()
	c, cases := seedCase(t, store, "The appeal is dismissed with costs.")
	svc := newTestService(store, cases, testutil.NewArtifactRepoMock(), &mockOrchestrator{})

	require.NoError(t, svc.RunExtraction(context.Background(), c.ID))

	assert.Equal(t, "en", c.Language)
	require.NotEmpty(t, c.TextKey)
	text, err := store.Get(context.Background(), c.TextKey)
	require.NoError(t, err)
	assert.Contains(t, string(text), "dismissed with costs")
}

func TestRunExtraction_UnsupportedDocumentIsTerminal(t *testing.T) {
	t.Parallel()

	store := testutil.NewDocumentStoreMock()
	c, cases := seedCase(t, store, string([]byte{0xFF, 0xD8, 0x00, 0x10}))
	svc := newTestService(store, cases, testutil.NewArtifactRepoMock(), &mockOrchestrator{})

	err := svc.RunExtraction(context.Background(), c.ID)
	require.Error(t, err)
	assert.False(t, errors.IsRetryable(err), "bad input documents must not be retried")
}

func TestRunNormalize_SplitsParagraphsAndExtractsMetadata(t *testing.T) {
	t.Parallel()

	store := testutil.NewDocumentStoreMock()
	c, cases := seedCase(t, store, "")
	c.TextKey = "cases/" + c.ID.String() + "/text.txt"
	require.NoError(t, store.Put(context.Background(), c.TextKey,
		[]byte(sampleJudgmentHeader), "text/plain"))

	artifacts := testutil.NewArtifactRepoMock()
	svc := newTestService(store, cases, artifacts, &mockOrchestrator{})

	require.NoError(t, svc.RunNormalize(context.Background(), c.ID))

	paras, err := artifacts.GetParagraphs(context.Background(), c.ID)
	require.NoError(t, err)
	require.NotEmpty(t, paras)
	assert.Equal(t, 1, paras[0].Ordinal)

	assert.Equal(t, "High Court", c.Metadata.CourtLevel)
	assert.Equal(t, "Pradeep Kumar vs State of Tamil Nadu", c.Title)
}

func TestRunNormalize_EmptyTextFails(t *testing.T) {
	t.Parallel()

	store := testutil.NewDocumentStoreMock()
	c, cases := seedCase(t, store, "")
	c.TextKey = "cases/" + c.ID.String() + "/text.txt"
	require.NoError(t, store.Put(context.Background(), c.TextKey, []byte("   "), "text/plain"))

	svc := newTestService(store, cases, testutil.NewArtifactRepoMock(), &mockOrchestrator{})

	err := svc.RunNormalize(context.Background(), c.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyDocument))
}
