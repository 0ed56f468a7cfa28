package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juristack/juristack/internal/application/ingest"
	"github.com/juristack/juristack/internal/domain/pipeline"
	"github.com/juristack/juristack/pkg/errors"
	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

type mockIngest struct {
	uploadFn func(ctx context.Context, input *ingest.UploadInput) (*ingest.UploadResult, error)
}

func (m *mockIngest) Upload(ctx context.Context, input *ingest.UploadInput) (*ingest.UploadResult, error) {
	return m.uploadFn(ctx, input)
}
func (m *mockIngest) RunExtraction(context.Context, uuid.UUID) error { return nil }
func (m *mockIngest) RunNormalize(context.Context, uuid.UUID) error  { return nil }

type mockQueries struct {
	statusFn     func(ctx context.Context, caseNumber string) (*jtypes.CaseStatus, error)
	analyzeFn    func(ctx context.Context, caseNumber, language string) (*jtypes.AnalyzeResult, error)
	invalidated  []string
	invalidateFn func(ctx context.Context, caseNumber string) error
}

func (m *mockQueries) Status(ctx context.Context, caseNumber string) (*jtypes.CaseStatus, error) {
	return m.statusFn(ctx, caseNumber)
}

func (m *mockQueries) Analyze(ctx context.Context, caseNumber, language string) (*jtypes.AnalyzeResult, error) {
	return m.analyzeFn(ctx, caseNumber, language)
}

func (m *mockQueries) InvalidateCase(ctx context.Context, caseNumber string) error {
	m.invalidated = append(m.invalidated, caseNumber)
	if m.invalidateFn != nil {
		return m.invalidateFn(ctx, caseNumber)
	}
	return nil
}

type mockOrchestrator struct {
	resetFn func(ctx context.Context, caseNumber string, to pipeline.Stage) (*pipeline.QueueEntry, error)
}

func (m *mockOrchestrator) Enqueue(context.Context, uuid.UUID, string) (*pipeline.QueueEntry, error) {
	return nil, nil
}
func (m *mockOrchestrator) Tick(context.Context) (*pipeline.TickResult, error) { return nil, nil }
func (m *mockOrchestrator) Status(context.Context, string) (*pipeline.QueueEntry, error) {
	return nil, nil
}

func (m *mockOrchestrator) Reset(ctx context.Context, caseNumber string, to pipeline.Stage) (*pipeline.QueueEntry, error) {
	return m.resetFn(ctx, caseNumber, to)
}

func newCaseRouter(h *CaseHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/cases", h.Upload)
	r.GET("/api/v1/cases/:number/status", h.Status)
	r.GET("/api/v1/cases/:number/analyze", h.Analyze)
	r.POST("/api/v1/cases/:number/reset", h.Reset)
	return r
}

func TestCaseHandler_UploadJSON(t *testing.T) {
	t.Parallel()

	caseID := uuid.New()
	var got *ingest.UploadInput
	ing := &mockIngest{uploadFn: func(_ context.Context, input *ingest.UploadInput) (*ingest.UploadResult, error) {
		got = input
		return &ingest.UploadResult{
			CaseID:     caseID,
			CaseNumber: input.CaseNumber,
			Stage:      jtypes.StageExtraction,
			Status:     jtypes.StatusPending,
		}, nil
	}}
	h := NewCaseHandler(ing, &mockQueries{}, &mockOrchestrator{}, 0, nil)
	r := newCaseRouter(h)

	body, _ := json.Marshal(jtypes.UploadRequest{
		CaseNumber:  "CRL.A. 123/2020",
		Title:       "State v. Sharma",
		ContentType: "text/plain",
		Content:     []byte("IN THE HIGH COURT OF DELHI"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	require.NotNil(t, got)
	assert.Equal(t, "CRL.A. 123/2020", got.CaseNumber)
	assert.Equal(t, []byte("IN THE HIGH COURT OF DELHI"), got.Data)

	var resp jtypes.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, caseID.String(), resp.CaseID)
	assert.Equal(t, jtypes.StageExtraction, resp.Stage)
	assert.Equal(t, jtypes.StatusPending, resp.Status)
}

func TestCaseHandler_UploadMultipart(t *testing.T) {
	t.Parallel()

	var got *ingest.UploadInput
	ing := &mockIngest{uploadFn: func(_ context.Context, input *ingest.UploadInput) (*ingest.UploadResult, error) {
		got = input
		return &ingest.UploadResult{
			CaseID:     uuid.New(),
			CaseNumber: input.CaseNumber,
			Stage:      jtypes.StageExtraction,
			Status:     jtypes.StatusPending,
		}, nil
	}}
	h := NewCaseHandler(ing, &mockQueries{}, &mockOrchestrator{}, 0, nil)
	r := newCaseRouter(h)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("case_number", "W.P.(C) 45/2019"))
	require.NoError(t, mw.WriteField("title", "Verma v. Union of India"))
	fw, err := mw.CreateFormFile("file", "judgment.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "W.P.(C) 45/2019", got.CaseNumber)
	assert.Equal(t, "Verma v. Union of India", got.Title)
	assert.Equal(t, "judgment.pdf", got.FileName)
	assert.Equal(t, []byte("%PDF-1.4 fake"), got.Data)
}

func TestCaseHandler_UploadMultipartWithoutFile(t *testing.T) {
	t.Parallel()

	h := NewCaseHandler(&mockIngest{}, &mockQueries{}, &mockOrchestrator{}, 0, nil)
	r := newCaseRouter(h)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("case_number", "X 1/2020"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCaseHandler_UploadDuplicate(t *testing.T) {
	t.Parallel()

	ing := &mockIngest{uploadFn: func(context.Context, *ingest.UploadInput) (*ingest.UploadResult, error) {
		return nil, errors.New(errors.ErrCodeDuplicateCase, "case already enqueued")
	}}
	h := NewCaseHandler(ing, &mockQueries{}, &mockOrchestrator{}, 0, nil)
	r := newCaseRouter(h)

	body, _ := json.Marshal(jtypes.UploadRequest{CaseNumber: "DUP 1/2020", Content: []byte("x")})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrCodeDuplicateCase.String(), resp.Code)
}

func TestCaseHandler_Status(t *testing.T) {
	t.Parallel()

	q := &mockQueries{statusFn: func(_ context.Context, caseNumber string) (*jtypes.CaseStatus, error) {
		return &jtypes.CaseStatus{
			CaseNumber: caseNumber,
			Stage:      jtypes.StageSimilarity,
			Status:     jtypes.StatusRunning,
			Attempts:   1,
		}, nil
	}}
	h := NewCaseHandler(&mockIngest{}, q, &mockOrchestrator{}, 0, nil)
	r := newCaseRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cases/CRL-123-2020/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp jtypes.CaseStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CRL-123-2020", resp.CaseNumber)
	assert.Equal(t, jtypes.StageSimilarity, resp.Stage)
}

func TestCaseHandler_StatusUnknownCase(t *testing.T) {
	t.Parallel()

	q := &mockQueries{statusFn: func(context.Context, string) (*jtypes.CaseStatus, error) {
		return nil, errors.New(errors.ErrCodeCaseNotFound, "case not found")
	}}
	h := NewCaseHandler(&mockIngest{}, q, &mockOrchestrator{}, 0, nil)
	r := newCaseRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cases/NOPE/status", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCaseHandler_AnalyzePassesLanguage(t *testing.T) {
	t.Parallel()

	var gotLang string
	q := &mockQueries{analyzeFn: func(_ context.Context, caseNumber, language string) (*jtypes.AnalyzeResult, error) {
		gotLang = language
		return &jtypes.AnalyzeResult{CaseNumber: caseNumber}, nil
	}}
	h := NewCaseHandler(&mockIngest{}, q, &mockOrchestrator{}, 0, nil)
	r := newCaseRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cases/C1/analyze?language=hi", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", gotLang)
}

func TestCaseHandler_Reset(t *testing.T) {
	t.Parallel()

	now := time.Now()
	orc := &mockOrchestrator{resetFn: func(_ context.Context, caseNumber string, to pipeline.Stage) (*pipeline.QueueEntry, error) {
		return &pipeline.QueueEntry{
			CaseNumber: caseNumber,
			Stage:      to,
			Status:     jtypes.StatusPending,
			EnqueuedAt: now,
			UpdatedAt:  now,
		}, nil
	}}
	q := &mockQueries{}
	h := NewCaseHandler(&mockIngest{}, q, orc, 0, nil)
	r := newCaseRouter(h)

	body := []byte(`{"stage":"SUMMARY"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/C1/reset", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp jtypes.CaseStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, jtypes.StageSummary, resp.Stage)
	assert.Equal(t, jtypes.StatusPending, resp.Status)
	assert.Equal(t, []string{"C1"}, q.invalidated)
}

func TestCaseHandler_ResetUnknownStage(t *testing.T) {
	t.Parallel()

	h := NewCaseHandler(&mockIngest{}, &mockQueries{}, &mockOrchestrator{}, 0, nil)
	r := newCaseRouter(h)

	body := []byte(`{"stage":"TELEPORT"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/C1/reset", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
