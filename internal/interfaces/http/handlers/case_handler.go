package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/juristack/juristack/internal/application/ingest"
	"github.com/juristack/juristack/internal/application/query"
	"github.com/juristack/juristack/internal/domain/pipeline"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/pkg/errors"
	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

// defaultMaxUploadBytes bounds uploaded documents when the server config
// does not say otherwise.
const defaultMaxUploadBytes = 32 << 20

// CaseHandler serves the case endpoints: upload, status, the consolidated
// analyze view, and the admin reset.
type CaseHandler struct {
	ingest         ingest.Service
	queries        query.Service
	pipeline       pipeline.Orchestrator
	maxUploadBytes int64
	log            logging.Logger
}

// NewCaseHandler creates the case handler.  maxUploadBytes <= 0 falls back to
// the shipped default.
func NewCaseHandler(ingestSvc ingest.Service, queries query.Service, orc pipeline.Orchestrator,
	maxUploadBytes int64, log logging.Logger) *CaseHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &CaseHandler{
		ingest:         ingestSvc,
		queries:        queries,
		pipeline:       orc,
		maxUploadBytes: maxUploadBytes,
		log:            log.Named("case_handler"),
	}
}

// Upload accepts a judgment document and enqueues it for processing.  Both
// multipart form uploads (file + case_number + title fields) and the JSON
// collaborator contract are supported.
func (h *CaseHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	var (
		input *ingest.UploadInput
		err   error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		input, err = bindMultipartUpload(c)
	} else {
		input, err = bindJSONUpload(c)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.ingest.Upload(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, jtypes.UploadResponse{
		CaseNumber: res.CaseNumber,
		CaseID:     res.CaseID.String(),
		Stage:      res.Stage,
		Status:     res.Status,
	})
}

func bindMultipartUpload(c *gin.Context) (*ingest.UploadInput, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, errors.New(errors.ErrCodeValidation, "multipart upload requires a file field")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "open uploaded file")
	}
	defer f.Close() //nolint:errcheck

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "read uploaded file")
	}

	return &ingest.UploadInput{
		CaseNumber:  c.PostForm("case_number"),
		Title:       c.PostForm("title"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func bindJSONUpload(c *gin.Context) (*ingest.UploadInput, error) {
	var req jtypes.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "malformed upload request")
	}
	return &ingest.UploadInput{
		CaseNumber:  req.CaseNumber,
		Title:       req.Title,
		FileName:    "document",
		ContentType: req.ContentType,
		Data:        req.Content,
	}, nil
}

// Status returns the pipeline status snapshot of a case.
func (h *CaseHandler) Status(c *gin.Context) {
	st, err := h.queries.Status(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Analyze returns the consolidated analysis view, annotated with any
// artifacts still missing.
func (h *CaseHandler) Analyze(c *gin.Context) {
	res, err := h.queries.Analyze(c.Request.Context(), c.Param("number"), c.Query("language"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type resetRequest struct {
	Stage jtypes.Stage `json:"stage"`
}

// Reset moves a case's queue entry back to an earlier work stage.
func (h *CaseHandler) Reset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "malformed reset request")
		return
	}
	if !req.Stage.IsValid() {
		respondError(c, errors.Newf(errors.ErrCodeValidation, "unknown stage %q", req.Stage))
		return
	}

	caseNumber := c.Param("number")
	entry, err := h.pipeline.Reset(c.Request.Context(), caseNumber, req.Stage)
	if err != nil {
		respondError(c, err)
		return
	}

	// Any cached analyze view is now stale.
	if err := h.queries.InvalidateCase(c.Request.Context(), caseNumber); err != nil {
		h.log.Warn("analyze cache not invalidated",
			logging.String("case_number", caseNumber), logging.Err(err))
	}

	c.JSON(http.StatusOK, jtypes.CaseStatus{
		CaseNumber: entry.CaseNumber,
		Stage:      entry.Stage,
		Status:     entry.Status,
		Attempts:   entry.Attempts,
		EnqueuedAt: entry.EnqueuedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  entry.UpdatedAt.UTC().Format(time.RFC3339),
	})
}
