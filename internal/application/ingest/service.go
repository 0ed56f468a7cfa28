// Package ingest provides the application-level service for document intake:
// upload handling, text extraction, OCR repair and deterministic metadata
// normalization.  This package serves as the interface between HTTP handlers,
// pipeline stage handlers and the judgment domain.
package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/juristack/juristack/internal/domain/judgment"
	"github.com/juristack/juristack/internal/domain/pipeline"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/pkg/errors"
)

// Service defines the document intake operations.
type Service interface {
	// Upload stores the raw document, registers the case and enqueues it
	// for processing.  A case number already in the queue is rejected.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// RunExtraction performs the EXTRACTION stage for a case: pull the raw
	// bytes, extract the text layer, detect language, store the plain text.
	RunExtraction(ctx context.Context, caseID uuid.UUID) error

	// RunNormalize performs the NORMALIZE stage: OCR repair, paragraph
	// split, and zone-based header metadata extraction.
	RunNormalize(ctx context.Context, caseID uuid.UUID) error
}

// UploadInput carries an uploaded document.
type UploadInput struct {
	CaseNumber  string
	Title       string
	FileName    string
	ContentType string
	Data        []byte
}

// UploadResult reports the registered case and its queue position.
type UploadResult struct {
	CaseID     uuid.UUID
	CaseNumber string
	Stage      pipeline.Stage
	Status     pipeline.Status
}

// Deps lists the collaborators of the ingest service.
type Deps struct {
	Cases     judgment.CaseRepository
	Artifacts judgment.ArtifactRepository
	Store     judgment.DocumentStore
	Pipeline  pipeline.Orchestrator
	Logger    logging.Logger
}

type service struct {
	cases     judgment.CaseRepository
	artifacts judgment.ArtifactRepository
	store     judgment.DocumentStore
	pipeline  pipeline.Orchestrator
	log       logging.Logger
}

// NewService creates the ingest application service.
func NewService(deps Deps) Service {
	log := deps.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &service{
		cases:     deps.Cases,
		artifacts: deps.Artifacts,
		store:     deps.Store,
		pipeline:  deps.Pipeline,
		log:       log.Named("ingest"),
	}
}

func (s *service) Upload(ctx context.Context, input *UploadInput) (*UploadResult, error) {
	if len(input.Data) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyDocument, "uploaded file is empty")
	}

	c, err := judgment.NewCase(input.CaseNumber, input.Title)
	if err != nil {
		return nil, err
	}

	c.SourceKey = fmt.Sprintf("cases/%s/source/%s", c.ID, input.FileName)
	if err := s.store.Put(ctx, c.SourceKey, input.Data, input.ContentType); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "store uploaded document")
	}

	if err := s.cases.Create(ctx, c); err != nil {
		return nil, err
	}

	entry, err := s.pipeline.Enqueue(ctx, c.ID, c.CaseNumber)
	if err != nil {
		return nil, err
	}

	s.log.Info("document uploaded",
		logging.String("case_number", c.CaseNumber),
		logging.String("file", input.FileName),
		logging.Int("bytes", len(input.Data)))

	return &UploadResult{
		CaseID:     c.ID,
		CaseNumber: c.CaseNumber,
		Stage:      entry.Stage,
		Status:     entry.Status,
	}, nil
}

func (s *service) RunExtraction(ctx context.Context, caseID uuid.UUID) error {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}

	raw, err := s.store.Get(ctx, c.SourceKey)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "fetch uploaded document")
	}

	text, err := ExtractText(c.SourceKey, raw)
	if err != nil {
		return err
	}

	c.Language = DetectLanguage(text)
	c.TextKey = fmt.Sprintf("cases/%s/text.txt", c.ID)
	if err := s.store.Put(ctx, c.TextKey, []byte(text), "text/plain; charset=utf-8"); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "store extracted text")
	}

	c.Touch()
	if err := s.cases.Update(ctx, c); err != nil {
		return err
	}

	s.log.Info("text extracted",
		logging.String("case_number", c.CaseNumber),
		logging.String("language", c.Language),
		logging.Int("chars", len(text)))
	return nil
}

func (s *service) RunNormalize(ctx context.Context, caseID uuid.UUID) error {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}

	raw, err := s.store.Get(ctx, c.TextKey)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "fetch extracted text")
	}

	normalized := NormalizeText(string(raw))
	if normalized == "" {
		return errors.New(errors.ErrCodeEmptyDocument, "document text is empty after normalization")
	}

	paragraphs := SplitParagraphs(normalized)
	records := make([]judgment.Paragraph, len(paragraphs))
	for i, p := range paragraphs {
		records[i] = judgment.Paragraph{
			ID:      uuid.New(),
			CaseID:  c.ID,
			Ordinal: i + 1,
			Text:    p,
		}
	}
	if err := s.artifacts.ReplaceParagraphs(ctx, c.ID, records); err != nil {
		return err
	}

	// Normalized text replaces the raw extraction so downstream stages read
	// repaired text.
	if err := s.store.Put(ctx, c.TextKey, []byte(normalized), "text/plain; charset=utf-8"); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "store normalized text")
	}

	c.Metadata = ExtractMetadata(normalized)
	if c.Title == "" {
		c.Title = DeriveTitle(c.Metadata, normalized)
	}
	c.Touch()
	if err := s.cases.Update(ctx, c); err != nil {
		return err
	}

	s.log.Info("case normalized",
		logging.String("case_number", c.CaseNumber),
		logging.Int("paragraphs", len(records)),
		logging.String("court_level", c.Metadata.CourtLevel))
	return nil
}
