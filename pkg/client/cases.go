package client

import (
	"context"
	"fmt"
	"net/url"

	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

// CasesClient covers the case upload and query endpoints.
type CasesClient struct {
	client *Client
}

// UploadDocument holds a judgment document to upload.
type UploadDocument struct {
	CaseNumber  string
	Title       string
	ContentType string
	Content     []byte
	Language    string
}

// Upload registers a judgment for processing.  The server answers with the
// initial queue position; processing is asynchronous and Status reports the
// progress.
func (cc *CasesClient) Upload(ctx context.Context, doc *UploadDocument) (*jtypes.UploadResponse, error) {
	req := jtypes.UploadRequest{
		CaseNumber:  doc.CaseNumber,
		Title:       doc.Title,
		ContentType: doc.ContentType,
		Content:     doc.Content,
		Language:    doc.Language,
	}
	var res jtypes.UploadResponse
	if err := cc.client.post(ctx, "/api/v1/cases", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Status returns the pipeline position of a case.
func (cc *CasesClient) Status(ctx context.Context, caseNumber string) (*jtypes.CaseStatus, error) {
	var res jtypes.CaseStatus
	path := fmt.Sprintf("/api/v1/cases/%s/status", url.PathEscape(caseNumber))
	if err := cc.client.get(ctx, path, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Analyze returns the consolidated analysis view.  language selects the
// translation artifact and may be empty.
func (cc *CasesClient) Analyze(ctx context.Context, caseNumber, language string) (*jtypes.AnalyzeResult, error) {
	path := fmt.Sprintf("/api/v1/cases/%s/analyze", url.PathEscape(caseNumber))
	if language != "" {
		path += "?language=" + url.QueryEscape(language)
	}
	var res jtypes.AnalyzeResult
	if err := cc.client.get(ctx, path, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Reset moves a case back to an earlier pipeline stage for reprocessing.
func (cc *CasesClient) Reset(ctx context.Context, caseNumber string, stage jtypes.Stage) (*jtypes.CaseStatus, error) {
	path := fmt.Sprintf("/api/v1/cases/%s/reset", url.PathEscape(caseNumber))
	body := map[string]jtypes.Stage{"stage": stage}
	var res jtypes.CaseStatus
	if err := cc.client.post(ctx, path, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
