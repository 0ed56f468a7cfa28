package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"regexp"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"github.com/juristack/juristack/pkg/errors"
)

// ExtractText pulls plain text out of an uploaded document.  The true format
// is sniffed from magic bytes rather than trusted from the filename, since
// scanned judgments frequently arrive mislabelled.
// Supported: PDF (text layer), DOCX, HTML and plain text.
func ExtractText(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New(errors.ErrCodeEmptyDocument, "uploaded file is empty")
	}

	switch {
	case isPDF(data):
		return extractPDF(data)
	case isZip(data):
		return extractDOCX(data)
	case looksLikeHTML(data):
		return stripHTML(string(data)), nil
	case isProbablyText(data):
		return string(data), nil
	}

	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return "", errors.Newf(errors.ErrCodeExtractionFailed,
			"file %q claims to be a PDF but has no %%PDF header", name)
	}
	return "", errors.Newf(errors.ErrCodeUnsupportedDocument, "unsupported file type for %q", name)
}

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isZip(b []byte) bool {
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4
}

func looksLikeHTML(b []byte) bool {
	head := strings.ToLower(strings.TrimSpace(string(b[:minInt(len(b), 2048)])))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") ||
		(strings.Contains(head, "<html") && strings.Contains(head, "<body"))
}

// isProbablyText accepts byte streams that are mostly printable with no NULs.
func isProbablyText(b []byte) bool {
	sample := b[:minInt(len(b), 4096)]
	good := 0
	for _, c := range sample {
		if c == 0x00 {
			return false
		}
		if c == '\n' || c == '\r' || c == '\t' || (c >= 0x20 && c <= 0x7E) || c >= 0x80 {
			good++
		}
	}
	return float64(good)/float64(len(sample)) > 0.9
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExtractionFailed, "open pdf")
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExtractionFailed, "read pdf text layer")
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExtractionFailed, "read pdf stream")
	}
	if len(bytes.TrimSpace(text)) == 0 {
		return "", errors.New(errors.ErrCodeEmptyDocument, "pdf has no extractable text layer")
	}
	return string(text), nil
}

// extractDOCX gathers the runs of word/document.xml inside the zip container.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExtractionFailed, "open zip container")
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New(errors.ErrCodeUnsupportedDocument, "zip container is not a docx document")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExtractionFailed, "open document.xml")
	}
	defer rc.Close()

	var sb strings.Builder
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeExtractionFailed, "parse document.xml")
		}
		switch el := tok.(type) {
		case xml.CharData:
			sb.Write(el)
		case xml.EndElement:
			// Paragraph boundaries become newlines.
			if el.Name.Local == "p" {
				sb.WriteByte('\n')
			}
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", errors.New(errors.ErrCodeEmptyDocument, "docx has no text content")
	}
	return sb.String(), nil
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

func stripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	return s
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
