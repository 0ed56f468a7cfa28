package ingest

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juristack/juristack/pkg/errors"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractText_PlainText(t *testing.T) {
	t.Parallel()

	got, err := ExtractText("judgment.txt", []byte("The appeal is dismissed."))
	require.NoError(t, err)
	assert.Equal(t, "The appeal is dismissed.", got)
}

func TestExtractText_HTML(t *testing.T) {
	t.Parallel()

	got, err := ExtractText("judgment.html",
		[]byte("<!doctype html><html><body><p>Order pronounced in open court.</p></body></html>"))
	require.NoError(t, err)
	assert.Contains(t, got, "Order pronounced in open court.")
	assert.NotContains(t, got, "<p>")
}

func TestExtractText_DOCX(t *testing.T) {
	t.Parallel()

	data := buildDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>The suit is decreed.</w:t></w:r></w:p></w:body></w:document>`)

	got, err := ExtractText("judgment.docx", data)
	require.NoError(t, err)
	assert.Contains(t, got, "The suit is decreed.")
}

func TestExtractText_EmptyFile(t *testing.T) {
	t.Parallel()

	_, err := ExtractText("judgment.pdf", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyDocument))
}

func TestExtractText_MislabelledPDF(t *testing.T) {
	t.Parallel()

	// Binary junk with a .pdf name and no %PDF header.
	_, err := ExtractText("scan.pdf", []byte{0x00, 0x01, 0x02, 0x03, 0xFF})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExtractionFailed))
}

func TestExtractText_UnknownBinary(t *testing.T) {
	t.Parallel()

	_, err := ExtractText("photo.jpg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnsupportedDocument))
}

func TestExtractText_ZipWithoutDocumentXML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("other/file.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("not a docx"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = ExtractText("archive.docx", buf.Bytes())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnsupportedDocument))
}
