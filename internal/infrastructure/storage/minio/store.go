package minio

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"

	"github.com/juristack/juristack/internal/domain/judgment"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrEmptyKey       = errors.New(errors.ErrCodeValidation, "object key is empty")
)

// DocumentStore holds case documents in the judgment bucket: the raw upload
// under the case's source key and the extracted plain text under its text key.
type DocumentStore struct {
	client *Client
	logger logging.Logger
}

var _ judgment.DocumentStore = (*DocumentStore)(nil)

func NewDocumentStore(client *Client, log logging.Logger) *DocumentStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &DocumentStore{
		client: client,
		logger: log.Named("docstore"),
	}
}

// Put writes an object under key. An empty contentType is sniffed from the
// payload.
func (s *DocumentStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if contentType == "" && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(512, len(data))])
	}

	info, err := s.client.api.PutObject(ctx, s.client.Bucket(), key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to store document")
	}

	s.logger.Debug("document stored",
		logging.String("key", key),
		logging.String("content_type", contentType),
		logging.Int64("size", info.Size))
	return nil
}

// Get reads the whole object under key. A missing object maps to
// ErrObjectNotFound so pipeline stages can tell absence from outages.
func (s *DocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	obj, err := s.client.api.GetObject(ctx, s.client.Bucket(), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to open document")
	}
	defer obj.Close()

	// GetObject is lazy: NoSuchKey only surfaces once the stream is read.
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to read document")
	}
	return data, nil
}

// Delete removes the object under key. Deleting an absent object is not an
// error.
func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.client.api.RemoveObject(ctx, s.client.Bucket(), key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to delete document")
	}
	return nil
}

// Exists reports whether an object is present without fetching its payload.
func (s *DocumentStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.api.StatObject(ctx, s.client.Bucket(), key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat document")
	}
	return true, nil
}
