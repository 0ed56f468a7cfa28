package minio

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/pkg/errors"
)

func newTestStore(api ObjectAPI) *DocumentStore {
	return NewDocumentStore(newTestClient(api), logging.NewNopLogger())
}

func TestDocumentStore_Put(t *testing.T) {
	t.Parallel()

	data := []byte("judgment body")
	var gotOpts minio.PutObjectOptions
	var gotBody []byte

	api := &mockObjectAPI{}
	api.On("PutObject", mock.Anything, "judgments", "cases/CRL.A. 1482-2012/text.txt",
		mock.Anything, int64(len(data)), mock.Anything).
		Run(func(args mock.Arguments) {
			gotBody, _ = io.ReadAll(args.Get(3).(io.Reader))
			gotOpts = args.Get(5).(minio.PutObjectOptions)
		}).
		Return(minio.UploadInfo{Size: int64(len(data))}, nil)

	store := newTestStore(api)
	err := store.Put(context.Background(), "cases/CRL.A. 1482-2012/text.txt", data, "text/plain")

	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, gotBody))
	assert.Equal(t, "text/plain", gotOpts.ContentType)
}

func TestDocumentStore_Put_SniffsContentType(t *testing.T) {
	t.Parallel()

	data := []byte("%PDF-1.7\n%judgment")
	var gotOpts minio.PutObjectOptions

	api := &mockObjectAPI{}
	api.On("PutObject", mock.Anything, "judgments", "cases/CRL.A. 1482-2012/source.pdf",
		mock.Anything, int64(len(data)), mock.Anything).
		Run(func(args mock.Arguments) {
			gotOpts = args.Get(5).(minio.PutObjectOptions)
		}).
		Return(minio.UploadInfo{}, nil)

	store := newTestStore(api)
	require.NoError(t, store.Put(context.Background(), "cases/CRL.A. 1482-2012/source.pdf", data, ""))
	assert.Equal(t, "application/pdf", gotOpts.ContentType)
}

func TestDocumentStore_Put_EmptyKey(t *testing.T) {
	t.Parallel()

	store := newTestStore(&mockObjectAPI{})
	assert.ErrorIs(t, store.Put(context.Background(), "", []byte("x"), ""), ErrEmptyKey)
}

func TestDocumentStore_Get_OpenFailure(t *testing.T) {
	t.Parallel()

	api := &mockObjectAPI{}
	api.On("GetObject", mock.Anything, "judgments", "cases/missing/text.txt", mock.Anything).
		Return(nil, assert.AnError)

	store := newTestStore(api)
	_, err := store.Get(context.Background(), "cases/missing/text.txt")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeStorageError))
}

func TestDocumentStore_Delete(t *testing.T) {
	t.Parallel()

	api := &mockObjectAPI{}
	api.On("RemoveObject", mock.Anything, "judgments", "cases/CRL.A. 1482-2012/source.pdf",
		mock.Anything).Return(nil)

	store := newTestStore(api)
	require.NoError(t, store.Delete(context.Background(), "cases/CRL.A. 1482-2012/source.pdf"))
	api.AssertExpectations(t)
}

func TestDocumentStore_Exists(t *testing.T) {
	t.Parallel()

	t.Run("present", func(t *testing.T) {
		t.Parallel()

		api := &mockObjectAPI{}
		api.On("StatObject", mock.Anything, "judgments", "cases/x/text.txt", mock.Anything).
			Return(minio.ObjectInfo{Key: "cases/x/text.txt"}, nil)

		store := newTestStore(api)
		ok, err := store.Exists(context.Background(), "cases/x/text.txt")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()

		api := &mockObjectAPI{}
		api.On("StatObject", mock.Anything, "judgments", "cases/x/text.txt", mock.Anything).
			Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

		store := newTestStore(api)
		ok, err := store.Exists(context.Background(), "cases/x/text.txt")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("outage surfaces", func(t *testing.T) {
		t.Parallel()

		api := &mockObjectAPI{}
		api.On("StatObject", mock.Anything, "judgments", "cases/x/text.txt", mock.Anything).
			Return(minio.ObjectInfo{}, assert.AnError)

		store := newTestStore(api)
		_, err := store.Exists(context.Background(), "cases/x/text.txt")
		assert.True(t, errors.IsCode(err, errors.ErrCodeStorageError))
	})
}
