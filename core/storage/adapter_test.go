package storage_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"project-aggregator/core/storage"
	"project-aggregator/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type failingReader struct {
	err error
}

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func newConnected(t *testing.T, cfg storage.Config) (*storage.Adapter, *mocks.Client) {
	t.Helper()
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, cfg.Bucket).Return(true, nil)

	adapter := storage.NewAdapter(cfg, storage.WithClientFactory(func(storage.Config) (storage.Client, error) {
		return mockClient, nil
	}))
	require.NoError(t, adapter.Connect(context.Background()))
	return adapter, mockClient
}

func TestAdapter_Lifecycle(t *testing.T) {
	t.Run("NotConnectedByDefault", func(t *testing.T) {
		adapter := storage.NewAdapter(storage.Config{Bucket: "b"})
		assert.False(t, adapter.IsConnected())

		_, err := adapter.Get(context.Background(), "k")
		assert.ErrorIs(t, err, storage.ErrNotConnected)
	})

	t.Run("ConnectAndDisconnect", func(t *testing.T) {
		adapter, _ := newConnected(t, storage.Config{Bucket: "b"})
		assert.True(t, adapter.IsConnected())

		adapter.Disconnect()
		adapter.Disconnect()
		assert.False(t, adapter.IsConnected())
	})

	t.Run("FactoryFailure", func(t *testing.T) {
		adapter := storage.NewAdapter(storage.Config{Endpoint: "x:1", Bucket: "b"},
			storage.WithClientFactory(func(storage.Config) (storage.Client, error) {
				return nil, errors.New("boom")
			}))

		err := adapter.Connect(context.Background())
		var connErr *storage.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.Equal(t, "x:1", connErr.Endpoint)
		assert.False(t, adapter.IsConnected())
	})

	t.Run("MissingBucket", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "b").Return(false, nil)
		adapter := storage.NewAdapter(storage.Config{Bucket: "b"},
			storage.WithClientFactory(func(storage.Config) (storage.Client, error) { return mockClient, nil }))

		var connErr *storage.ConnectionError
		assert.ErrorAs(t, adapter.Connect(context.Background()), &connErr)
	})

	t.Run("CreatesMissingBucket", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "b").Return(false, nil)
		mockClient.On("MakeBucket", mock.Anything, "b", mock.Anything).Return(nil)
		adapter := storage.NewAdapter(storage.Config{Bucket: "b", CreateBucket: true},
			storage.WithClientFactory(func(storage.Config) (storage.Client, error) { return mockClient, nil }))

		require.NoError(t, adapter.Connect(context.Background()))
		mockClient.AssertCalled(t, "MakeBucket", mock.Anything, "b", mock.Anything)
	})
}

func TestAdapter_ConnectResolvesEnvironment(t *testing.T) {
	t.Setenv("AGG_TEST_BUCKET", "late-bucket")
	t.Setenv("AGG_TEST_SECRET", "s3cr3t")

	var seen storage.Config
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "late-bucket").Return(true, nil)
	adapter := storage.NewAdapter(storage.Config{
		Bucket:    "${AGG_TEST_BUCKET}",
		SecretKey: "${AGG_TEST_SECRET}",
		Prefix:    "/data",
	}, storage.WithClientFactory(func(cfg storage.Config) (storage.Client, error) {
		seen = cfg
		return mockClient, nil
	}))

	require.NoError(t, adapter.Connect(context.Background()))
	assert.Equal(t, "late-bucket", seen.Bucket)
	assert.Equal(t, "s3cr3t", seen.SecretKey)
	assert.Equal(t, "data/", seen.Prefix)
}

func TestAdapter_Get(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		adapter, mockClient := newConnected(t, storage.Config{Bucket: "b", Prefix: "pre"})
		mockClient.On("GetObject", mock.Anything, "b", "pre/doc", mock.Anything).
			Return(mocks.Body(`{"a":1}`), nil)

		data, err := adapter.Get(context.Background(), "doc")
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(data))
	})

	t.Run("MissingKeyOnRead", func(t *testing.T) {
		adapter, mockClient := newConnected(t, storage.Config{Bucket: "b"})
		noSuchKey := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}
		mockClient.On("GetObject", mock.Anything, "b", "missing", mock.Anything).
			Return(io.NopCloser(failingReader{err: noSuchKey}), nil)

		_, err := adapter.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		var transportErr *storage.TransportError
		assert.False(t, errors.As(err, &transportErr))
	})

	t.Run("AccessDenied", func(t *testing.T) {
		adapter, mockClient := newConnected(t, storage.Config{Bucket: "b"})
		denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}
		mockClient.On("GetObject", mock.Anything, "b", "secret", mock.Anything).Return(nil, denied)

		_, err := adapter.Get(context.Background(), "secret")
		var transportErr *storage.TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, "get", transportErr.Op)
		assert.NotErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("NetworkFailure", func(t *testing.T) {
		adapter, mockClient := newConnected(t, storage.Config{Bucket: "b"})
		mockClient.On("GetObject", mock.Anything, "b", "doc", mock.Anything).
			Return(io.NopCloser(failingReader{err: errors.New("connection reset")}), nil)

		_, err := adapter.Get(context.Background(), "doc")
		var transportErr *storage.TransportError
		assert.ErrorAs(t, err, &transportErr)
	})
}

func TestAdapter_Put(t *testing.T) {
	adapter, mockClient := newConnected(t, storage.Config{Bucket: "b", Prefix: "pre/"})
	mockClient.On("PutObject", mock.Anything, "b", "pre/aggregated/keywords.json", mock.Anything, int64(7), mock.MatchedBy(func(opts minio.PutObjectOptions) bool {
		return opts.ContentType == "application/json"
	})).Return(minio.UploadInfo{}, nil)

	key, err := adapter.Put(context.Background(), "aggregated/keywords.json", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, "aggregated/keywords.json", key)
}

func TestAdapter_PutFailure(t *testing.T) {
	adapter, mockClient := newConnected(t, storage.Config{Bucket: "b"})
	mockClient.On("PutObject", mock.Anything, "b", "k", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("timeout"))

	_, err := adapter.Put(context.Background(), "k", []byte("x"))
	var transportErr *storage.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestAdapter_List(t *testing.T) {
	t.Run("SortedAndRelative", func(t *testing.T) {
		adapter, mockClient := newConnected(t, storage.Config{Bucket: "b", Prefix: "pre"})
		mockClient.On("ListObjects", mock.Anything, "b", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
			return opts.Prefix == "pre/info/" && opts.Recursive
		})).Return(mocks.Objects("pre/info/zeta", "pre/info/", "pre/info/alpha"))

		keys, err := adapter.List(context.Background(), "info/")
		require.NoError(t, err)
		assert.Equal(t, []string{"info/alpha", "info/zeta"}, keys)
	})

	t.Run("ListingError", func(t *testing.T) {
		adapter, mockClient := newConnected(t, storage.Config{Bucket: "b"})
		mockClient.On("ListObjects", mock.Anything, "b", mock.Anything).Return(mocks.ListingError(errors.New("denied")))

		_, err := adapter.List(context.Background(), "")
		var transportErr *storage.TransportError
		assert.ErrorAs(t, err, &transportErr)
	})
}

func TestAdapter_JSON(t *testing.T) {
	adapter, mockClient := newConnected(t, storage.Config{Bucket: "b"})
	mockClient.On("GetObject", mock.Anything, "b", "doc", mock.Anything).
		Return(mocks.Body(`{"name":"flask"}`), nil)

	var doc struct {
		Name string `json:"name"`
	}
	require.NoError(t, adapter.GetJSON(context.Background(), "doc", &doc))
	assert.Equal(t, "flask", doc.Name)
}
