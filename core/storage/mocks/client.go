package mocks

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
)

// Client is a testify mock of storage.Client. Channel-returning methods
// yield a closed channel when no channel was configured.
type Client struct {
	mock.Mock
}

// Objects returns a closed listing channel yielding one object per key.
func Objects(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		ch <- minio.ObjectInfo{Key: key}
	}
	close(ch)
	return ch
}

// ListingError returns a closed listing channel reporting err.
func ListingError(err error) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Err: err}
	close(ch)
	return ch
}

// Body returns an object stream serving s.
func Body(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func (m *Client) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *Client) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucketName, opts).Error(0)
}

func (m *Client) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *Client) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	obj, _ := args.Get(0).(io.ReadCloser)
	return obj, args.Error(1)
}

func (m *Client) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	if ch, ok := m.Called(ctx, bucketName, opts).Get(0).(<-chan minio.ObjectInfo); ok {
		return ch
	}
	return Objects()
}

func (m *Client) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return m.Called(ctx, bucketName, objectName, opts).Error(0)
}

func (m *Client) RemoveObjects(ctx context.Context, bucketName string, objectsCh <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError {
	if ch, ok := m.Called(ctx, bucketName, objectsCh, opts).Get(0).(<-chan minio.RemoveObjectError); ok {
		return ch
	}
	ch := make(chan minio.RemoveObjectError)
	close(ch)
	return ch
}
