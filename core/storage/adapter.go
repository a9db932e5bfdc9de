package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"project-aggregator/core/metrics"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Option configures an Adapter.
type Option func(*Adapter)

// WithClientFactory replaces the minio client constructor (used by tests).
func WithClientFactory(factory ClientFactory) Option {
	return func(a *Adapter) {
		a.factory = factory
	}
}

// WithLogger sets the logger used for connection lifecycle messages.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// Adapter provides get/put/list over the object store with an explicit
// connect/disconnect lifecycle. Every call round-trips to the store.
type Adapter struct {
	cfg     Config
	factory ClientFactory
	logger  *zap.Logger

	mu     sync.RWMutex
	client Client
	bucket string
	prefix string
}

// NewAdapter creates a disconnected adapter. No I/O happens until Connect.
func NewAdapter(cfg Config, opts ...Option) *Adapter {
	a := &Adapter{
		cfg:     cfg,
		factory: NewClient,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Connect resolves the configuration from the environment, builds a client
// and verifies the bucket is reachable.
func (a *Adapter) Connect(ctx context.Context) error {
	cfg := a.cfg.Resolve()

	client, err := a.factory(cfg)
	if err != nil {
		return &ConnectionError{Endpoint: cfg.Endpoint, Bucket: cfg.Bucket, Err: err}
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return &ConnectionError{Endpoint: cfg.Endpoint, Bucket: cfg.Bucket, Err: err}
	}
	if !exists {
		if !cfg.CreateBucket {
			return &ConnectionError{Endpoint: cfg.Endpoint, Bucket: cfg.Bucket, Err: errors.New("bucket does not exist")}
		}
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return &ConnectionError{Endpoint: cfg.Endpoint, Bucket: cfg.Bucket, Err: fmt.Errorf("create bucket: %w", err)}
		}
		a.logger.Info("Created bucket", zap.String("bucket", cfg.Bucket))
	}

	a.mu.Lock()
	a.client = client
	a.bucket = cfg.Bucket
	a.prefix = cfg.Prefix
	a.mu.Unlock()

	a.logger.Debug("Storage connected",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
		zap.String("prefix", cfg.Prefix))
	return nil
}

// IsConnected reports whether Connect succeeded and Disconnect was not called since.
func (a *Adapter) IsConnected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.client != nil
}

// Disconnect releases the client handle. Calling it more than once is safe.
func (a *Adapter) Disconnect() {
	a.mu.Lock()
	a.client = nil
	a.mu.Unlock()
}

func (a *Adapter) handle() (Client, string, string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.client == nil {
		return nil, "", "", ErrNotConnected
	}
	return a.client, a.bucket, a.prefix, nil
}

// Put writes data under key and returns the key used.
func (a *Adapter) Put(ctx context.Context, key string, data []byte) (string, error) {
	client, bucket, prefix, err := a.handle()
	if err != nil {
		return "", err
	}

	_, err = client.PutObject(ctx, bucket, prefix+key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType(key),
	})
	if err != nil {
		metrics.ObserveStorage("put", metrics.OutcomeError)
		return "", &TransportError{Op: "put", Key: key, Err: err}
	}
	metrics.ObserveStorage("put", metrics.OutcomeOK)
	return key, nil
}

// Get reads the document stored under key. A missing key yields a
// *NotFoundError; any other failure yields a *TransportError.
func (a *Adapter) Get(ctx context.Context, key string) ([]byte, error) {
	client, bucket, prefix, err := a.handle()
	if err != nil {
		return nil, err
	}

	data, err := readObject(ctx, client, bucket, prefix+key)
	if err != nil {
		err = classify("get", key, err)
		if errors.Is(err, ErrNotFound) {
			metrics.ObserveStorage("get", metrics.OutcomeNotFound)
		} else {
			metrics.ObserveStorage("get", metrics.OutcomeError)
		}
		return nil, err
	}
	metrics.ObserveStorage("get", metrics.OutcomeOK)
	return data, nil
}

func readObject(ctx context.Context, client Client, bucket, objectName string) ([]byte, error) {
	obj, err := client.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

// List returns every key under prefix, sorted, relative to the configured
// store prefix.
func (a *Adapter) List(ctx context.Context, prefix string) ([]string, error) {
	client, bucket, storePrefix, err := a.handle()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, 64)
	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    storePrefix + prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			metrics.ObserveStorage("list", metrics.OutcomeError)
			return nil, &TransportError{Op: "list", Key: prefix, Err: obj.Err}
		}
		if obj.Key == "" || strings.HasSuffix(obj.Key, "/") {
			continue
		}
		keys = append(keys, strings.TrimPrefix(obj.Key, storePrefix))
	}
	sort.Strings(keys)
	metrics.ObserveStorage("list", metrics.OutcomeOK)
	return keys, nil
}

// Delete removes the document under key. Removing a missing key is not an error.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	client, bucket, prefix, err := a.handle()
	if err != nil {
		return err
	}
	if err := client.RemoveObject(ctx, bucket, prefix+key, minio.RemoveObjectOptions{}); err != nil {
		metrics.ObserveStorage("delete", metrics.OutcomeError)
		return &TransportError{Op: "delete", Key: key, Err: err}
	}
	metrics.ObserveStorage("delete", metrics.OutcomeOK)
	return nil
}

// PutJSON serializes v and stores it under key.
func (a *Adapter) PutJSON(ctx context.Context, key string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode document %q: %w", key, err)
	}
	return a.Put(ctx, key, data)
}

// GetJSON retrieves the document under key and decodes it into v.
func (a *Adapter) GetJSON(ctx context.Context, key string, v any) error {
	data, err := a.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode document %q: %w", key, err)
	}
	return nil
}

func contentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".tsv"):
		return "text/tab-separated-values"
	case strings.HasSuffix(key, ".txt"):
		return "text/plain"
	default:
		return "application/json"
	}
}
