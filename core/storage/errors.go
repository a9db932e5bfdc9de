package storage

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/minio/minio-go/v7"
)

// ErrNotFound matches every NotFoundError through errors.Is.
var ErrNotFound = errors.New("document not found")

// ErrNotConnected is returned by operations invoked before Connect.
var ErrNotConnected = errors.New("storage adapter is not connected")

// NotFoundError reports that the store is reachable but holds no document
// under Key.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %q not found", e.Key)
}

// Is makes errors.Is(err, ErrNotFound) hold for any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConnectionError reports that a client handle could not be established.
type ConnectionError struct {
	Endpoint string
	Bucket   string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to %s (bucket %q): %v", e.Endpoint, e.Bucket, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TransportError reports a network, authentication or server failure during
// a store operation. It is eligible for retry by the caller's scheduler.
type TransportError struct {
	Op  string
	Key string
	Err error
}

func (e *TransportError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// classify turns a raw minio error into NotFoundError or TransportError.
func classify(op, key string, err error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || (resp.Code == "" && resp.StatusCode == http.StatusNotFound) {
		return &NotFoundError{Key: key}
	}
	return &TransportError{Op: op, Key: key, Err: err}
}
