// Package storage provides the object store adapter used by every job.
//
// It wraps the MinIO Go client behind the Client interface (mocked in
// core/storage/mocks) and layers an Adapter on top with an explicit lifecycle:
//
//	adapter := storage.NewAdapter(cfg.Storage, storage.WithLogger(log))
//	if err := adapter.Connect(ctx); err != nil {
//	    return err // *storage.ConnectionError
//	}
//	defer adapter.Disconnect()
//
// # Error Kinds
//
// Callers must be able to tell an absent document from an unreachable store:
//
//   - *NotFoundError (errors.Is(err, ErrNotFound)): the key does not exist.
//   - *TransportError: network, authentication or server failure.
//   - *ConnectionError: Connect could not build a client or reach the bucket.
//
// # Late-bound Configuration
//
// Config values may contain ${VAR} references. They are expanded on each
// Connect, so credentials mounted after process start are honoured.
//
// The adapter performs no caching; every Get, Put and List is a round trip.
package storage
