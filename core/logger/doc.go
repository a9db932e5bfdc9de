// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates with the Fiber web framework.
//
// # Context Awareness
//
// WithRayID extracts the RayID from a Fiber context and attaches it to the log entry, so that all
// logs of one request can be correlated. WithRun does the same for the run id of a fan-out, so that
// every sibling and the reducer of one run share a field.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
