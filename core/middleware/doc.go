// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting the document and aggregate endpoints.
//   - rayid: assigns every request a RayID, stored in the context locals and
//     echoed in the X-Ray-ID response header for tracing.
//
// RayID must be registered first so that every later log line carries it.
package middleware
