// Package integrity checks that the document store and the mirror database
// are in the shape the aggregation flows leave them in.
//
// # Checks Provided
//
//   - Structure: every document namespace (project info, READMEs, topics) holds at least one document.
//   - Aggregates: the keyword table and both vector space files exist.
//   - VectorSpace: the stored vector space names one project per row and every row has the same width.
//   - Schema: the synced documents table carries every column the sync flow writes.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure
//   - GET /integrity/aggregates
//   - GET /integrity/vectorspace
//   - GET /integrity/schema
package integrity
