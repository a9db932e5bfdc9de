// Package documents serves stored documents and aggregates over HTTP.
//
// # HTTP Endpoints
//
//   - GET /documents/projects : Lists projects with a stored info document.
//   - GET /documents/projects/:name : Returns the PyPI info document of a project.
//   - GET /documents/readme/:name : Returns the README of a project.
//   - GET /documents/topics/:name : Returns the GitHub topics of a project.
//   - GET /aggregates/keywords : Returns the aggregated keyword table.
//   - GET /aggregates/vectors : Returns the project2vec vector space.
//
// Absent documents answer 404 and invalid names 400. When the store cannot
// be reached the handler answers 502.
package documents
