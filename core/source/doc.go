// Package source wraps the upstream data sources the jobs read from.
//
//   - PyPI: package listing (simple API) and per-project JSON documents.
//   - GitHub: raw files, gh_link.yaml prescriptions and repository topics.
//   - Travis: active repositories, builds and job logs.
//   - StackOverflow: question counts per tag from the Tags.xml dump.
//
// Every failed request is a *Error carrying the HTTP status. Authentication,
// rate limiting and transport failures are Fatal; other statuses match
// resolve.ErrMiss so a fallback resolver can move on to its next candidate.
package source
