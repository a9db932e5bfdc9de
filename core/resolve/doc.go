// Package resolve locates a resource whose exact address is not known up
// front by probing an ordered list of candidates.
//
// Candidates are tried strictly in order: an earlier hit wins even when a
// later candidate would also succeed. A probe reports "not here" with
// ErrMiss and the resolver moves on; any other probe error (authentication,
// rate limiting, transport) stops the loop immediately. When every candidate
// misses, Resolve fails with a *ResolutionError listing what was tried.
package resolve
