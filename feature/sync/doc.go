// Package sync mirrors stored solver and analysis result documents into the
// relational database.
//
// A listing of both document namespaces drives a fan-out group with one
// sibling per document. Each sibling upserts a synced_documents row keyed by
// document id, so re-running a sync updates rows in place.
package sync
