// Package documents derives document keys and provides typed stores on top
// of the object store adapter.
//
// # Key Strategies
//
// Every document kind picks one KeyStrategy:
//
//   - FixedKey: one configured key, e.g. the aggregated keyword table.
//     Writing replaces the previous value; concurrent writers race and the
//     last write wins.
//   - EntityKeyed: {flow}/{task-category}/{entity} when namespaced,
//     {prefix}{entity} otherwise. Used for per-project info and READMEs.
//   - PairedKeys: a metadata key and a matrix key written together, used for
//     the project2vec vector space.
//
// Keys are a pure function of the job Args. Entity names must be non-empty
// path segments so that distinct entities never share a key.
//
// # Vector Space Layout
//
// The metadata table is tab-separated with an "index\tproject" header and
// one row per project. The matrix holds one row of tab-separated integers per
// project, in the same order.
package documents
