// Package fanin consumes the results of a fan-out group and reduces them into
// a single aggregate.
//
// # Sibling Iteration
//
// A fan-out group is a dense, zero-based sequence of sibling results. The
// Iterator requests indices 0, 1, 2, ... strictly in order and treats the first
// absent index as the end of the group. If the index after the first absent
// one is present, the group has a gap and the iterator fails with a
// *DataError instead of silently truncating the group.
//
// Sibling results come from a Results implementation:
//
//   - MemoryResults: in-process, filled by the local runner or tests.
//   - StoreResults: siblings persisted in the object store by index.
//   - ListingResults: a group derived from the sorted listing of a prefix.
//
// # Reduction
//
//   - MergeCounts: order-independent counting merge of keyword tables.
//   - AssembleVectorSpace: sorted, aligned (names, vectors) sequences; rejects
//     conflicting entries for the same entity.
//
// A failed reduction returns the zero aggregate, never a partial one.
package fanin
