// Package reconcile compares two sources of truth for the same documents:
// the object store and the relational mirror.
//
// An Adapter loads an Index from each side concurrently. The engine builds
// the union of keys, records presence and checksum mismatches per key, and
// turns them into a plan of actions. Plans are applied through the adapter's
// Mutator only when confirmed and not a dry run.
//
// # Usage Example
//
//	plan, err := reconcile.ReconcileWithPlan(ctx, adapter, reconcile.Options{DoSync: true, DoPurge: true})
//	executed, err := reconcile.ApplyPlan(ctx, adapter, plan, reconcile.Options{DoSync: true, DoPurge: true, Confirmed: true})
package reconcile
