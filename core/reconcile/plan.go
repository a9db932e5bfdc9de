package reconcile

import (
	"context"
	"fmt"
)

// ReconcileWithPlan performs reconciliation and returns a plan with results
// and actions. It does NOT execute actions; use ApplyPlan for that.
func ReconcileWithPlan(ctx context.Context, adapter Adapter, opts Options) (*Plan, error) {
	results, err := Reconcile(ctx, adapter)
	if err != nil {
		return nil, err
	}
	return BuildPlan(results, opts), nil
}

// BuildPlan summarizes results and derives the actions opts enables.
func BuildPlan(results []Result, opts Options) *Plan {
	plan := &Plan{Results: results, Actions: []Action{}}
	plan.Summary.TotalItems = len(results)

	for _, r := range results {
		switch {
		case r.StoragePresent && !r.DBPresent:
			plan.Summary.MissingDB++
			if opts.DoSync {
				plan.Actions = append(plan.Actions, Action{Type: ActionSyncDB, Key: r.Key, Reason: "missing in database"})
				plan.Summary.SyncActions++
			}
		case !r.StoragePresent && r.DBPresent:
			plan.Summary.MissingStorage++
			if opts.DoPurge {
				plan.Actions = append(plan.Actions, Action{Type: ActionDeleteDB, Key: r.Key, Reason: "missing in storage"})
				plan.Summary.PurgeActions++
			}
		case len(r.Mismatch) > 0:
			plan.Summary.Mismatches++
			if opts.DoSync {
				plan.Actions = append(plan.Actions, Action{Type: ActionSyncDB, Key: r.Key, Reason: r.Mismatch[0]})
				plan.Summary.SyncActions++
			}
		}
	}
	return plan
}

// ApplyPlan executes the actions in a plan through the adapter's Mutator.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
// Deletions run before syncs.
func ApplyPlan(ctx context.Context, adapter Adapter, plan *Plan, opts Options) (executed int, err error) {
	if !opts.Confirmed || opts.DryRun {
		return 0, nil
	}

	mutator, ok := adapter.(Mutator)
	if !ok {
		return 0, fmt.Errorf("adapter %s does not implement Mutator interface", adapter.Name())
	}

	var deleteKeys, syncKeys []string
	for _, action := range plan.Actions {
		switch action.Type {
		case ActionDeleteDB:
			deleteKeys = append(deleteKeys, action.Key)
		case ActionSyncDB:
			syncKeys = append(syncKeys, action.Key)
		}
	}

	if len(deleteKeys) > 0 {
		if err := mutator.DeleteDB(ctx, deleteKeys); err != nil {
			return executed, fmt.Errorf("failed to delete DB keys: %w", err)
		}
		executed += len(deleteKeys)
	}
	if len(syncKeys) > 0 {
		if err := mutator.SyncDB(ctx, syncKeys); err != nil {
			return executed, fmt.Errorf("failed to sync DB keys: %w", err)
		}
		executed += len(syncKeys)
	}
	return executed, nil
}
