package reconcile

import (
	"context"
)

// Item is one entity as seen by a source.
type Item struct {
	// Checksum fingerprints the content. Empty means unknown and is never
	// reported as a mismatch.
	Checksum string
	// Metadata carries source-specific attributes (e.g. document kind).
	Metadata map[string]string
}

// Index maps entity keys to items.
type Index map[string]Item

// Adapter loads both sides of a reconciliation.
type Adapter interface {
	// Name identifies the reconciled model in logs and errors.
	Name() string
	// LoadStorage indexes the entities held by the object store.
	LoadStorage(ctx context.Context) (Index, error)
	// LoadDB indexes the entities held by the database.
	LoadDB(ctx context.Context) (Index, error)
}

// Mutator applies planned actions.
type Mutator interface {
	// SyncDB writes the stored entities to the database.
	SyncDB(ctx context.Context, keys []string) error
	// DeleteDB removes entities from the database.
	DeleteDB(ctx context.Context, keys []string) error
}

// Result represents the reconciliation output for a single entity.
type Result struct {
	// Key is the unique identifier for the entity.
	Key string `json:"key"`

	// StoragePresent indicates whether the entity exists in storage.
	StoragePresent bool `json:"storage_present"`

	// DBPresent indicates whether the entity exists in the database.
	DBPresent bool `json:"db_present"`

	// Mismatch describes field discrepancies, e.g. "checksum: storage=ab db=cd".
	Mismatch []string `json:"mismatch"`

	// Metadata merges both sides' metadata, storage winning.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionSyncDB writes a stored entity to the database.
	ActionSyncDB ActionType = "sync_db"
	// ActionDeleteDB deletes a database entity whose document is gone.
	ActionDeleteDB ActionType = "delete_db"
)

// Action represents a planned mutation operation.
type Action struct {
	Type   ActionType `json:"type"`
	Key    string     `json:"key"`
	Reason string     `json:"reason"`
}

// Plan contains reconciliation results and planned actions.
type Plan struct {
	Results []Result `json:"results"`
	Actions []Action `json:"actions"`
	Summary Summary  `json:"summary"`
}

// Summary provides aggregate counts for a plan.
type Summary struct {
	TotalItems     int `json:"total_items"`
	MissingStorage int `json:"missing_storage"`
	MissingDB      int `json:"missing_db"`
	Mismatches     int `json:"mismatches"`
	PurgeActions   int `json:"purge_actions"`
	SyncActions    int `json:"sync_actions"`
}

// Options controls which actions a plan carries and whether they run.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// DoPurge plans deletion of database rows whose document is gone.
	DoPurge bool

	// DoSync plans writing missing or mismatched entities to the database.
	DoSync bool

	// Confirmed indicates the caller accepted destructive actions.
	// If false, mutations will not execute regardless of DryRun.
	Confirmed bool
}
