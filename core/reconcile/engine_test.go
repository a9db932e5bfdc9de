package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAdapter serves fixed indices and records mutations.
type MockAdapter struct {
	mock.Mock
	storage Index
	db      Index
	dbErr   error
}

func (m *MockAdapter) Name() string { return "documents" }

func (m *MockAdapter) LoadStorage(ctx context.Context) (Index, error) { return m.storage, nil }

func (m *MockAdapter) LoadDB(ctx context.Context) (Index, error) { return m.db, m.dbErr }

func (m *MockAdapter) SyncDB(ctx context.Context, keys []string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *MockAdapter) DeleteDB(ctx context.Context, keys []string) error {
	return m.Called(ctx, keys).Error(0)
}

func newAdapter() *MockAdapter {
	return &MockAdapter{
		storage: Index{
			"solver-1":  {Metadata: map[string]string{"kind": "solver"}},
			"solver-2":  {Checksum: "aa"},
			"analysis-": {Checksum: "cc"},
		},
		db: Index{
			"solver-2":  {Checksum: "bb"},
			"analysis-": {Checksum: "cc"},
			"orphan":    {Checksum: "dd"},
		},
	}
}

func TestCompare(t *testing.T) {
	a := newAdapter()
	results := Compare(a.storage, a.db)
	require.Len(t, results, 4)

	assert.Equal(t, "analysis-", results[0].Key)
	assert.Empty(t, results[0].Mismatch)

	assert.Equal(t, "orphan", results[1].Key)
	assert.False(t, results[1].StoragePresent)
	assert.True(t, results[1].DBPresent)

	assert.Equal(t, "solver-1", results[2].Key)
	assert.Equal(t, "solver", results[2].Metadata["kind"])
	assert.False(t, results[2].DBPresent)

	assert.Equal(t, []string{"checksum: storage=aa db=bb"}, results[3].Mismatch)
}

func TestReconcile_LoadError(t *testing.T) {
	a := newAdapter()
	a.dbErr = errors.New("connection refused")

	_, err := Reconcile(context.Background(), a)
	assert.ErrorContains(t, err, "documents: load db index: connection refused")
}

func TestReconcileWithPlan(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		actions []Action
	}{
		{"Report Only", Options{}, []Action{}},
		{"Sync", Options{DoSync: true}, []Action{
			{Type: ActionSyncDB, Key: "solver-1", Reason: "missing in database"},
			{Type: ActionSyncDB, Key: "solver-2", Reason: "checksum: storage=aa db=bb"},
		}},
		{"Purge", Options{DoPurge: true}, []Action{
			{Type: ActionDeleteDB, Key: "orphan", Reason: "missing in storage"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ReconcileWithPlan(context.Background(), newAdapter(), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.actions, plan.Actions)
			assert.Equal(t, 4, plan.Summary.TotalItems)
			assert.Equal(t, 1, plan.Summary.MissingDB)
			assert.Equal(t, 1, plan.Summary.MissingStorage)
			assert.Equal(t, 1, plan.Summary.Mismatches)
		})
	}
}

func TestApplyPlan(t *testing.T) {
	opts := Options{DoSync: true, DoPurge: true}

	t.Run("Not Confirmed", func(t *testing.T) {
		a := newAdapter()
		plan, err := ReconcileWithPlan(context.Background(), a, opts)
		require.NoError(t, err)

		executed, err := ApplyPlan(context.Background(), a, plan, opts)
		require.NoError(t, err)
		assert.Zero(t, executed)
		a.AssertNotCalled(t, "SyncDB", mock.Anything, mock.Anything)
	})

	t.Run("Dry Run", func(t *testing.T) {
		a := newAdapter()
		plan, err := ReconcileWithPlan(context.Background(), a, opts)
		require.NoError(t, err)

		executed, err := ApplyPlan(context.Background(), a, plan, Options{Confirmed: true, DryRun: true})
		require.NoError(t, err)
		assert.Zero(t, executed)
	})

	t.Run("Confirmed", func(t *testing.T) {
		a := newAdapter()
		a.On("DeleteDB", mock.Anything, []string{"orphan"}).Return(nil).Once()
		a.On("SyncDB", mock.Anything, []string{"solver-1", "solver-2"}).Return(nil).Once()

		plan, err := ReconcileWithPlan(context.Background(), a, opts)
		require.NoError(t, err)

		confirmed := opts
		confirmed.Confirmed = true
		executed, err := ApplyPlan(context.Background(), a, plan, confirmed)
		require.NoError(t, err)
		assert.Equal(t, 3, executed)
		a.AssertExpectations(t)
	})

	t.Run("Delete Fails", func(t *testing.T) {
		a := newAdapter()
		a.On("DeleteDB", mock.Anything, mock.Anything).Return(errors.New("locked"))

		plan := &Plan{Actions: []Action{{Type: ActionDeleteDB, Key: "orphan"}, {Type: ActionSyncDB, Key: "solver-1"}}}
		executed, err := ApplyPlan(context.Background(), a, plan, Options{Confirmed: true})
		assert.ErrorContains(t, err, "locked")
		assert.Zero(t, executed)
		a.AssertNotCalled(t, "SyncDB", mock.Anything, mock.Anything)
	})

	t.Run("No Mutator", func(t *testing.T) {
		plan := &Plan{Actions: []Action{{Type: ActionDeleteDB, Key: "orphan"}}}
		_, err := ApplyPlan(context.Background(), readOnlyAdapter{}, plan, Options{Confirmed: true})
		assert.ErrorContains(t, err, "does not implement Mutator")
	})
}

// readOnlyAdapter does not implement Mutator.
type readOnlyAdapter struct{}

func (readOnlyAdapter) Name() string                                    { return "readonly" }
func (readOnlyAdapter) LoadStorage(ctx context.Context) (Index, error) { return Index{}, nil }
func (readOnlyAdapter) LoadDB(ctx context.Context) (Index, error)      { return Index{}, nil }
