// Package flow runs jobs and fan-out groups in process.
//
// A fan-out group runs one sibling per input item with bounded concurrency
// and stores sibling i's JSON output at index i. Reducers then read the group
// through fanin.Results in index order. Each Runner has its own run id, and
// persisted sibling outputs are written under {results-prefix}{run-id}/ so
// that siblings of an earlier, larger run can never be mistaken for members
// of the current group.
package flow
