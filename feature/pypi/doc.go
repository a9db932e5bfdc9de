// Package pypi lists the Python package index and mirrors project info
// documents into the store.
//
// The listing is the source of most fan-out groups: every other per-project
// job runs over the names it returns, or over the names of the info
// documents already stored.
package pypi
