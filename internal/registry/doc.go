// Package registry owns the authoritative in-memory alarm collection.
//
// Every mutation follows the same order: validate, persist the candidate
// collection, commit to memory, reconcile the scheduler, publish
// AlarmsChanged. A failed save aborts before the commit, so the in-memory
// state and the store never diverge. The registry is the only writer of the
// alarm store.
package registry
