// Package alarms implements persistence for the alarm collection.
//
// The FileRepository stores and loads every alarm as a single JSON document
// on disk. Writes are atomic (temp file plus rename), so the store is either
// fully written or untouched. It exposes a Repository interface that the
// alarm registry depends on.
package alarms
