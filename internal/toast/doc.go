// Package toast implements the toast queue manager.
//
// A Manager owns the set of active toasts keyed by id, assigns each Show a
// strictly increasing counter that fixes display order, merges per-call
// configuration over defaults, and schedules one-shot auto-dismiss timers.
// Renderers observe the queue through immutable Snapshots, either pulled
// with Manager.Snapshot or pushed through Manager.Subscribe, and feed user
// interaction back through Dismiss and OnAction.
//
// Host is the mount point used by long-running processes: at most one
// Manager is mounted at a time, and every operation on an empty Host fails
// with ErrNotReady without side effects.
package toast
