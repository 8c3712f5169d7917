// Package store persists the per-line pipeline table and stage
// checkpoints in a workspace-local SQLite database, giving interrupted
// runs a durable resume point.
package store
