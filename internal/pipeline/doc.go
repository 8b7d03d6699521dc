// Package pipeline provides the editing surface for per-role hiring
// pipelines: an exclusive session holding a working copy of the stage list,
// and a configurator guarding per-stage config edits. Persistence is
// delegated to the store; sessions only decide when to cross that boundary.
package pipeline
