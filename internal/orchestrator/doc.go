// Package orchestrator coordinates execution of generation tasks against
// external backend services: retry with exponential backoff, per-task
// health gating, a bounded worker pool for parallel batches, and a
// priority-grouped scheduler. Crew execution itself is an opaque
// collaborator behind the crew.Invoker interface; every executed task
// produces exactly one terminal record in the status ledger.
package orchestrator
