// Package services defines shared utilities consumed by the pipeline steps
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp record IDs, step names, and correlation
//     identifiers for logging and tracing.
//   - Sentinel error markers plus the Wrap helper that classify failures
//     (invalid reference, fetch exhausted, validation, publish rejected,
//     store unavailable) for consistent handling at the orchestrator boundary.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
