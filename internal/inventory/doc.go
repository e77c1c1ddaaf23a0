// Package inventory lists the cloud file source and derives the ephemeral
// items the reconciler diffs against the catalog.
//
// Items are recomputed on every pass and never persisted: the display name
// strips the file extension and the canonical link is derived
// deterministically from the source ID, so both serve as stable dedup keys.
package inventory
