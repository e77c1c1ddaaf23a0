// Package pipeline coordinates one publishing cycle: reconcile inventory,
// claim the next pending record, fetch its asset, upload it, and persist the
// outcome. Lifecycle transitions go through the Driver so every status change
// lands in the catalog with an audit event before side effects continue.
package pipeline
