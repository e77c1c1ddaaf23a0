// Package publish uploads assets to the video platform and owns the canonical
// category and privacy mapping tables.
//
// Every call site that needs a category code or privacy value goes through
// this package; no other package carries its own copy of the enums.
package publish
