// Package storage records computed timelines.
//
// It is a computation audit (what was computed, from which document
// version, with which totals), not a store for study documents.
// Drivers: "file" (JSON lines) and "sqlite".
package storage
