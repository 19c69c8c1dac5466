// Package watch recomputes a study's timeline whenever its document changes.
//
// The Service subscribes to a studyfile.Watcher, rebuilds the timeline for
// every published version, announces the result on the event bus and keeps
// the run history current. An optional snapshot schedule records the current
// timeline periodically even when nothing changed.
package watch
