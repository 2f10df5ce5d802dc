// Package task implements background work processing: the Task interface,
// a channel-backed runner with a fixed worker pool and crash recovery, and
// the concrete tasks for document ingestion and learning path generation.
//
// Tasks are persisted before they are queued, so work submitted just
// before a crash is recovered and requeued on the next start. Tasks stuck
// in the processing state past a configured age are reset by a background
// monitor.
package task
