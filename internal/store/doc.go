// Package store defines persistence interfaces and shared error types for
// the application's entities. Implementations live in platform packages
// (e.g. internal/platform/postgres); services depend only on these
// interfaces.
package store
