// Package config defines the application configuration structure and
// loading logic. Configuration is grouped by concern (server, database,
// auth, LLM, storage, extraction, tasks) and validated on load.
package config
