// Package store persists the usage ledger and transcription jobs in SQLite.
//
// A single usage_tracking row holds the running total of transcribed minutes
// together with the configured limit; every addition is also appended to
// usage_logs. Jobs record each upload handled by the HTTP server so clients
// can poll their status by id.
//
// Schema changes bump schemaVersion in schema.go; users delete the database
// to adopt the new schema.
package store
