// Package database manages the SQLite connection backing the sweep run
// journal.
//
// It handles connection lifecycle, WAL and busy-timeout pragmas, file
// permissions and health checks. Schema ownership lives with the journal
// package; this package only hands out a verified connection.
package database
