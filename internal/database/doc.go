// Package database provides the PostgreSQL connection pool and schema for
// settlement storage.
//
// Tables:
//   - settlement_files: one row per loaded file, unique on checksum
//   - settlements: one row per contract and business date
//
// Both tables are append-only; a file already in settlement_files is never
// loaded twice.
package database
