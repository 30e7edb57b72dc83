// Package writer stores decoded settlement reports in PostgreSQL.
//
// Each file is written in one transaction: a ledger row in settlement_files
// keyed by the file checksum, then its settlement rows in batches. A file
// whose checksum is already in the ledger is skipped.
//
// All writes are append-only (never update, only insert).
package writer
