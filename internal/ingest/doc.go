// Package ingest turns settlement files into loads and hands them to sinks.
//
// The Runner:
//   - Reads, checksums and decodes each file
//   - Skips checksums already seen in this process or already stored
//   - Hands the load to every sink in order (database, then export)
//   - Processes batches of files with bounded concurrency
package ingest
