// Package export writes decoded settlement reports as CSV or Parquet
// objects to a local directory or an S3 bucket.
//
// Object keys are partitioned by business date:
//
//	date=2014-03-14/stlint_<load id>.parquet
package export
