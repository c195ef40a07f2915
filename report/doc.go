// Package report records the outcome of a simulation run and ships it to
// storage.
//
// # Output
//
// A Report renders as a one-line result ("cost,elapsed_ms"), as a CSV row
// under Header, as JSON, and as an ASCII plot of the cost trajectory
// sampled during ingestion.
//
// # Sinks
//
// BlobSink writes JSON reports and CSV summaries to any blobstore.BlobStore
// (local directory, S3, MinIO). DynamoSink records one item per run in a
// DynamoDB table keyed by dataset and run name.
package report
