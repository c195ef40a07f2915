// Package blobstore provides storage for sparsim datasets and run reports.
//
// BlobStore is the interface for reading and writing named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem, reads through mmap
//   - MemoryStore: In-memory, for tests
//   - s3.Store: Amazon S3 with range reads and managed uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Edge lists are read sequentially:
//
//	blob, err := store.Open(ctx, "facebook_combined.txt.gz")
//	...
//	g, err := graph.LoadNamed(name, blobstore.NewReader(blob))
package blobstore
