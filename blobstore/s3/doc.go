// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	...
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "sparsim/")
//
// Reads use ranged GetObject requests. Writes go through the S3 transfer
// manager, which switches to multipart uploads for large reports.
package s3
