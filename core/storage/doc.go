// Package storage wraps an S3-compatible object store used for exports.
//
// The Client interface is the subset of the MinIO client the exporter uses,
// which keeps it easy to mock (see core/storage/mocks). NewClient returns the
// MinIO client itself with strict connection timeouts.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
