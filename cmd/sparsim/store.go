package main

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/hupe1980/sparsim/blobstore"
	minioblob "github.com/hupe1980/sparsim/blobstore/minio"
	s3blob "github.com/hupe1980/sparsim/blobstore/s3"
	"github.com/hupe1980/sparsim/graph"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// location is a parsed storage URI.
type location struct {
	scheme string // "", "s3" or "minio"
	host   string // minio endpoint
	bucket string
	key    string // object key or directory for local paths
}

func parseLocation(uri string) (location, error) {
	if !strings.Contains(uri, "://") {
		return location{key: uri}, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return location{}, errors.Wrapf(err, "parse %q", uri)
	}
	p := strings.TrimPrefix(u.Path, "/")
	switch u.Scheme {
	case "s3":
		if u.Host == "" {
			return location{}, errors.Newf("%q: missing bucket", uri)
		}
		return location{scheme: "s3", bucket: u.Host, key: p}, nil
	case "minio":
		bucket, key, _ := strings.Cut(p, "/")
		if u.Host == "" || bucket == "" {
			return location{}, errors.Newf("%q: want minio://host/bucket/prefix", uri)
		}
		return location{scheme: "minio", host: u.Host, bucket: bucket, key: key}, nil
	default:
		return location{}, errors.Newf("%q: unsupported scheme %q", uri, u.Scheme)
	}
}

// openStore returns the store behind uri and the key or prefix within it.
func openStore(ctx context.Context, uri string) (blobstore.BlobStore, string, error) {
	loc, err := parseLocation(uri)
	if err != nil {
		return nil, "", err
	}
	switch loc.scheme {
	case "s3":
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, "", errors.Wrap(err, "load AWS config")
		}
		return s3blob.NewStore(awss3.NewFromConfig(cfg), loc.bucket, ""), loc.key, nil
	case "minio":
		client, err := minio.New(loc.host, &minio.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: os.Getenv("MINIO_SECURE") == "true",
		})
		if err != nil {
			return nil, "", errors.Wrap(err, "minio client")
		}
		return minioblob.NewStore(client, loc.bucket, ""), loc.key, nil
	default:
		if err := os.MkdirAll(loc.key, 0o755); err != nil {
			return nil, "", err
		}
		return blobstore.NewLocalStore(loc.key), "", nil
	}
}

// loadGraph reads an edge list from a local path or object URI.
func loadGraph(ctx context.Context, uri string) (*graph.Graph, error) {
	loc, err := parseLocation(uri)
	if err != nil {
		return nil, err
	}

	var (
		store blobstore.BlobStore
		name  string
	)
	if loc.scheme == "" {
		store = blobstore.NewLocalStore(filepath.Dir(loc.key))
		name = filepath.Base(loc.key)
	} else if store, name, err = openStore(ctx, uri); err != nil {
		return nil, err
	}

	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, errors.Wrapf(err, "read dataset %s", uri)
	}
	g, err := graph.LoadNamed(name, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "parse dataset %s", uri)
	}
	return g, nil
}

func newDynamoClient(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load AWS config")
	}
	return dynamodb.NewFromConfig(cfg), nil
}
