package infrastructure

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"wmslink/internal/service/filefeed/port"
)

// MinioBlobFetcher reads feed payloads from an S3-compatible object store.
// Container maps to a bucket, path to an object key.
type MinioBlobFetcher struct {
	client *minio.Client
}

func NewMinioBlobFetcher(endpoint, accessKey, secretKey string, useSSL bool) (*MinioBlobFetcher, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "blob client")
	}
	return &MinioBlobFetcher{client: client}, nil
}

func (f *MinioBlobFetcher) Fetch(ctx context.Context, container, path string) (string, error) {
	obj, err := f.client.GetObject(ctx, container, path, minio.GetObjectOptions{})
	if err != nil {
		return "", errors.Wrapf(err, "get blob %s/%s", container, path)
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		return "", errors.Wrapf(err, "read blob %s/%s", container, path)
	}
	return string(raw), nil
}

var _ port.BlobFetcher = (*MinioBlobFetcher)(nil)
