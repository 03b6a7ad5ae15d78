// Package export archives generated files in object storage and hands back
// short-lived download links.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

var ErrStorageDisabled = errors.New("export storage is not configured")

// ObjectStore is the subset of *minio.Client used for archives.
type ObjectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

type Service interface {
	Enabled() bool
	// Archive uploads data and returns a presigned download URL.
	Archive(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

type service struct {
	store  ObjectStore
	bucket string
	expiry time.Duration
}

// NewService accepts a nil store; Enabled then reports false.
func NewService(store ObjectStore, bucket string, expiry time.Duration) Service {
	return &service{
		store:  store,
		bucket: bucket,
		expiry: expiry,
	}
}

func (s *service) Enabled() bool {
	return s.store != nil
}

func (s *service) Archive(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if s.store == nil {
		return "", ErrStorageDisabled
	}

	objectName := fmt.Sprintf("%s/%s", time.Now().UTC().Format("2006/01/02"), filename)
	_, err := s.store.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:        contentType,
		ContentDisposition: fmt.Sprintf(`attachment; filename="%s"`, filename),
	})
	if err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}

	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	link, err := s.store.PresignedGetObject(ctx, s.bucket, objectName, s.expiry, params)
	if err != nil {
		return "", fmt.Errorf("presign export: %w", err)
	}
	return link.String(), nil
}
