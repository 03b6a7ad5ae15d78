package export

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ObjectStore = (*minio.Client)(nil)

type memStore struct {
	objects map[string][]byte
	opts    minio.PutObjectOptions
	params  url.Values
	putErr  error
}

func (m *memStore) PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if m.putErr != nil {
		return minio.UploadInfo{}, m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	m.objects[bucket+"/"+object] = data
	m.opts = opts
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: size}, nil
}

func (m *memStore) PresignedGetObject(ctx context.Context, bucket, object string, expires time.Duration, params url.Values) (*url.URL, error) {
	m.params = params
	return url.Parse("https://minio.local/" + bucket + "/" + object + "?X-Amz-Expires=" + expires.String())
}

func TestService_Archive(t *testing.T) {
	store := &memStore{objects: map[string][]byte{}}
	svc := NewService(store, "exports", 15*time.Minute)
	require.True(t, svc.Enabled())

	link, err := svc.Archive(context.Background(), "audit-logs.csv", "text/csv", []byte("id\n1\n"))
	require.NoError(t, err)

	prefix := time.Now().UTC().Format("2006/01/02")
	assert.True(t, strings.HasPrefix(link, "https://minio.local/exports/"+prefix+"/audit-logs.csv"))
	assert.Equal(t, []byte("id\n1\n"), store.objects["exports/"+prefix+"/audit-logs.csv"])
	assert.Equal(t, "text/csv", store.opts.ContentType)
	assert.Equal(t, `attachment; filename="audit-logs.csv"`, store.params.Get("response-content-disposition"))
}

func TestService_Archive_Errors(t *testing.T) {
	disabled := NewService(nil, "exports", time.Minute)
	assert.False(t, disabled.Enabled())
	_, err := disabled.Archive(context.Background(), "x.json", "application/json", nil)
	assert.ErrorIs(t, err, ErrStorageDisabled)

	broken := NewService(&memStore{objects: map[string][]byte{}, putErr: errors.New("no such bucket")}, "exports", time.Minute)
	_, err = broken.Archive(context.Background(), "x.json", "application/json", []byte("[]"))
	assert.ErrorContains(t, err, "upload export")
}
