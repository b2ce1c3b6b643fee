package blobstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestResolveMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		data     []byte
		want     string
	}{
		{"declared wins", "image/heic", pngHeader, "image/heic"},
		{"declared is normalised", " Image/JPEG ", nil, "image/jpeg"},
		{"empty is sniffed", "", pngHeader, "image/png"},
		{"octet stream is sniffed", "application/octet-stream", pngHeader, "image/png"},
		{"unknown content", "", []byte{0x00, 0x01, 0x02}, "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveMIMEType(tt.declared, tt.data))
		})
	}
}

func TestMemoryStore_FolderLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.FindFolder(ctx, "Event Photo Album")
	assert.ErrorIs(t, err, ErrFolderNotFound)

	created, err := s.CreateFolder(ctx, "Event Photo Album")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Event Photo Album", created.Name)

	found, err := s.FindFolder(ctx, "Event Photo Album")
	require.NoError(t, err)
	assert.Equal(t, created, found)
}

func TestMemoryStore_Put(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	folder, err := s.CreateFolder(ctx, "Album")
	require.NoError(t, err)

	stored, err := s.Put(ctx, folder.ID, Object{Name: "cake.png", Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, "cake.png", stored.Name)
	assert.Equal(t, "image/png", stored.MIMEType)
	assert.Equal(t, int64(len(pngHeader)), stored.Size)
	assert.NotEmpty(t, stored.URL)

	objs := s.Objects(folder.ID)
	require.Len(t, objs, 1)
	assert.Equal(t, stored, objs[0])

	data, ok := s.Content(stored.ID)
	require.True(t, ok)
	assert.Equal(t, pngHeader, data)
}

func TestMemoryStore_PutUnknownFolder(t *testing.T) {
	_, err := NewMemoryStore().Put(context.Background(), "missing", Object{Name: "a.jpg"})
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestObjectKey(t *testing.T) {
	now := time.Unix(0, 1700000000123456789)
	assert.Equal(t, "Album/1700000000123456789_cake.png", objectKey("Album/", "cake.png", now))
	assert.Equal(t, "Album/1700000000123456789_cake.png", objectKey("Album", "cake.png", now))
	assert.Equal(t, "1700000000123456789_cake.png", objectKey("", "cake.png", now))
	assert.Equal(t, "Album/", folderPrefix("/Album/"))
}

func TestS3PublicURL(t *testing.T) {
	aws := &S3Store{opts: S3Options{Bucket: "photos", Region: "eu-west-1"}}
	assert.Equal(t, "https://photos.s3.eu-west-1.amazonaws.com/Album/x.jpg", aws.publicURL("Album/x.jpg"))

	minio := &S3Store{opts: S3Options{Bucket: "photos", Endpoint: "http://127.0.0.1:9000/"}}
	assert.Equal(t, "http://127.0.0.1:9000/photos/Album/x.jpg", minio.publicURL("Album/x.jpg"))
	assert.Equal(t, Folder{ID: "Album/", Name: "Album", URL: "http://127.0.0.1:9000/photos/Album/"}, minio.folder("Album"))
}
