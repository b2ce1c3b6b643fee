package blobstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore maps album folders to object prefixes in one bucket. A folder
// exists once its marker object "<name>/" exists.
type GCSStore struct {
	cl         *storage.Client
	bucketName string
	timeout    time.Duration
}

func NewGCSStore(ctx context.Context, bucketName string, opts ...option.ClientOption) (*GCSStore, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{cl: client, bucketName: bucketName, timeout: 50 * time.Second}, nil
}

func (g *GCSStore) Close() error {
	return g.cl.Close()
}

func (g *GCSStore) FindFolder(ctx context.Context, name string) (Folder, error) {
	prefix := folderPrefix(name)
	_, err := g.cl.Bucket(g.bucketName).Object(prefix).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return Folder{}, ErrFolderNotFound
	}
	if err != nil {
		return Folder{}, fmt.Errorf("find folder %q: %w", name, err)
	}
	return g.folder(name), nil
}

// CreateFolder writes the marker object and grants allUsers read access on
// the bucket, the same way objects get a public URL.
func (g *GCSStore) CreateFolder(ctx context.Context, name string) (Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	wc := g.cl.Bucket(g.bucketName).Object(folderPrefix(name)).NewWriter(ctx)
	if err := wc.Close(); err != nil {
		return Folder{}, fmt.Errorf("create folder %q: %w", name, err)
	}
	if err := g.makeBucketPublic(ctx); err != nil {
		return Folder{}, fmt.Errorf("share folder %q: %w", name, err)
	}
	return g.folder(name), nil
}

func (g *GCSStore) Put(ctx context.Context, folderID string, obj Object) (StoredObject, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	objectPath := objectKey(folderID, obj.Name, time.Now())
	mimeType := ResolveMIMEType(obj.MIMEType, obj.Data)

	wc := g.cl.Bucket(g.bucketName).Object(objectPath).NewWriter(ctx)
	wc.ContentType = mimeType
	if _, err := wc.Write(obj.Data); err != nil {
		_ = wc.Close()
		return StoredObject{}, fmt.Errorf("write %q: %w", objectPath, err)
	}
	if err := wc.Close(); err != nil {
		return StoredObject{}, fmt.Errorf("close writer for %q: %w", objectPath, err)
	}

	return StoredObject{
		ID:       objectPath,
		Name:     obj.Name,
		URL:      g.publicURL(objectPath),
		MIMEType: mimeType,
		Size:     int64(len(obj.Data)),
	}, nil
}

func (g *GCSStore) makeBucketPublic(ctx context.Context) error {
	bucket := g.cl.Bucket(g.bucketName)
	policy, err := bucket.IAM().Policy(ctx)
	if err != nil {
		return err
	}
	if policy.HasRole("allUsers", "roles/storage.objectViewer") {
		return nil
	}
	policy.Add("allUsers", "roles/storage.objectViewer")
	return bucket.IAM().SetPolicy(ctx, policy)
}

func (g *GCSStore) folder(name string) Folder {
	prefix := folderPrefix(name)
	return Folder{ID: prefix, Name: name, URL: g.publicURL(prefix)}
}

func (g *GCSStore) publicURL(objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucketName, objectPath)
}

func folderPrefix(name string) string {
	return strings.Trim(name, "/") + "/"
}

// objectKey prefixes the file name with a nanosecond timestamp so repeated
// uploads of the same name never collide.
func objectKey(prefix, name string, now time.Time) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + strconv.FormatInt(now.UnixNano(), 10) + "_" + name
}
