package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3Options configures an S3 or S3-compatible (MinIO) bucket.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Store maps album folders to key prefixes, like GCSStore.
type S3Store struct {
	client *s3.Client
	opts   S3Options
}

func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, opts: opts}, nil
}

func (s *S3Store) FindFolder(ctx context.Context, name string) (Folder, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(folderPrefix(name)),
	})
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return Folder{}, ErrFolderNotFound
	}
	if err != nil {
		return Folder{}, fmt.Errorf("find folder %q: %w", name, err)
	}
	return s.folder(name), nil
}

func (s *S3Store) CreateFolder(ctx context.Context, name string) (Folder, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(folderPrefix(name)),
		Body:   bytes.NewReader(nil),
		ACL:    types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return Folder{}, fmt.Errorf("create folder %q: %w", name, err)
	}
	return s.folder(name), nil
}

func (s *S3Store) Put(ctx context.Context, folderID string, obj Object) (StoredObject, error) {
	key := objectKey(folderID, uuid.NewString()+"_"+obj.Name, time.Now())
	mimeType := ResolveMIMEType(obj.MIMEType, obj.Data)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.opts.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(obj.Data),
		ContentType:   aws.String(mimeType),
		ContentLength: aws.Int64(int64(len(obj.Data))),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return StoredObject{}, fmt.Errorf("put %q: %w", key, err)
	}

	return StoredObject{
		ID:       key,
		Name:     obj.Name,
		URL:      s.publicURL(key),
		MIMEType: mimeType,
		Size:     int64(len(obj.Data)),
	}, nil
}

func (s *S3Store) folder(name string) Folder {
	prefix := folderPrefix(name)
	return Folder{ID: prefix, Name: name, URL: s.publicURL(prefix)}
}

func (s *S3Store) publicURL(key string) string {
	if s.opts.Endpoint != "" {
		return strings.TrimRight(s.opts.Endpoint, "/") + "/" + s.opts.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, key)
}
