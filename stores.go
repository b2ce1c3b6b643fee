package main

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"

	"github.com/Teddy-225/Event-Travel/blobstore"
	"github.com/Teddy-225/Event-Travel/config"
	"github.com/Teddy-225/Event-Travel/database"
	"github.com/Teddy-225/Event-Travel/docstore"
	"github.com/Teddy-225/Event-Travel/mailer"
)

// backends holds the opened external systems and whatever must be closed
// on shutdown.
type backends struct {
	docs    docstore.Store
	blobs   blobstore.Store
	mail    mailer.Sender
	closers []func() error
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			slog.Error("close backend", slog.String("error", err.Error()))
		}
	}
}

func googleOptions(cfg *config.Config) []option.ClientOption {
	if cfg.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
}

func openBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backends, error) {
	b := &backends{}
	var err error

	if b.docs, err = openDocStore(ctx, cfg, logger, b); err != nil {
		b.Close()
		return nil, err
	}
	if b.blobs, err = openBlobStore(ctx, cfg, b); err != nil {
		b.Close()
		return nil, err
	}

	switch cfg.Mailer {
	case config.MailerGmail:
		if b.mail, err = mailer.NewGmailSender(ctx, cfg.AdminEmail, googleOptions(cfg)...); err != nil {
			b.Close()
			return nil, err
		}
	default:
		b.mail = mailer.NewNoopSender(logger)
	}

	logger.Info("backends ready",
		slog.String("doc_store", cfg.DocStore),
		slog.String("blob_store", cfg.BlobStore),
		slog.String("mailer", cfg.Mailer),
	)
	return b, nil
}

func openDocStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, b *backends) (docstore.Store, error) {
	switch cfg.DocStore {
	case config.DocStoreSheets:
		return docstore.NewSheetsStore(ctx, cfg.SheetID, googleOptions(cfg)...)
	case config.DocStorePostgres:
		db, err := database.Connect(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() error { return database.Close(db) })
		if err := database.MigrateModels(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return docstore.NewGormStore(db), nil
	case config.DocStoreSQLite:
		s, err := docstore.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, s.Close)
		return s, nil
	default:
		return docstore.NewMemoryStore(), nil
	}
}

func openBlobStore(ctx context.Context, cfg *config.Config, b *backends) (blobstore.Store, error) {
	switch cfg.BlobStore {
	case config.BlobStoreDrive:
		return blobstore.NewDriveStore(ctx, googleOptions(cfg)...)
	case config.BlobStoreGCS:
		s, err := blobstore.NewGCSStore(ctx, cfg.GCSBucket, googleOptions(cfg)...)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, s.Close)
		return s, nil
	case config.BlobStoreS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return blobstore.NewMemoryStore(), nil
	}
}
