package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/Teddy-225/Event-Travel/blobstore"
	"github.com/Teddy-225/Event-Travel/models"
)

func (g *Gateway) getOrCreateAlbum(ctx context.Context, p Payload) (models.Envelope, error) {
	folder, created, err := g.album(ctx)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("failed to get album folder: %w", err)
	}

	eventName := p.String("eventName")
	if eventName == "" {
		eventName = g.cfg.Event.Name
	}
	return models.Succeeded(map[string]any{
		"folderId":   folder.ID,
		"folderUrl":  folder.URL,
		"folderName": folder.Name,
		"created":    created,
		"eventName":  eventName,
	}, "Album folder ready", g.now()), nil
}

type albumResult struct {
	folder  blobstore.Folder
	created bool
}

// album finds the configured folder or creates it together with the album
// sheet. Concurrent callers share one lookup so a burst of uploads without a
// folder id cannot create duplicate folders.
func (g *Gateway) album(ctx context.Context) (blobstore.Folder, bool, error) {
	name := g.cfg.AlbumFolderName
	if f, ok := g.albums.Get(name); ok {
		return f, false, nil
	}

	v, err, _ := g.resolve.Do(name, func() (any, error) {
		folder, err := g.blobs.FindFolder(ctx, name)
		if err == nil {
			return albumResult{folder: folder}, nil
		}
		if !errors.Is(err, blobstore.ErrFolderNotFound) {
			return nil, err
		}

		folder, err = g.blobs.CreateFolder(ctx, name)
		if err != nil {
			return nil, err
		}
		if _, err := g.ensureHeader(ctx, g.cfg.AlbumSheetName, models.AlbumHeaders); err != nil {
			return nil, fmt.Errorf("prepare album sheet: %w", err)
		}
		g.logger.Info("album folder created",
			slog.String("folder_id", folder.ID),
			slog.String("name", name),
		)
		return albumResult{folder: folder, created: true}, nil
	})
	if err != nil {
		return blobstore.Folder{}, false, err
	}

	res := v.(albumResult)
	g.albums.Set(name, res.folder)
	return res.folder, res.created, nil
}

func (g *Gateway) uploadFile(ctx context.Context, p Payload) (models.Envelope, error) {
	if !p.Has("fileData") || strings.TrimSpace(p.String("fileData")) == "" {
		return models.Envelope{}, ErrMissingPayload
	}
	fileName := strings.TrimSpace(p.String("fileName"))
	if fileName == "" {
		return models.Envelope{}, fmt.Errorf("%w: missing file name", ErrValidation)
	}

	data, err := decodeFileData(p.String("fileData"))
	if err != nil {
		return models.Envelope{}, fmt.Errorf("%w: file data is not valid base64", ErrValidation)
	}
	if limit := g.cfg.MaxUploadBytes; limit > 0 && int64(len(data)) > limit {
		return models.Envelope{}, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrValidation, fileName, len(data), limit)
	}
	if declared, err := strconv.ParseInt(p.String("fileSize"), 10, 64); err == nil && declared != int64(len(data)) {
		g.logger.Warn("declared file size differs from payload",
			slog.String("file", fileName),
			slog.Int64("declared", declared),
			slog.Int("actual", len(data)),
		)
	}

	mimeType := blobstore.ResolveMIMEType(p.String("mimeType"), data)
	if allowed := g.cfg.AllowedMIMETypes; len(allowed) > 0 && !slices.Contains(allowed, mimeType) {
		return models.Envelope{}, fmt.Errorf("%w: %s has type %s, which is not accepted", ErrValidation, fileName, mimeType)
	}

	folderID := p.String("folderId")
	if folderID == "" {
		folder, _, err := g.album(ctx)
		if err != nil {
			return models.Envelope{}, fmt.Errorf("failed to get album folder: %w", err)
		}
		folderID = folder.ID
	}

	stored, err := g.blobs.Put(ctx, folderID, blobstore.Object{
		Name:     fileName,
		MIMEType: mimeType,
		Data:     data,
	})
	if err != nil {
		return models.Envelope{}, fmt.Errorf("failed to store %s: %w", fileName, err)
	}
	uploadBytesTotal.Add(float64(stored.Size))

	eventName := p.String("eventName")
	if eventName == "" {
		eventName = g.cfg.Event.Name
	}
	rec := models.AlbumFileRecord{
		FileName:  stored.Name,
		FileID:    stored.ID,
		MIMEType:  stored.MIMEType,
		Size:      stored.Size,
		Uploader:  p.String("uploader"),
		URL:       stored.URL,
		EventName: eventName,
		CreatedAt: g.now(),
	}
	if _, err := g.ensureHeader(ctx, g.cfg.AlbumSheetName, models.AlbumHeaders); err != nil {
		return models.Envelope{}, fmt.Errorf("failed to record %s: %w", fileName, err)
	}
	if err := g.docs.AppendRow(ctx, g.cfg.AlbumSheetName, rec.Row()); err != nil {
		return models.Envelope{}, fmt.Errorf("failed to record %s: %w", fileName, err)
	}

	g.logger.Info("album file stored",
		slog.String("file", stored.Name),
		slog.String("file_id", stored.ID),
		slog.Int64("size", stored.Size),
	)
	return models.Succeeded(map[string]any{
		"fileId":   stored.ID,
		"fileName": stored.Name,
		"url":      stored.URL,
		"size":     stored.Size,
		"mimeType": stored.MIMEType,
	}, "File uploaded successfully", g.now()), nil
}

// decodeFileData accepts plain base64 or a data URL, with or without padding.
func decodeFileData(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)

	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
