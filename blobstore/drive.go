package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const driveFolderMIME = "application/vnd.google-apps.folder"

// DriveStore keeps the album in a Google Drive folder.
type DriveStore struct {
	svc *drive.Service
}

func NewDriveStore(ctx context.Context, opts ...option.ClientOption) (*DriveStore, error) {
	opts = append(opts, option.WithScopes(drive.DriveScope))
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &DriveStore{svc: svc}, nil
}

func (d *DriveStore) FindFolder(ctx context.Context, name string) (Folder, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), driveFolderMIME)

	res, err := d.svc.Files.List().
		Q(q).
		Fields("files(id, name, webViewLink)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return Folder{}, fmt.Errorf("search folder %q: %w", name, err)
	}
	if len(res.Files) == 0 {
		return Folder{}, ErrFolderNotFound
	}
	f := res.Files[0]
	return Folder{ID: f.Id, Name: f.Name, URL: folderURL(f)}, nil
}

func (d *DriveStore) CreateFolder(ctx context.Context, name string) (Folder, error) {
	f, err := d.svc.Files.Create(&drive.File{Name: name, MimeType: driveFolderMIME}).
		Fields("id, name, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return Folder{}, fmt.Errorf("create folder %q: %w", name, err)
	}

	if err := d.shareWithAnyone(ctx, f.Id); err != nil {
		return Folder{}, fmt.Errorf("share folder %q: %w", name, err)
	}
	return Folder{ID: f.Id, Name: f.Name, URL: folderURL(f)}, nil
}

func (d *DriveStore) Put(ctx context.Context, folderID string, obj Object) (StoredObject, error) {
	mimeType := ResolveMIMEType(obj.MIMEType, obj.Data)
	meta := &drive.File{Name: obj.Name, MimeType: mimeType, Parents: []string{folderID}}

	f, err := d.svc.Files.Create(meta).
		Media(bytes.NewReader(obj.Data)).
		Fields("id, name, webViewLink, size, mimeType").
		Context(ctx).
		Do()
	if err != nil {
		return StoredObject{}, fmt.Errorf("upload %q: %w", obj.Name, err)
	}

	// Shared per file: the album folder may predate this service and be private.
	if err := d.shareWithAnyone(ctx, f.Id); err != nil {
		return StoredObject{}, fmt.Errorf("share %q: %w", obj.Name, err)
	}

	size := f.Size
	if size == 0 {
		size = int64(len(obj.Data))
	}
	return StoredObject{
		ID:       f.Id,
		Name:     f.Name,
		URL:      f.WebViewLink,
		MIMEType: f.MimeType,
		Size:     size,
	}, nil
}

// shareWithAnyone grants "anyone with the link" read access.
func (d *DriveStore) shareWithAnyone(ctx context.Context, fileID string) error {
	_, err := d.svc.Permissions.Create(fileID, &drive.Permission{Type: "anyone", Role: "reader"}).
		Context(ctx).
		Do()
	return err
}

func folderURL(f *drive.File) string {
	if f.WebViewLink != "" {
		return f.WebViewLink
	}
	return "https://drive.google.com/drive/folders/" + f.Id
}
