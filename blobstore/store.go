// Package blobstore stores uploaded album files inside named folders.
package blobstore

import (
	"context"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrFolderNotFound is returned by FindFolder when no folder has the name.
var ErrFolderNotFound = errors.New("folder not found")

// Folder is a named container readable by anyone holding its link.
type Folder struct {
	ID   string
	Name string
	URL  string
}

// Object is a file about to be stored.
type Object struct {
	Name     string
	MIMEType string
	Data     []byte
}

// StoredObject describes a file after it was written.
type StoredObject struct {
	ID       string
	Name     string
	URL      string
	MIMEType string
	Size     int64
}

type Store interface {
	FindFolder(ctx context.Context, name string) (Folder, error)
	// CreateFolder makes a new folder shared as anyone-with-link reader.
	CreateFolder(ctx context.Context, name string) (Folder, error)
	Put(ctx context.Context, folderID string, obj Object) (StoredObject, error)
}

// ResolveMIMEType keeps a declared type unless it is missing or generic,
// in which case the type is sniffed from the content.
func ResolveMIMEType(declared string, data []byte) string {
	declared = strings.TrimSpace(strings.ToLower(declared))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	detected, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return detected
}
