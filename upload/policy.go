// Package upload runs the batched photo and video upload to the gateway.
package upload

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// extensionTypes maps extensions to the type used when the reported type is
// missing. HEIC/HEIF and some video containers often come through blank.
var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
}

// RejectedError is a file turned away by the policy before any upload.
type RejectedError struct {
	FileName string
	Reason   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s", e.FileName, e.Reason)
}

// Policy decides which files may be uploaded.
type Policy struct {
	AllowedTypes []string
	// MaxBytes of 0 disables the size check.
	MaxBytes int64
}

// Check returns the MIME type to upload f with, or a *RejectedError.
func (p Policy) Check(f File) (string, error) {
	declared := strings.ToLower(strings.TrimSpace(f.Type))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}

	resolved := ""
	switch {
	case declared != "" && slices.Contains(p.AllowedTypes, declared):
		resolved = declared
	case declared == "" || declared == "application/octet-stream":
		if t, ok := extensionTypes[strings.ToLower(filepath.Ext(f.Name))]; ok && slices.Contains(p.AllowedTypes, t) {
			resolved = t
		}
	}
	if resolved == "" {
		return "", &RejectedError{FileName: f.Name, Reason: "file type not supported, please upload photos or videos"}
	}

	if p.MaxBytes > 0 && f.Size > p.MaxBytes {
		return "", &RejectedError{
			FileName: f.Name,
			Reason:   fmt.Sprintf("file is too large, the limit is %s", humanSize(p.MaxBytes)),
		}
	}
	return resolved, nil
}

func humanSize(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
