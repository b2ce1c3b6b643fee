package models

import (
	"strconv"
	"time"
)

// AlbumHeaders is the fixed column order of the album tracking sheet.
var AlbumHeaders = []string{
	"Timestamp", "File Name", "File ID", "File Type", "File Size",
	"Uploader", "Web View Link", "Event Name",
}

// AlbumFileRecord is the persisted trace of one stored photo or video.
type AlbumFileRecord struct {
	FileName  string    `json:"fileName"`
	FileID    string    `json:"fileId"`
	MIMEType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	Uploader  string    `json:"uploader"`
	URL       string    `json:"url"`
	EventName string    `json:"eventName"`
	CreatedAt time.Time `json:"timestamp"`
}

func (r AlbumFileRecord) Row() []string {
	return []string{
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.FileName,
		r.FileID,
		r.MIMEType,
		strconv.FormatInt(r.Size, 10),
		orDefault(r.Uploader, "Anonymous guest"),
		r.URL,
		r.EventName,
	}
}
