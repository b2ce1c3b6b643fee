package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setBaseEnv sets the minimum environment for a memory-backed gateway.
func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DOC_STORE", "memory")
	t.Setenv("BLOB_STORE", "memory")
	t.Setenv("MAILER", "noop")
	t.Setenv("EVENT_NAME", "Angel & Sharan's Roka Celebration")
}

func TestFromEnv_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "Travel Details", cfg.SheetName)
	assert.Equal(t, "Album Uploads", cfg.AlbumSheetName)
	assert.Equal(t, "Event Photo Album", cfg.AlbumFolderName)
	assert.Equal(t, DefaultAllowedMIMETypes, cfg.AllowedMIMETypes)
	assert.Equal(t, int64(50*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, 10*time.Minute, cfg.AlbumCacheTTL)
	assert.Equal(t, "Angel & Sharan's Roka Celebration", cfg.Event.Name)
}

func TestFromEnv_SheetsRequiresSheetID(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DOC_STORE", "sheets")
	t.Setenv("SHEET_ID", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHEET_ID")

	t.Setenv("SHEET_ID", "sheet-123")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sheet-123", cfg.SheetID)
}

func TestFromEnv_GmailRequiresAdminEmail(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MAILER", "gmail")
	t.Setenv("ADMIN_EMAIL", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_EMAIL")
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port not a number", "APP_PORT", "abc"},
		{"port out of range", "APP_PORT", "70000"},
		{"unknown doc store", "DOC_STORE", "excel"},
		{"unknown blob store", "BLOB_STORE", "ftp"},
		{"unknown mailer", "MAILER", "pigeon"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"bad ttl", "ALBUM_CACHE_TTL", "ten minutes"},
		{"negative upload limit", "MAX_UPLOAD_BYTES", "-1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tc.key, tc.val)
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}

func TestFromEnv_MissingEventName(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("EVENT_NAME", "  ")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EVENT_NAME")
}

func TestFromEnv_AllowedMIMETypesList(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ALLOWED_MIME_TYPES", " image/JPEG, ,video/mp4 ")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"image/jpeg", "video/mp4"}, cfg.AllowedMIMETypes)
}

func TestFromEnv_S3Settings(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BLOB_STORE", "s3")
	t.Setenv("S3_BUCKET", "album")
	t.Setenv("S3_ENDPOINT", "http://127.0.0.1:9000")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "album", cfg.S3Bucket)
	assert.Equal(t, "us-east-1", cfg.S3Region)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.S3Endpoint)
}

func TestSetupLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(&Config{LogLevel: slog.LevelDebug, LogFormat: "text"}, &buf)
	logger.Debug("hello", "k", "v")
	assert.True(t, strings.Contains(buf.String(), "msg=hello"), buf.String())

	buf.Reset()
	logger = setupLogger(&Config{LogLevel: slog.LevelInfo, LogFormat: "json"}, &buf)
	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
