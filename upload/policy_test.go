package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyCheck(t *testing.T) {
	tests := []struct {
		name     string
		file     File
		wantType string
		reject   string
	}{
		{"allowed type", File{Name: "a.jpg", Type: "image/jpeg", Size: 10}, "image/jpeg", ""},
		{"type with params", File{Name: "a.png", Type: "Image/PNG; charset=binary", Size: 10}, "image/png", ""},
		{"blank heic", File{Name: "IMG_1.heic", Size: 10}, "image/heic", ""},
		{"octet-stream mp4", File{Name: "clip.MP4", Type: "application/octet-stream", Size: 10}, "video/mp4", ""},
		{"blank mov outside allow-list", File{Name: "clip.mov", Size: 10}, "", "not supported"},
		{"unknown type and extension", File{Name: "notes.txt", Type: "text/plain", Size: 10}, "", "not supported"},
		{"blank type unknown extension", File{Name: "archive.zip", Size: 10}, "", "not supported"},
		{"too large", File{Name: "a.jpg", Type: "image/jpeg", Size: 2048}, "", "too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := testPolicy.Check(tt.file)
			if tt.reject == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantType, got)
				return
			}
			var rej *RejectedError
			require.ErrorAs(t, err, &rej)
			assert.Equal(t, tt.file.Name, rej.FileName)
			assert.Contains(t, rej.Reason, tt.reject)
		})
	}
}

func TestPolicyWithoutLimit(t *testing.T) {
	p := Policy{AllowedTypes: []string{"video/mp4"}}
	_, err := p.Check(File{Name: "long.mp4", Type: "video/mp4", Size: 1 << 40})
	assert.NoError(t, err)
}

func TestPolicyExtensionFallbackHonoursAllowList(t *testing.T) {
	p := Policy{AllowedTypes: []string{"video/mp4"}}

	_, err := p.Check(File{Name: "IMG_0042.heic", Size: 10})
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Contains(t, rej.Reason, "not supported")

	got, err := p.Check(File{Name: "dance.mp4", Type: "application/octet-stream", Size: 10})
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", got)
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "50 MB", humanSize(50*1024*1024))
	assert.Equal(t, "1024 bytes", humanSize(1024))
}
