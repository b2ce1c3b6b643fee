package blobstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// fakeDrive answers the few Drive v3 calls DriveStore makes.
type fakeDrive struct {
	mu          sync.Mutex
	shared      map[string]drive.Permission
	failSharing bool
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/permissions"):
		if f.failSharing {
			http.Error(w, `{"error":{"code":403,"message":"sharing disabled"}}`, http.StatusForbidden)
			return
		}
		var p drive.Permission
		_ = json.NewDecoder(r.Body).Decode(&p)
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/drive/v3/files/"), "/permissions")
		f.mu.Lock()
		f.shared[id] = p
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "anyoneWithLink", "type": p.Type, "role": p.Role})

	case r.Method == http.MethodGet && strings.HasSuffix(path, "/files"):
		// An album folder created by hand, never shared.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"files": []map[string]string{{"id": "folder-old", "name": "Event Photo Album"}},
		})

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/files") && r.URL.Query().Get("uploadType") != "":
		_, _ = io.Copy(io.Discard, r.Body)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":          "file-1",
			"name":        "sunset.jpg",
			"mimeType":    "image/jpeg",
			"webViewLink": "https://drive.google.com/file/d/file-1/view",
			"size":        "3",
		})

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/files"):
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "folder-new", "name": "Event Photo Album"})

	default:
		http.NotFound(w, r)
	}
}

func newFakeDriveStore(t *testing.T, fake *fakeDrive) *DriveStore {
	t.Helper()
	fake.shared = make(map[string]drive.Permission)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewDriveStore(context.Background(),
		option.WithEndpoint(srv.URL+"/drive/v3/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return s
}

func TestDriveStorePutSharesFileInUnsharedFolder(t *testing.T) {
	fake := &fakeDrive{}
	s := newFakeDriveStore(t, fake)
	ctx := context.Background()

	folder, err := s.FindFolder(ctx, "Event Photo Album")
	require.NoError(t, err)
	assert.Equal(t, "folder-old", folder.ID)
	assert.Equal(t, "https://drive.google.com/drive/folders/folder-old", folder.URL)

	obj, err := s.Put(ctx, folder.ID, Object{Name: "sunset.jpg", MIMEType: "image/jpeg", Data: []byte("jpg")})
	require.NoError(t, err)
	assert.Equal(t, "file-1", obj.ID)
	assert.Equal(t, "https://drive.google.com/file/d/file-1/view", obj.URL)
	assert.Equal(t, int64(3), obj.Size)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Contains(t, fake.shared, "file-1")
	assert.Equal(t, "anyone", fake.shared["file-1"].Type)
	assert.Equal(t, "reader", fake.shared["file-1"].Role)
	assert.NotContains(t, fake.shared, "folder-old")
}

func TestDriveStoreCreateFolderIsShared(t *testing.T) {
	fake := &fakeDrive{}
	s := newFakeDriveStore(t, fake)

	folder, err := s.CreateFolder(context.Background(), "Event Photo Album")
	require.NoError(t, err)
	assert.Equal(t, "folder-new", folder.ID)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, "anyone", fake.shared["folder-new"].Type)
}

func TestDriveStorePutFailsWhenSharingFails(t *testing.T) {
	fake := &fakeDrive{failSharing: true}
	s := newFakeDriveStore(t, fake)

	_, err := s.Put(context.Background(), "folder-old", Object{Name: "sunset.jpg", MIMEType: "image/jpeg", Data: []byte("jpg")})
	assert.ErrorContains(t, err, `share "sunset.jpg"`)
}
