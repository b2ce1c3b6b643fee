package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCORSTransport_ReadsEnvelope(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Travel details added successfully", "data": map[string]string{"guestname": "Asha"}})
	}))
	defer srv.Close()

	tr, err := NewCORSTransport(srv.URL, srv.Client())
	require.NoError(t, err)

	res, err := tr.Send(context.Background(), Request{Action: "addTravelDetails", Fields: map[string]any{"data": map[string]string{"guestName": "Asha"}}})
	require.NoError(t, err)
	assert.True(t, res.Readable)
	assert.True(t, res.OK())
	assert.Equal(t, "Travel details added successfully", res.Reply.Message)
	assert.JSONEq(t, `{"guestname":"Asha"}`, string(res.Reply.Data))
	assert.Equal(t, "addTravelDetails", got["action"])
}

func TestCORSTransport_DeclinedReplyIsNotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "No guest email provided"})
	}))
	defer srv.Close()

	tr, err := NewCORSTransport(srv.URL, srv.Client())
	require.NoError(t, err)
	res, err := tr.Send(context.Background(), Request{Action: "sendGuestAcknowledgment"})
	require.NoError(t, err)
	assert.False(t, res.OK())
}

func TestCORSTransport_HTTPErrorIsApplicationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "not allowed"})
	}))
	defer srv.Close()

	tr, err := NewCORSTransport(srv.URL, srv.Client())
	require.NoError(t, err)
	_, err = tr.Send(context.Background(), Request{Action: "addTravelDetails"})

	var appErr *ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusForbidden, appErr.Status)
	assert.Equal(t, "not allowed", appErr.Message)
}

func TestCORSTransport_NetworkErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	tr, err := NewCORSTransport(url, nil)
	require.NoError(t, err)
	_, err = tr.Send(context.Background(), Request{Action: "addTravelDetails"})

	var terr *TransportError
	assert.ErrorAs(t, err, &terr)
}

func TestOpaqueTransport_NeverReadable(t *testing.T) {
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "boom"})
	}))
	defer srv.Close()

	tr, err := NewOpaqueTransport(srv.URL, srv.Client())
	require.NoError(t, err)
	res, err := tr.Send(context.Background(), Request{Action: "addTravelDetails"})
	require.NoError(t, err)
	assert.False(t, res.Readable)
	assert.True(t, res.OK())
	assert.Equal(t, "text/plain;charset=UTF-8", contentType)
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New("  ", nil, nil)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

type stubTransport struct {
	calls atomic.Int32
	res   Result
	err   error
}

func (s *stubTransport) Send(context.Context, Request) (Result, error) {
	s.calls.Add(1)
	return s.res, s.err
}

func TestFallbackTransport(t *testing.T) {
	tests := []struct {
		name          string
		primaryErr    error
		wantFallback  int32
		wantReadable  bool
		wantErrTarget any
	}{
		{"primary ok", nil, 0, true, nil},
		{"network failure falls back", &TransportError{Op: "x", Err: errors.New("connection refused")}, 1, false, nil},
		{"application error is final", &ApplicationError{Status: 404, Message: "nope"}, 0, false, new(*ApplicationError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &stubTransport{res: Result{Readable: tt.primaryErr == nil, Reply: Reply{Success: true}}, err: tt.primaryErr}
			fallback := &stubTransport{res: Result{Readable: false}}
			tr := &FallbackTransport{Primary: primary, Fallback: fallback}

			res, err := tr.Send(context.Background(), Request{Action: "addTravelDetails"})
			assert.EqualValues(t, 1, primary.calls.Load())
			assert.Equal(t, tt.wantFallback, fallback.calls.Load())
			if tt.wantErrTarget != nil {
				assert.ErrorAs(t, err, tt.wantErrTarget)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantReadable, res.Readable)
			assert.True(t, res.OK())
		})
	}
}

func TestHealthAndTravelData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		if r.URL.Query().Get("action") == "getTravelData" {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []map[string]string{{"guestname": "Asha"}}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Event gateway is working!", "event": map[string]string{"name": "Roka"}})
	}))
	defer srv.Close()

	h, err := Health(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "success", h.Status)
	require.NotNil(t, h.Event)
	assert.Equal(t, "Roka", h.Event.Name)

	records, err := TravelData(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []map[string]string{{"guestname": "Asha"}}, records)
}

func TestTravelDataLargerThanReplyCap(t *testing.T) {
	const guests = 5000
	rows := make([]map[string]string, guests)
	for i := range rows {
		rows[i] = map[string]string{
			"guestname": fmt.Sprintf("Guest %d", i),
			"notes":     strings.Repeat("vegetarian, needs airport pickup. ", 8),
		}
	}
	body, err := json.Marshal(map[string]any{"success": true, "data": rows})
	require.NoError(t, err)
	require.Greater(t, len(body), maxReplyBytes)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	records, err := TravelData(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	require.Len(t, records, guests)
	assert.Equal(t, "Guest 4999", records[guests-1]["guestname"])
}

func TestTravelDataErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "no such deployment"})
	}))
	defer srv.Close()

	_, err := TravelData(context.Background(), srv.Client(), srv.URL)
	var appErr *ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "no such deployment", appErr.Message)
}

func TestMultipartTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "uploadFile", r.FormValue("action"))
		assert.Equal(t, "folder-1", r.FormValue("folderId"))
		if r.FormValue("fileName") == "bad.jpg" {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "storage quota exceeded"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"fileName": r.FormValue("fileName"), "url": "https://drive.example/f/1"},
		})
	}))
	defer srv.Close()

	tr, err := NewMultipartTransport(srv.URL, srv.Client())
	require.NoError(t, err)

	res := tr.Upload(context.Background(), FileUpload{FileName: "cake.jpg", Base64: "aGk=", FolderID: "folder-1"})
	assert.Equal(t, UploadResult{Success: true, URL: "https://drive.example/f/1", FileName: "cake.jpg"}, res)

	res = tr.Upload(context.Background(), FileUpload{FileName: "bad.jpg", Base64: "aGk=", FolderID: "folder-1"})
	assert.False(t, res.Success)
	assert.Equal(t, "bad.jpg", res.FileName)
	assert.Equal(t, "storage quota exceeded", res.Error)
}

func TestFormPostTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		switch r.PostFormValue("fileName") {
		case "slow.mp4":
			<-r.Context().Done()
		case "rejected.jpg":
			w.WriteHeader(http.StatusBadGateway)
		default:
			assert.Equal(t, "a+b/c=", r.PostFormValue("fileData"))
			_, _ = io.WriteString(w, "<html>ok</html>")
		}
	}))
	defer srv.Close()

	tr, err := NewFormPostTransport(srv.URL, srv.Client(), 100*time.Millisecond)
	require.NoError(t, err)

	res := tr.Upload(context.Background(), FileUpload{FileName: "cake.jpg", Base64: "a+b/c="})
	assert.Equal(t, UploadResult{Success: true, FileName: "cake.jpg"}, res)

	res = tr.Upload(context.Background(), FileUpload{FileName: "rejected.jpg"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "502")

	start := time.Now()
	res = tr.Upload(context.Background(), FileUpload{FileName: "slow.mp4"})
	assert.True(t, res.Success)
	assert.True(t, res.Assumed)
	assert.Less(t, time.Since(start), 2*time.Second)
}
