package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Teddy-225/Event-Travel/transport"
)

// Album is the shared folder uploads land in.
type Album struct {
	ID   string `json:"folderId"`
	URL  string `json:"folderUrl"`
	Name string `json:"folderName"`
}

type AlbumResolver interface {
	ResolveAlbum(ctx context.Context) (Album, error)
}

// AlbumCell memoizes the first successful album lookup. Failures are not
// remembered, so the next Get asks again.
type AlbumCell struct {
	resolver AlbumResolver

	mu    sync.Mutex
	album *Album
}

func NewAlbumCell(r AlbumResolver) *AlbumCell {
	return &AlbumCell{resolver: r}
}

func (c *AlbumCell) Get(ctx context.Context) (Album, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.album != nil {
		return *c.album, nil
	}
	a, err := c.resolver.ResolveAlbum(ctx)
	if err != nil {
		return Album{}, err
	}
	if a.ID == "" {
		return Album{}, errors.New("album lookup returned no folder id")
	}
	c.album = &a
	return a, nil
}

// Cached returns the memoized album, if any.
func (c *AlbumCell) Cached() (Album, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.album == nil {
		return Album{}, false
	}
	return *c.album, true
}

// GatewayAlbumResolver asks the gateway's getOrCreateAlbum action.
type GatewayAlbumResolver struct {
	Transport transport.Transport
}

func (r GatewayAlbumResolver) ResolveAlbum(ctx context.Context) (Album, error) {
	res, err := r.Transport.Send(ctx, transport.Request{Action: "getOrCreateAlbum"})
	if err != nil {
		return Album{}, fmt.Errorf("resolve album: %w", err)
	}
	if !res.Readable {
		return Album{}, errors.New("resolve album: reply was not readable")
	}
	if !res.Reply.Success {
		msg := res.Reply.Error
		if msg == "" {
			msg = res.Reply.Message
		}
		return Album{}, fmt.Errorf("resolve album: %s", msg)
	}

	var a Album
	if err := json.Unmarshal(res.Reply.Data, &a); err != nil {
		return Album{}, fmt.Errorf("decode album: %w", err)
	}
	return a, nil
}
