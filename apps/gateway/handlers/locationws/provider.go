package locationws

import (
	"context"
	"errors"
	"sync"

	"kampalabites/internal/geolocate"

	"github.com/google/uuid"
)

type locateRequestFrame struct {
	Type         string `json:"type"`
	ID           string `json:"id"`
	HighAccuracy bool   `json:"highAccuracy"`
	TimeoutMs    int64  `json:"timeoutMs"`
	MaximumAge   int64  `json:"maximumAge"`
}

type positionReply struct {
	pos geolocate.Position
	err error
}

// wsProvider implements the device-position port by round-tripping a locate
// command to the storefront over the websocket and waiting for the reply.
type wsProvider struct {
	mu      sync.Mutex
	pending map[string]chan positionReply
	send    func(v any)
}

func newProvider() *wsProvider {
	return &wsProvider{pending: make(map[string]chan positionReply)}
}

func (p *wsProvider) Current(ctx context.Context, opts geolocate.Options) (geolocate.Position, error) {
	id := uuid.NewString()
	ch := make(chan positionReply, 1)

	p.mu.Lock()
	p.pending[id] = ch
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.pending, id)
		p.mu.Unlock()
	}()

	p.send(locateRequestFrame{
		Type:         "locate_request",
		ID:           id,
		HighAccuracy: opts.HighAccuracy,
		TimeoutMs:    opts.Timeout.Milliseconds(),
		MaximumAge:   0,
	})

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return geolocate.Position{}, geolocate.ErrTimeout
		}
		return geolocate.Position{}, ctx.Err()
	case reply := <-ch:
		return reply.pos, reply.err
	}
}

func (p *wsProvider) resolvePosition(id string, pos geolocate.Position) {
	p.deliver(id, positionReply{pos: pos})
}

func (p *wsProvider) resolveError(id, code string) {
	var err error
	switch geolocate.Category(code) {
	case geolocate.PermissionDenied:
		err = geolocate.ErrPermissionDenied
	case geolocate.PositionUnavailable:
		err = geolocate.ErrPositionUnavailable
	case geolocate.Timeout:
		err = geolocate.ErrTimeout
	default:
		err = errors.New("geolocation failed: " + code)
	}
	p.deliver(id, positionReply{err: err})
}

func (p *wsProvider) deliver(id string, reply positionReply) {
	p.mu.Lock()
	ch, ok := p.pending[id]
	p.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- reply:
	default:
	}
}
