package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"letstalk/internal/models"
)

type socket interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Conn owns the single duplex socket for an authenticated session. It
// is the only writer to the socket; every inbound frame is decoded into
// the normalized shape and broadcast on the Bus. A closed Conn cannot
// be reused; callers dial a fresh one.
//
// There is no outbound queue and no automatic retry. A waiter that sent
// a request just before a disconnect times out instead of succeeding
// silently; every feature-level fetch is idempotent and can simply be
// reissued on a fresh connection.
type Conn struct {
	ws  socket
	bus *Bus

	writeMu   sync.Mutex
	connected atomic.Bool
	closeOnce sync.Once
}

// Dial connects to the chat endpoint for the given user. The endpoint
// is derived from the user id: <base>/<userID>.
func Dial(ctx context.Context, baseURL, userID string) (*Conn, error) {
	endpoint, err := url.JoinPath(baseURL, userID)
	if err != nil {
		return nil, fmt.Errorf("derive endpoint: %w", err)
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	return NewConn(ws), nil
}

// NewConn wraps an established socket. Run must be called to start
// frame delivery.
func NewConn(ws socket) *Conn {
	c := &Conn{
		ws:  ws,
		bus: NewBus(),
	}
	c.connected.Store(true)
	return c
}

// Bus returns the inbound frame broadcast point.
func (c *Conn) Bus() *Bus {
	return c.bus
}

// IsConnected reports whether the socket is still usable.
func (c *Conn) IsConnected() bool {
	return c.connected.Load()
}

// Send marshals the envelope and writes it as one complete text frame.
// Writes are serialized; concurrent senders never interleave on the
// wire.
func (c *Conn) Send(env models.Envelope) error {
	if !c.connected.Load() {
		return models.ErrNotConnected
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", env.Type, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("send %s: %w", env.Type, err)
	}
	return nil
}

// Run pumps inbound frames onto the bus until the socket fails, Close
// is called, or ctx is canceled. It always leaves the Conn closed.
func (c *Conn) Run(ctx context.Context) error {
	readErr := make(chan error, 1)
	go func() {
		readErr <- c.pumpFrames()
	}()

	select {
	case <-ctx.Done():
		c.Close()
		// Closing the socket unblocks the pump.
		<-readErr
		return nil
	case err := <-readErr:
		wasOpen := c.connected.Load()
		c.Close()
		if !wasOpen || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			return nil
		}
		return err
	}
}

func (c *Conn) pumpFrames() error {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return err
		}

		frame, err := models.DecodeFrame(data)
		if err != nil {
			// Malformed frames are logged and dropped; they never halt
			// the stream.
			slog.Warn("dropping malformed frame", "err", err)
			continue
		}
		c.bus.Publish(frame)
	}
}

// Close tears the connection down. Idempotent and terminal.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.connected.Store(false)
		err = c.ws.Close()
	})
	return err
}
