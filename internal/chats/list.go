// Package chats holds the chat-list and single-chat correlators and the
// message sender. Each correlator subscribes to the connection's frame
// bus on open, keeps its own state derived from the stream, and detaches
// cleanly on close.
package chats

import (
	"log/slog"
	"sync"

	"letstalk/internal/models"
	"letstalk/internal/ws"
)

// transport is the slice of the connection the correlators need.
type transport interface {
	Send(env models.Envelope) error
	Bus() *ws.Bus
	IsConnected() bool
}

// List materializes the chat list. The server always sends the full
// list; friend_list responses replace the previous state wholesale.
type List struct {
	conn transport

	mu    sync.RWMutex
	chats []models.ChatSummary

	subID int
}

// OpenChatList subscribes to friend_list frames and requests the list.
// With no live socket the request is skipped; the caller re-opens or
// calls Refresh once connected.
func OpenChatList(conn transport) *List {
	l := &List{conn: conn}
	l.subID = conn.Bus().Subscribe(models.KindFriendList, l.onFriendList)
	l.Refresh()
	return l
}

// Refresh reissues the chat-list request. A no-op while disconnected.
func (l *List) Refresh() {
	if !l.conn.IsConnected() {
		return
	}
	if err := l.conn.Send(models.NewEnvelope(models.KindGetChatList)); err != nil {
		slog.Warn("chat list request failed", "err", err)
	}
}

func (l *List) onFriendList(frame models.Frame) {
	var chats []models.ChatSummary
	if err := frame.Decode(&chats); err != nil {
		slog.Warn("bad friend_list payload", "err", err)
		return
	}
	l.mu.Lock()
	l.chats = chats
	l.mu.Unlock()
}

// Chats returns the current chat list.
func (l *List) Chats() []models.ChatSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.ChatSummary, len(l.chats))
	copy(out, l.chats)
	return out
}

// Close detaches the correlator from the bus.
func (l *List) Close() {
	l.conn.Bus().Unsubscribe(l.subID)
}
