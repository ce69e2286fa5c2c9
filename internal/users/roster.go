// Package users holds the roster, profile and new-contact correlators.
package users

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/c-pro/geche"

	"letstalk/internal/models"
	"letstalk/internal/ws"
)

type transport interface {
	Send(env models.Envelope) error
	Bus() *ws.Bus
	IsConnected() bool
}

// friendCacheTTL bounds how long an individually fetched friend record
// is served without a round trip.
const friendCacheTTL = 5 * time.Minute

// Roster is the contact-list correlator: the full user list, replaced
// wholesale on all_users responses, plus a TTL lookaside of
// individually fetched friend records.
type Roster struct {
	conn transport

	mu    sync.RWMutex
	users []models.UserDTO

	friends geche.Geche[int, models.UserDTO]

	subs []int
}

// OpenRoster subscribes the roster and requests the user list.
func OpenRoster(ctx context.Context, conn transport) *Roster {
	r := &Roster{
		conn:    conn,
		friends: geche.NewMapTTLCache[int, models.UserDTO](ctx, friendCacheTTL, time.Minute),
	}

	bus := conn.Bus()
	r.subs = []int{
		bus.Subscribe(models.KindAllUsers, r.onAllUsers),
		bus.Subscribe(models.KindFriendData, r.onFriendData),
	}

	r.Refresh()
	return r
}

// Refresh reissues the user-list request. A no-op while disconnected.
func (r *Roster) Refresh() {
	if !r.conn.IsConnected() {
		return
	}
	if err := r.conn.Send(models.NewEnvelope(models.KindGetAllUsers)); err != nil {
		slog.Warn("all users request failed", "err", err)
	}
}

func (r *Roster) onAllUsers(frame models.Frame) {
	var users []models.UserDTO
	if err := frame.Decode(&users); err != nil {
		slog.Warn("bad all_users payload", "err", err)
		return
	}
	r.mu.Lock()
	r.users = users
	r.mu.Unlock()

	for _, u := range users {
		r.friends.Set(u.ID, u)
	}
}

func (r *Roster) onFriendData(frame models.Frame) {
	var friend models.UserDTO
	if err := frame.Decode(&friend); err != nil {
		slog.Warn("bad friend_data payload", "err", err)
		return
	}
	r.friends.Set(friend.ID, friend)
}

// Users returns the current user list.
func (r *Roster) Users() []models.UserDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.UserDTO, len(r.users))
	copy(out, r.users)
	return out
}

// Friend returns the cached record for the given user, if fresh.
func (r *Roster) Friend(id int) (models.UserDTO, bool) {
	u, err := r.friends.Get(id)
	return u, err == nil
}

// RequestFriend asks the server for one friend record; the reply lands
// in the cache via the friend_data subscription.
func (r *Roster) RequestFriend(id int) {
	if !r.conn.IsConnected() {
		return
	}
	env := models.NewEnvelope(models.KindGetFriendData)
	env.FriendID = id
	if err := r.conn.Send(env); err != nil {
		slog.Warn("friend data request failed", "err", err)
	}
}

// Close detaches the correlator from the bus.
func (r *Roster) Close() {
	for _, id := range r.subs {
		r.conn.Bus().Unsubscribe(id)
	}
}
