package users

import (
	"log/slog"
	"sync"

	"letstalk/internal/models"
)

// Profile is the own-profile correlator. The backend quirk is kept
// as-is: the request kind is set_user_profile and the reply kind is
// user_profile.
type Profile struct {
	conn transport

	mu      sync.RWMutex
	profile *models.UserDTO

	subID int
}

// OpenProfile subscribes and requests the profile.
func OpenProfile(conn transport) *Profile {
	p := &Profile{conn: conn}
	p.subID = conn.Bus().Subscribe(models.KindUserProfile, p.onProfile)
	p.Refresh()
	return p
}

// Refresh reissues the profile request. A no-op while disconnected.
func (p *Profile) Refresh() {
	if !p.conn.IsConnected() {
		return
	}
	if err := p.conn.Send(models.NewEnvelope(models.KindSetUserProfile)); err != nil {
		slog.Warn("profile request failed", "err", err)
	}
}

func (p *Profile) onProfile(frame models.Frame) {
	var profile models.UserDTO
	if err := frame.Decode(&profile); err != nil {
		slog.Warn("bad user_profile payload", "err", err)
		return
	}
	p.mu.Lock()
	p.profile = &profile
	p.mu.Unlock()
}

// Current returns the loaded profile, or nil before the reply arrived.
func (p *Profile) Current() *models.UserDTO {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.profile == nil {
		return nil
	}
	cp := *p.profile
	return &cp
}

// Close detaches the correlator from the bus.
func (p *Profile) Close() {
	p.conn.Bus().Unsubscribe(p.subID)
}
