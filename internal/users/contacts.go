package users

import (
	"log/slog"
	"sync"

	"letstalk/internal/models"
)

// ContactSaver runs the save-new-contact flow: send the request, expose
// the server's {responseStatus, message} verdict as readable state.
// Each Save clears the previous verdict first so consumers never act on
// a stale one.
type ContactSaver struct {
	conn transport

	mu     sync.RWMutex
	result *models.ContactResponse

	subID int
}

// OpenContactSaver subscribes to contact responses.
func OpenContactSaver(conn transport) *ContactSaver {
	s := &ContactSaver{conn: conn}
	s.subID = conn.Bus().Subscribe(models.KindNewContactResponse, s.onResponse)
	return s
}

// Save submits a new contact. A no-op while disconnected.
func (s *ContactSaver) Save(user models.UserDTO) {
	if !s.conn.IsConnected() {
		return
	}

	s.mu.Lock()
	s.result = nil
	s.mu.Unlock()

	env := models.NewEnvelope(models.KindSaveNewContact)
	env.User = &user
	if err := s.conn.Send(env); err != nil {
		slog.Warn("save contact failed", "err", err)
	}
}

func (s *ContactSaver) onResponse(frame models.Frame) {
	var resp models.ContactResponse
	if err := frame.Decode(&resp); err != nil {
		slog.Warn("bad new_contact_response_text payload", "err", err)
		return
	}
	s.mu.Lock()
	s.result = &resp
	s.mu.Unlock()
}

// Result returns the verdict of the last Save, or nil while pending.
func (s *ContactSaver) Result() *models.ContactResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil
	}
	cp := *s.result
	return &cp
}

// Close detaches the correlator from the bus.
func (s *ContactSaver) Close() {
	s.conn.Bus().Unsubscribe(s.subID)
}
