package status

import (
	"log/slog"
	"strings"
	"sync"

	"letstalk/internal/models"
	"letstalk/internal/ws"
)

type transport interface {
	Send(env models.Envelope) error
	Bus() *ws.Bus
	IsConnected() bool
}

// List is the status-tab correlator: it keeps the normalized store fed
// from the stream and exposes the derived views plus the status-side
// operations (like, comment, mark viewed).
//
// Domain rejections arrive as error frames and are exposed as a
// readable error string rather than thrown; a refetch clears it.
type List struct {
	conn  transport
	store *Store

	mu      sync.RWMutex
	loading bool
	errMsg  string

	subs []int
}

// Open subscribes the correlator and requests both collections.
func Open(conn transport) *List {
	l := &List{
		conn:  conn,
		store: NewStore(),
	}

	bus := conn.Bus()
	l.subs = []int{
		bus.Subscribe(models.KindMyStatuses, l.onMyStatuses),
		bus.Subscribe(models.KindContactStatuses, l.onContactStatuses),
		bus.Subscribe(models.KindStatusCreated, l.onStatusCreated),
		bus.Subscribe(models.KindCommentAdded, l.onCommentAdded),
		bus.Subscribe(models.KindStatusLikeToggled, l.onLikeToggled),
		bus.Subscribe(models.KindError, l.onError),
	}

	l.Refresh()
	return l
}

// Refresh refetches both collections. A no-op while disconnected.
func (l *List) Refresh() {
	l.FetchMine()
	l.FetchContacts()
}

// FetchMine requests the caller's own statuses.
func (l *List) FetchMine() {
	l.fetch(models.KindGetMyStatuses)
}

// FetchContacts requests the contacts' statuses.
func (l *List) FetchContacts() {
	l.fetch(models.KindGetContactStatuses)
}

func (l *List) fetch(kind models.Kind) {
	if !l.conn.IsConnected() {
		return
	}
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()
	if err := l.conn.Send(models.NewEnvelope(kind)); err != nil {
		slog.Warn("status fetch failed", "kind", kind, "err", err)
	}
}

func (l *List) onMyStatuses(frame models.Frame) {
	var dtos []models.StatusDTO
	if err := frame.Decode(&dtos); err != nil {
		slog.Warn("bad my_statuses payload", "err", err)
		l.setError("failed to parse status data")
		return
	}
	l.store.ReplaceMine(dtos)
	l.setLoaded()
}

func (l *List) onContactStatuses(frame models.Frame) {
	var payloads []models.ContactStatusPayload
	if err := frame.Decode(&payloads); err != nil {
		slog.Warn("bad contact_statuses payload", "err", err)
		l.setError("failed to parse status data")
		return
	}
	l.store.ReplaceContacts(payloads)
	l.setLoaded()
}

// onStatusCreated refetches both collections: a creation push means the
// flat payloads changed shape server-side and the incremental events
// carry too little to build the new story locally.
func (l *List) onStatusCreated(models.Frame) {
	l.Refresh()
}

func (l *List) onCommentAdded(frame models.Frame) {
	var ev models.CommentAdded
	if err := frame.Decode(&ev); err != nil {
		slog.Warn("bad comment_added payload", "err", err)
		return
	}
	if ev.StatusID == 0 || ev.Comment == "" {
		return
	}
	l.store.AddComment(ev)
}

func (l *List) onLikeToggled(frame models.Frame) {
	var ev models.StatusLikeToggled
	if err := frame.Decode(&ev); err != nil {
		slog.Warn("bad status_like_toggled payload", "err", err)
		return
	}
	if ev.StatusID == 0 {
		return
	}
	l.store.ToggleLike(ev)
}

func (l *List) onError(frame models.Frame) {
	var ef models.ErrorFrame
	if err := frame.Decode(&ef); err != nil || ef.Message == "" {
		l.setError("an error occurred")
		return
	}
	l.setError(ef.Message)
}

func (l *List) setError(msg string) {
	l.mu.Lock()
	l.errMsg = msg
	l.loading = false
	l.mu.Unlock()
}

func (l *List) setLoaded() {
	l.mu.Lock()
	l.errMsg = ""
	l.loading = false
	l.mu.Unlock()
}

// ToggleLike asks the server to toggle a like on the story.
func (l *List) ToggleLike(statusID int) {
	if !l.conn.IsConnected() {
		return
	}
	env := models.NewEnvelope(models.KindToggleStatusLike)
	env.StatusID = statusID
	if err := l.conn.Send(env); err != nil {
		slog.Warn("toggle like failed", "err", err)
	}
}

// AddComment sends a comment on the story. Blank comments are dropped.
func (l *List) AddComment(statusID int, comment string) {
	comment = strings.TrimSpace(comment)
	if comment == "" || !l.conn.IsConnected() {
		return
	}
	env := models.NewEnvelope(models.KindAddStatusComment)
	env.StatusID = statusID
	env.Comment = comment
	if err := l.conn.Send(env); err != nil {
		slog.Warn("add comment failed", "err", err)
	}
}

// MarkViewed tells the server the story was viewed and applies the
// optimistic local update so the UI does not wait for the next bulk
// load.
func (l *List) MarkViewed(statusID int) {
	if !l.conn.IsConnected() {
		return
	}
	env := models.NewEnvelope(models.KindMarkStatusViewed)
	env.StatusID = statusID
	if err := l.conn.Send(env); err != nil {
		slog.Warn("mark viewed failed", "err", err)
		return
	}
	l.store.MarkViewed(statusID)
}

// Mine returns the own-statuses view.
func (l *List) Mine() []models.StatusItem { return l.store.Mine() }

// Contacts returns the contact-statuses view.
func (l *List) Contacts() []models.StatusItem { return l.store.Contacts() }

// All returns contact statuses sorted newest first.
func (l *List) All() []models.StatusItem { return l.store.All() }

// Loading reports whether a bulk fetch is outstanding.
func (l *List) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// Err returns the current domain-rejection message, empty when none.
func (l *List) Err() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.errMsg
}

// Close detaches the correlator from the bus.
func (l *List) Close() {
	for _, id := range l.subs {
		l.conn.Bus().Unsubscribe(id)
	}
}
