package chats

import (
	"log/slog"
	"sync"

	"github.com/c-pro/geche"

	"letstalk/internal/content"
	"letstalk/internal/models"
)

// Conversation is the single-chat correlator for one open conversation.
// It bulk-loads the history, appends new_message pushes that belong to
// this conversation, and patches message status updates in place.
//
// The bus carries pushes for every conversation; anything whose sender
// and receiver both differ from the open friend is suppressed so a
// message for another chat never leaks into this one. Repeated delivery
// of the same message id is dropped.
type Conversation struct {
	conn     transport
	friendID int

	mu       sync.RWMutex
	messages []models.ChatMessage
	friend   *models.UserDTO

	// ids already present in messages
	seen geche.Geche[int, struct{}]

	subs []int
}

// OpenConversation loads the conversation with the given friend and
// starts tracking its pushes.
func OpenConversation(conn transport, friendID int) *Conversation {
	c := &Conversation{
		conn:     conn,
		friendID: friendID,
		seen:     geche.NewMapCache[int, struct{}](),
	}

	bus := conn.Bus()
	c.subs = []int{
		bus.Subscribe(models.KindSingleChat, c.onBulkLoad),
		bus.Subscribe(models.KindFriendData, c.onFriendData),
		bus.Subscribe(models.KindNewMessage, c.onNewMessage),
		bus.Subscribe(models.KindMessageStatus, c.onStatusUpdate),
	}

	c.Refresh()
	return c
}

// Refresh reissues the bulk-load and friend-data requests. A no-op
// while disconnected; reopening after a reconnect re-fetches.
func (c *Conversation) Refresh() {
	if !c.conn.IsConnected() {
		return
	}
	for _, kind := range []models.Kind{models.KindGetSingleChat, models.KindGetFriendData} {
		env := models.NewEnvelope(kind)
		env.FriendID = c.friendID
		if err := c.conn.Send(env); err != nil {
			slog.Warn("conversation request failed", "kind", kind, "err", err)
		}
	}
}

func (c *Conversation) onBulkLoad(frame models.Frame) {
	var msgs []models.ChatMessage
	if err := frame.Decode(&msgs); err != nil {
		slog.Warn("bad single_chat payload", "err", err)
		return
	}
	for i := range msgs {
		msgs[i].Message = content.Sanitize(msgs[i].Message)
	}

	c.mu.Lock()
	c.messages = msgs
	c.seen = geche.NewMapCache[int, struct{}]()
	for _, m := range msgs {
		c.seen.Set(m.ID, struct{}{})
	}
	c.mu.Unlock()
}

func (c *Conversation) onFriendData(frame models.Frame) {
	var friend models.UserDTO
	if err := frame.Decode(&friend); err != nil {
		slog.Warn("bad friend_data payload", "err", err)
		return
	}
	c.mu.Lock()
	c.friend = &friend
	c.mu.Unlock()
}

func (c *Conversation) onNewMessage(frame models.Frame) {
	var msg models.ChatMessage
	if err := frame.Decode(&msg); err != nil {
		slog.Warn("bad new_message payload", "err", err)
		return
	}
	if !msg.InConversation(c.friendID) {
		return
	}
	msg.Message = content.Sanitize(msg.Message)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.seen.Get(msg.ID); err == nil {
		return
	}
	c.seen.Set(msg.ID, struct{}{})
	c.messages = append(c.messages, msg)
}

// onStatusUpdate patches the status field of one message in place. The
// frame carries chatId/status at the root, where chatId is the id of
// the message being updated.
func (c *Conversation) onStatusUpdate(frame models.Frame) {
	var upd models.MessageStatusUpdate
	if err := frame.Decode(&upd); err != nil {
		slog.Warn("bad message_status_update payload", "err", err)
		return
	}
	if upd.ChatID == 0 || upd.Status == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.messages {
		if c.messages[i].ID == upd.ChatID {
			c.messages[i].MessageStatus = upd.Status
		}
	}
}

// Messages returns the conversation in arrival order.
func (c *Conversation) Messages() []models.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Friend returns the loaded friend record, or nil before friend_data
// arrived.
func (c *Conversation) Friend() *models.UserDTO {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.friend == nil {
		return nil
	}
	f := *c.friend
	return &f
}

// Close detaches the correlator from the bus.
func (c *Conversation) Close() {
	for _, id := range c.subs {
		c.conn.Bus().Unsubscribe(id)
	}
}
