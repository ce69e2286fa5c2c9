package chats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"letstalk/internal/models"
	"letstalk/internal/ws"
)

// DefaultConfirmTimeout bounds the wait for the server's creation
// confirmation after a send.
const DefaultConfirmTimeout = 10 * time.Second

// chatUploader delivers the attachment once the server has assigned the
// message an id.
type chatUploader interface {
	UploadChatFile(ctx context.Context, chatID int, kind models.MessageType, att models.Attachment) error
}

// SendOptions describes one outgoing message.
type SendOptions struct {
	ToUserID int
	Message  string
	// Type defaults to TEXT. Attachment sends must set IMAGE, VIDEO or
	// VOICE (or leave it to the uploader to sniff from the file bytes).
	Type       models.MessageType
	Attachment *models.Attachment
}

// Sender sends chat messages. Text-only sends are fire-and-forget.
// Attachment sends wait for the message_created confirmation carrying
// the new message id, then upload the file keyed by that id, all under
// a timeout.
type Sender struct {
	conn     transport
	uploader chatUploader
	timeout  time.Duration
	confirms *ws.ConfirmQueue
}

// NewSender wires a sender over the connection. timeout <= 0 selects
// DefaultConfirmTimeout.
func NewSender(conn transport, uploader chatUploader, timeout time.Duration) *Sender {
	if timeout <= 0 {
		timeout = DefaultConfirmTimeout
	}
	return &Sender{
		conn:     conn,
		uploader: uploader,
		timeout:  timeout,
		confirms: ws.NewConfirmQueue(conn.Bus(), models.KindMessageCreated),
	}
}

// Send performs one send operation. For TEXT with no attachment it
// returns as soon as the envelope is written; no listener is registered.
// Otherwise it waits for message_created and uploads the attachment.
//
// Errors are classified: models.ErrConfirmTimeout when the server never
// confirmed, *models.UploadError when the upload was rejected.
func (s *Sender) Send(ctx context.Context, opts SendOptions) error {
	if opts.Type == "" {
		opts.Type = models.MessageTypeText
	}

	env := models.NewEnvelope(models.KindSendMessage)
	env.ToUserID = opts.ToUserID
	env.Message = opts.Message
	env.MessageType = opts.Type

	if opts.Attachment == nil {
		return s.conn.Send(env)
	}

	// Claim a confirmation slot before writing so the confirmation
	// cannot slip past between send and subscribe.
	confCh, cancel := s.confirms.Wait()
	defer cancel()

	if err := s.conn.Send(env); err != nil {
		return err
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case frame := <-confCh:
		var created models.MessageCreated
		if err := frame.Decode(&created); err != nil {
			return fmt.Errorf("message_created: %w", err)
		}
		slog.Debug("message created", "chatId", created.ChatID)
		return s.uploader.UploadChatFile(ctx, created.ChatID, opts.Type, *opts.Attachment)
	case <-timer.C:
		return models.ErrConfirmTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
