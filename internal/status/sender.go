package status

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"letstalk/internal/models"
	"letstalk/internal/ws"
)

// DefaultConfirmTimeout bounds the wait for status_created after a
// send_status.
const DefaultConfirmTimeout = 10 * time.Second

// DefaultBgColor backs TEXT statuses posted without an explicit color.
const DefaultBgColor = "#3b82f6"

type statusUploader interface {
	UploadStatusFile(ctx context.Context, statusID int, kind models.MessageType, att models.Attachment) error
}

// PostOptions describes one outgoing status story.
type PostOptions struct {
	Message string
	// Type defaults to TEXT. Statuses carry no VOICE variant.
	Type       models.MessageType
	BgColor    string
	Attachment *models.Attachment
}

// Sender posts status stories. TEXT-only posts are fire-and-forget;
// attachment posts wait for the status_created confirmation and upload
// the file keyed by the returned status id, under a timeout.
type Sender struct {
	conn     transport
	uploader statusUploader
	timeout  time.Duration
	confirms *ws.ConfirmQueue
}

func NewSender(conn transport, uploader statusUploader, timeout time.Duration) *Sender {
	if timeout <= 0 {
		timeout = DefaultConfirmTimeout
	}
	return &Sender{
		conn:     conn,
		uploader: uploader,
		timeout:  timeout,
		confirms: ws.NewConfirmQueue(conn.Bus(), models.KindStatusCreated),
	}
}

// Post performs one status send. Error classification matches the chat
// sender: models.ErrConfirmTimeout vs *models.UploadError.
func (s *Sender) Post(ctx context.Context, opts PostOptions) error {
	if opts.Type == "" {
		opts.Type = models.MessageTypeText
	}

	env := models.NewEnvelope(models.KindSendStatus)
	env.Message = opts.Message
	env.MessageType = opts.Type
	env.BgColor = opts.BgColor

	if opts.Attachment == nil {
		if env.BgColor == "" {
			env.BgColor = DefaultBgColor
		}
		return s.conn.Send(env)
	}

	confCh, cancel := s.confirms.Wait()
	defer cancel()

	if err := s.conn.Send(env); err != nil {
		return err
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case frame := <-confCh:
		var created models.StatusCreated
		if err := frame.Decode(&created); err != nil {
			return fmt.Errorf("status_created: %w", err)
		}
		slog.Debug("status created", "statusId", created.StatusID)
		return s.uploader.UploadStatusFile(ctx, created.StatusID, opts.Type, *opts.Attachment)
	case <-timer.C:
		return models.ErrConfirmTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
