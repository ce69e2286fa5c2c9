package chats

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"letstalk/internal/models"
)

type fakeUploader struct {
	mu      sync.Mutex
	chatIDs []int
	kinds   []models.MessageType
	err     error
}

func (u *fakeUploader) UploadChatFile(_ context.Context, chatID int, kind models.MessageType, _ models.Attachment) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return u.err
	}
	u.chatIDs = append(u.chatIDs, chatID)
	u.kinds = append(u.kinds, kind)
	return nil
}

func (u *fakeUploader) calls() []int {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]int, len(u.chatIDs))
	copy(out, u.chatIDs)
	return out
}

func attachment(name, content string) *models.Attachment {
	return &models.Attachment{Name: name, Content: strings.NewReader(content)}
}

func TestSender_TextFireAndForget(t *testing.T) {
	conn := newFakeConn()
	up := &fakeUploader{}
	s := NewSender(conn, up, time.Second)

	err := s.Send(context.Background(), SendOptions{ToUserID: 7, Message: "hi"})
	require.NoError(t, err)

	sent := conn.envelopes()
	require.Len(t, sent, 1)
	require.Equal(t, models.KindSendMessage, sent[0].Type)
	require.Equal(t, 7, sent[0].ToUserID)
	require.Equal(t, "hi", sent[0].Message)
	require.Equal(t, models.MessageTypeText, sent[0].MessageType)

	// No confirmation listener was registered; a confirmation arriving
	// now belongs to nobody and must not trigger an upload.
	require.Equal(t, 0, s.confirms.Pending())
	conn.bus.Publish(frameOf(models.KindMessageCreated, `{"chatId":11}`))
	require.Empty(t, up.calls())
}

func TestSender_AttachmentWaitsForConfirmation(t *testing.T) {
	conn := newFakeConn()
	up := &fakeUploader{}
	s := NewSender(conn, up, time.Second)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Send(context.Background(), SendOptions{
			ToUserID:   7,
			Type:       models.MessageTypeImage,
			Attachment: attachment("cat.png", "pngbytes"),
		})
	}()

	require.Eventually(t, func() bool {
		return len(conn.envelopes()) == 1
	}, time.Second, time.Millisecond)
	require.Empty(t, up.calls())

	conn.bus.Publish(frameOf(models.KindMessageCreated, `{"chatId":33}`))

	require.NoError(t, <-errCh)
	require.Equal(t, []int{33}, up.calls())
	require.Equal(t, models.MessageTypeImage, up.kinds[0])
}

func TestSender_ConfirmationTimeout(t *testing.T) {
	conn := newFakeConn()
	up := &fakeUploader{}
	s := NewSender(conn, up, 20*time.Millisecond)

	err := s.Send(context.Background(), SendOptions{
		ToUserID:   7,
		Attachment: attachment("cat.png", "pngbytes"),
	})
	require.ErrorIs(t, err, models.ErrConfirmTimeout)

	// The claim was released on timeout; a late confirmation is heard
	// by nobody.
	require.Equal(t, 0, s.confirms.Pending())
	conn.bus.Publish(frameOf(models.KindMessageCreated, `{"chatId":33}`))
	require.Empty(t, up.calls())
}

func TestSender_ConcurrentSendsDoNotCrossResolve(t *testing.T) {
	conn := newFakeConn()
	up := &fakeUploader{}
	s := NewSender(conn, up, time.Second)

	errCh := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			errCh <- s.Send(context.Background(), SendOptions{
				ToUserID:   7,
				Attachment: attachment("cat.png", "pngbytes"),
			})
		}()
	}

	require.Eventually(t, func() bool {
		return len(conn.envelopes()) == 2
	}, time.Second, time.Millisecond)

	conn.bus.Publish(frameOf(models.KindMessageCreated, `{"chatId":1}`))
	conn.bus.Publish(frameOf(models.KindMessageCreated, `{"chatId":2}`))

	require.NoError(t, <-errCh)
	require.NoError(t, <-errCh)

	got := up.calls()
	sort.Ints(got)
	require.Equal(t, []int{1, 2}, got)
}

func TestSender_UploadFailurePropagates(t *testing.T) {
	conn := newFakeConn()
	up := &fakeUploader{err: &models.UploadError{StatusCode: 413, Message: "too large"}}
	s := NewSender(conn, up, time.Second)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Send(context.Background(), SendOptions{
			ToUserID:   7,
			Attachment: attachment("clip.mp4", "mp4bytes"),
		})
	}()

	require.Eventually(t, func() bool {
		return len(conn.envelopes()) == 1
	}, time.Second, time.Millisecond)
	conn.bus.Publish(frameOf(models.KindMessageCreated, `{"chatId":5}`))

	var uploadErr *models.UploadError
	require.ErrorAs(t, <-errCh, &uploadErr)
	require.Equal(t, 413, uploadErr.StatusCode)
}

func TestSender_ContextCancel(t *testing.T) {
	conn := newFakeConn()
	s := NewSender(conn, &fakeUploader{}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Send(ctx, SendOptions{
			ToUserID:   7,
			Attachment: attachment("cat.png", "pngbytes"),
		})
	}()

	require.Eventually(t, func() bool {
		return len(conn.envelopes()) == 1
	}, time.Second, time.Millisecond)
	cancel()

	require.ErrorIs(t, <-errCh, context.Canceled)
}
