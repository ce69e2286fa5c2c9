package status

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"letstalk/internal/models"
)

type fakeStatusUploader struct {
	mu        sync.Mutex
	statusIDs []int
	kinds     []models.MessageType
}

func (u *fakeStatusUploader) UploadStatusFile(_ context.Context, statusID int, kind models.MessageType, _ models.Attachment) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.statusIDs = append(u.statusIDs, statusID)
	u.kinds = append(u.kinds, kind)
	return nil
}

func (u *fakeStatusUploader) calls() []int {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]int, len(u.statusIDs))
	copy(out, u.statusIDs)
	return out
}

func TestSender_TextPostDefaultsBgColor(t *testing.T) {
	conn := newFakeConn()
	s := NewSender(conn, &fakeStatusUploader{}, time.Second)

	require.NoError(t, s.Post(context.Background(), PostOptions{Message: "hello"}))

	sent := conn.envelopes()
	require.Len(t, sent, 1)
	require.Equal(t, models.KindSendStatus, sent[0].Type)
	require.Equal(t, models.MessageTypeText, sent[0].MessageType)
	require.Equal(t, DefaultBgColor, sent[0].BgColor)
}

func TestSender_ExplicitBgColorKept(t *testing.T) {
	conn := newFakeConn()
	s := NewSender(conn, &fakeStatusUploader{}, time.Second)

	require.NoError(t, s.Post(context.Background(), PostOptions{Message: "hello", BgColor: "#000000"}))
	require.Equal(t, "#000000", conn.envelopes()[0].BgColor)
}

func TestSender_AttachmentPostWaitsForCreation(t *testing.T) {
	conn := newFakeConn()
	up := &fakeStatusUploader{}
	s := NewSender(conn, up, time.Second)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Post(context.Background(), PostOptions{
			Type:       models.MessageTypeImage,
			Attachment: &models.Attachment{Name: "sunset.png", Content: strings.NewReader("png")},
		})
	}()

	require.Eventually(t, func() bool {
		return len(conn.envelopes()) == 1
	}, time.Second, time.Millisecond)
	require.Empty(t, up.calls())

	conn.bus.Publish(frameOf(models.KindStatusCreated, `{"statusId":88}`))

	require.NoError(t, <-errCh)
	require.Equal(t, []int{88}, up.calls())
	require.Equal(t, models.MessageTypeImage, up.kinds[0])
}

func TestSender_PostTimeout(t *testing.T) {
	conn := newFakeConn()
	up := &fakeStatusUploader{}
	s := NewSender(conn, up, 20*time.Millisecond)

	err := s.Post(context.Background(), PostOptions{
		Attachment: &models.Attachment{Name: "sunset.png", Content: strings.NewReader("png")},
	})
	require.ErrorIs(t, err, models.ErrConfirmTimeout)

	conn.bus.Publish(frameOf(models.KindStatusCreated, `{"statusId":88}`))
	require.Empty(t, up.calls())
}
