// Package upload delivers message and status attachments. Uploads run
// over plain HTTP multipart, not the duplex socket: the socket only
// carries the send command and the creation confirmation whose id keys
// the upload.
package upload

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/h2non/filetype"

	"letstalk/internal/models"
)

const (
	chatUploadPath   = "/FileUploader"
	statusUploadPath = "/StatusFileUploader"

	// filetype needs at most this many leading bytes.
	sniffLen = 262
)

// Client uploads attachments to the backend's two upload endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns an upload client for the given API base URL (the
// /LetsTalk prefix, same base the REST collaborators use).
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// UploadChatFile delivers a message attachment keyed by the created
// message id.
func (c *Client) UploadChatFile(ctx context.Context, chatID int, kind models.MessageType, att models.Attachment) error {
	return c.upload(ctx, chatUploadPath, "chatId", chatID, kind, att)
}

// UploadStatusFile delivers a status attachment keyed by the created
// status id.
func (c *Client) UploadStatusFile(ctx context.Context, statusID int, kind models.MessageType, att models.Attachment) error {
	return c.upload(ctx, statusUploadPath, "statusId", statusID, kind, att)
}

func (c *Client) upload(ctx context.Context, path, idField string, id int, kind models.MessageType, att models.Attachment) error {
	content := bufio.NewReaderSize(att.Content, sniffLen)

	if kind == "" || kind == models.MessageTypeText {
		kind = sniffKind(content)
	}

	name := att.Name
	if name == "" {
		name = "file"
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("read attachment: %w", err)
	}
	if err := form.WriteField(idField, strconv.Itoa(id)); err != nil {
		return fmt.Errorf("build form: %w", err)
	}
	if err := form.WriteField("messageType", string(kind)); err != nil {
		return fmt.Errorf("build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &models.UploadError{
			StatusCode: resp.StatusCode,
			Message:    string(bytes.TrimSpace(respBody)),
		}
	}

	var verdict struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(respBody, &verdict); err != nil {
		return &models.UploadError{StatusCode: resp.StatusCode, Message: "unreadable upload response"}
	}
	if !verdict.Success {
		return &models.UploadError{StatusCode: resp.StatusCode, Message: verdict.Error}
	}
	return nil
}

// sniffKind classifies the attachment from its leading bytes. Unknown
// content defaults to IMAGE, the most common attachment kind.
func sniffKind(r *bufio.Reader) models.MessageType {
	head, _ := r.Peek(sniffLen)

	switch {
	case filetype.IsVideo(head):
		return models.MessageTypeVideo
	case filetype.IsAudio(head):
		return models.MessageTypeVoice
	default:
		return models.MessageTypeImage
	}
}
