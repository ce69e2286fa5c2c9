package models

import (
	"errors"
	"io"
	"time"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrNotConnected is returned by operations that need a live socket
	// when the connection is absent or already closed.
	ErrNotConnected = errors.New("not connected")

	// ErrConfirmTimeout is returned when the server never sent the
	// creation confirmation for a send within the configured window.
	ErrConfirmTimeout = errors.New("confirmation timeout")
)

// UploadError reports a failed attachment upload. It is distinguishable
// from ErrConfirmTimeout so callers can tell "server never confirmed"
// from "server confirmed but the upload failed".
type UploadError struct {
	StatusCode int
	Message    string
}

func (e *UploadError) Error() string {
	if e.Message != "" {
		return "upload failed: " + e.Message
	}
	return "upload failed"
}

type MessageType string

const (
	MessageTypeText  MessageType = "TEXT"
	MessageTypeImage MessageType = "IMAGE"
	MessageTypeVideo MessageType = "VIDEO"
	MessageTypeVoice MessageType = "VOICE"
)

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "SENT"
	MessageStatusDelivered MessageStatus = "DELIVERED"
	MessageStatusRead      MessageStatus = "READ"
)

// UserDetails is the embedded sender/receiver record on a chat message.
type UserDetails struct {
	ID          int    `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	AboutMe     string `json:"aboutMe"`
	CountryCode string `json:"countryCode"`
	ContactNo   string `json:"contactNo"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	Status      string `json:"status"`
}

// UserDTO is a full user record (friend list rows, profile, friend data).
type UserDTO struct {
	ID           int    `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	DisplayName  string `json:"displayName"`
	AboutMe      string `json:"aboutMe"`
	CountryCode  string `json:"countryCode"`
	ContactNo    string `json:"contactNo"`
	ProfileImage string `json:"profileImage"`
	// The backend sends presence as the string "true"/"false",
	// not a JSON boolean. Kept as-is on the wire type; use Online().
	IsOnline  string `json:"isOnline"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	Status    string `json:"status"`
}

// Online normalizes the wire presence string at the boundary.
func (u UserDTO) Online() bool {
	return u.IsOnline == "true"
}

// ChatSummary is one chat-list row. The list is always replaced
// wholesale on friend_list responses; there is no incremental patching.
type ChatSummary struct {
	FriendID      string        `json:"friendId"`
	FriendName    string        `json:"friendName"`
	LastMessage   string        `json:"lastMessage"`
	Timestamp     string        `json:"timestamp"`
	UnreadCount   int           `json:"unreadCount"`
	ProfileImage  string        `json:"profileImage"`
	IsOnline      bool          `json:"isOnline"`
	MessageType   MessageType   `json:"messageType"`
	MessageStatus MessageStatus `json:"messageStatus"`
}

// ChatMessage is one message in a conversation. A message belongs to
// exactly one conversation, determined by the unordered pair
// (Sender.ID, Receiver.ID).
type ChatMessage struct {
	ID            int           `json:"id"`
	FriendID      string        `json:"friendId"`
	FriendName    string        `json:"friendName"`
	Message       string        `json:"message"`
	Timestamp     string        `json:"timestamp"`
	ProfileImage  string        `json:"profileImage"`
	IsOnline      string        `json:"isOnline"`
	MessageType   MessageType   `json:"messageType"`
	MessageStatus MessageStatus `json:"messageStatus"`
	Sender        UserDetails   `json:"sender"`
	Receiver      UserDetails   `json:"receiver"`
	CreatedAt     string        `json:"createdAt"`
	UpdatedAt     string        `json:"updatedAt"`
	FilePath      string        `json:"filePath"`
}

// InConversation reports whether the message belongs to the
// conversation with the given friend.
func (m ChatMessage) InConversation(friendID int) bool {
	return m.Sender.ID == friendID || m.Receiver.ID == friendID
}

// Attachment is a file to deliver alongside a message or status. Type
// may be left empty; the uploader then sniffs it from the leading bytes.
type Attachment struct {
	Name    string
	Type    MessageType
	Content io.Reader
}

// ContactResponse is the outcome of a save_new_contact request.
type ContactResponse struct {
	ResponseStatus bool   `json:"responseStatus"`
	Message        string `json:"message"`
}

// timestamp layouts seen from the backend, most specific first.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTime parses a backend timestamp string. A zero time is returned
// for values that match no known layout; callers sort on it as-is.
func ParseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
