package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Kind discriminates every message exchanged over the socket.
type Kind string

// Outbound kinds.
const (
	KindGetChatList        Kind = "get_chat_list"
	KindGetSingleChat      Kind = "get_single_chat"
	KindGetFriendData      Kind = "get_friend_data"
	KindGetAllUsers        Kind = "get_all_users"
	KindSetUserProfile     Kind = "set_user_profile"
	KindSaveNewContact     Kind = "save_new_contact"
	KindSendMessage        Kind = "send_message"
	KindSendStatus         Kind = "send_status"
	KindGetMyStatuses      Kind = "get_my_statuses"
	KindGetContactStatuses Kind = "get_contact_statuses"
	KindToggleStatusLike   Kind = "toggle_status_like"
	KindAddStatusComment   Kind = "add_status_comment"
	KindMarkStatusViewed   Kind = "mark_status_viewed"
	KindPing               Kind = "PING"
)

// Inbound kinds.
const (
	KindFriendList         Kind = "friend_list"
	KindSingleChat         Kind = "single_chat"
	KindFriendData         Kind = "friend_data"
	KindNewMessage         Kind = "new_message"
	KindMessageStatus      Kind = "message_status_update"
	KindMessageCreated     Kind = "message_created"
	KindAllUsers           Kind = "all_users"
	KindUserProfile        Kind = "user_profile"
	KindNewContactResponse Kind = "new_contact_response_text"
	KindMyStatuses         Kind = "my_statuses"
	KindContactStatuses    Kind = "contact_statuses"
	KindStatusCreated      Kind = "status_created"
	KindCommentAdded       Kind = "comment_added"
	KindStatusLikeToggled  Kind = "status_like_toggled"
	KindError              Kind = "error"
	KindPong               Kind = "PONG"
)

// Envelope is one outbound request. The backend correlates replies by
// type and domain fields only; CorrID is stamped on every envelope so
// traffic can be traced end to end and so a future server contract can
// start echoing it without a wire change on our side.
type Envelope struct {
	Type   Kind   `json:"type"`
	CorrID string `json:"corrId,omitempty"`

	FriendID    int         `json:"friendId,omitempty"`
	ToUserID    int         `json:"toUserId,omitempty"`
	Message     string      `json:"message,omitempty"`
	MessageType MessageType `json:"messageType,omitempty"`
	BgColor     string      `json:"bgColor,omitempty"`
	StatusID    int         `json:"statusId,omitempty"`
	Comment     string      `json:"comment,omitempty"`
	User        *UserDTO    `json:"user,omitempty"`
}

// NewEnvelope returns an envelope of the given kind with a fresh
// correlation id.
func NewEnvelope(kind Kind) Envelope {
	return Envelope{Type: kind, CorrID: uuid.NewString()}
}

// Frame is one normalized inbound message. The backend is inconsistent
// about shape: most kinds nest the body under "payload", but several
// (message_status_update, message_created, status_created,
// comment_added, status_like_toggled) put fields directly on the root
// object. DecodeFrame hides that: Body is the payload when one is
// present and the whole root object otherwise, so every consumer
// unmarshals exactly one shape.
type Frame struct {
	Type Kind
	Body json.RawMessage
}

// Decode unmarshals the frame body into v.
func (f Frame) Decode(v any) error {
	if len(f.Body) == 0 {
		return fmt.Errorf("frame %s: empty body", f.Type)
	}
	if err := json.Unmarshal(f.Body, v); err != nil {
		return fmt.Errorf("frame %s: %w", f.Type, err)
	}
	return nil
}

// DecodeFrame parses a raw inbound frame into the normalized shape.
func DecodeFrame(data []byte) (Frame, error) {
	var head struct {
		Type    Kind            `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if head.Type == "" {
		return Frame{}, fmt.Errorf("decode frame: missing type")
	}

	body := head.Payload
	if len(body) == 0 || string(body) == "null" {
		body = data
	}
	return Frame{Type: head.Type, Body: body}, nil
}

// MessageStatusUpdate arrives with its fields on the frame root.
type MessageStatusUpdate struct {
	ChatID int           `json:"chatId"`
	Status MessageStatus `json:"status"`
}

// MessageCreated confirms server-side creation of a sent message.
type MessageCreated struct {
	ChatID int `json:"chatId"`
}

// StatusCreated confirms server-side creation of a posted status.
type StatusCreated struct {
	StatusID int `json:"statusId"`
}

// ErrorFrame is a domain rejection pushed by the server.
type ErrorFrame struct {
	Message string `json:"message"`
}
