package store

import (
	"encoding"

	"github.com/vmihailenco/msgpack/v5"

	"letstalk/internal/models"
)

type Storeable interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// Session is the persisted signed-in identity, the mobile client's
// equivalent of its async-storage userId/userStatus pair.
type Session struct {
	UserID string `msgpack:"userId"`
	Status string `msgpack:"status"`
}

func (s *Session) MarshalBinary() (data []byte, err error) {
	type alias Session
	return msgpack.Marshal((*alias)(s))
}

func (s *Session) UnmarshalBinary(data []byte) error {
	type alias Session
	return msgpack.Unmarshal(data, (*alias)(s))
}

type ChatListSnapshot struct {
	Chats   []models.ChatSummary `msgpack:"chats"`
	SavedAt int64                `msgpack:"savedAt"`
}

func (c *ChatListSnapshot) MarshalBinary() (data []byte, err error) {
	type alias ChatListSnapshot
	return msgpack.Marshal((*alias)(c))
}

func (c *ChatListSnapshot) UnmarshalBinary(data []byte) error {
	type alias ChatListSnapshot
	return msgpack.Unmarshal(data, (*alias)(c))
}

type ProfileSnapshot struct {
	Profile models.UserDTO `msgpack:"profile"`
	SavedAt int64          `msgpack:"savedAt"`
}

func (p *ProfileSnapshot) MarshalBinary() (data []byte, err error) {
	type alias ProfileSnapshot
	return msgpack.Marshal((*alias)(p))
}

func (p *ProfileSnapshot) UnmarshalBinary(data []byte) error {
	type alias ProfileSnapshot
	return msgpack.Unmarshal(data, (*alias)(p))
}
