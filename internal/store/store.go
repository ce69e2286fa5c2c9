// Package store is the local snapshot cache: session identity, the
// last-known chat list and the own profile, so a cold start can paint
// the UI before the socket delivers fresh state. Records are sealed at
// rest; nothing here is authoritative and every record is replaced by
// the next socket response.
package store

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"golang.org/x/crypto/chacha20poly1305"

	"letstalk/internal/models"
)

var (
	bucketSession = []byte("session")
	bucketChats   = []byte("chats")
	bucketProfile = []byte("profile")
)

var (
	keySession  = []byte("current")
	keyChatList = []byte("list")
	keyProfile  = []byte("me")
)

type Store struct {
	db   *bbolt.DB
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

// Open opens (creating if needed) the snapshot database at path. secret
// is the device secret; the sealing key is derived from it.
func Open(path string, secret []byte) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketSession, bucketChats, bucketProfile} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	key := sha256.Sum256(secret)
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to derive sealing key: %w", err)
	}

	return &Store{db: db, aead: aead}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *Store) open(sealed []byte) ([]byte, error) {
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("sealed record too short")
	}
	nonce, ciphertext := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	return s.aead.Open(nil, nonce, ciphertext, nil)
}

func (s *Store) put(bucket, key []byte, rec Storeable) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	sealed, err := s.seal(data)
	if err != nil {
		return fmt.Errorf("failed to seal record: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put(key, sealed)
	})
}

func (s *Store) get(bucket, key []byte, rec Storeable) error {
	var sealed []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucket).Get(key)
		if v == nil {
			return models.ErrNotFound
		}
		sealed = append(sealed, v...)
		return nil
	})
	if err != nil {
		return err
	}

	data, err := s.open(sealed)
	if err != nil {
		return fmt.Errorf("failed to unseal record: %w", err)
	}
	return rec.UnmarshalBinary(data)
}

func (s *Store) delete(bucket, key []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Delete(key)
	})
}

// SaveSession persists the signed-in identity.
func (s *Store) SaveSession(sess Session) error {
	return s.put(bucketSession, keySession, &sess)
}

// LoadSession returns the persisted identity, or models.ErrNotFound.
func (s *Store) LoadSession() (Session, error) {
	var sess Session
	err := s.get(bucketSession, keySession, &sess)
	return sess, err
}

// ClearSession removes the persisted identity.
func (s *Store) ClearSession() error {
	return s.delete(bucketSession, keySession)
}

// SaveChatList snapshots the chat list.
func (s *Store) SaveChatList(chats []models.ChatSummary) error {
	rec := ChatListSnapshot{Chats: chats, SavedAt: time.Now().Unix()}
	return s.put(bucketChats, keyChatList, &rec)
}

// LoadChatList returns the last chat-list snapshot, or models.ErrNotFound.
func (s *Store) LoadChatList() ([]models.ChatSummary, error) {
	var rec ChatListSnapshot
	if err := s.get(bucketChats, keyChatList, &rec); err != nil {
		return nil, err
	}
	return rec.Chats, nil
}

// SaveProfile snapshots the own profile.
func (s *Store) SaveProfile(profile models.UserDTO) error {
	rec := ProfileSnapshot{Profile: profile, SavedAt: time.Now().Unix()}
	return s.put(bucketProfile, keyProfile, &rec)
}

// LoadProfile returns the last profile snapshot, or models.ErrNotFound.
func (s *Store) LoadProfile() (models.UserDTO, error) {
	var rec ProfileSnapshot
	if err := s.get(bucketProfile, keyProfile, &rec); err != nil {
		return models.UserDTO{}, err
	}
	return rec.Profile, nil
}
