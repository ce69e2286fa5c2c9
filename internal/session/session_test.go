package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"letstalk/internal/models"
	"letstalk/internal/store"
)

type fakeStorage struct {
	rec     *store.Session
	saveErr error
	loadErr error
}

func (f *fakeStorage) SaveSession(sess store.Session) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.rec = &sess
	return nil
}

func (f *fakeStorage) LoadSession() (store.Session, error) {
	if f.loadErr != nil {
		return store.Session{}, f.loadErr
	}
	if f.rec == nil {
		return store.Session{}, models.ErrNotFound
	}
	return *f.rec, nil
}

func (f *fakeStorage) ClearSession() error {
	f.rec = nil
	return nil
}

func TestNew_FreshStoreIsSignedOut(t *testing.T) {
	m, err := New(&fakeStorage{})
	require.NoError(t, err)
	require.False(t, m.SignedIn())
	require.Empty(t, m.UserID())
}

func TestNew_RestoresPersistedIdentity(t *testing.T) {
	st := &fakeStorage{rec: &store.Session{UserID: "42", Status: "login"}}

	m, err := New(st)
	require.NoError(t, err)
	require.True(t, m.SignedIn())
	require.Equal(t, "42", m.UserID())
}

func TestNew_StorageFailureIsAnError(t *testing.T) {
	st := &fakeStorage{loadErr: errors.New("disk gone")}

	_, err := New(st)
	require.Error(t, err)
}

func TestManager_SignInSignOut(t *testing.T) {
	st := &fakeStorage{}
	m, err := New(st)
	require.NoError(t, err)

	require.NoError(t, m.SignIn("42"))
	require.True(t, m.SignedIn())
	require.Equal(t, "42", m.UserID())
	require.NotNil(t, st.rec)
	require.Equal(t, "42", st.rec.UserID)

	require.NoError(t, m.SignOut())
	require.False(t, m.SignedIn())
	require.Empty(t, m.UserID())
	require.Nil(t, st.rec)
}

func TestManager_SignInPersistFailureKeepsState(t *testing.T) {
	st := &fakeStorage{saveErr: errors.New("disk full")}
	m, err := New(st)
	require.NoError(t, err)

	require.Error(t, m.SignIn("42"))
	require.False(t, m.SignedIn())
}
