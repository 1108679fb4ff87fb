package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrEthical07/goGate/credential"
)

// ErrSessionCorrupt is returned by Read when the stored pair could not be trusted.
// The store has been cleared by the time the error is returned.
var ErrSessionCorrupt = errors.New("stored session corrupt")

// ErrSessionMismatch is returned by Write when the identity was not derived from the
// credential it is paired with.
var ErrSessionMismatch = errors.New("session identity does not match credential")

const (
	tokenKeySuffix = "token"
	userKeySuffix  = "user"
)

// Store is the single source of truth for the current session. It is safe for
// concurrent use; writers exclude readers so no caller observes a torn pair.
type Store struct {
	mu        sync.RWMutex
	substrate Substrate
	codec     *credential.Codec
	tokenKey  string
	userKey   string
}

// NewStore creates a Store over substrate. prefix namespaces both keys, so
// NewStore(sub, "vlearn:") uses "vlearn:token" and "vlearn:user".
func NewStore(substrate Substrate, prefix string) *Store {
	return &Store{
		substrate: substrate,
		codec:     credential.NewCodec(),
		tokenKey:  prefix + tokenKeySuffix,
		userKey:   prefix + userKeySuffix,
	}
}

// Keys returns the credential key and the identity snapshot key.
func (s *Store) Keys() (token, user string) {
	return s.tokenKey, s.userKey
}

// Write replaces the current session with sess.
func (s *Store) Write(ctx context.Context, sess Session) error {
	derived, err := s.codec.Decode(sess.Credential)
	if err != nil {
		return err
	}
	if !derived.Equal(sess.Identity) {
		return ErrSessionMismatch
	}
	snap, err := EncodeIdentity(derived)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.substrate.Save(ctx, map[string][]byte{
		s.tokenKey: []byte(sess.Credential),
		s.userKey:  snap,
	})
}

// Read returns the current session, or nil when none is stored.
//
// The identity is always the one re-derived from the stored credential. When the
// pair is incomplete or the snapshot disagrees with the credential, the store is
// cleared and ErrSessionCorrupt is returned.
func (s *Store) Read(ctx context.Context) (*Session, error) {
	s.mu.RLock()
	res, err := s.load(ctx)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if res.corrupt == nil {
		return res.session, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A writer may have replaced the pair after the read lock was released.
	res, err = s.load(ctx)
	if err != nil {
		return nil, err
	}
	if res.corrupt == nil {
		return res.session, nil
	}
	if err := s.substrate.Delete(ctx, s.tokenKey, s.userKey); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %v", ErrSessionCorrupt, res.corrupt)
}

// Clear removes the current session. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.substrate.Delete(ctx, s.tokenKey, s.userKey)
}

// ClearIf removes the current session only when match accepts its stored
// credential, and reports whether it did. The check and the delete happen under
// one lock, so a session written in between is never removed. An empty store
// reports false.
func (s *Store) ClearIf(ctx context.Context, match func(credential string) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.substrate.Load(ctx, s.tokenKey)
	if err != nil {
		return false, err
	}
	token, ok := values[s.tokenKey]
	if !ok || match == nil || !match(string(token)) {
		return false, nil
	}
	if err := s.substrate.Delete(ctx, s.tokenKey, s.userKey); err != nil {
		return false, err
	}
	return true, nil
}

type loadResult struct {
	session *Session
	corrupt error
}

// load reads the pair. A nil session with a nil corrupt reason means no session.
func (s *Store) load(ctx context.Context) (loadResult, error) {
	values, err := s.substrate.Load(ctx, s.tokenKey, s.userKey)
	if err != nil {
		return loadResult{}, err
	}
	token, hasToken := values[s.tokenKey]
	snap, hasSnap := values[s.userKey]

	switch {
	case !hasToken && !hasSnap:
		return loadResult{}, nil
	case !hasToken:
		return loadResult{corrupt: errors.New("identity snapshot without credential")}, nil
	case !hasSnap:
		return loadResult{corrupt: errors.New("credential without identity snapshot")}, nil
	}

	derived, err := s.codec.Decode(string(token))
	if err != nil {
		return loadResult{corrupt: err}, nil
	}
	stored, err := DecodeIdentity(snap)
	if err != nil {
		return loadResult{corrupt: err}, nil
	}
	if !derived.Equal(stored) {
		return loadResult{corrupt: errors.New("identity snapshot drifted from credential")}, nil
	}

	return loadResult{session: &Session{Credential: string(token), Identity: derived}}, nil
}
