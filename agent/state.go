package agent

import (
	"context"

	"github.com/tbxark/hotelagent/types"
)

// SessionReadWriter persists booking sessions, routed by the context's
// session key.
type SessionReadWriter interface {
	Load(ctx context.Context) (*types.Session, error)
	Save(ctx context.Context, s *types.Session) error
	Delete(ctx context.Context) error
	Exists(ctx context.Context) (bool, error)
}

type sessionKeyContext struct{}

const defaultSessionKey = "default"

// WithSessionKey sets the session id used for storage routing.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyContext{}, key)
}

// SessionKeyFromContext gets the session id from the context.
func SessionKeyFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(sessionKeyContext{})
	if value == nil {
		return "", false
	}
	key, ok := value.(string)
	return key, ok
}

func sessionKeyOrDefault(ctx context.Context) (string, bool) {
	key, ok := SessionKeyFromContext(ctx)
	if ok && key != "" {
		return key, true
	}
	return defaultSessionKey, true
}

type SessionStore struct {
	store Store[*types.Session]
}

func NewSessionStore(core Cache[*types.Session]) *SessionStore {
	return &SessionStore{
		store: NewStore(core, "agent:session", sessionKeyOrDefault),
	}
}

func NewMemorySessionStore() *SessionStore {
	return NewSessionStore(NewMemoryCache((*types.Session).Clone))
}

// Load returns ErrSessionNotFound when nothing is stored under the key.
func (s *SessionStore) Load(ctx context.Context) (*types.Session, error) {
	session, ok, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !ok || session == nil {
		return nil, ErrSessionNotFound
	}
	session.Normalize()
	return session, nil
}

func (s *SessionStore) Save(ctx context.Context, session *types.Session) error {
	return s.store.Set(ctx, session)
}

func (s *SessionStore) Delete(ctx context.Context) error {
	return s.store.Del(ctx)
}

func (s *SessionStore) Exists(ctx context.Context) (bool, error) {
	return s.store.Exists(ctx)
}

var _ SessionReadWriter = (*SessionStore)(nil)
