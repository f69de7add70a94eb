package session

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the shared, token-keyed session store. It is the only mutable
// state shared across requests; everything else in the gateway is a pure
// function of its inputs and collaborators.
type Store struct {
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty in-memory session store.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Lookup returns the session for token, or nil when the token is unknown.
func (st *Store) Lookup(token string) *Session {
	if token == "" {
		return nil
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[token]
}

// Create establishes a brand-new session under a fresh token.
func (st *Store) Create() *Session {
	sess := newSession(uuid.NewString())
	st.mu.Lock()
	st.sessions[sess.Token()] = sess
	st.mu.Unlock()
	st.logger.Debug("session created", zap.String("token", sess.Token()))
	return sess
}

// Invalidate removes the session from the store and strips its attributes.
// Invalidating an unknown token is a no-op.
func (st *Store) Invalidate(sess *Session) {
	if sess == nil {
		return
	}
	st.mu.Lock()
	delete(st.sessions, sess.Token())
	st.mu.Unlock()
	sess.clear()
	st.logger.Debug("session invalidated", zap.String("token", sess.Token()))
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
