package cards

import (
	"context"
	"sync"
)

// Session holds the auth token shared by every API call in the process.
// Transports read it at request time, so swapping the token affects calls
// already in flight only from their next request on.
type Session struct {
	mu    sync.RWMutex
	token string
}

// SetToken replaces the session token.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token returns the current session token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// ClearAuth drops the session token.
func (s *Session) ClearAuth() {
	s.SetToken("")
}

// DefaultSession is the process-wide session used when no explicit session is
// wired in.
var DefaultSession = &Session{}

type sessionContextKey struct{}

// ContextWithSession stores a session on the provided context.
func ContextWithSession(ctx context.Context, session *Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFrom extracts the session from the context, falling back to
// DefaultSession.
func SessionFrom(ctx context.Context) *Session {
	if ctx == nil {
		return DefaultSession
	}
	if session, ok := ctx.Value(sessionContextKey{}).(*Session); ok && session != nil {
		return session
	}
	return DefaultSession
}
