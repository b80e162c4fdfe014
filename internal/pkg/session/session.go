// Package session carries the signed-in user through a request.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

// Session is the authenticated caller of a request.
type Session struct {
	UserID string
	Email  string
	Role   user.Role
}

// Can reports whether the session's role grants permission.
func (s Session) Can(permission user.Permission) bool {
	return user.HasPermission(s.Role, permission)
}

func (s Session) IsAdmin() bool {
	return s.Role == user.RoleAdmin
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok && s.UserID != ""
}

type EventKind string

const (
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
	EventRefreshed EventKind = "refreshed"
)

// Event describes a change of session state.
type Event struct {
	Kind    EventKind
	Session Session
	At      time.Time
}

// Listener is notified of session changes.
type Listener interface {
	OnSessionChange(ctx context.Context, event Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, event Event)

func (f ListenerFunc) OnSessionChange(ctx context.Context, event Event) {
	f(ctx, event)
}

// Broadcaster fans events out to registered listeners in registration order.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewBroadcaster(listeners ...Listener) *Broadcaster {
	return &Broadcaster{listeners: listeners}
}

func (b *Broadcaster) Subscribe(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

func (b *Broadcaster) OnSessionChange(ctx context.Context, event Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		l.OnSessionChange(ctx, event)
	}
}
