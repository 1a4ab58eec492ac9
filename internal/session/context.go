// Package session owns who is signed in on a browser session and tells
// subscribers when that changes.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"creativehub/internal/domain"
)

var ErrClosed = errors.New("session context closed")

type Kind string

const (
	EventSignedIn  Kind = "signed_in"
	EventSignedUp  Kind = "signed_up"
	EventSignedOut Kind = "signed_out"
)

type Event struct {
	Kind Kind
	SID  string
	User *domain.User // nil on sign-out when the session had no user
	At   time.Time
}

// Authenticator is the store-facing half of sign-in.
type Authenticator interface {
	Login(ctx context.Context, sid, email, password string) (*domain.User, error)
	Register(ctx context.Context, sid, name, email, password string) (*domain.User, error)
	Logout(ctx context.Context, sid string) error
	CurrentUser(ctx context.Context, sid string) (*domain.User, error)
}

// Context is created once at boot and closed at shutdown.
type Context struct {
	auth Authenticator

	mu     sync.RWMutex
	subs   map[int]func(Event)
	nextID int
	closed bool
}

func New(auth Authenticator) *Context {
	return &Context{auth: auth, subs: map[int]func(Event){}}
}

// Subscribe registers fn for every later event and returns its unsubscribe func.
func (s *Context) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Close drops every subscriber; later calls fail with ErrClosed.
func (s *Context) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = map[int]func(Event){}
	return nil
}

func (s *Context) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Context) emit(e Event) {
	e.At = time.Now().UTC()
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(e)
	}
}

// Current resolves the signed-in user for sid, roles included.
func (s *Context) Current(ctx context.Context, sid string) (*domain.User, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	return s.auth.CurrentUser(ctx, sid)
}

func (s *Context) SignIn(ctx context.Context, sid, email, password string) (*domain.User, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	u, err := s.auth.Login(ctx, sid, email, password)
	if err != nil {
		return nil, err
	}
	s.emit(Event{Kind: EventSignedIn, SID: sid, User: u})
	return u, nil
}

// SignUp registers an account and signs the session in.
func (s *Context) SignUp(ctx context.Context, sid, name, email, password string) (*domain.User, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	u, err := s.auth.Register(ctx, sid, name, email, password)
	if err != nil {
		return nil, err
	}
	s.emit(Event{Kind: EventSignedUp, SID: sid, User: u})
	return u, nil
}

func (s *Context) SignOut(ctx context.Context, sid string) error {
	if s.isClosed() {
		return ErrClosed
	}
	u, _ := s.auth.CurrentUser(ctx, sid)
	if err := s.auth.Logout(ctx, sid); err != nil {
		return err
	}
	s.emit(Event{Kind: EventSignedOut, SID: sid, User: u})
	return nil
}
