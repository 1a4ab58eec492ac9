package session

import (
	"context"
	"errors"
	"testing"

	"creativehub/internal/domain"
)

var errBad = errors.New("bad credentials")

type fakeAuth struct {
	bound map[string]*domain.User
}

func (f *fakeAuth) Login(_ context.Context, sid, email, password string) (*domain.User, error) {
	if password != "Passw0rd!" {
		return nil, errBad
	}
	u := &domain.User{ID: "u-1", Email: email, Roles: []string{domain.RoleUser}}
	f.bound[sid] = u
	return u, nil
}

func (f *fakeAuth) Register(_ context.Context, sid, name, email, _ string) (*domain.User, error) {
	u := &domain.User{ID: "u-2", Email: email, Name: name, Roles: []string{domain.RoleUser}}
	f.bound[sid] = u
	return u, nil
}

func (f *fakeAuth) Logout(_ context.Context, sid string) error {
	delete(f.bound, sid)
	return nil
}

func (f *fakeAuth) CurrentUser(_ context.Context, sid string) (*domain.User, error) {
	if u, ok := f.bound[sid]; ok {
		return u, nil
	}
	return nil, errors.New("no user")
}

func newCtx() *Context { return New(&fakeAuth{bound: map[string]*domain.User{}}) }

func TestSignInOutNotifiesSubscribers(t *testing.T) {
	s := newCtx()
	var got []Kind
	unsub := s.Subscribe(func(e Event) { got = append(got, e.Kind) })
	defer unsub()

	ctx := context.Background()
	u, err := s.SignIn(ctx, "sid-1", "ada@creativehub.test", "Passw0rd!")
	if err != nil || u.ID != "u-1" {
		t.Fatalf("sign in: %v %v", u, err)
	}
	if cur, err := s.Current(ctx, "sid-1"); err != nil || cur.ID != "u-1" {
		t.Fatalf("current: %v %v", cur, err)
	}
	if err := s.SignOut(ctx, "sid-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Current(ctx, "sid-1"); err == nil {
		t.Fatal("session still signed in")
	}
	if len(got) != 2 || got[0] != EventSignedIn || got[1] != EventSignedOut {
		t.Fatalf("events = %v", got)
	}
}

func TestFailedSignInEmitsNothing(t *testing.T) {
	s := newCtx()
	n := 0
	s.Subscribe(func(Event) { n++ })
	if _, err := s.SignIn(context.Background(), "sid", "a@b.co", "nope"); !errors.Is(err, errBad) {
		t.Fatalf("expected errBad, got %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no events, got %d", n)
	}
}

func TestSignUpEmitsSignedUp(t *testing.T) {
	s := newCtx()
	var e Event
	s.Subscribe(func(ev Event) { e = ev })
	if _, err := s.SignUp(context.Background(), "sid", "Ada", "ada@creativehub.test", "secret1"); err != nil {
		t.Fatal(err)
	}
	if e.Kind != EventSignedUp || e.User == nil || e.User.Name != "Ada" || e.At.IsZero() {
		t.Fatalf("unexpected event %+v", e)
	}
}

func TestUnsubscribeAndClose(t *testing.T) {
	s := newCtx()
	n := 0
	unsub := s.Subscribe(func(Event) { n++ })
	unsub()
	unsub()
	_, _ = s.SignIn(context.Background(), "sid", "a@b.co", "Passw0rd!")
	if n != 0 {
		t.Fatalf("unsubscribed fn called %d times", n)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Current(context.Background(), "sid"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := s.SignOut(context.Background(), "sid"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
