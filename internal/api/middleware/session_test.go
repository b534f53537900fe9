package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/brandpreneur/client-portal/internal/core/access"
	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/portal"
	"github.com/brandpreneur/client-portal/internal/core/ports"
)

// staticAuth reports a fixed identity to every subscriber. A nil settled
// channel delivers immediately; otherwise delivery waits for it to close.
type staticAuth struct {
	mu       sync.Mutex
	identity *domain.Identity
	settled  chan struct{}
}

func (a *staticAuth) SignUp(context.Context, string, string, string) (*domain.Identity, error) {
	return nil, errors.New("not supported")
}
func (a *staticAuth) SignIn(context.Context, string, string) error {
	return errors.New("not supported")
}
func (a *staticAuth) SignInWithFederated(context.Context, domain.FederatedCredential) (*domain.Identity, error) {
	return nil, errors.New("not supported")
}
func (a *staticAuth) SignOut(context.Context) error { return nil }

func (a *staticAuth) OnIdentityChange(fn func(*domain.Identity)) func() {
	a.mu.Lock()
	id := a.identity
	a.mu.Unlock()
	if a.settled == nil {
		fn(id)
	} else {
		go func() {
			<-a.settled
			fn(id)
		}()
	}
	return func() {}
}

type noopProvisioner struct{}

func (noopProvisioner) Provision(context.Context, *domain.Identity) error { return nil }

func newRegistry(auth ports.AuthProvider) *portal.Registry {
	return portal.NewRegistry(portal.Deps{
		NewAuth:     func(string) ports.AuthProvider { return auth },
		Router:      access.NewRouter(access.AdminEmail("admin@brandpreneur.co")),
		Provisioner: noopProvisioner{},
	}, time.Hour, zerolog.Nop())
}

func TestSession_ResolvesHeaderAndCookie(t *testing.T) {
	reg := newRegistry(&staticAuth{})
	s, _ := reg.Open(context.Background(), "", "")

	for name, decorate := range map[string]func(*http.Request){
		"header": func(r *http.Request) { r.Header.Set(SessionHeader, s.ID()) },
		"cookie": func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: s.ID()}) },
	} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		decorate(req)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var got *portal.Session
		err := Session(reg)(func(c echo.Context) error {
			got = SessionFrom(c)
			return nil
		})(c)
		if err != nil {
			t.Fatalf("%s: handler error: %v", name, err)
		}
		if got != s {
			t.Fatalf("%s: expected the open session in context", name)
		}
	}
}

func TestSession_MissingID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := Session(newRegistry(&staticAuth{}))(func(echo.Context) error {
		t.Fatal("should not reach next handler")
		return nil
	})(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestSession_UnknownID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "01HZZZZZZZZZZZZZZZZZZZZZZZ")
	c := e.NewContext(req, httptest.NewRecorder())

	err := Session(newRegistry(&staticAuth{}))(func(echo.Context) error {
		t.Fatal("should not reach next handler")
		return nil
	})(c)

	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
