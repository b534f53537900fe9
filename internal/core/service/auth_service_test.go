package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

var discardLogger = zerolog.Nop()

type stubIdentityRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Identity
	nextID int
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{byID: make(map[string]*domain.Identity)}
}

func (r *stubIdentityRepo) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == identity.Email {
			return nil, domain.ErrIdentityExists
		}
	}
	r.nextID++
	clone := identity.Clone()
	clone.ID = fmt.Sprintf("uid-%d", r.nextID)
	r.byID[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *stubIdentityRepo) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return u.Clone(), nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		return u.Clone(), nil
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) FindBySubject(_ context.Context, provider, subject string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Provider == provider && u.Subject == subject {
			return u.Clone(), nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubIdentityRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	token, identity, err := svc.Register(context.Background(), "Jane Doe", "jane@x.com", "pass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if identity.ID == "" || identity.DisplayName != "Jane Doe" {
		t.Fatalf("unexpected identity %+v", identity)
	}
	stored := repo.byID[identity.ID]
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if stored.Provider != domain.ProviderPassword {
		t.Errorf("expected password provider, got %q", stored.Provider)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := NewAuthService(newStubIdentityRepo(), "secret", time.Hour)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Jane", "", "pass123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Register(ctx, "Jane", "jane@x.com", "abc"); !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := NewAuthService(newStubIdentityRepo(), "secret", time.Hour)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Jane", "jane@x.com", "pass123"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, _, err := svc.Register(ctx, "Jane", "jane@x.com", "pass123"); !errors.Is(err, domain.ErrIdentityExists) {
		t.Fatalf("expected ErrIdentityExists, got %v", err)
	}
}

func TestAuthService_Login_TokenCarriesSubject(t *testing.T) {
	svc := NewAuthService(newStubIdentityRepo(), "secret", time.Hour)
	ctx := context.Background()
	_, registered, _ := svc.Register(ctx, "Jane", "jane@x.com", "pass123")

	token, identity, err := svc.Login(ctx, "jane@x.com", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if identity.ID != registered.ID {
		t.Fatalf("expected %s, got %s", registered.ID, identity.ID)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != registered.ID || claims["email"] != "jane@x.com" {
		t.Errorf("unexpected claims %v", claims)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc := NewAuthService(newStubIdentityRepo(), "secret", time.Hour)
	ctx := context.Background()
	_, _, _ = svc.Register(ctx, "Jane", "jane@x.com", "pass123")

	if _, _, err := svc.Login(ctx, "jane@x.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@x.com", "pass123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Verify(t *testing.T) {
	repo := newStubIdentityRepo()
	svc := NewAuthService(repo, "secret", time.Hour)
	ctx := context.Background()
	token, registered, _ := svc.Register(ctx, "Jane", "jane@x.com", "pass123")

	identity, err := svc.Verify(ctx, token)
	if err != nil || identity.ID != registered.ID {
		t.Fatalf("expected %s, got %+v (err %v)", registered.ID, identity, err)
	}

	other := NewAuthService(repo, "other-secret", time.Hour)
	if _, err := other.Verify(ctx, token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("wrong secret: expected ErrInvalidToken, got %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Verify(ctx, token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expired token: expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_FederatedLogin_CreatesOnceAndReuses(t *testing.T) {
	repo := newStubIdentityRepo()
	svc := NewAuthService(repo, "secret", time.Hour)
	ctx := context.Background()
	profile := &domain.FederatedProfile{Provider: domain.ProviderGoogle, Subject: "g-123", Email: "fed@x.com", DisplayName: "Fed User"}

	_, first, err := svc.FederatedLogin(ctx, profile)
	if err != nil {
		t.Fatalf("first federated login: %v", err)
	}
	_, second, err := svc.FederatedLogin(ctx, profile)
	if err != nil {
		t.Fatalf("second federated login: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected the same identity, got %s and %s", first.ID, second.ID)
	}
	if len(repo.byID) != 1 {
		t.Errorf("expected one identity, got %d", len(repo.byID))
	}
}

func TestAuthService_FederatedLogin_LinksExistingEmail(t *testing.T) {
	repo := newStubIdentityRepo()
	svc := NewAuthService(repo, "secret", time.Hour)
	ctx := context.Background()
	_, registered, _ := svc.Register(ctx, "Jane", "jane@x.com", "pass123")

	_, identity, err := svc.FederatedLogin(ctx, &domain.FederatedProfile{Provider: domain.ProviderGoogle, Subject: "g-9", Email: "jane@x.com"})
	if err != nil {
		t.Fatalf("federated login: %v", err)
	}
	if identity.ID != registered.ID {
		t.Errorf("expected existing identity %s, got %s", registered.ID, identity.ID)
	}
}
