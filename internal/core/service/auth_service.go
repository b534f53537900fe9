package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/ports"
)

const minPasswordLen = 6

// AuthService is the identity provider behind every portal session: password
// and federated identities, and the signed tokens that remember them.
type AuthService struct {
	repo      ports.IdentityRepository
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(repo ports.IdentityRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL, now: time.Now}
}

// TokenTTL is how long issued tokens stay valid.
func (s *AuthService) TokenTTL() time.Duration { return s.tokenTTL }

func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, *domain.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	if len(password) < minPasswordLen {
		return "", nil, domain.ErrWeakPassword
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return "", nil, domain.ErrIdentityExists
	} else if !errors.Is(err, domain.ErrIdentityNotFound) {
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.Identity{
		DisplayName:  strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Provider:     domain.ProviderPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(created)
	if err != nil {
		return "", nil, err
	}
	return token, created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	identity, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrIdentityNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if identity.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(identity)
	if err != nil {
		return "", nil, err
	}
	return token, identity, nil
}

// FederatedLogin signs in the identity the provider vouched for, creating it
// on first use. An existing account with the same email is reused.
func (s *AuthService) FederatedLogin(ctx context.Context, p *domain.FederatedProfile) (string, *domain.Identity, error) {
	if p == nil || p.Subject == "" || p.Email == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	identity, err := s.repo.FindBySubject(ctx, p.Provider, p.Subject)
	if errors.Is(err, domain.ErrIdentityNotFound) {
		identity, err = s.repo.FindByEmail(ctx, p.Email)
	}
	if errors.Is(err, domain.ErrIdentityNotFound) {
		now := s.now().UTC()
		name := p.DisplayName
		if name == "" {
			name = p.Email
		}
		identity, err = s.repo.Create(ctx, &domain.Identity{
			DisplayName: name,
			Email:       p.Email,
			Provider:    p.Provider,
			Subject:     p.Subject,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(identity)
	if err != nil {
		return "", nil, err
	}
	return token, identity, nil
}

// Verify checks a token and returns the identity it was issued for.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, domain.ErrInvalidToken
	}

	identity, err := s.repo.FindByID(ctx, sub)
	if errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, domain.ErrInvalidToken
	}
	return identity, err
}

func (s *AuthService) generateToken(identity *domain.Identity) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   identity.ID,
		"email": identity.Email,
		"name":  identity.DisplayName,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
