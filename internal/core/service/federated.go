package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/ports"
)

const stateTTL = 10 * time.Minute

// FederatedFlow starts the provider popup for a portal session and maps the
// provider callback back to that session.
type FederatedFlow struct {
	exchanger ports.FederatedExchanger
	states    ports.TokenStore
}

func NewFederatedFlow(exchanger ports.FederatedExchanger, states ports.TokenStore) *FederatedFlow {
	return &FederatedFlow{exchanger: exchanger, states: states}
}

// Begin returns the consent URL the popup should open.
func (f *FederatedFlow) Begin(ctx context.Context, sessionID string) (string, error) {
	if f == nil || f.exchanger == nil || f.states == nil {
		return "", domain.ErrFederationDisabled
	}
	state := uuid.NewString()
	if err := f.states.SaveState(ctx, state, sessionID, stateTTL); err != nil {
		return "", fmt.Errorf("save oauth state: %w", err)
	}
	return f.exchanger.AuthCodeURL(state), nil
}

// Resolve consumes state and returns the session that started the flow.
func (f *FederatedFlow) Resolve(ctx context.Context, state string) (string, error) {
	if f == nil || f.states == nil {
		return "", domain.ErrFederationDisabled
	}
	if state == "" {
		return "", domain.ErrSessionNotFound
	}
	sid, err := f.states.ConsumeState(ctx, state)
	if errors.Is(err, domain.ErrSessionNotFound) || (err == nil && sid == "") {
		return "", domain.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("consume oauth state: %w", err)
	}
	return sid, nil
}
