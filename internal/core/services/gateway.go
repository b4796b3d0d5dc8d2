package services

import (
	"context"
	"fmt"

	"github.com/liftly-labs/adsgate/internal/core/domain"
	"github.com/liftly-labs/adsgate/internal/core/ports/driving"
)

// Ensure GatewayService implements the interface.
var _ driving.Gateway = (*GatewayService)(nil)

// credentialResolver is the slice of Resolver the gateway needs.
type credentialResolver interface {
	Resolve(ctx context.Context, userID string) (*domain.CredentialRecord, error)
}

// tokenSource is the slice of TokenCache the gateway needs.
type tokenSource interface {
	GetValidToken(ctx context.Context, rec *domain.CredentialRecord) (string, error)
	Invalidate(id domain.Identity)
}

// GatewayService composes the resolver and token cache into the single call
// downstream feature handlers use. Raw client secrets and refresh tokens
// stop here; only the assembled CallContext leaves this layer.
type GatewayService struct {
	resolver credentialResolver
	tokens   tokenSource
}

// NewGatewayService creates the gateway facade.
func NewGatewayService(resolver *Resolver, tokens *TokenCache) *GatewayService {
	return &GatewayService{
		resolver: resolver,
		tokens:   tokens,
	}
}

// CallContext resolves credentials for the user, obtains a fresh access
// token for the resolved identity, and assembles the call context.
func (g *GatewayService) CallContext(ctx context.Context, userID string) (*domain.CallContext, error) {
	rec, err := g.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	token, err := g.tokens.GetValidToken(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("obtaining access token for %s: %w", rec.Identity, err)
	}

	return &domain.CallContext{
		AccessToken:    token,
		DeveloperToken: rec.DeveloperToken,
		CustomerID:     rec.CustomerID,
	}, nil
}

// Invalidate drops the cached token for the user's resolved identity.
func (g *GatewayService) Invalidate(ctx context.Context, userID string) error {
	rec, err := g.resolver.Resolve(ctx, userID)
	if err != nil {
		return err
	}
	g.tokens.Invalidate(rec.Identity)
	return nil
}
