package service

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/ticket-dataset/internal/auth"
	"github.com/spec-kit/ticket-dataset/internal/config"
	"github.com/spec-kit/ticket-dataset/pkg/util/errorutil"
)

// AuthService exchanges client credentials for access tokens.
type AuthService struct {
	clients  map[string]config.ClientCredential
	tokenMgr *auth.TokenManager
}

// IssuedToken is a signed access token.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
	Role      auth.Role
}

// NewAuthService builds the service, rejecting clients with unknown roles.
func NewAuthService(clients []config.ClientCredential, tokenMgr *auth.TokenManager) (*AuthService, error) {
	byID := make(map[string]config.ClientCredential, len(clients))
	for _, c := range clients {
		if !auth.Role(c.Role).Valid() {
			return nil, fmt.Errorf("client %s: unknown role %q", c.ID, c.Role)
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("client %s configured twice", c.ID)
		}
		byID[c.ID] = c
	}
	return &AuthService{clients: byID, tokenMgr: tokenMgr}, nil
}

// IssueToken verifies the client secret and signs a token for its role.
func (s *AuthService) IssueToken(_ context.Context, clientID, secret string) (IssuedToken, error) {
	client, ok := s.clients[clientID]
	if !ok {
		return IssuedToken{}, errorutil.NewUnauthorized("invalid client credentials")
	}
	if err := auth.CompareSecret(client.SecretHash, secret); err != nil {
		return IssuedToken{}, errorutil.NewUnauthorized("invalid client credentials")
	}
	role := auth.Role(client.Role)
	token, exp, err := s.tokenMgr.GenerateToken(client.ID, role)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: token, ExpiresAt: exp, Role: role}, nil
}
