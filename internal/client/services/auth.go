package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/eportfolio/internal/client/auth"
	"github.com/dmitrijs2005/eportfolio/internal/common"
)

// AuthService keeps the bearer token the CLI sends to the CV API.
//
// Contract:
//   - Login: store a token issued by the portfolio site.
//   - Logout: forget the stored token.
//   - Whoami: describe the stored token.
type AuthService interface {
	Login(ctx context.Context, token string) (auth.Identity, error)
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) (auth.Identity, error)
}

type authService struct {
	tokenFile string
	tokens    auth.TokenSource
	now       func() time.Time
}

// NewAuthService stores tokens in tokenFile. tokens is the source the rest of
// the client reads from and usually includes the file.
func NewAuthService(tokenFile string, tokens auth.TokenSource) AuthService {
	return &authService{tokenFile: tokenFile, tokens: tokens, now: time.Now}
}

// Login rejects blank and already expired tokens. Opaque tokens are stored
// as they are; JWTs yield the identity found in their claims.
func (a *authService) Login(_ context.Context, token string) (auth.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Identity{}, common.ErrAuthMissing
	}

	id, err := auth.Inspect(token)
	if err == nil && id.Expired(a.now()) {
		return auth.Identity{}, fmt.Errorf("%w: token expired at %s", common.ErrAuthMissing, id.ExpiresAt.Format(time.RFC3339))
	}

	if err := auth.SaveToken(a.tokenFile, token); err != nil {
		return auth.Identity{}, err
	}
	return id, nil
}

func (a *authService) Logout(context.Context) error {
	return auth.RemoveToken(a.tokenFile)
}

func (a *authService) Whoami(ctx context.Context) (auth.Identity, error) {
	if _, err := auth.Bearer(ctx, a.tokens, a.now()); err != nil {
		return auth.Identity{}, err
	}
	tok, err := a.tokens.Token(ctx)
	if err != nil {
		return auth.Identity{}, err
	}
	id, err := auth.Inspect(tok)
	if err != nil {
		// opaque token
		return auth.Identity{}, nil
	}
	return id, nil
}

// IsAuthError reports errors that require signing in again.
func IsAuthError(err error) bool {
	return errors.Is(err, common.ErrAuthMissing) || errors.Is(err, common.ErrUnauthorized)
}
