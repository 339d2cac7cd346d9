// Package auth supplies the bearer credential for the CV API. Tokens are
// issued elsewhere; this client only stores them and reads their claims.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/eportfolio/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenSource returns the current bearer token, or "" when signed out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Static string

func (s Static) Token(context.Context) (string, error) { return string(s), nil }

// File reads the token from a file written by SaveToken.
type File struct {
	Path string
}

func (f File) Token(context.Context) (string, error) {
	if f.Path == "" {
		return "", nil
	}
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// Chain returns the first non-empty token of its sources.
type Chain []TokenSource

func (c Chain) Token(ctx context.Context) (string, error) {
	for _, s := range c {
		tok, err := s.Token(ctx)
		if err != nil {
			return "", err
		}
		if tok != "" {
			return tok, nil
		}
	}
	return "", nil
}

func SaveToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(token)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func RemoveToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Identity is what the client can learn from a token without its key.
type Identity struct {
	UserID    string
	Email     string
	Name      string
	ExpiresAt time.Time
}

func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Inspect decodes the claims of a JWT without verifying its signature; the
// server does that. Opaque tokens yield an error.
func Inspect(token string) (Identity, error) {
	c := &claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, c); err != nil {
		return Identity{}, fmt.Errorf("parse token: %w", err)
	}
	id := Identity{UserID: c.Subject, Email: c.Email, Name: c.Name}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id, nil
}

// Bearer returns the Authorization header value, or ErrAuthMissing when no
// usable token is available.
func Bearer(ctx context.Context, src TokenSource, now time.Time) (string, error) {
	if src == nil {
		return "", common.ErrAuthMissing
	}
	tok, err := src.Token(ctx)
	if err != nil {
		return "", err
	}
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return "", common.ErrAuthMissing
	}
	if id, err := Inspect(tok); err == nil && id.Expired(now) {
		return "", fmt.Errorf("%w: token expired at %s", common.ErrAuthMissing, id.ExpiresAt.Format(time.RFC3339))
	}
	return "Bearer " + tok, nil
}
