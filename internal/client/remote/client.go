// Package remote talks to the portfolio REST API that keeps one CV per user.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/eportfolio/internal/client/auth"
	"github.com/dmitrijs2005/eportfolio/internal/client/models"
	"github.com/dmitrijs2005/eportfolio/internal/common"
	"github.com/dmitrijs2005/eportfolio/internal/logging"
	"github.com/dmitrijs2005/eportfolio/internal/netx"
)

// Client is the remote CV record API.
type Client interface {
	// FetchForUser returns the public CV of userID, or nil when the user has
	// none.
	FetchForUser(ctx context.Context, userID string) (*models.CvRecord, error)
	// FetchPortfolio returns the whole public profile, or nil when absent.
	FetchPortfolio(ctx context.Context, userID string) (*models.Portfolio, error)
	Save(ctx context.Context, rec models.CvRecord) (*models.CvRecord, error)
	Remove(ctx context.Context) error
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  auth.TokenSource
	logger  logging.Logger
	now     func() time.Time
}

func NewHTTPClient(baseURL string, timeout time.Duration, tokens auth.TokenSource, logger logging.Logger) *HTTPClient {
	if logger == nil {
		logger = logging.Nop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger,
		now:     time.Now,
	}
}

func (c *HTTPClient) FetchPortfolio(ctx context.Context, userID string) (*models.Portfolio, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: empty user id", common.ErrValidation)
	}

	var p models.Portfolio
	u := c.baseURL + "/api/public/portfolio/" + url.PathEscape(userID)
	err := netx.DoJSON(ctx, c.http, http.MethodGet, u, nil, nil, &p)
	if err != nil {
		if isAbsent(err) {
			c.logger.Debug(ctx, "public portfolio absent", "user", userID)
			return nil, nil
		}
		return nil, c.mapError(ctx, "fetch portfolio", err)
	}
	return &p, nil
}

func (c *HTTPClient) FetchForUser(ctx context.Context, userID string) (*models.CvRecord, error) {
	p, err := c.FetchPortfolio(ctx, userID)
	if err != nil || p == nil {
		return nil, err
	}
	return p.CV, nil
}

func (c *HTTPClient) Save(ctx context.Context, rec models.CvRecord) (*models.CvRecord, error) {
	h, err := c.authHeader(ctx)
	if err != nil {
		return nil, err
	}

	var saved models.CvRecord
	if err := netx.DoJSON(ctx, c.http, http.MethodPost, c.baseURL+"/api/cv", h, rec, &saved); err != nil {
		return nil, c.mapError(ctx, "save cv", err)
	}
	return &saved, nil
}

func (c *HTTPClient) Remove(ctx context.Context) error {
	h, err := c.authHeader(ctx)
	if err != nil {
		return err
	}
	if err := netx.DoJSON(ctx, c.http, http.MethodDelete, c.baseURL+"/api/cv", h, nil, nil); err != nil {
		return c.mapError(ctx, "remove cv", err)
	}
	return nil
}

func (c *HTTPClient) authHeader(ctx context.Context) (http.Header, error) {
	bearer, err := auth.Bearer(ctx, c.tokens, c.now())
	if err != nil {
		return nil, err
	}
	return http.Header{"Authorization": {bearer}}, nil
}

// mapError classifies every failure as ErrRemoteUnavailable; 401 and 403
// additionally match ErrUnauthorized. The original error stays in the chain
// so callers can show the server's message.
func (c *HTTPClient) mapError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	c.logger.Warn(ctx, "remote call failed", "op", op, "error", err)

	var apiErr *netx.APIError
	if errors.As(err, &apiErr) &&
		(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		return fmt.Errorf("%s: %w: %w: %w", op, common.ErrRemoteUnavailable, common.ErrUnauthorized, err)
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrRemoteUnavailable, err)
}

// isAbsent reports a public read for a user with no profile.
func isAbsent(err error) bool {
	var apiErr *netx.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusNotFound ||
		strings.Contains(strings.ToLower(apiErr.Message), "user not found")
}
