// Package services contains the application services behind the eportfolio
// CLI. CvService applies user edits to the local CV collection and mirrors
// the primary document to the remote CV record.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/eportfolio/internal/client/analytics"
	"github.com/dmitrijs2005/eportfolio/internal/client/documents"
	"github.com/dmitrijs2005/eportfolio/internal/client/idgen"
	"github.com/dmitrijs2005/eportfolio/internal/client/models"
	"github.com/dmitrijs2005/eportfolio/internal/client/remote"
	"github.com/dmitrijs2005/eportfolio/internal/client/syncer"
	"github.com/dmitrijs2005/eportfolio/internal/common"
	"github.com/dmitrijs2005/eportfolio/internal/logging"
	"github.com/dmitrijs2005/eportfolio/internal/netx"
)

// CvService defines the CV operations offered to the user.
//
// Mutations persist locally first. A non-nil error next to a Result with
// Saved set means the local change was kept and only the remote sync failed.
type CvService interface {
	// Bootstrap loads the user's collection and seeds it from the remote CV
	// when it is empty.
	Bootstrap(ctx context.Context) ([]models.CvDocument, error)
	Create(ctx context.Context, d Draft) (Result, error)
	Edit(ctx context.Context, id string, d Draft) (Result, error)
	Delete(ctx context.Context, id string) (Result, error)
	SetPrimary(ctx context.Context, id string) (Result, error)
	// Resync pushes the current primary again, or removes the remote record
	// when the collection is empty.
	Resync(ctx context.Context) (Result, error)
	// Public reads another user's public profile.
	Public(ctx context.Context, userID string) (*models.Portfolio, error)
}

// Result reports a mutation. Document is the affected document; for Delete it
// is the removed one.
type Result struct {
	Document models.CvDocument
	Sync     syncer.Action
	Saved    bool
	Message  string
}

type Option func(*cvService)

func WithIDs(g idgen.Generator) Option { return func(s *cvService) { s.ids = g } }

func WithClock(now func() time.Time) Option { return func(s *cvService) { s.now = now } }

func WithLogger(l logging.Logger) Option { return func(s *cvService) { s.logger = l } }

// WithTracker counts public profile views.
func WithTracker(t *analytics.Tracker) Option { return func(s *cvService) { s.tracker = t } }

// WithUser scopes the service to a signed-in user. name feeds default titles.
func WithUser(id, name string) Option {
	return func(s *cvService) {
		s.userID = id
		s.userName = name
	}
}

type cvService struct {
	store   *documents.Store
	remote  remote.Client
	pusher  *syncer.Pusher
	tracker *analytics.Tracker
	ids     idgen.Generator
	now     func() time.Time
	logger  logging.Logger

	userID   string
	userName string
}

func NewCvService(store *documents.Store, rc remote.Client, opts ...Option) CvService {
	s := &cvService{
		store:  store,
		remote: rc,
		ids:    idgen.UUID{},
		now:    time.Now,
		logger: logging.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.pusher = syncer.NewPusher(rc, s.logger)
	return s
}

func (s *cvService) Bootstrap(ctx context.Context) ([]models.CvDocument, error) {
	docs, err := s.store.Load(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	if len(docs) > 0 || s.userID == "" {
		return docs, nil
	}

	rec, err := s.remote.FetchForUser(ctx, s.userID)
	if err != nil {
		return docs, fmt.Errorf("seed from remote cv: %w", err)
	}
	if rec == nil {
		return docs, nil
	}

	seeded, err := s.store.Add(ctx, Seed(*rec, s.userName, s.ids, s.now().UTC()))
	if err != nil {
		return docs, err
	}
	s.logger.Info(ctx, "cv collection seeded from remote", "id", seeded.ID)
	return s.store.List(), nil
}

func (s *cvService) Create(ctx context.Context, d Draft) (Result, error) {
	now := s.now().UTC()
	doc := d.Document(s.userName)
	doc.ID = s.ids.NewID()
	assignIDs(&doc, s.ids)
	doc.CreatedAt = now
	doc.UpdatedAt = now

	added, err := s.store.Add(ctx, doc)
	if err != nil {
		return Result{}, err
	}
	return s.sync(ctx, added, syncer.AfterAdd(added), msgSaved)
}

func (s *cvService) Edit(ctx context.Context, id string, d Draft) (Result, error) {
	existing, ok := s.store.Get(id)
	if !ok {
		return Result{}, fmt.Errorf("cv %s: %w", id, common.ErrNotFound)
	}

	doc := d.Document(s.userName)
	assignIDs(&doc, s.ids)
	doc.CreatedAt = existing.CreatedAt
	doc.UpdatedAt = s.now().UTC()

	updated, err := s.store.Update(ctx, id, doc)
	if err != nil {
		return Result{}, err
	}
	return s.sync(ctx, updated, syncer.AfterUpdate(s.store.List(), id), msgSaved)
}

func (s *cvService) Delete(ctx context.Context, id string) (Result, error) {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return s.sync(ctx, removed, syncer.AfterDelete(removed.IsPrimary, s.store.List()), msgDeleted)
}

func (s *cvService) SetPrimary(ctx context.Context, id string) (Result, error) {
	primary, err := s.store.SetPrimary(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return s.sync(ctx, primary, syncer.AfterSetPrimary(s.store.List(), id), msgPrimary)
}

func (s *cvService) Resync(ctx context.Context) (Result, error) {
	primary, ok := s.store.Primary()
	if !ok {
		return s.sync(ctx, models.CvDocument{}, syncer.Target{Action: syncer.Remove}, msgResynced)
	}
	return s.sync(ctx, primary, syncer.AfterSetPrimary(s.store.List(), primary.ID), msgResynced)
}

func (s *cvService) Public(ctx context.Context, userID string) (*models.Portfolio, error) {
	p, err := s.remote.FetchPortfolio(ctx, userID)
	if err != nil || p == nil {
		return p, err
	}
	if s.tracker != nil {
		if _, err := s.tracker.Bump(ctx, userID, analytics.PublicViews); err != nil {
			s.logger.Warn(ctx, "analytics not updated", "error", err)
		}
	}
	return p, nil
}

func (s *cvService) sync(ctx context.Context, doc models.CvDocument, t syncer.Target, msg string) (Result, error) {
	res := Result{Document: doc, Sync: t.Action, Saved: true}
	if err := s.pusher.Push(ctx, t); err != nil {
		if errors.Is(err, syncer.ErrSuperseded) {
			res.Message = msg
			return res, nil
		}
		return res, err
	}
	res.Message = msg
	return res, nil
}

const (
	msgSaved    = "CV saved and synced to backend."
	msgDeleted  = "CV deleted."
	msgPrimary  = "Primary CV updated."
	msgResynced = "Primary CV synced to backend."
)

// Describe turns an error from CvService into a message for the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, common.ErrAuthMissing):
		return "Authentication token is missing. Please sign in again."
	case errors.Is(err, common.ErrUnauthorized):
		return "Your session is not authorized. Please sign in again."
	case errors.Is(err, common.ErrNotFound):
		return "CV not found."
	case errors.Is(err, common.ErrValidation):
		return "CV cannot be synced: " + strings.TrimPrefix(err.Error(), "validation error: ")
	case errors.Is(err, common.ErrRemoteUnavailable):
		if msg := serverMessage(err); msg != "" {
			return msg + " Local changes are kept; run resync to retry."
		}
		return "Portfolio service is unavailable. Local changes are kept; run resync to retry."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Local changes are kept; run resync to retry."
	}
	return err.Error()
}

func serverMessage(err error) string {
	var apiErr *netx.APIError
	if !errors.As(err, &apiErr) {
		return ""
	}
	msg := strings.TrimSpace(apiErr.Message)
	if msg != "" && !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}
