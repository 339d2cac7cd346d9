package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/eportfolio/internal/client/analytics"
	"github.com/dmitrijs2005/eportfolio/internal/client/documents"
	"github.com/dmitrijs2005/eportfolio/internal/client/idgen"
	"github.com/dmitrijs2005/eportfolio/internal/client/models"
	"github.com/dmitrijs2005/eportfolio/internal/client/storage"
	"github.com/dmitrijs2005/eportfolio/internal/client/syncer"
	"github.com/dmitrijs2005/eportfolio/internal/common"
	"github.com/dmitrijs2005/eportfolio/internal/netx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	mu        sync.Mutex
	saved     []models.CvRecord
	removed   int
	fetched   int
	record    *models.CvRecord
	portfolio *models.Portfolio
	err       error
	fetchErr  error
}

func (f *fakeRemote) FetchForUser(context.Context, string) (*models.CvRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched++
	return f.record, f.fetchErr
}

func (f *fakeRemote) FetchPortfolio(context.Context, string) (*models.Portfolio, error) {
	return f.portfolio, f.fetchErr
}

func (f *fakeRemote) Save(_ context.Context, rec models.CvRecord) (*models.CvRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, rec)
	return &rec, nil
}

func (f *fakeRemote) Remove(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.removed++
	return nil
}

func (f *fakeRemote) lastSaved(t *testing.T) models.CvRecord {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.saved)
	return f.saved[len(f.saved)-1]
}

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type env struct {
	svc    CvService
	store  *documents.Store
	remote *fakeRemote
	clock  *time.Time
}

func newEnv(t *testing.T, rc *fakeRemote, opts ...Option) *env {
	t.Helper()
	store := documents.New(storage.NewMemory())
	clock := t0
	e := &env{store: store, remote: rc, clock: &clock}
	opts = append([]Option{
		WithIDs(idgen.NewSequence("id")),
		WithClock(func() time.Time { return *e.clock }),
		WithUser("u1", "Ada Lovelace"),
	}, opts...)
	e.svc = NewCvService(store, rc, opts...)
	return e
}

func (e *env) tick() { *e.clock = e.clock.Add(time.Minute) }

func primaryIDs(docs []models.CvDocument) []string {
	var out []string
	for _, d := range docs {
		if d.IsPrimary {
			out = append(out, d.ID)
		}
	}
	return out
}

func TestBootstrap_SeedsFromRemote(t *testing.T) {
	rc := &fakeRemote{record: &models.CvRecord{
		Profession:  "Backend Engineer",
		City:        "Riga",
		Skills:      []string{"Go", "SQL"},
		Experiences: []models.RecordExperience{{Company: "Acme", Position: "Dev", Period: "2020 - Present"}},
		Educations:  []models.RecordEducation{{Institution: "LU", Degree: "CS", Year: "2015 - 2019"}},
	}}
	e := newEnv(t, rc)

	docs, err := e.svc.Bootstrap(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	d := docs[0]
	assert.Equal(t, "Backend Engineer CV", d.Title)
	assert.True(t, d.IsPrimary)
	assert.Equal(t, []models.CvSkill{
		{ID: "id-2", Name: "Go", Level: models.SkillMedium},
		{ID: "id-3", Name: "SQL", Level: models.SkillMedium},
	}, d.Skills)
	assert.Equal(t, "2020 - Present", d.Experiences[0].Description)
	assert.True(t, d.Experiences[0].IsCurrent)
	assert.Equal(t, "CS", d.Educations[0].Profession)
	assert.Equal(t, "2015 - 2019", d.Educations[0].Degree)
	assert.Empty(t, rc.saved, "seeding does not push")

	// a second bootstrap finds the seeded collection
	_, err = e.svc.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rc.fetched)
}

func TestBootstrap_NoRemoteCV(t *testing.T) {
	e := newEnv(t, &fakeRemote{})
	docs, err := e.svc.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestBootstrap_RemoteErrorKeepsEmptyCollection(t *testing.T) {
	e := newEnv(t, &fakeRemote{fetchErr: fmt.Errorf("fetch: %w", common.ErrRemoteUnavailable)})
	docs, err := e.svc.Bootstrap(context.Background())
	require.ErrorIs(t, err, common.ErrRemoteUnavailable)
	assert.Empty(t, docs)
}

func TestBootstrap_AnonymousSkipsRemote(t *testing.T) {
	rc := &fakeRemote{record: &models.CvRecord{Profession: "X"}}
	e := newEnv(t, rc, WithUser("", ""))
	docs, err := e.svc.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Zero(t, rc.fetched)
}

func TestCreate_SavesAndSyncs(t *testing.T) {
	e := newEnv(t, &fakeRemote{})
	res, err := e.svc.Create(context.Background(), Draft{
		Title:      "  ",
		Profession: " Engineer ",
		Skills:     []models.CvSkill{{Name: "Go"}, {Name: "  "}},
	})
	require.NoError(t, err)

	assert.True(t, res.Saved)
	assert.Equal(t, syncer.Save, res.Sync)
	assert.Equal(t, "CV saved and synced to backend.", res.Message)
	assert.Equal(t, "id-1", res.Document.ID)
	assert.Equal(t, "Ada Lovelace CV", res.Document.Title)
	assert.Equal(t, []models.CvSkill{{ID: "id-2", Name: "Go", Level: models.SkillMedium}}, res.Document.Skills)
	assert.Equal(t, t0, res.Document.CreatedAt)

	rec := e.remote.lastSaved(t)
	assert.Equal(t, "Engineer", rec.Profession)
	assert.Equal(t, []string{"Go"}, rec.Skills)
}

func TestCreate_NewDocumentBecomesPrimary(t *testing.T) {
	e := newEnv(t, &fakeRemote{})
	ctx := context.Background()
	_, err := e.svc.Create(ctx, Draft{Title: "A"})
	require.NoError(t, err)
	res, err := e.svc.Create(ctx, Draft{Title: "B"})
	require.NoError(t, err)

	assert.Equal(t, []string{res.Document.ID}, primaryIDs(e.store.List()))
	assert.Len(t, e.remote.saved, 2)
}

func TestEdit_SyncsOnlyPrimary(t *testing.T) {
	e := newEnv(t, &fakeRemote{})
	ctx := context.Background()
	a, err := e.svc.Create(ctx, Draft{Title: "A", Profession: "First"})
	require.NoError(t, err)
	b, err := e.svc.Create(ctx, Draft{Title: "B", Profession: "Second"})
	require.NoError(t, err)
	require.Len(t, e.remote.saved, 2)

	e.tick()
	res, err := e.svc.Edit(ctx, a.Document.ID, Draft{Title: "A2", Profession: "First2"})
	require.NoError(t, err)
	assert.Equal(t, syncer.Skip, res.Sync)
	assert.Len(t, e.remote.saved, 2)
	assert.False(t, res.Document.IsPrimary)
	assert.Equal(t, t0, res.Document.CreatedAt)
	assert.Equal(t, t0.Add(time.Minute), res.Document.UpdatedAt)

	res, err = e.svc.Edit(ctx, b.Document.ID, Draft{Title: "B2", Profession: "Second2"})
	require.NoError(t, err)
	assert.Equal(t, syncer.Save, res.Sync)
	assert.Equal(t, "Second2", e.remote.lastSaved(t).Profession)
}

func TestEdit_UnknownID(t *testing.T) {
	e := newEnv(t, &fakeRemote{})
	_, err := e.svc.Edit(context.Background(), "missing", Draft{Title: "x"})
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "CV not found.", Describe(err))
}

func TestDelete_PromotesAndSyncs(t *testing.T) {
	e := newEnv(t, &fakeRemote{})
	ctx := context.Background()
	a, _ := e.svc.Create(ctx, Draft{Title: "A", Profession: "Survivor"})
	e.tick()
	b, _ := e.svc.Create(ctx, Draft{Title: "B", Profession: "Doomed"})

	res, err := e.svc.Delete(ctx, b.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, "CV deleted.", res.Message)
	assert.Equal(t, syncer.Save, res.Sync)
	assert.Equal(t, "Survivor", e.remote.lastSaved(t).Profession)
	assert.Equal(t, []string{a.Document.ID}, primaryIDs(e.store.List()))

	res, err = e.svc.Delete(ctx, a.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, syncer.Remove, res.Sync)
	assert.Equal(t, 1, e.remote.removed)
	assert.Zero(t, e.store.Len())
}

func TestDelete_NonPrimarySkipsRemote(t *testing.T) {
	e := newEnv(t, &fakeRemote{})
	ctx := context.Background()
	a, _ := e.svc.Create(ctx, Draft{Title: "A"})
	_, _ = e.svc.Create(ctx, Draft{Title: "B"})

	res, err := e.svc.Delete(ctx, a.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, syncer.Skip, res.Sync)
	assert.Len(t, e.remote.saved, 2)
	assert.Zero(t, e.remote.removed)
}

func TestSetPrimary_Syncs(t *testing.T) {
	e := newEnv(t, &fakeRemote{})
	ctx := context.Background()
	a, _ := e.svc.Create(ctx, Draft{Title: "A", Profession: "Old"})
	_, _ = e.svc.Create(ctx, Draft{Title: "B", Profession: "New"})

	res, err := e.svc.SetPrimary(ctx, a.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, "Primary CV updated.", res.Message)
	assert.True(t, res.Document.IsPrimary)
	assert.Equal(t, "Old", e.remote.lastSaved(t).Profession)
	assert.Equal(t, []string{a.Document.ID}, primaryIDs(e.store.List()))
}

func TestRemoteFailure_KeepsLocalChange(t *testing.T) {
	rc := &fakeRemote{err: fmt.Errorf("save cv: %w: %w", common.ErrRemoteUnavailable,
		&netx.APIError{Status: 500, Message: "Database is down"})}
	e := newEnv(t, rc)

	res, err := e.svc.Create(context.Background(), Draft{Title: "A"})
	require.ErrorIs(t, err, common.ErrRemoteUnavailable)
	assert.True(t, res.Saved)
	assert.Empty(t, res.Message)
	assert.Equal(t, 1, e.store.Len())
	assert.Equal(t, "Database is down. Local changes are kept; run resync to retry.", Describe(err))

	rc.err = nil
	res, err = e.svc.Resync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, syncer.Save, res.Sync)
	assert.Len(t, rc.saved, 1)
}

func TestValidationFailure_KeepsLocalChangeWithoutRemoteCall(t *testing.T) {
	e := newEnv(t, &fakeRemote{})
	res, err := e.svc.Create(context.Background(), Draft{Title: "A", ContactEmail: "not-an-email"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.True(t, res.Saved)
	assert.Equal(t, 1, e.store.Len())
	assert.Empty(t, e.remote.saved)
	assert.Contains(t, Describe(err), "CV cannot be synced: invalid")
}

func TestResync_EmptyCollectionRemoves(t *testing.T) {
	e := newEnv(t, &fakeRemote{})
	res, err := e.svc.Resync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, syncer.Remove, res.Sync)
	assert.Equal(t, 1, e.remote.removed)
}

func TestPublic_CountsView(t *testing.T) {
	kv := storage.NewMemory()
	tracker := analytics.NewTracker(kv, nil)
	rc := &fakeRemote{portfolio: &models.Portfolio{FullName: "Grace"}}
	e := newEnv(t, rc, WithTracker(tracker))

	p, err := e.svc.Public(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, "Grace", p.FullName)

	snap, err := tracker.Read(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Get(analytics.PublicViews))

	rc.portfolio = nil
	p, err = e.svc.Public(context.Background(), "u3")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{common.ErrAuthMissing, "Authentication token is missing. Please sign in again."},
		{fmt.Errorf("x: %w: %w", common.ErrRemoteUnavailable, common.ErrUnauthorized), "Your session is not authorized. Please sign in again."},
		{fmt.Errorf("x: %w", common.ErrRemoteUnavailable), "Portfolio service is unavailable. Local changes are kept; run resync to retry."},
		{context.DeadlineExceeded, "The request timed out. Local changes are kept; run resync to retry."},
		{errors.New("disk full"), "disk full"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Describe(tt.err))
	}
}
