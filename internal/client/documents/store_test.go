package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/dmitrijs2005/eportfolio/internal/client/models"
	"github.com/dmitrijs2005/eportfolio/internal/client/storage"
	"github.com/dmitrijs2005/eportfolio/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func doc(id, title string, updated time.Time) models.CvDocument {
	return models.CvDocument{
		ID:          id,
		Title:       title,
		Skills:      []models.CvSkill{},
		Experiences: []models.CvExperienceItem{},
		Educations:  []models.CvEducationItem{},
		CreatedAt:   t0,
		UpdatedAt:   updated,
	}
}

func newStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	kv := storage.NewMemory()
	s := New(kv)
	_, err := s.Load(context.Background(), "user-1")
	require.NoError(t, err)
	return s, kv
}

func primaries(docs []models.CvDocument) []string {
	var ids []string
	for _, d := range docs {
		if d.IsPrimary {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

type failingKV struct {
	*storage.Memory
	err error
}

func (f failingKV) Save(context.Context, string, []byte) error { return f.err }

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "eportfolio.cvDocuments.v1.user_2abc", StorageKey("user_2abc"))
	assert.Equal(t, "eportfolio.cvDocuments.v1.anonymous", StorageKey(""))
}

func TestAdd_FirstDocumentBecomesPrimary(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	a, err := s.Add(ctx, doc("a", "A", t0))
	require.NoError(t, err)
	assert.True(t, a.IsPrimary)

	docs := s.List()
	require.Len(t, docs, 1)
	assert.Equal(t, []string{"a"}, primaries(docs))
}

func TestAdd_NewDocumentTakesPrimary(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, doc("a", "A", t0))
	require.NoError(t, err)
	_, err = s.Add(ctx, doc("b", "B", t0))
	require.NoError(t, err)

	docs := s.List()
	require.Len(t, docs, 2)
	assert.False(t, docs[0].IsPrimary)
	assert.True(t, docs[1].IsPrimary)
}

func TestAdd_RejectsDuplicateAndEmptyID(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, doc("a", "A", t0))
	require.NoError(t, err)

	_, err = s.Add(ctx, doc("a", "again", t0))
	require.ErrorIs(t, err, common.ErrAlreadyExists)

	_, err = s.Add(ctx, doc(" ", "blank", t0))
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, 1, s.Len())
}

func TestDelete_PrimaryPromotesSurvivor(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, _ = s.Add(ctx, doc("a", "A", t0))
	_, _ = s.Add(ctx, doc("b", "B", t0.Add(time.Hour)))

	removed, err := s.Delete(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", removed.ID)

	docs := s.List()
	require.Len(t, docs, 1)
	assert.True(t, docs[0].IsPrimary)
}

func TestDelete_PromotesMostRecentlyUpdated(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, _ = s.Add(ctx, doc("old", "Old", t0))
	_, _ = s.Add(ctx, doc("fresh", "Fresh", t0.Add(2*time.Hour)))
	_, _ = s.Add(ctx, doc("mid", "Mid", t0.Add(time.Hour)))
	_, _ = s.Add(ctx, doc("p", "P", t0))

	_, err := s.Delete(ctx, "p")
	require.NoError(t, err)

	p, ok := s.Primary()
	require.True(t, ok)
	assert.Equal(t, "fresh", p.ID)
}

func TestDelete_TieGoesToLaterInStorageOrder(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, _ = s.Add(ctx, doc("a", "A", t0))
	_, _ = s.Add(ctx, doc("b", "B", t0))
	_, _ = s.Add(ctx, doc("c", "C", t0))

	_, err := s.Delete(ctx, "c")
	require.NoError(t, err)

	p, _ := s.Primary()
	assert.Equal(t, "b", p.ID)
}

func TestDelete_LastDocumentEmptiesCollection(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, _ = s.Add(ctx, doc("a", "A", t0))
	_, err := s.Delete(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, 0, s.Len())
	_, ok := s.Primary()
	assert.False(t, ok)
}

func TestDelete_NonPrimaryKeepsPrimary(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, _ = s.Add(ctx, doc("a", "A", t0))
	_, _ = s.Add(ctx, doc("b", "B", t0))

	_, err := s.Delete(ctx, "a")
	require.NoError(t, err)

	p, _ := s.Primary()
	assert.Equal(t, "b", p.ID)
}

func TestSetPrimary_SwitchesAndIsIdempotent(t *testing.T) {
	s, kv := newStore(t)
	ctx := context.Background()

	_, _ = s.Add(ctx, doc("a", "A", t0))
	_, _ = s.Add(ctx, doc("b", "B", t0))

	_, err := s.SetPrimary(ctx, "a")
	require.NoError(t, err)
	once := s.List()
	raw1, _, _ := kv.Load(ctx, StorageKey("user-1"))

	_, err = s.SetPrimary(ctx, "a")
	require.NoError(t, err)
	twice := s.List()
	raw2, _, _ := kv.Load(ctx, StorageKey("user-1"))

	assert.Equal(t, once, twice)
	assert.Equal(t, raw1, raw2)
	assert.Equal(t, []string{"a"}, primaries(twice))
}

func TestUpdate_PreservesIDAndPrimaryFlag(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, _ = s.Add(ctx, doc("a", "A", t0))
	_, _ = s.Add(ctx, doc("b", "B", t0))

	edit := doc("ignored", "Backend CV", t0.Add(time.Hour))
	edit.IsPrimary = true
	got, err := s.Update(ctx, "a", edit)
	require.NoError(t, err)

	assert.Equal(t, "a", got.ID)
	assert.False(t, got.IsPrimary)
	assert.Equal(t, []string{"b"}, primaries(s.List()))

	stored, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Backend CV", stored.Title)
}

func TestUnknownID_IsNotFoundAndChangesNothing(t *testing.T) {
	s, kv := newStore(t)
	ctx := context.Background()
	_, _ = s.Add(ctx, doc("a", "A", t0))
	before, _, _ := kv.Load(ctx, StorageKey("user-1"))

	_, err := s.Update(ctx, "zzz", doc("zzz", "Z", t0))
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = s.Delete(ctx, "zzz")
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = s.SetPrimary(ctx, "zzz")
	require.ErrorIs(t, err, common.ErrNotFound)

	after, _, _ := kv.Load(ctx, StorageKey("user-1"))
	assert.Equal(t, before, after)
	assert.Equal(t, 1, s.Len())
}

func TestSinglePrimaryInvariant_RandomOperations(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(42))
	next := 0

	for step := 0; step < 500; step++ {
		docs := s.List()
		pick := func() string {
			if len(docs) == 0 {
				return "missing"
			}
			return docs[rnd.Intn(len(docs))].ID
		}

		switch rnd.Intn(4) {
		case 0:
			next++
			_, _ = s.Add(ctx, doc(fmt.Sprintf("d%d", next), "T", t0.Add(time.Duration(rnd.Intn(5))*time.Minute)))
		case 1:
			id := pick()
			_, _ = s.Update(ctx, id, doc(id, "U", t0.Add(time.Duration(rnd.Intn(5))*time.Minute)))
		case 2:
			_, _ = s.Delete(ctx, pick())
		case 3:
			_, _ = s.SetPrimary(ctx, pick())
		}

		docs = s.List()
		if len(docs) == 0 {
			continue
		}
		require.Len(t, primaries(docs), 1, "step %d", step)
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()

	s := New(kv)
	_, err := s.Load(ctx, "u")
	require.NoError(t, err)

	a := doc("a", "A", t0)
	a.Profession = "Engineer"
	a.Skills = []models.CvSkill{{ID: "s1", Name: "Go", Level: models.SkillHigh}}
	a.Experiences = []models.CvExperienceItem{{ID: "e1", Company: "Acme", Position: "Dev", StartDate: "2020", IsCurrent: true}}
	a.Educations = []models.CvEducationItem{{ID: "ed1", Institution: "MIT", Degree: "BSc", StartDate: "2014", EndDate: "2018"}}
	_, err = s.Add(ctx, a)
	require.NoError(t, err)
	_, err = s.Add(ctx, doc("b", "B", t0.Add(time.Minute)))
	require.NoError(t, err)
	want := s.List()

	got, err := New(kv).Load(ctx, "u")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_IsScopedPerUser(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()
	s := New(kv)

	_, _ = s.Load(ctx, "alice")
	_, _ = s.Add(ctx, doc("a", "A", t0))

	docs, err := s.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLoad_MalformedPayloadYieldsEmpty(t *testing.T) {
	cases := map[string]string{
		"not json":      `{{{`,
		"not an array":  `{"id":"a"}`,
		"missing id":    `[{"title":"x","isPrimary":true,"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`,
		"bad level":     `[{"id":"a","title":"x","isPrimary":true,"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z","skills":[{"id":"s","name":"Go","level":"Guru"}]}]`,
		"bad timestamp": `[{"id":"a","title":"x","isPrimary":true,"createdAt":"yesterday","updatedAt":"2024-01-01T00:00:00Z"}]`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			kv := storage.NewMemory()
			ctx := context.Background()
			require.NoError(t, kv.Save(ctx, StorageKey("u"), []byte(payload)))

			docs, err := New(kv).Load(ctx, "u")
			require.NoError(t, err)
			assert.Empty(t, docs)
		})
	}
}

func TestLoad_RepairsPrimaryFlags(t *testing.T) {
	ctx := context.Background()
	build := func(flags ...bool) []byte {
		var docs []models.CvDocument
		for i, f := range flags {
			d := doc(fmt.Sprintf("d%d", i), "T", t0)
			d.IsPrimary = f
			docs = append(docs, d)
		}
		b, err := json.Marshal(docs)
		require.NoError(t, err)
		return b
	}

	kv := storage.NewMemory()
	require.NoError(t, kv.Save(ctx, StorageKey("none"), build(false, false)))
	require.NoError(t, kv.Save(ctx, StorageKey("many"), build(false, true, true)))

	docs, err := New(kv).Load(ctx, "none")
	require.NoError(t, err)
	assert.Equal(t, []string{"d0"}, primaries(docs))

	docs, err = New(kv).Load(ctx, "many")
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, primaries(docs))
}

func TestLoad_AcceptsNullRowLists(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()
	payload := `[{"id":"a","title":"x","isPrimary":true,"createdAt":"2024-01-01T00:00:00.000Z","updatedAt":"2024-01-01T00:00:00.000Z","skills":null}]`
	require.NoError(t, kv.Save(ctx, StorageKey("u"), []byte(payload)))

	docs, err := New(kv).Load(ctx, "u")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotNil(t, docs[0].Skills)
	assert.Empty(t, docs[0].Skills)
}

func TestMutation_PersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	boom := errors.New("disk full")

	s := New(failingKV{Memory: mem, err: boom})
	_, err := s.Load(ctx, "u")
	require.NoError(t, err)

	_, err = s.Add(ctx, doc("a", "A", t0))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Len())
}

func TestSubscribe_ReceivesSnapshots(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	var seen [][]models.CvDocument
	unsubscribe := s.Subscribe(func(docs []models.CvDocument) {
		seen = append(seen, docs)
	})

	_, _ = s.Add(ctx, doc("a", "A", t0))
	_, _ = s.Update(ctx, "missing", doc("missing", "M", t0))
	_, _ = s.Add(ctx, doc("b", "B", t0))
	unsubscribe()
	unsubscribe()

	require.Len(t, seen, 2)
	seen[1][0].Title = "mutated"
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A", got.Title, "snapshots are copies")

	_, _ = s.Delete(ctx, "a")

	require.Len(t, seen, 2)
	assert.Len(t, seen[0], 1)
	assert.Len(t, seen[1], 2)
}
