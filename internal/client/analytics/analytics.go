// Package analytics keeps per-user activity counters on this device and
// derives achievement badges from them.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/eportfolio/internal/client/storage"
	"github.com/dmitrijs2005/eportfolio/internal/logging"
)

type Counter string

const (
	PublicViews          Counter = "publicViews"
	ShareClicks          Counter = "shareClicks"
	ProjectDetailViews   Counter = "projectDetailViews"
	CertificateFileOpens Counter = "certificateFileOpens"
	CVDownloads          Counter = "cvDownloads"
)

var Counters = []Counter{PublicViews, ShareClicks, ProjectDetailViews, CertificateFileOpens, CVDownloads}

func ParseCounter(s string) (Counter, error) {
	for _, c := range Counters {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown counter %q", s)
}

type Snapshot struct {
	PublicViews          int            `json:"publicViews"`
	ShareClicks          int            `json:"shareClicks"`
	ProjectDetailViews   int            `json:"projectDetailViews"`
	CertificateFileOpens int            `json:"certificateFileOpens"`
	CVDownloads          int            `json:"cvDownloads"`
	LastUpdated          time.Time      `json:"lastUpdated"`
	MonthlyActivity      map[string]int `json:"monthlyActivity"`
}

func (s *Snapshot) field(c Counter) *int {
	switch c {
	case PublicViews:
		return &s.PublicViews
	case ShareClicks:
		return &s.ShareClicks
	case ProjectDetailViews:
		return &s.ProjectDetailViews
	case CertificateFileOpens:
		return &s.CertificateFileOpens
	case CVDownloads:
		return &s.CVDownloads
	}
	return nil
}

func (s Snapshot) Get(c Counter) int {
	if p := s.field(c); p != nil {
		return *p
	}
	return 0
}

type MonthCount struct {
	Month string
	Count int
}

// Months lists monthly activity oldest first.
func (s Snapshot) Months() []MonthCount {
	out := make([]MonthCount, 0, len(s.MonthlyActivity))
	for m, n := range s.MonthlyActivity {
		out = append(out, MonthCount{Month: m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func StorageKey(userID string) string {
	return "eportfolio.analytics.v1." + userID
}

type Tracker struct {
	kv     storage.KV
	logger logging.Logger
	now    func() time.Time
}

func NewTracker(kv storage.KV, logger logging.Logger) *Tracker {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Tracker{kv: kv, logger: logger, now: time.Now}
}

func (t *Tracker) fresh() Snapshot {
	return Snapshot{LastUpdated: t.now().UTC(), MonthlyActivity: map[string]int{}}
}

func (t *Tracker) decode(ctx context.Context, key string, raw []byte, ok bool) Snapshot {
	s := t.fresh()
	if !ok {
		return s
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		t.logger.Warn(ctx, "discarding stored analytics", "key", key, "error", err)
		return t.fresh()
	}
	if s.MonthlyActivity == nil {
		s.MonthlyActivity = map[string]int{}
	}
	return s
}

// Read returns the counters of userID; missing or unreadable data reads as a
// fresh snapshot.
func (t *Tracker) Read(ctx context.Context, userID string) (Snapshot, error) {
	key := StorageKey(userID)
	raw, ok, err := t.kv.Load(ctx, key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read analytics: %w", err)
	}
	return t.decode(ctx, key, raw, ok), nil
}

// Bump adds one to counter c and to the current month's activity.
func (t *Tracker) Bump(ctx context.Context, userID string, c Counter) (Snapshot, error) {
	if _, err := ParseCounter(string(c)); err != nil {
		return Snapshot{}, err
	}

	key := StorageKey(userID)
	var next Snapshot
	err := t.kv.Update(ctx, key, func(cur []byte, ok bool) ([]byte, error) {
		next = t.decode(ctx, key, cur, ok)
		now := t.now().UTC()

		*next.field(c)++
		next.MonthlyActivity[now.Format("2006-01")]++
		next.LastUpdated = now
		return json.Marshal(next)
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("bump %s: %w", c, err)
	}
	return next, nil
}

type Badge struct {
	ID          string
	Title       string
	Description string
	Unlocked    bool
}

// Totals are the collection sizes badges depend on.
type Totals struct {
	Certificates int
	Projects     int
	Documents    int
}

func Badges(tot Totals, s Snapshot) []Badge {
	return []Badge{
		{"cert-collector", "Certificate Collector", "Add 3+ certificates", tot.Certificates >= 3},
		{"project-builder", "Project Builder", "Publish 3+ projects", tot.Projects >= 3},
		{"cv-architect", "CV Architect", "Create 2+ CV versions", tot.Documents >= 2},
		{"public-voice", "Public Voice", "Get 10+ public views", s.PublicViews >= 10},
		{"link-sharer", "Link Sharer", "Share the public link 3+ times", s.ShareClicks >= 3},
		{"detail-explorer", "Detail Explorer", "Open project detail 5+ times", s.ProjectDetailViews >= 5},
	}
}
