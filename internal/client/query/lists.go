package query

import (
	"cmp"
	"strings"
	"time"

	"github.com/dmitrijs2005/eportfolio/internal/client/models"
)

var (
	DocumentSortKeys    = []SortKey{ByTitle, ByCreatedAt, ByUpdatedAt}
	CertificateSortKeys = []SortKey{ByName, ByCreatedAt, ByIssueDate}
	ProjectSortKeys     = []SortKey{ByTitle, ByCreatedAt, ByUpdatedAt}
)

var documentAccessor = Accessor[models.CvDocument]{
	Fields: func(d models.CvDocument) []string { return []string{d.Title, d.Profession, d.City} },
	Pinned: func(d models.CvDocument) bool { return d.IsPrimary },
	Text: func(d models.CvDocument, k SortKey) (string, bool) {
		return d.Title, k == ByTitle
	},
	Instant: func(d models.CvDocument, k SortKey) time.Time {
		if k == ByCreatedAt {
			return d.CreatedAt
		}
		return d.UpdatedAt
	},
	Tie: func(a, b models.CvDocument) int {
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	},
	DefaultSort: ByUpdatedAt,
}

// Documents lists CVs: primary first, then by the chosen key.
func Documents(docs []models.CvDocument, p Params) []models.CvDocument {
	return Apply(docs, p, documentAccessor)
}

var certificateAccessor = Accessor[models.Certificate]{
	Fields: func(c models.Certificate) []string { return []string{c.Name, c.IssuedBy, c.Description} },
	Pinned: models.Certificate.IsPinnedItem,
	Text: func(c models.Certificate, k SortKey) (string, bool) {
		return c.Name, k == ByName
	},
	Instant: func(c models.Certificate, k SortKey) time.Time {
		if k == ByIssueDate {
			return parseDate(c.IssueDate)
		}
		return deref(c.CreatedAt)
	},
	Tie:         func(a, b models.Certificate) int { return cmp.Compare(b.ID, a.ID) },
	DefaultSort: ByCreatedAt,
}

func Certificates(certs []models.Certificate, p Params) []models.Certificate {
	return Apply(certs, p, certificateAccessor)
}

var projectAccessor = Accessor[models.Project]{
	Fields: func(p models.Project) []string { return []string{p.Title, p.Description, p.StackSummary} },
	Pinned: models.Project.IsPinnedItem,
	Text: func(p models.Project, k SortKey) (string, bool) {
		return p.Title, k == ByTitle
	},
	Instant: func(p models.Project, k SortKey) time.Time {
		if k == ByCreatedAt {
			return deref(p.CreatedAt)
		}
		return deref(p.UpdatedAt)
	},
	Tie:         func(a, b models.Project) int { return cmp.Compare(b.ID, a.ID) },
	DefaultSort: ByUpdatedAt,
}

func Projects(projects []models.Project, p Params) []models.Project {
	return Apply(projects, p, projectAccessor)
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
