package models

import "time"

type Certificate struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	IssuedBy    string     `json:"issuedBy"`
	Description string     `json:"description,omitempty"`
	City        string     `json:"city,omitempty"`
	FileURL     string     `json:"fileUrl,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	IssueDate   string     `json:"issueDate,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	Pinned      *bool      `json:"pinned,omitempty"`
	IsPinned    *bool      `json:"isPinned,omitempty"`
}

// IsPinnedItem prefers the pinned field and falls back to isPinned.
func (c Certificate) IsPinnedItem() bool { return pinned(c.Pinned, c.IsPinned) }

type Project struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	GithubURL    string     `json:"githubUrl,omitempty"`
	LiveURL      string     `json:"liveUrl,omitempty"`
	Role         string     `json:"role,omitempty"`
	StackSummary string     `json:"stackSummary,omitempty"`
	Status       string     `json:"status,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
	Pinned       *bool      `json:"pinned,omitempty"`
	IsPinned     *bool      `json:"isPinned,omitempty"`
}

func (p Project) IsPinnedItem() bool { return pinned(p.Pinned, p.IsPinned) }

func pinned(a, b *bool) bool {
	if a != nil {
		return *a
	}
	return b != nil && *b
}
