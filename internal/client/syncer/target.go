// Package syncer decides which local CV document mirrors the remote single-CV
// record after each mutation and pushes it there.
package syncer

import "github.com/dmitrijs2005/eportfolio/internal/client/models"

type Action int

const (
	Skip Action = iota
	Save
	Remove
)

func (a Action) String() string {
	switch a {
	case Save:
		return "save"
	case Remove:
		return "remove"
	default:
		return "skip"
	}
}

// Target is the remote effect owed after a local mutation. Document is set
// only for Save.
type Target struct {
	Action   Action
	Document *models.CvDocument
}

func save(d models.CvDocument) Target {
	d = d.Clone()
	return Target{Action: Save, Document: &d}
}

// AfterAdd: a created document is always the new primary.
func AfterAdd(created models.CvDocument) Target {
	return save(created)
}

// AfterUpdate pushes the edited document only if it is the primary one.
func AfterUpdate(collection []models.CvDocument, id string) Target {
	for _, d := range collection {
		if d.ID == id && d.IsPrimary {
			return save(d)
		}
	}
	return Target{Action: Skip}
}

// AfterDelete pushes the promoted survivor when the primary was deleted, or
// removes the remote record when nothing is left.
func AfterDelete(wasPrimary bool, collection []models.CvDocument) Target {
	if !wasPrimary {
		return Target{Action: Skip}
	}
	for _, d := range collection {
		if d.IsPrimary {
			return save(d)
		}
	}
	return Target{Action: Remove}
}

func AfterSetPrimary(collection []models.CvDocument, id string) Target {
	for _, d := range collection {
		if d.ID == id {
			return save(d)
		}
	}
	return Target{Action: Skip}
}
