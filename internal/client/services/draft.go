package services

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/eportfolio/internal/client/idgen"
	"github.com/dmitrijs2005/eportfolio/internal/client/models"
)

// Draft is the editable content of a CV as entered by the user.
type Draft struct {
	Title        string
	Profession   string
	City         string
	ContactEmail string
	Phone        string
	Skills       []models.CvSkill
	Experiences  []models.CvExperienceItem
	Educations   []models.CvEducationItem
}

// DraftOf returns the editable content of doc.
func DraftOf(doc models.CvDocument) Draft {
	c := doc.Clone()
	return Draft{
		Title:        c.Title,
		Profession:   c.Profession,
		City:         c.City,
		ContactEmail: c.ContactEmail,
		Phone:        c.Phone,
		Skills:       c.Skills,
		Experiences:  c.Experiences,
		Educations:   c.Educations,
	}
}

// DefaultTitle is used when a CV is saved without a title.
func DefaultTitle(userName string) string {
	if name := strings.TrimSpace(userName); name != "" {
		return name + " CV"
	}
	return "User CV"
}

// Document normalizes d into a CvDocument without id or timestamps: text is
// trimmed, a blank title is replaced and rows without data are dropped.
func (d Draft) Document(userName string) models.CvDocument {
	doc := models.CvDocument{
		Title:        strings.TrimSpace(d.Title),
		Profession:   strings.TrimSpace(d.Profession),
		City:         strings.TrimSpace(d.City),
		ContactEmail: strings.TrimSpace(d.ContactEmail),
		Phone:        strings.TrimSpace(d.Phone),
		Skills:       []models.CvSkill{},
		Experiences:  []models.CvExperienceItem{},
		Educations:   []models.CvEducationItem{},
	}
	if doc.Title == "" {
		doc.Title = DefaultTitle(userName)
	}

	for _, s := range d.Skills {
		if !s.HasData() {
			continue
		}
		if !s.Level.Valid() {
			s.Level = models.SkillMedium
		}
		doc.Skills = append(doc.Skills, s)
	}
	for _, e := range d.Experiences {
		if e.HasData() {
			e.SetCurrent(e.IsCurrent)
			doc.Experiences = append(doc.Experiences, e)
		}
	}
	for _, e := range d.Educations {
		if e.HasData() {
			e.SetCurrent(e.IsCurrent)
			doc.Educations = append(doc.Educations, e)
		}
	}
	return doc
}

// assignIDs gives every row without an id a fresh one.
func assignIDs(doc *models.CvDocument, ids idgen.Generator) {
	for i := range doc.Skills {
		if doc.Skills[i].ID == "" {
			doc.Skills[i].ID = ids.NewID()
		}
	}
	for i := range doc.Experiences {
		if doc.Experiences[i].ID == "" {
			doc.Experiences[i].ID = ids.NewID()
		}
	}
	for i := range doc.Educations {
		if doc.Educations[i].ID == "" {
			doc.Educations[i].ID = ids.NewID()
		}
	}
}

// Seed builds the first local document from the user's remote CV. Remote rows
// carry only summaries, so the experience period lands in the description and
// the education degree and year move into the profession and degree fields.
func Seed(rec models.CvRecord, userName string, ids idgen.Generator, now time.Time) models.CvDocument {
	title := "Primary CV"
	switch {
	case strings.TrimSpace(rec.Profession) != "":
		title = strings.TrimSpace(rec.Profession) + " CV"
	case strings.TrimSpace(userName) != "":
		title = strings.TrimSpace(userName) + " CV"
	}

	doc := models.CvDocument{
		ID:           ids.NewID(),
		Title:        title,
		Profession:   rec.Profession,
		City:         rec.City,
		ContactEmail: rec.ContactEmail,
		Phone:        rec.Phone,
		Skills:       make([]models.CvSkill, 0, len(rec.Skills)),
		Experiences:  make([]models.CvExperienceItem, 0, len(rec.Experiences)),
		Educations:   make([]models.CvEducationItem, 0, len(rec.Educations)),
		CreatedAt:    now,
		UpdatedAt:    now,
		IsPrimary:    true,
	}

	for _, name := range rec.Skills {
		doc.Skills = append(doc.Skills, models.CvSkill{ID: ids.NewID(), Name: name, Level: models.SkillMedium})
	}
	for _, e := range rec.Experiences {
		doc.Experiences = append(doc.Experiences, models.CvExperienceItem{
			ID:          ids.NewID(),
			Company:     e.Company,
			Position:    e.Position,
			IsCurrent:   true,
			Description: e.Period,
		})
	}
	for _, e := range rec.Educations {
		doc.Educations = append(doc.Educations, models.CvEducationItem{
			ID:          ids.NewID(),
			Institution: e.Institution,
			Profession:  e.Degree,
			Degree:      e.Year,
		})
	}
	return doc
}
