// Package models holds the client-side data types: local CV documents, the
// remote CV record and the read-only portfolio entities.
package models

import (
	"fmt"
	"strings"
	"time"
)

type SkillLevel string

const (
	SkillLow    SkillLevel = "Low"
	SkillMedium SkillLevel = "Medium"
	SkillHigh   SkillLevel = "High"
)

var skillRank = map[SkillLevel]int{SkillLow: 1, SkillMedium: 2, SkillHigh: 3}

// Rank orders levels Low < Medium < High. Unknown levels rank 0.
func (l SkillLevel) Rank() int { return skillRank[l] }

func (l SkillLevel) Valid() bool { return l.Rank() > 0 }

// ParseSkillLevel accepts any letter case; empty input yields Medium.
func ParseSkillLevel(s string) (SkillLevel, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SkillMedium, nil
	}
	for l := range skillRank {
		if strings.EqualFold(string(l), s) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown skill level %q", s)
}

type CvSkill struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Level SkillLevel `json:"level"`
}

func NewSkill(id, name string) CvSkill {
	return CvSkill{ID: id, Name: name, Level: SkillMedium}
}

func (s CvSkill) HasData() bool { return strings.TrimSpace(s.Name) != "" }

type CvExperienceItem struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	IsCurrent   bool   `json:"isCurrent"`
	Description string `json:"description"`
}

// NewExperience returns an empty row for an ongoing position.
func NewExperience(id string) CvExperienceItem {
	return CvExperienceItem{ID: id, IsCurrent: true}
}

func (e CvExperienceItem) HasData() bool {
	return anyText(e.Company, e.Position, e.StartDate, e.EndDate, e.Description)
}

func (e *CvExperienceItem) SetCurrent(current bool) {
	e.IsCurrent = current
	if current {
		e.EndDate = ""
	}
}

func (e CvExperienceItem) Period() string {
	return Period(e.StartDate, e.EndDate, e.IsCurrent)
}

type CvEducationItem struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Profession  string `json:"profession"`
	Degree      string `json:"degree"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	IsCurrent   bool   `json:"isCurrent"`
}

func NewEducation(id string) CvEducationItem {
	return CvEducationItem{ID: id}
}

func (e CvEducationItem) HasData() bool {
	return anyText(e.Institution, e.Profession, e.Degree, e.StartDate, e.EndDate)
}

func (e *CvEducationItem) SetCurrent(current bool) {
	e.IsCurrent = current
	if current {
		e.EndDate = ""
	}
}

func (e CvEducationItem) Period() string {
	return Period(e.StartDate, e.EndDate, e.IsCurrent)
}

// CvDocument is one locally stored CV. The JSON shape is the persisted format.
type CvDocument struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Profession   string             `json:"profession"`
	City         string             `json:"city"`
	ContactEmail string             `json:"contactEmail"`
	Phone        string             `json:"phone"`
	Skills       []CvSkill          `json:"skills"`
	Experiences  []CvExperienceItem `json:"experiences"`
	Educations   []CvEducationItem  `json:"educations"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
	IsPrimary    bool               `json:"isPrimary"`
}

// Clone returns a copy that shares no slices with d.
func (d CvDocument) Clone() CvDocument {
	out := d
	out.Skills = append([]CvSkill{}, d.Skills...)
	out.Experiences = append([]CvExperienceItem{}, d.Experiences...)
	out.Educations = append([]CvEducationItem{}, d.Educations...)
	return out
}

// Period formats a date range as "start - end", substituting "Start",
// "End" for blanks and "Present" for an ongoing range.
func Period(start, end string, current bool) string {
	start = strings.TrimSpace(start)
	if start == "" {
		start = "Start"
	}
	switch {
	case current:
		end = "Present"
	case strings.TrimSpace(end) == "":
		end = "End"
	default:
		end = strings.TrimSpace(end)
	}
	return start + " - " + end
}

func anyText(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
