package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/eportfolio/internal/client/models"
)

// Row specs are how list fields are typed on the command line:
//
//	skill:      Name[:Level]
//	experience: Company|Position|Start|End|Description   (End "present" or empty: ongoing)
//	education:  Institution|Profession|Degree|Start|End  (End "present": ongoing)

func parseSkill(spec string) (models.CvSkill, error) {
	name, level, _ := strings.Cut(spec, ":")
	lvl, err := models.ParseSkillLevel(level)
	if err != nil {
		return models.CvSkill{}, err
	}
	return models.CvSkill{Name: strings.TrimSpace(name), Level: lvl}, nil
}

func parseExperience(spec string) (models.CvExperienceItem, error) {
	f, err := fields(spec, 5, "experience")
	if err != nil {
		return models.CvExperienceItem{}, err
	}
	e := models.CvExperienceItem{Company: f[0], Position: f[1], StartDate: f[2], EndDate: f[3], Description: f[4]}
	e.SetCurrent(f[3] == "" || strings.EqualFold(f[3], "present"))
	return e, nil
}

func parseEducation(spec string) (models.CvEducationItem, error) {
	f, err := fields(spec, 5, "education")
	if err != nil {
		return models.CvEducationItem{}, err
	}
	e := models.CvEducationItem{Institution: f[0], Profession: f[1], Degree: f[2], StartDate: f[3], EndDate: f[4]}
	e.SetCurrent(strings.EqualFold(f[4], "present"))
	return e, nil
}

// fields splits spec on "|" into exactly n trimmed parts; missing trailing
// parts are empty.
func fields(spec string, n int, what string) ([]string, error) {
	parts := strings.Split(spec, "|")
	if len(parts) > n {
		return nil, fmt.Errorf("%s %q: expected at most %d fields separated by |", what, spec, n)
	}
	out := make([]string, n)
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out, nil
}

func parseRows[T any](specs []string, parse func(string) (T, error)) ([]T, error) {
	out := make([]T, 0, len(specs))
	for _, s := range specs {
		v, err := parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func formatSkill(s models.CvSkill) string {
	return fmt.Sprintf("%s:%s", s.Name, s.Level)
}

func formatExperience(e models.CvExperienceItem) string {
	end := e.EndDate
	if e.IsCurrent {
		end = "present"
	}
	return strings.Join([]string{e.Company, e.Position, e.StartDate, end, e.Description}, "|")
}

func formatEducation(e models.CvEducationItem) string {
	end := e.EndDate
	if e.IsCurrent {
		end = "present"
	}
	return strings.Join([]string{e.Institution, e.Profession, e.Degree, e.StartDate, end}, "|")
}
