package syncer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/eportfolio/internal/client/models"
	"github.com/dmitrijs2005/eportfolio/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Project maps a local document onto the remote record shape. Blank fields
// are left out; rows without data are dropped.
func Project(doc models.CvDocument) models.CvRecord {
	rec := models.CvRecord{
		Profession:   strings.TrimSpace(doc.Profession),
		City:         strings.TrimSpace(doc.City),
		ContactEmail: strings.TrimSpace(doc.ContactEmail),
		Phone:        strings.TrimSpace(doc.Phone),
		Skills:       []string{},
		Experiences:  []models.RecordExperience{},
		Educations:   []models.RecordEducation{},
	}

	for _, s := range doc.Skills {
		if name := strings.TrimSpace(s.Name); name != "" {
			rec.Skills = append(rec.Skills, name)
		}
	}

	for _, e := range doc.Experiences {
		if !e.HasData() {
			continue
		}
		rec.Experiences = append(rec.Experiences, models.RecordExperience{
			Company:  orDefault(e.Company, "Company"),
			Position: orDefault(e.Position, "Position"),
			Period:   e.Period(),
		})
	}

	for _, e := range doc.Educations {
		if !e.HasData() {
			continue
		}
		degree := strings.TrimSpace(e.Profession)
		if degree == "" {
			degree = strings.TrimSpace(e.Degree)
		}
		rec.Educations = append(rec.Educations, models.RecordEducation{
			Institution: strings.TrimSpace(e.Institution),
			Degree:      degree,
			Year:        e.Period(),
		})
	}

	return rec
}

// Validate applies the checks the server enforces on a saved record.
func Validate(rec models.CvRecord) error {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%w: invalid %s", common.ErrValidation, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", common.ErrValidation, err)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
