package syncer

import (
	"testing"

	"github.com/dmitrijs2005/eportfolio/internal/client/models"
	"github.com/dmitrijs2005/eportfolio/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_Normalizes(t *testing.T) {
	doc := models.CvDocument{
		ID:           "a",
		Title:        "Backend CV",
		Profession:   " Backend Engineer ",
		City:         "Almaty",
		ContactEmail: "",
		Phone:        "  ",
		Skills: []models.CvSkill{
			{ID: "1", Name: " Go ", Level: models.SkillHigh},
			{ID: "2", Name: "   "},
			{ID: "3", Name: "SQL"},
		},
		Experiences: []models.CvExperienceItem{
			{ID: "e1", Company: "Acme", StartDate: "2021", IsCurrent: true},
			{ID: "e2", Position: "Intern", StartDate: "2019", EndDate: "2020"},
			{ID: "e3", IsCurrent: true},
		},
		Educations: []models.CvEducationItem{
			{ID: "d1", Institution: "KBTU", Profession: "CS", Degree: "BSc", StartDate: "2015", EndDate: "2019"},
			{ID: "d2", Institution: "Online", Degree: "Certificate"},
			{ID: "d3"},
		},
	}

	want := models.CvRecord{
		Profession: "Backend Engineer",
		City:       "Almaty",
		Skills:     []string{"Go", "SQL"},
		Experiences: []models.RecordExperience{
			{Company: "Acme", Position: "Position", Period: "2021 - Present"},
			{Company: "Company", Position: "Intern", Period: "2019 - 2020"},
		},
		Educations: []models.RecordEducation{
			{Institution: "KBTU", Degree: "CS", Year: "2015 - 2019"},
			{Institution: "Online", Degree: "Certificate", Year: "Start - End"},
		},
	}

	if diff := cmp.Diff(want, Project(doc)); diff != "" {
		t.Fatalf("projection mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_EmptyDocumentHasEmptyLists(t *testing.T) {
	rec := Project(models.CvDocument{ID: "x"})
	assert.NotNil(t, rec.Skills)
	assert.NotNil(t, rec.Experiences)
	assert.NotNil(t, rec.Educations)
	assert.NoError(t, Validate(rec))
}

func TestValidate_RejectsBadEmail(t *testing.T) {
	rec := Project(models.CvDocument{ContactEmail: "not-an-email"})
	err := Validate(rec)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "ContactEmail")
}

func TestValidate_RequiresCompanyAndPosition(t *testing.T) {
	rec := models.CvRecord{Experiences: []models.RecordExperience{{Company: "", Position: "Dev"}}}
	err := Validate(rec)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "Company")
}
