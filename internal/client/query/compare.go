package query

import "github.com/dmitrijs2005/eportfolio/internal/client/models"

type Count struct {
	Left, Right int
}

func (c Count) Delta() int { return c.Right - c.Left }

// Comparison counts the rows of two CV versions side by side.
type Comparison struct {
	Left, Right models.CvDocument
	Skills      Count
	Experiences Count
	Educations  Count
}

func Compare(left, right models.CvDocument) Comparison {
	return Comparison{
		Left:        left,
		Right:       right,
		Skills:      Count{len(left.Skills), len(right.Skills)},
		Experiences: Count{len(left.Experiences), len(right.Experiences)},
		Educations:  Count{len(left.Educations), len(right.Educations)},
	}
}
