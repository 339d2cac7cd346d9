package models

// CvRecord is the single CV the server keeps per user.
type CvRecord struct {
	ID           int64  `json:"id,omitempty"`
	Profession   string `json:"profession,omitempty"`
	City         string `json:"city,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty" validate:"omitempty,email"`
	Phone        string `json:"phone,omitempty"`

	// Read-only on this client; populated by the public profile endpoint.
	ExpectedSalary *float64 `json:"expectedSalary,omitempty"`
	Citizenship    string   `json:"citizenship,omitempty"`
	BirthDate      string   `json:"birthDate,omitempty"`

	Skills      []string           `json:"skills"`
	Experiences []RecordExperience `json:"experiences" validate:"dive"`
	Educations  []RecordEducation  `json:"educations" validate:"dive"`
}

type RecordExperience struct {
	ID       int64  `json:"id,omitempty"`
	Company  string `json:"company" validate:"required"`
	Position string `json:"position" validate:"required"`
	Period   string `json:"period,omitempty"`
}

type RecordEducation struct {
	ID          int64  `json:"id,omitempty"`
	Institution string `json:"institution,omitempty"`
	Degree      string `json:"degree,omitempty"`
	Year        string `json:"year,omitempty"`
}

// Portfolio is the public profile payload of one user.
type Portfolio struct {
	FullName     string        `json:"fullName"`
	Email        string        `json:"email"`
	CV           *CvRecord     `json:"cv"`
	Projects     []Project     `json:"projects"`
	Certificates []Certificate `json:"certificates"`
}
