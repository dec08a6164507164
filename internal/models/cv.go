package models

type ContactInfo struct {
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Location  string  `json:"location"`
	LinkedIn  *string `json:"linkedin,omitempty"`
	Portfolio *string `json:"portfolio,omitempty"`
}

type WorkExperience struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Dates        string   `json:"dates"`
	Location     *string  `json:"location,omitempty"`
	Achievements []string `json:"achievements"`
}

type Education struct {
	Institution string  `json:"institution"`
	Degree      string  `json:"degree"`
	Year        string  `json:"year"`
	Location    *string `json:"location,omitempty"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Highlights   []string `json:"highlights"`
}

// StructuredCV is used both for the faithful extraction of an uploaded CV
// and for its tailored rewrite.
type StructuredCV struct {
	FullName            string           `json:"full_name"`
	ContactInfo         ContactInfo      `json:"contact_info"`
	ProfessionalSummary string           `json:"professional_summary"`
	HardSkills          []string         `json:"hard_skills"`
	SoftSkills          []string         `json:"soft_skills"`
	WorkExperience      []WorkExperience `json:"work_experience"`
	Education           []Education      `json:"education"`
	Projects            []Project        `json:"projects"`
	Certifications      []string         `json:"certifications"`
}

// DefaultCV returns an empty but fully shaped CV; summary carries the reason when set.
func DefaultCV(reason string) *StructuredCV {
	cv := &StructuredCV{ProfessionalSummary: reason}
	cv.Normalize()
	return cv
}

// Normalize replaces nil lists, at every depth, with empty ones.
func (cv *StructuredCV) Normalize() {
	cv.HardSkills = emptyIfNil(cv.HardSkills)
	cv.SoftSkills = emptyIfNil(cv.SoftSkills)
	cv.Certifications = emptyIfNil(cv.Certifications)

	if cv.WorkExperience == nil {
		cv.WorkExperience = []WorkExperience{}
	}
	for i := range cv.WorkExperience {
		cv.WorkExperience[i].Achievements = emptyIfNil(cv.WorkExperience[i].Achievements)
	}

	if cv.Education == nil {
		cv.Education = []Education{}
	}

	if cv.Projects == nil {
		cv.Projects = []Project{}
	}
	for i := range cv.Projects {
		cv.Projects[i].Technologies = emptyIfNil(cv.Projects[i].Technologies)
		cv.Projects[i].Highlights = emptyIfNil(cv.Projects[i].Highlights)
	}
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
