package services

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/genai"
)

func stringField(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func optionalStringField(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description, Nullable: genai.Ptr(true)}
}

func scoreField(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeInteger,
		Description: description,
		Minimum:     genai.Ptr(0.0),
		Maximum:     genai.Ptr(100.0),
	}
}

func stringList(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Description: description, Items: &genai.Schema{Type: genai.TypeString}}
}

func objectList(description string, item *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Description: description, Items: item}
}

// AssessmentSchema is the response shape of the assessment task.
func AssessmentSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"candidate_name":    stringField("Full name of the candidate"),
			"overall_score":     scoreField("Overall score"),
			"overall_summary":   stringField("Overall strengths and weaknesses"),
			"writing_score":     scoreField("Writing style score"),
			"writing_detail":    stringField("Writing style feedback"),
			"ats_score":         scoreField("CV format and ATS score"),
			"ats_detail":        stringField("CV format and ATS feedback"),
			"skill_score":       scoreField("Skill match score"),
			"skill_detail":      stringField("Skill match feedback"),
			"experience_score":  scoreField("Experience and projects score"),
			"experience_detail": stringField("Experience and projects feedback"),
			"keyword_score":     scoreField("Keyword relevance score"),
			"keyword_detail":    stringField("Keyword relevance feedback"),
			"key_strengths":     stringList("Selling points matching the job"),
			"critical_gaps": objectList("Gaps paired with one concrete action each", &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"gap":    stringField("What is missing or weak"),
					"action": stringField("One concrete action that closes the gap"),
				},
				Required: []string{"gap", "action"},
			}),
			"missing_skills": stringList("Required skills not shown in the CV"),
		},
		Required: []string{
			"candidate_name", "overall_score", "overall_summary",
			"writing_score", "writing_detail", "ats_score", "ats_detail",
			"skill_score", "skill_detail", "experience_score", "experience_detail",
			"keyword_score", "keyword_detail", "key_strengths", "critical_gaps", "missing_skills",
		},
	}
}

// CVSchema is the response shape of the extraction and rewrite tasks.
func CVSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"full_name": stringField("Candidate full name"),
			"contact_info": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"email":     stringField("Email address"),
					"phone":     stringField("Phone number"),
					"location":  stringField("City or region"),
					"linkedin":  optionalStringField("LinkedIn URL"),
					"portfolio": optionalStringField("Portfolio or website URL"),
				},
				Required: []string{"email", "phone", "location"},
			},
			"professional_summary": stringField("Professional summary"),
			"hard_skills":          stringList("Technical skills"),
			"soft_skills":          stringList("Interpersonal skills"),
			"work_experience": objectList("Work history, most recent first", &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":        stringField("Job title"),
					"company":      stringField("Employer"),
					"dates":        stringField("Date range as written"),
					"location":     optionalStringField("Work location"),
					"achievements": stringList("Achievement bullet points"),
				},
				Required: []string{"title", "company", "dates", "achievements"},
			}),
			"education": objectList("Education history", &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"institution": stringField("School or university"),
					"degree":      stringField("Degree and field"),
					"year":        stringField("Graduation year or range"),
					"location":    optionalStringField("Institution location"),
				},
				Required: []string{"institution", "degree", "year"},
			}),
			"projects": objectList("Projects", &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":         stringField("Project name"),
					"description":  stringField("Short description"),
					"technologies": stringList("Technologies used"),
					"highlights":   stringList("Notable results"),
				},
				Required: []string{"name", "description", "technologies", "highlights"},
			}),
			"certifications": stringList("Certifications"),
		},
		Required: []string{
			"full_name", "contact_info", "professional_summary", "hard_skills", "soft_skills",
			"work_experience", "education", "projects", "certifications",
		},
	}
}

// JSONSchema renders a genai schema as a JSON Schema document. Nullable
// fields accept null, objects reject unknown properties.
func JSONSchema(s *genai.Schema) map[string]any {
	if s == nil {
		return map[string]any{}
	}

	out := map[string]any{}
	typeName := strings.ToLower(string(s.Type))
	if s.Nullable != nil && *s.Nullable {
		out["type"] = []string{typeName, "null"}
	} else if typeName != "" {
		out["type"] = typeName
	}

	if s.Minimum != nil {
		out["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		out["maximum"] = *s.Maximum
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Items != nil {
		out["items"] = JSONSchema(s.Items)
	}

	if s.Type == genai.TypeObject {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = JSONSchema(prop)
		}
		out["properties"] = props
		out["additionalProperties"] = false
		if len(s.Required) > 0 {
			out["required"] = s.Required
		}
	}

	return out
}

// compileJSONSchema prepares a validator for stage-one decoding.
func compileJSONSchema(s *genai.Schema) (*gojsonschema.Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(JSONSchema(s)))
	if err != nil {
		return nil, fmt.Errorf("failed to compile response schema: %w", err)
	}
	return compiled, nil
}

func validateAgainst(schema *gojsonschema.Schema, raw string) error {
	result, err := schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return fmt.Errorf("response does not match schema: %s", strings.Join(problems, "; "))
}
