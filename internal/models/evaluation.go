package models

import "fmt"

// CriticalGap pairs a missing element with one concrete remediation step.
type CriticalGap struct {
	Gap    string `json:"gap"`
	Action string `json:"action"`
}

// AssessmentResult is the multi-criterion score of a CV against a job description.
type AssessmentResult struct {
	CandidateName    string        `json:"candidate_name"`
	OverallScore     int           `json:"overall_score"`
	OverallSummary   string        `json:"overall_summary"`
	WritingScore     int           `json:"writing_score"`
	WritingDetail    string        `json:"writing_detail"`
	ATSScore         int           `json:"ats_score"`
	ATSDetail        string        `json:"ats_detail"`
	SkillScore       int           `json:"skill_score"`
	SkillDetail      string        `json:"skill_detail"`
	ExperienceScore  int           `json:"experience_score"`
	ExperienceDetail string        `json:"experience_detail"`
	KeywordScore     int           `json:"keyword_score"`
	KeywordDetail    string        `json:"keyword_detail"`
	KeyStrengths     []string      `json:"key_strengths"`
	CriticalGaps     []CriticalGap `json:"critical_gaps"`
	MissingSkills    []string      `json:"missing_skills"`
}

// DefaultAssessment is the zero-scored result returned in place of a failed generation.
func DefaultAssessment(reason string) *AssessmentResult {
	detail := fmt.Sprintf("Assessment unavailable: %s", reason)
	return &AssessmentResult{
		CandidateName:    "Unknown",
		OverallSummary:   detail,
		WritingDetail:    detail,
		ATSDetail:        detail,
		SkillDetail:      detail,
		ExperienceDetail: detail,
		KeywordDetail:    detail,
		KeyStrengths:     []string{},
		CriticalGaps: []CriticalGap{{
			Gap:    "The automated assessment could not be completed.",
			Action: "Try again in a few minutes; the uploaded CV was read successfully.",
		}},
		MissingSkills: []string{},
	}
}

// Normalize clamps scores into 0..100 and replaces nil lists with empty ones.
func (a *AssessmentResult) Normalize() {
	for _, score := range []*int{
		&a.OverallScore,
		&a.WritingScore,
		&a.ATSScore,
		&a.SkillScore,
		&a.ExperienceScore,
		&a.KeywordScore,
	} {
		*score = clampScore(*score)
	}

	if a.KeyStrengths == nil {
		a.KeyStrengths = []string{}
	}
	if a.CriticalGaps == nil {
		a.CriticalGaps = []CriticalGap{}
	}
	if a.MissingSkills == nil {
		a.MissingSkills = []string{}
	}
}

func clampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
