package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/datAIsolvcom/super-cv-ai/internal/models"
)

const (
	DefaultExtractionPrefixChars = 4000
	DefaultAnalysisContext       = "Fix general weaknesses found in the CV."

	referenceDateLayout = "2006-01-02"
)

type PromptBuilder struct {
	prefixChars int
	now         func() time.Time
}

func NewPromptBuilder(prefixChars int) *PromptBuilder {
	if prefixChars <= 0 {
		prefixChars = DefaultExtractionPrefixChars
	}
	return &PromptBuilder{
		prefixChars: prefixChars,
		now:         time.Now,
	}
}

// WithClock replaces the clock used when no reference date is supplied.
func (pb *PromptBuilder) WithClock(now func() time.Time) *PromptBuilder {
	pb.now = now
	return pb
}

func (pb *PromptBuilder) referenceDate(today string) string {
	if today = strings.TrimSpace(today); today != "" {
		return today
	}
	return pb.now().Format(referenceDateLayout)
}

// BuildAssessmentPrompt creates the prompt that scores a CV against a job context
func (pb *PromptBuilder) BuildAssessmentPrompt(cvText, jobContext, today string) string {
	return fmt.Sprintf(`You are a Senior Technical Recruiter and CV Expert.
Analyze the following Candidate CV against the provided Job Description. Address the candidate directly as "You", never as He/She.

TODAY'S DATE: %s
Treat this as the current date. Roles ending in "Present" are current, and dates after today are future-dated entries that should be flagged.

JOB DESCRIPTION:
%s

CANDIDATE CV CONTENT:
%s

Evaluate the CV on exactly these six criteria, in this order:

1. Candidate Overview (overall_score 0-100, overall_summary):
   - Extract the candidate's full name from the CV (candidate_name).
   - Give an overall score that reflects the five criteria below.
   - Summarise strengths and weaknesses the candidate should work on.

2. Writing Style (writing_score 0-100, writing_detail):
   - Check clarity, grammar and typos.
   - Identify weak phrasing such as excessive passive voice versus action-oriented language.

3. CV Format & ATS (ats_score 0-100, ats_detail):
   - Is the structure ATS-friendly (clean sections, standard fonts, no graphics hiding text)?
   - For creative layouts, judge whether a machine can still read them.

4. Skill Match (skill_score 0-100, skill_detail):
   - How well do the hard and soft skills match the job description?
   - List required skills the CV does not show in missing_skills.

5. Experience & Projects (experience_score 0-100, experience_detail):
   - Are the work history and projects relevant to the role?
   - Does the seniority match the requirement?

6. Keyword Relevance & Gaps (keyword_score 0-100, keyword_detail):
   - List the candidate's main selling points that match the job in key_strengths.
   - List every critical gap in critical_gaps. Each gap MUST be paired with one concrete action the candidate can take to close it.

Return only JSON matching the provided schema.`,
		pb.referenceDate(today), jobContext, cvText)
}

// BuildExtractionPrompt creates the prompt for verbatim structured extraction.
// Only the first prefixChars characters of the CV are sent.
func (pb *PromptBuilder) BuildExtractionPrompt(cvText string) string {
	return pb.buildExtractionPrompt(cvText, "")
}

// BuildExtractionPromptAt is BuildExtractionPrompt with an explicit reference date.
func (pb *PromptBuilder) BuildExtractionPromptAt(cvText, today string) string {
	return pb.buildExtractionPrompt(cvText, today)
}

func (pb *PromptBuilder) buildExtractionPrompt(cvText, today string) string {
	return fmt.Sprintf(`You are a precise CV parser. Extract the content of the CV below into JSON matching the provided schema.

TODAY'S DATE: %s
Keep date ranges exactly as written; a range ending in "Present" refers to today.

RULES:
- Copy text VERBATIM. Do not rewrite, summarise, correct, translate or improve anything.
- Do not add information that is not in the CV.
- Use an empty string for any missing text field and an empty list for any missing list.
- Keep the original order of work experience, education and projects.

CV CONTENT:
%s`,
		pb.referenceDate(today), TruncateRunes(cvText, pb.prefixChars))
}

// BuildRewritePrompt creates the tailoring prompt for the given mode.
func (pb *PromptBuilder) BuildRewritePrompt(cvText, mode, rewriteContext, today string) (string, error) {
	var framing, instructions string

	switch mode {
	case models.ModeJobDesc:
		framing = "TARGET JOB POSTING"
		instructions = `- Extract the skills, qualifications and keywords from the target job posting.
- Naturally incorporate matching keywords into the summary, skills and achievements the candidate can honestly claim.
- Reorder and emphasise existing experience so the most relevant parts come first, while preserving the full history.
- If the candidate lacks a requirement, highlight the strongest existing experience that compensates for it instead of adding it.`
	case models.ModeAnalysis:
		framing = "PRIOR ANALYSIS FEEDBACK"
		if strings.TrimSpace(rewriteContext) == "" {
			rewriteContext = DefaultAnalysisContext
		}
		instructions = `- Treat the feedback above as a list of weaknesses found in this CV.
- Fix each weakness: clarify vague statements, strengthen weak phrasing and improve structure.
- Rewrite achievements to be result-oriented (STAR method) with strong action verbs.`
	default:
		return "", newClientError(ErrCodeInvalidMode,
			fmt.Sprintf("invalid mode %q. Use %q or %q", mode, models.ModeJobDesc, models.ModeAnalysis), nil)
	}

	return fmt.Sprintf(`You are a professional CV writer specialising in ATS-optimised resumes. Rewrite the CV below.

TODAY'S DATE: %s

STRICT PROHIBITIONS:
1. NO FABRICATION: never invent employers, skills, degrees or certifications that are not in the original CV.
2. IDENTITY PRESERVATION: never change the candidate's name or contact details (email, phone, location, LinkedIn, portfolio).
3. FACTUAL INTEGRITY: never change degree types, institution names or company names.
4. NO REMOVAL: never delete an existing work experience or project entry, even if it seems less relevant. Shorten it instead.

%s:
%s

ORIGINAL CV CONTENT:
%s

INSTRUCTIONS:
%s

Return only JSON matching the provided schema.`,
		pb.referenceDate(today), framing, rewriteContext, cvText, instructions), nil
}

// TruncateRunes returns at most limit runes of s.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
