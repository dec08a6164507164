package models

// Customize modes.
const (
	ModeJobDesc  = "job_desc"
	ModeAnalysis = "analysis"
)

// CombinedAnalysis pairs the assessment with the faithfully extracted CV.
type CombinedAnalysis struct {
	Analysis *AssessmentResult `json:"analysis"`
	CVData   *StructuredCV     `json:"cv_data"`
}

// CustomizeResult carries the rewritten CV; Degraded marks a default object.
type CustomizeResult struct {
	CV       *StructuredCV
	Degraded bool
}

type AnalyzeRequest struct {
	JobDescription string `form:"job_description"`
	JobURL         string `form:"job_url" validate:"omitempty,url"`
	CurrentDate    string `form:"current_date" validate:"omitempty,datetime=2006-01-02"`
}

type CustomizeRequest struct {
	Mode            string `form:"mode" validate:"required,oneof=job_desc analysis"`
	JobDescription  string `form:"job_description"`
	AnalysisContext string `form:"analysis_context"`
	CurrentDate     string `form:"current_date" validate:"omitempty,datetime=2006-01-02"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
