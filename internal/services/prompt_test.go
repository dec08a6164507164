package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datAIsolvcom/super-cv-ai/internal/models"
)

func fixedClock() time.Time {
	return time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
}

func TestBuildAssessmentPrompt(t *testing.T) {
	pb := NewPromptBuilder(0).WithClock(fixedClock)

	prompt := pb.BuildAssessmentPrompt("CV BODY", "JOB BODY", "")

	assert.Contains(t, prompt, "TODAY'S DATE: 2025-03-14")
	assert.Contains(t, prompt, "JOB BODY")
	assert.Contains(t, prompt, "CV BODY")

	dimensions := []string{
		"1. Candidate Overview",
		"2. Writing Style",
		"3. CV Format & ATS",
		"4. Skill Match",
		"5. Experience & Projects",
		"6. Keyword Relevance & Gaps",
	}
	last := -1
	for _, d := range dimensions {
		idx := strings.Index(prompt, d)
		require.GreaterOrEqual(t, idx, 0, "missing %q", d)
		assert.Greater(t, idx, last, "%q out of order", d)
		last = idx
	}
	assert.NotContains(t, prompt, "7. ")
	assert.Contains(t, prompt, "paired with one concrete action")

	explicit := pb.BuildAssessmentPrompt("CV", "JOB", "2024-12-31")
	assert.Contains(t, explicit, "TODAY'S DATE: 2024-12-31")
}

func TestBuildExtractionPrompt_TruncatesToPrefix(t *testing.T) {
	pb := NewPromptBuilder(10).WithClock(fixedClock)

	prompt := pb.BuildExtractionPrompt("ÄÖÜabcdefgTAIL")

	assert.Contains(t, prompt, "ÄÖÜabcdefg")
	assert.NotContains(t, prompt, "TAIL")
	assert.Contains(t, prompt, "VERBATIM")
	assert.Contains(t, prompt, "empty list")
	assert.Contains(t, prompt, "TODAY'S DATE: 2025-03-14")
}

func TestBuildExtractionPrompt_DefaultPrefix(t *testing.T) {
	pb := NewPromptBuilder(0)
	text := strings.Repeat("a", DefaultExtractionPrefixChars) + "OVERFLOW"

	assert.NotContains(t, pb.BuildExtractionPrompt(text), "OVERFLOW")
	assert.Contains(t, pb.BuildExtractionPromptAt("short cv", "2023-01-01"), "TODAY'S DATE: 2023-01-01")
}

func TestBuildRewritePrompt_Modes(t *testing.T) {
	pb := NewPromptBuilder(0).WithClock(fixedClock)

	jobPrompt, err := pb.BuildRewritePrompt("CV BODY", models.ModeJobDesc, "Go developer posting", "")
	require.NoError(t, err)
	assert.Contains(t, jobPrompt, "TARGET JOB POSTING:\nGo developer posting")
	assert.Contains(t, jobPrompt, "keywords")

	analysisPrompt, err := pb.BuildRewritePrompt("CV BODY", models.ModeAnalysis, "", "")
	require.NoError(t, err)
	assert.Contains(t, analysisPrompt, "PRIOR ANALYSIS FEEDBACK:\n"+DefaultAnalysisContext)

	for _, prompt := range []string{jobPrompt, analysisPrompt} {
		assert.Contains(t, prompt, "TODAY'S DATE: 2025-03-14")
		assert.Contains(t, prompt, "NO FABRICATION")
		assert.Contains(t, prompt, "IDENTITY PRESERVATION")
		assert.Contains(t, prompt, "never delete an existing work experience or project entry")
	}
}

func TestBuildRewritePrompt_InvalidMode(t *testing.T) {
	pb := NewPromptBuilder(0)

	_, err := pb.BuildRewritePrompt("CV", "banana", "ctx", "")

	clientErr, ok := AsClientInputError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidMode, clientErr.Code)
	assert.Contains(t, clientErr.Message, "banana")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", TruncateRunes("héllo", 10))
	assert.Equal(t, "hé", TruncateRunes("héllo", 2))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 0))
}
