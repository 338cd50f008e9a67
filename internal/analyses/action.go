package analyses

import (
	"errors"
	"strings"

	"resume-checker/internal/llm"
)

// Action is one of the five fixed analyses a user can trigger.
type Action struct {
	Key          string
	Label        string
	RunningLabel string
	CallingStep  string
	DoneLabel    string
	FailedLabel  string
	// ErrorHint is appended to the user-visible error message.
	ErrorHint string
}

// Prompt returns the action's instruction text.
func (a Action) Prompt() string {
	p, _ := llm.PromptTemplate(a.Key)
	return p
}

const (
	KeyResumeReview    = "resume_review"
	KeyImprovementTips = "improvement_tips"
	KeyMissingKeywords = "missing_keywords"
	KeyMatchPercentage = "match_percentage"
	KeyATSScore        = "ats_score"
)

// Actions lists the catalog in display order.
var Actions = []Action{
	{
		Key:          KeyResumeReview,
		Label:        "Resume Review",
		RunningLabel: "Analyzing Resume...",
		CallingStep:  "Sending data to Gemini API for analysis...",
		DoneLabel:    "✅ Analysis Complete!",
		FailedLabel:  "❌ Analysis Failed!",
		ErrorHint:    " Please check the file and API key.",
	},
	{
		Key:          KeyImprovementTips,
		Label:        "Improvement Tips",
		RunningLabel: "Generating Improvement Tips...",
		CallingStep:  "Sending data to Gemini API for suggestions...",
		DoneLabel:    "✅ Tips Generated!",
		FailedLabel:  "❌ Failed to generate tips!",
	},
	{
		Key:          KeyMissingKeywords,
		Label:        "Missing Keywords",
		RunningLabel: "Identifying Missing Keywords...",
		CallingStep:  "Sending data to Gemini API for keyword analysis...",
		DoneLabel:    "✅ Keywords Identified!",
		FailedLabel:  "❌ Failed to identify keywords!",
	},
	{
		Key:          KeyMatchPercentage,
		Label:        "Match Percentage",
		RunningLabel: "Calculating Match Percentage...",
		CallingStep:  "Sending data to Gemini API for match score...",
		DoneLabel:    "✅ Match Calculated!",
		FailedLabel:  "❌ Failed to calculate match!",
	},
	{
		Key:          KeyATSScore,
		Label:        "ATS Score",
		RunningLabel: "Calculating ATS Score...",
		CallingStep:  "Sending data to Gemini API for ATS score...",
		DoneLabel:    "✅ ATS Score Calculated!",
		FailedLabel:  "❌ Failed to calculate ATS score!",
	},
}

// ErrUnknownAction is returned by ParseAction for keys outside the catalog.
var ErrUnknownAction = errors.New("analysis action is invalid")

// ParseAction looks up an action by key. Labels are accepted too.
func ParseAction(raw string) (Action, error) {
	normalized := strings.TrimSpace(raw)
	if normalized == "" {
		return Action{}, errors.New("analysis action is required")
	}
	for _, a := range Actions {
		if strings.EqualFold(normalized, a.Key) || strings.EqualFold(normalized, a.Label) {
			return a, nil
		}
	}
	return Action{}, ErrUnknownAction
}
