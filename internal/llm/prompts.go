package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/resume_review.txt
	promptResumeReview string
	//go:embed prompts/improvement_tips.txt
	promptImprovementTips string
	//go:embed prompts/missing_keywords.txt
	promptMissingKeywords string
	//go:embed prompts/match_percentage.txt
	promptMatchPercentage string
	//go:embed prompts/ats_score.txt
	promptATSScore string
)

// PromptTemplate returns the instruction text for an action key and whether the key was recognized.
func PromptTemplate(key string) (string, bool) {
	var raw string
	switch key {
	case "resume_review":
		raw = promptResumeReview
	case "improvement_tips":
		raw = promptImprovementTips
	case "missing_keywords":
		raw = promptMissingKeywords
	case "match_percentage":
		raw = promptMatchPercentage
	case "ats_score":
		raw = promptATSScore
	default:
		return "", false
	}
	return strings.TrimSpace(raw), true
}
