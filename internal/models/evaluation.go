package models

import "math"

const (
	MinScore = 0.0
	MaxScore = 4.0

	// NoResponse stands in for a missing answer.
	NoResponse = "No response"

	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// Scenario is one generated situational question.
type Scenario struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Context string `json:"context"`
}

// IDP is an individual development plan.
type IDP struct {
	TrainingCourses    []string `json:"trainingCourses"`
	NonTrainingCourses []string `json:"nonTrainingCourses"`
	Recommendation     string   `json:"recommendation"`
}

// Evaluation is a scored judgment of one competency's responses.
type Evaluation struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
	IDP      IDP     `json:"idp"`

	// Source is SourceAI or SourceFallback.
	Source string `json:"source,omitempty"`
}

// ClampScore limits score to [MinScore, MaxScore] and rounds it to one decimal.
func ClampScore(score float64) float64 {
	if math.IsNaN(score) {
		return MinScore
	}
	score = math.Max(MinScore, math.Min(MaxScore, score))
	return math.Round(score*10) / 10
}

// Gap is score minus the user's standard score.
func Gap(score, standardScore float64) float64 {
	return score - standardScore
}

// ResponseAt returns the response for question i, or NoResponse when missing or blank.
func ResponseAt(responses []string, i int) string {
	if i < len(responses) && responses[i] != "" {
		return responses[i]
	}
	return NoResponse
}
