package gateway

import (
	"fmt"
	"strings"

	"github.com/medihack/competency-service/internal/models"
)

var scenarioSchema = &Schema{
	Name:        "nursing-scenarios",
	Description: "Situational nursing questions for one competency",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"scenarios": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":      map[string]any{"type": "string"},
						"text":    map[string]any{"type": "string"},
						"context": map[string]any{"type": "string"},
					},
					"required": []any{"id", "text", "context"},
				},
			},
		},
		"required": []any{"scenarios"},
	},
}

// evaluationSchema checks shape only. Range is enforced by clamping after decode.
var evaluationSchema = &Schema{
	Name:        "competency-evaluation",
	Description: "Score, feedback and development plan for one competency",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":    map[string]any{"type": "number"},
			"feedback": map[string]any{"type": "string"},
			"idp": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"trainingCourses":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"nonTrainingCourses": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"recommendation":     map[string]any{"type": "string"},
				},
				"required": []any{"trainingCourses", "nonTrainingCourses", "recommendation"},
			},
		},
		"required": []any{"score", "feedback", "idp"},
	},
}

func languageName(lang models.Language) string {
	if lang == models.LanguageThai {
		return "Thai"
	}
	return "English"
}

func scenarioPrompt(req ScenarioRequest) string {
	tier := models.TierForExperience(req.ExperienceYears)
	return fmt.Sprintf(`Generate %d different realistic nursing scenarios for: %s.
Target Difficulty: %s.
Question Length: %s.
Language: %s.

Each scenario should end with a clear open-ended question. Make scenarios diverse and varied.`,
		req.Count, req.CompetencyName, tier.Label, tier.QuestionLength, languageName(req.Language))
}

func evaluationPrompt(req EvaluationRequest) string {
	var pairs strings.Builder
	for i, sc := range req.Scenarios {
		fmt.Fprintf(&pairs, "Q%d: %s\nA%d: %q\n\n", i+1, sc.Text, i+1, models.ResponseAt(req.Responses, i))
	}

	std := formatScore(req.StandardScore)
	return fmt.Sprintf(`Competency: %s
Target Standard Score: %s

Evaluate all responses for this competency:
%s
1. Calculate an average score (0.0 to 4.0) based on all responses.
2. Provide brief constructive feedback (2-3 sentences max).
3. Generate a Topic-Specific Individual Development Plan (IDP).
   Rule: If score > %s (Positive Gap), prioritize Non-Training (Coaching, Mentoring).
   Rule: If score <= %s (Negative Gap), prioritize Formal Training (Workshops, Courses).

Output everything in %s. Keep feedback concise.`,
		req.CompetencyName, std, pairs.String(), std, std, languageName(req.Language))
}

// summarySystem sets the reviewer persona for consolidated summaries.
const summarySystem = "You are a Nursing Director reviewing a nurse's competency self-assessment. " +
	"Write plainly for the nurse and keep to the requested length."

func summaryPrompt(req SummaryRequest) string {
	lines := make([]string, 0, len(req.Results))
	for _, r := range req.Results {
		lines = append(lines, fmt.Sprintf("Topic: %s, Score: %s, Gap: %s", r.CompetencyID, formatScore(r.Score), formatScore(r.Gap)))
	}

	return fmt.Sprintf(`Write a 3-sentence high-level summary for this nurse's global performance based on %d topic IDPs.
Experience: %dy.
Summary Data:
%s
Language: %s.`,
		len(req.Results), req.ExperienceYears, strings.Join(lines, "\n"), languageName(req.Language))
}

func formatScore(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
