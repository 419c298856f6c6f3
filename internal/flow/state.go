package flow

import (
	"github.com/medihack/competency-service/internal/models"
)

// View is the screen the controller is currently presenting.
type View int

const (
	ViewLogin View = iota
	ViewLoading
	ViewQuestioning
	ViewEvaluating
	ViewResult
	ViewDashboard
	ViewReport
	ViewAdmin
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewLoading:
		return "loading"
	case ViewQuestioning:
		return "questioning"
	case ViewEvaluating:
		return "evaluating"
	case ViewResult:
		return "result"
	case ViewDashboard:
		return "dashboard"
	case ViewReport:
		return "report"
	case ViewAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// TopicResult is the latest evaluation kept for one competency.
type TopicResult struct {
	CompetencyID string     `json:"competencyId"`
	Score        float64    `json:"score"`
	Gap          float64    `json:"gap"`
	Responses    []string   `json:"responses"`
	Feedback     string     `json:"feedback"`
	IDP          models.IDP `json:"idp"`
}

// State is a point-in-time copy of the controller for rendering.
type State struct {
	View          View
	User          *models.UserSummary
	AdminUsername string
	Language      models.Language
	SessionID     string

	Competencies  []models.Competency
	TopicIndex    int
	QuestionIndex int
	Scenarios     []models.Scenario
	Draft         string
	Recording     bool

	// Evaluation is set while View is ViewResult.
	Evaluation *models.Evaluation
	Results    map[string]TopicResult
}

// Current returns the competency being assessed, if any.
func (s State) Current() (models.Competency, bool) {
	if s.TopicIndex < 0 || s.TopicIndex >= len(s.Competencies) {
		return models.Competency{}, false
	}
	return s.Competencies[s.TopicIndex], true
}

// CurrentScenario returns the question being answered, if any.
func (s State) CurrentScenario() (models.Scenario, bool) {
	if s.QuestionIndex < 0 || s.QuestionIndex >= len(s.Scenarios) {
		return models.Scenario{}, false
	}
	return s.Scenarios[s.QuestionIndex], true
}

// ReportReady reports whether every competency in the set has a result.
func (s State) ReportReady() bool {
	if len(s.Competencies) == 0 {
		return false
	}
	for _, c := range s.Competencies {
		if _, ok := s.Results[c.ID]; !ok {
			return false
		}
	}
	return true
}
