package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	source  = "competency-service"
	version = "1.0"
)

const (
	TypeSessionStarted   = "assessment.session_started"
	TypeEvaluated        = "assessment.evaluated"
	TypeSessionCompleted = "assessment.session_completed"
)

// Event is the envelope for everything published by the service.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Version:   version,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type SessionStartedEvent struct {
	SessionID         string `json:"sessionId"`
	UserID            string `json:"userId"`
	Language          string `json:"language"`
	TotalCompetencies int    `json:"totalCompetencies"`
}

type EvaluatedEvent struct {
	SessionID    string  `json:"sessionId"`
	UserID       string  `json:"userId"`
	ResultID     string  `json:"resultId"`
	CompetencyID string  `json:"competencyId"`
	Score        float64 `json:"score"`
	Gap          float64 `json:"gap"`
	Source       string  `json:"source"`
}

type SessionCompletedEvent struct {
	SessionID      string    `json:"sessionId"`
	UserID         string    `json:"userId"`
	CompletedCount int       `json:"completedCount"`
	CompletedAt    time.Time `json:"completedAt"`
}
