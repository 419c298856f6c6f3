package flow

import (
	"context"

	"github.com/medihack/competency-service/internal/gateway"
	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/services"
)

// Backend is the assessment API as seen by the controller.
type Backend interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.AuthResponse, error)
	AdminLogin(ctx context.Context, req services.AdminLoginRequest) (*services.AdminAuthResponse, error)
	Logout()

	StartSession(ctx context.Context, req services.StartSessionRequest) (string, error)
	CompleteSession(ctx context.Context, sessionID string) error

	GenerateScenarios(ctx context.Context, req services.GenerateScenariosRequest) ([]models.Scenario, error)
	Evaluate(ctx context.Context, req services.EvaluateRequest) (*models.Evaluation, error)
	Voice(ctx context.Context, text string, lang models.Language) (string, error)
	ConsolidatedSummary(ctx context.Context, experienceYears int, results []gateway.SummaryItem, lang models.Language) (string, error)
}

// SpeechCapture turns the user's speech into text.
// Only final transcript chunks are delivered to onTranscript, from any
// goroutine and possibly before Start returns. Stop is called with the
// controller locked and must not invoke onTranscript synchronously.
type SpeechCapture interface {
	Start(lang models.Language, onTranscript func(chunk string)) error
	Stop()
}

// AudioPlayback plays mono float samples. Play returns once playback has
// started; Stop interrupts whatever is playing.
type AudioPlayback interface {
	Play(samples []float32, sampleRate int) error
	Stop()
}

type noopCapture struct{}

func (noopCapture) Start(models.Language, func(string)) error { return ErrNoSpeechCapture }
func (noopCapture) Stop()                                     {}

type noopPlayback struct{}

func (noopPlayback) Play([]float32, int) error { return nil }
func (noopPlayback) Stop()                     {}
