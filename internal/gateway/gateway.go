package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/medihack/competency-service/internal/metrics"
	"github.com/medihack/competency-service/internal/models"
)

const (
	VoiceThai    = "Kore"
	VoiceEnglish = "Zephyr"

	// AudioSampleRate is the rate of the PCM16 mono audio returned by GenerateVoiceAudio.
	AudioSampleRate = 24000

	summaryMaxTokens = 512
)

type ScenarioRequest struct {
	CompetencyName  string
	Language        models.Language
	ExperienceYears int
	Count           int
}

type EvaluationRequest struct {
	Scenarios      []models.Scenario
	Responses      []string
	CompetencyName string
	StandardScore  float64
	Language       models.Language
}

// SummaryItem is one competency outcome fed into the consolidated summary.
type SummaryItem struct {
	CompetencyID string  `json:"competencyId" validate:"required"`
	Score        float64 `json:"score"`
	Gap          float64 `json:"gap"`
}

type SummaryRequest struct {
	ExperienceYears int
	Results         []SummaryItem
	Language        models.Language
}

// Gateway produces scenarios, evaluations, audio and summaries through a
// generative provider, degrading to deterministic output when quota runs out.
type Gateway struct {
	text    Provider
	speech  SpeechSynthesizer
	logger  *slog.Logger
	timeout time.Duration
}

// New creates a Gateway. speech may be nil, in which case voice generation
// always reports no audio.
func New(text Provider, speech SpeechSynthesizer, logger *slog.Logger, timeout time.Duration) *Gateway {
	return &Gateway{
		text:    text,
		speech:  speech,
		logger:  logger.With("component", "gateway", "model", text.ModelID()),
		timeout: timeout,
	}
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *Gateway) record(op, outcome string) {
	metrics.GatewayCalls.WithLabelValues(op, outcome).Inc()
}

// GenerateScenarios returns req.Count scenarios for one competency.
func (g *Gateway) GenerateScenarios(ctx context.Context, req ScenarioRequest) ([]models.Scenario, error) {
	if req.Count < 1 {
		req.Count = 1
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.text.Generate(ctx, Request{
		Prompt:      scenarioPrompt(req),
		Schema:      scenarioSchema,
		Temperature: 0.9,
	})
	if err != nil {
		if IsQuotaExceeded(err) {
			g.logger.Warn("Quota exceeded during scenario generation, using fallback scenarios",
				"competency", req.CompetencyName, "count", req.Count)
			g.record("scenarios", "fallback")
			return fallbackScenarios(req.CompetencyName, req.Language, req.Count), nil
		}
		g.record("scenarios", "error")
		return nil, &UpstreamGenerationError{Op: "scenario generation", Err: err}
	}

	var out struct {
		Scenarios []models.Scenario `json:"scenarios"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		g.record("scenarios", "error")
		return nil, &UpstreamGenerationError{Op: "scenario generation", Err: &ErrInvalidResponse{Content: resp.Content, Err: err}}
	}
	if out.Scenarios == nil {
		out.Scenarios = []models.Scenario{}
	}

	g.record("scenarios", "ok")
	return out.Scenarios, nil
}

// EvaluateResponses scores one competency's answers and builds its IDP.
// The returned score is always within [0, 4] and rounded to one decimal.
func (g *Gateway) EvaluateResponses(ctx context.Context, req EvaluationRequest) (*models.Evaluation, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.text.Generate(ctx, Request{
		Prompt: evaluationPrompt(req),
		Schema: evaluationSchema,
	})
	if err != nil {
		if IsQuotaExceeded(err) {
			g.logger.Warn("Quota exceeded during evaluation, using fallback evaluation",
				"competency", req.CompetencyName)
			g.record("evaluate", "fallback")
			eval := fallbackEvaluation(req.Responses, req.StandardScore, req.CompetencyName, req.Language)
			return &eval, nil
		}
		g.record("evaluate", "error")
		return nil, &EvaluationFailedError{Err: err}
	}

	eval, err := decodeEvaluation(resp.Content)
	if err != nil {
		g.record("evaluate", "error")
		return nil, &EvaluationFailedError{Err: err}
	}

	g.record("evaluate", "ok")
	return eval, nil
}

// decodeEvaluation parses model output and clamps the score into range.
func decodeEvaluation(raw json.RawMessage) (*models.Evaluation, error) {
	var eval models.Evaluation
	if err := json.Unmarshal(raw, &eval); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: err}
	}

	eval.Score = models.ClampScore(eval.Score)
	eval.Source = models.SourceAI
	if eval.IDP.TrainingCourses == nil {
		eval.IDP.TrainingCourses = []string{}
	}
	if eval.IDP.NonTrainingCourses == nil {
		eval.IDP.NonTrainingCourses = []string{}
	}
	return &eval, nil
}

// VoiceFor returns the prebuilt voice used for lang.
func VoiceFor(lang models.Language) string {
	if lang == models.LanguageThai {
		return VoiceThai
	}
	return VoiceEnglish
}

// GenerateVoiceAudio returns base64 PCM16 mono audio at AudioSampleRate,
// or "" when no audio is available.
func (g *Gateway) GenerateVoiceAudio(ctx context.Context, text string, lang models.Language) (string, error) {
	if g.speech == nil || strings.TrimSpace(text) == "" {
		return "", nil
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	audio, err := g.speech.Synthesize(ctx, text, VoiceFor(lang))
	if err != nil {
		if IsQuotaExceeded(err) {
			g.logger.Warn("Quota exceeded during voice generation, returning no audio")
			g.record("voice", "fallback")
			return "", nil
		}
		g.record("voice", "error")
		return "", &VoiceGenerationError{Err: err}
	}

	g.record("voice", "ok")
	if len(audio) == 0 {
		return "", nil
	}
	return base64.StdEncoding.EncodeToString(audio), nil
}

// GenerateConsolidatedSummary writes a short narrative across all results.
func (g *Gateway) GenerateConsolidatedSummary(ctx context.Context, req SummaryRequest) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.text.Generate(ctx, Request{
		System:    summarySystem,
		Prompt:    summaryPrompt(req),
		MaxTokens: summaryMaxTokens,
	})
	if err == nil {
		var text string
		if uerr := json.Unmarshal(resp.Content, &text); uerr != nil {
			err = &ErrInvalidResponse{Content: resp.Content, Err: uerr}
		} else if strings.TrimSpace(text) == "" {
			err = &ErrInvalidResponse{Err: errors.New("empty summary")}
		} else {
			g.record("summary", "ok")
			return text, nil
		}
	}

	if IsQuotaExceeded(err) {
		g.logger.Warn("Quota exceeded during consolidated summary, using fallback summary",
			"results", len(req.Results))
		g.record("summary", "fallback")
		return fallbackSummary(req.ExperienceYears, req.Results, req.Language), nil
	}
	g.record("summary", "error")
	return "", &UpstreamGenerationError{Op: "summary generation", Err: fmt.Errorf("generate: %w", err)}
}
