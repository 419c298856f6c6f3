package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/medihack/competency-service/internal/gateway"
	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/services"
)

const (
	DefaultQuestionsPerCompetency = 1
	MaxRecordingTime              = 15 * time.Minute
)

var (
	ErrInvalidTransition = errors.New("action not allowed in the current view")
	ErrEmptyResponse     = errors.New("response is empty")
	ErrReportLocked      = errors.New("report requires a result for every competency")
	ErrStale             = errors.New("superseded by a later navigation")
	ErrUnknownCompetency = errors.New("competency is not part of this assessment")
	ErrNoSpeechCapture   = errors.New("speech capture unavailable")
)

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) { c.rng = rng }
}

func WithQuestionsPerCompetency(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.questions = n
		}
	}
}

func WithSetShape(shape SetShape) Option {
	return func(c *Controller) { c.shape = shape }
}

func WithSpeechCapture(capture SpeechCapture) Option {
	return func(c *Controller) { c.capture = capture }
}

func WithAudioPlayback(playback AudioPlayback) Option {
	return func(c *Controller) { c.playback = playback }
}

func WithMaxRecordingTime(d time.Duration) Option {
	return func(c *Controller) { c.maxRecording = d }
}

func WithLanguage(lang models.Language) Option {
	return func(c *Controller) { c.state.Language = lang }
}

// Controller drives one user through login, the per-competency
// question/evaluate loop, the dashboard and the report.
//
// Network calls are made without holding the lock. Every navigation bumps
// a generation counter and results that arrive for an older generation
// are dropped with ErrStale.
type Controller struct {
	backend      Backend
	capture      SpeechCapture
	playback     AudioPlayback
	logger       *slog.Logger
	rng          *rand.Rand
	questions    int
	shape        SetShape
	maxRecording time.Duration

	mu               sync.Mutex
	state            State
	responses        []string
	generation       uint64
	retake           bool
	sessionCompleted bool
	recordTimer      *time.Timer
}

func NewController(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend:      backend,
		capture:      noopCapture{},
		playback:     noopPlayback{},
		logger:       slog.Default(),
		rng:          rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		questions:    DefaultQuestionsPerCompetency,
		shape:        DefaultSetShape,
		maxRecording: MaxRecordingTime,
		state:        State{View: ViewLogin, Language: models.LanguageThai},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "flow")
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	s.Competencies = append([]models.Competency(nil), s.Competencies...)
	s.Scenarios = append([]models.Scenario(nil), s.Scenarios...)
	if s.Evaluation != nil {
		e := *s.Evaluation
		s.Evaluation = &e
	}
	s.Results = make(map[string]TopicResult, len(c.state.Results))
	for k, v := range c.state.Results {
		s.Results[k] = v
	}
	return s
}

func (c *Controller) SetLanguage(lang models.Language) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Language = lang
}

// Login signs the nurse in, draws a fresh assessment set and loads the first topic.
func (c *Controller) Login(ctx context.Context, req services.LoginRequest) error {
	if err := c.requireView(ViewLogin); err != nil {
		return err
	}

	resp, err := c.backend.Login(ctx, req)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	c.mu.Lock()
	user := resp.User
	c.resetLocked(State{
		View:         ViewLoading,
		User:         &user,
		Language:     c.state.Language,
		Competencies: SelectCompetencies(c.rng, c.shape),
		Results:      make(map[string]TopicResult),
	})
	c.mu.Unlock()

	return c.loadTopic(ctx)
}

// AdminLogin enters the admin view. It never coexists with a nurse session.
func (c *Controller) AdminLogin(ctx context.Context, username, password string) error {
	if err := c.requireView(ViewLogin); err != nil {
		return err
	}

	resp, err := c.backend.AdminLogin(ctx, services.AdminLoginRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("admin login failed: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(State{View: ViewAdmin, AdminUsername: resp.Admin.Username, Language: c.state.Language})
	return nil
}

// Logout returns to the login view from anywhere and forgets all local state.
// The server-side session is left as is.
func (c *Controller) Logout() {
	c.mu.Lock()
	c.resetLocked(State{View: ViewLogin, Language: c.state.Language})
	c.mu.Unlock()

	c.backend.Logout()
}

// Close stops any active capture or playback.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopMediaLocked()
}

// Reload retries loading the current topic after a failure.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	view := c.state.View
	c.mu.Unlock()

	if view != ViewLoading && view != ViewQuestioning {
		return ErrInvalidTransition
	}
	return c.loadTopic(ctx)
}

func (c *Controller) loadTopic(ctx context.Context) error {
	c.mu.Lock()
	c.stopMediaLocked()
	c.generation++
	gen := c.generation

	comp, ok := c.state.Current()
	if !ok || c.state.User == nil {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	c.state.View = ViewLoading
	c.state.Scenarios = nil
	c.state.QuestionIndex = 0
	c.state.Draft = ""
	c.state.Evaluation = nil
	c.responses = nil

	sessionID := c.state.SessionID
	lang := c.state.Language
	total := len(c.state.Competencies)
	experience := c.state.User.ExperienceYears
	c.mu.Unlock()

	// one session per assessment set, reused across topics and re-takes
	if sessionID == "" {
		id, err := c.backend.StartSession(ctx, services.StartSessionRequest{Language: lang, TotalCompetencies: total})
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}

		c.mu.Lock()
		if gen != c.generation {
			c.mu.Unlock()
			return ErrStale
		}
		c.state.SessionID = id
		c.mu.Unlock()
	}

	scenarios, err := c.backend.GenerateScenarios(ctx, services.GenerateScenariosRequest{
		CompetencyName:  comp.Name(lang),
		Language:        lang,
		ExperienceYears: experience,
		Count:           c.questions,
	})

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return ErrStale
	}
	if err == nil && len(scenarios) == 0 {
		err = errors.New("no scenarios returned")
	}
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to load questions: %w", err)
	}

	c.state.Scenarios = scenarios
	c.responses = make([]string, len(scenarios))
	c.state.View = ViewQuestioning
	first := scenarios[0].Text
	c.mu.Unlock()

	c.logger.Debug("Topic loaded", "competency_id", comp.ID, "scenarios", len(scenarios))
	c.speak(ctx, gen, first, lang)
	return nil
}

// StartRecording begins speech capture; final transcript chunks are appended
// to the draft. Capture stops by itself after the maximum recording time.
// The capture is started without holding the controller lock, so it may
// deliver chunks from inside Start.
func (c *Controller) StartRecording() error {
	c.mu.Lock()
	if c.state.View != ViewQuestioning {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	if c.state.Recording {
		c.mu.Unlock()
		return nil
	}
	gen := c.generation
	lang := c.state.Language
	c.state.Recording = true
	c.mu.Unlock()

	err := c.capture.Start(lang, func(chunk string) { c.appendTranscript(gen, chunk) })

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		if err == nil {
			c.capture.Stop()
		}
		return ErrStale
	}
	if err != nil {
		c.state.Recording = false
		return err
	}
	if !c.state.Recording {
		// stopped while starting
		c.capture.Stop()
		return nil
	}

	c.recordTimer = time.AfterFunc(c.maxRecording, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen == c.generation {
			c.stopRecordingLocked()
		}
	})
	return nil
}

func (c *Controller) StopRecording() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopRecordingLocked()
}

func (c *Controller) appendTranscript(gen uint64, chunk string) {
	chunk = strings.TrimSpace(chunk)
	if chunk == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || !c.state.Recording {
		return
	}
	if c.state.Draft != "" {
		c.state.Draft += " "
	}
	c.state.Draft += chunk
}

// SetDraft replaces the pending answer, for typed input.
func (c *Controller) SetDraft(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.View != ViewQuestioning {
		return ErrInvalidTransition
	}
	c.state.Draft = text
	return nil
}

// Submit stores the pending answer and moves to the next question, or
// evaluates the whole competency after the last one.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state.View != ViewQuestioning {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	answer := strings.TrimSpace(c.state.Draft)
	if answer == "" {
		c.mu.Unlock()
		return ErrEmptyResponse
	}

	c.stopMediaLocked()
	c.responses[c.state.QuestionIndex] = answer
	c.state.Draft = ""
	gen := c.generation
	lang := c.state.Language

	if c.state.QuestionIndex < len(c.state.Scenarios)-1 {
		c.state.QuestionIndex++
		next := c.state.Scenarios[c.state.QuestionIndex].Text
		c.mu.Unlock()

		c.speak(ctx, gen, next, lang)
		return nil
	}

	comp, _ := c.state.Current()
	standard := c.state.User.StandardScore
	req := services.EvaluateRequest{
		SessionID:      c.state.SessionID,
		CompetencyID:   comp.ID,
		CompetencyName: comp.Name(lang),
		Scenarios:      append([]models.Scenario(nil), c.state.Scenarios...),
		Responses:      append([]string(nil), c.responses...),
		Language:       lang,
		StandardScore:  standard,
	}
	c.state.View = ViewEvaluating
	c.mu.Unlock()

	eval, err := c.backend.Evaluate(ctx, req)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		// back to the last question with the answer restored so it can be resubmitted
		c.state.View = ViewQuestioning
		c.state.Draft = answer
		c.mu.Unlock()
		return fmt.Errorf("evaluation failed: %w", err)
	}

	c.state.Evaluation = eval
	c.state.View = ViewResult
	c.mu.Unlock()

	c.logger.Info("Competency evaluated", "competency_id", comp.ID, "score", eval.Score)
	c.speak(ctx, gen, ResultLine(eval.Score, standard, lang), lang)
	return nil
}

// Next keeps the shown result and advances to the next topic, or to the
// dashboard after the last topic or a re-take.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	if c.state.View != ViewResult || c.state.Evaluation == nil {
		c.mu.Unlock()
		return ErrInvalidTransition
	}

	comp, _ := c.state.Current()
	eval := c.state.Evaluation
	c.state.Results[comp.ID] = TopicResult{
		CompetencyID: comp.ID,
		Score:        eval.Score,
		Gap:          models.Gap(eval.Score, c.state.User.StandardScore),
		Responses:    append([]string(nil), c.responses...),
		Feedback:     eval.Feedback,
		IDP:          eval.IDP,
	}

	last := c.state.TopicIndex >= len(c.state.Competencies)-1
	if !c.retake && !last {
		c.state.TopicIndex++
		c.mu.Unlock()
		return c.loadTopic(ctx)
	}

	c.stopMediaLocked()
	c.generation++
	c.retake = false
	c.state.View = ViewDashboard
	c.state.Evaluation = nil
	c.state.Scenarios = nil

	complete := c.state.ReportReady() && !c.sessionCompleted
	if complete {
		c.sessionCompleted = true
	}
	sessionID := c.state.SessionID
	c.mu.Unlock()

	if complete {
		if err := c.backend.CompleteSession(ctx, sessionID); err != nil {
			c.logger.Warn("Failed to complete session", "session_id", sessionID, "error", err)
		}
	}
	return nil
}

// Retake runs one competency from the dashboard. Its new result replaces
// the local one; the backend keeps both.
func (c *Controller) Retake(ctx context.Context, competencyID string) error {
	c.mu.Lock()
	if c.state.View != ViewDashboard && c.state.View != ViewReport {
		c.mu.Unlock()
		return ErrInvalidTransition
	}

	index := -1
	for i, comp := range c.state.Competencies {
		if comp.ID == competencyID {
			index = i
			break
		}
	}
	if index < 0 {
		c.mu.Unlock()
		return ErrUnknownCompetency
	}

	c.state.TopicIndex = index
	c.retake = true
	c.mu.Unlock()

	return c.loadTopic(ctx)
}

// ShowDashboard leaves the current topic. Pending generation or evaluation
// results for it are discarded.
func (c *Controller) ShowDashboard() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.View {
	case ViewLoading, ViewQuestioning, ViewEvaluating, ViewResult, ViewReport:
	default:
		return ErrInvalidTransition
	}

	c.stopMediaLocked()
	c.generation++
	c.retake = false
	c.state.View = ViewDashboard
	c.state.Scenarios = nil
	c.state.Evaluation = nil
	c.state.Draft = ""
	return nil
}

func (c *Controller) ShowReport() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.View != ViewDashboard {
		return ErrInvalidTransition
	}
	if !c.state.ReportReady() {
		return ErrReportLocked
	}
	c.state.View = ViewReport
	return nil
}

func (c *Controller) CloseReport() error {
	return c.transition(ViewReport, ViewDashboard)
}

// ConsolidatedSummary asks the backend for the report's overall summary.
func (c *Controller) ConsolidatedSummary(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.state.View != ViewReport {
		c.mu.Unlock()
		return "", ErrInvalidTransition
	}
	items := make([]gateway.SummaryItem, 0, len(c.state.Competencies))
	for _, comp := range c.state.Competencies {
		r := c.state.Results[comp.ID]
		items = append(items, gateway.SummaryItem{CompetencyID: comp.ID, Score: r.Score, Gap: r.Gap})
	}
	experience := c.state.User.ExperienceYears
	lang := c.state.Language
	c.mu.Unlock()

	return c.backend.ConsolidatedSummary(ctx, experience, items, lang)
}

// speak synthesizes text and starts playback unless the controller has
// moved on. Voice failures only mean silence.
func (c *Controller) speak(ctx context.Context, gen uint64, text string, lang models.Language) {
	audio, err := c.backend.Voice(ctx, text, lang)
	if err != nil {
		c.logger.Debug("Voice unavailable", "error", err)
		return
	}
	samples, err := DecodePCM16(audio)
	if err != nil {
		c.logger.Warn("Discarding undecodable audio", "error", err)
		return
	}
	if len(samples) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	// at most one active playback
	c.playback.Stop()
	if err := c.playback.Play(samples, SampleRate); err != nil {
		c.logger.Warn("Playback failed", "error", err)
	}
}

func (c *Controller) requireView(v View) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.View != v {
		return ErrInvalidTransition
	}
	return nil
}

func (c *Controller) transition(from, to View) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.View != from {
		return ErrInvalidTransition
	}
	c.state.View = to
	return nil
}

func (c *Controller) resetLocked(s State) {
	c.stopMediaLocked()
	c.generation++
	c.state = s
	c.responses = nil
	c.retake = false
	c.sessionCompleted = false
}

// stopMediaLocked must not be called with a capture whose Stop delivers
// transcript chunks synchronously.
func (c *Controller) stopMediaLocked() {
	c.stopRecordingLocked()
	c.playback.Stop()
}

func (c *Controller) stopRecordingLocked() {
	if c.recordTimer != nil {
		c.recordTimer.Stop()
		c.recordTimer = nil
	}
	if c.state.Recording {
		c.capture.Stop()
		c.state.Recording = false
	}
}
