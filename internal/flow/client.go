package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/medihack/competency-service/internal/gateway"
	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/services"
)

const defaultClientTimeout = 2 * time.Minute

// APIError is a non-2xx answer from the assessment API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// HTTPBackend talks to the assessment API over HTTP and keeps the bearer
// token issued by the last successful login.
type HTTPBackend struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

func NewHTTPBackend(baseURL string, logger *slog.Logger) *HTTPBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPBackend{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultClientTimeout},
		logger:     logger.With("component", "api-client"),
	}
}

func (b *HTTPBackend) Token() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.token
}

func (b *HTTPBackend) setToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

func (b *HTTPBackend) Login(ctx context.Context, req services.LoginRequest) (*services.AuthResponse, error) {
	var resp services.AuthResponse
	if err := b.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	b.setToken(resp.Token)
	return &resp, nil
}

func (b *HTTPBackend) AdminLogin(ctx context.Context, req services.AdminLoginRequest) (*services.AdminAuthResponse, error) {
	var resp services.AdminAuthResponse
	if err := b.do(ctx, http.MethodPost, "/auth/admin/login", req, &resp); err != nil {
		return nil, err
	}
	b.setToken(resp.Token)
	return &resp, nil
}

func (b *HTTPBackend) Logout() {
	b.setToken("")
}

func (b *HTTPBackend) StartSession(ctx context.Context, req services.StartSessionRequest) (string, error) {
	var resp services.StartSessionResponse
	if err := b.do(ctx, http.MethodPost, "/assessment/session/start", req, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

func (b *HTTPBackend) CompleteSession(ctx context.Context, sessionID string) error {
	return b.do(ctx, http.MethodPost, "/assessment/session/complete", services.CompleteSessionRequest{SessionID: sessionID}, nil)
}

func (b *HTTPBackend) GenerateScenarios(ctx context.Context, req services.GenerateScenariosRequest) ([]models.Scenario, error) {
	var scenarios []models.Scenario
	if err := b.do(ctx, http.MethodPost, "/assessment/scenarios/generate", req, &scenarios); err != nil {
		return nil, err
	}
	return scenarios, nil
}

func (b *HTTPBackend) Evaluate(ctx context.Context, req services.EvaluateRequest) (*models.Evaluation, error) {
	var eval models.Evaluation
	if err := b.do(ctx, http.MethodPost, "/assessment/evaluate", req, &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

func (b *HTTPBackend) Voice(ctx context.Context, text string, lang models.Language) (string, error) {
	var resp services.VoiceResponse
	if err := b.do(ctx, http.MethodPost, "/assessment/voice", services.VoiceRequest{Text: text, Language: lang}, &resp); err != nil {
		return "", err
	}
	return resp.AudioData, nil
}

func (b *HTTPBackend) ConsolidatedSummary(ctx context.Context, experienceYears int, results []gateway.SummaryItem, lang models.Language) (string, error) {
	req := services.ConsolidatedSummaryRequest{ExperienceYears: experienceYears, Results: results, Language: lang}
	var resp services.SummaryResponse
	if err := b.do(ctx, http.MethodPost, "/assessment/summary/consolidated", req, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

// Roster fetches the admin nurse roster.
func (b *HTTPBackend) Roster(ctx context.Context) (*services.RosterResponse, error) {
	var resp services.RosterResponse
	if err := b.do(ctx, http.MethodGet, "/admin/nurses", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExportRoster streams the roster workbook into w.
func (b *HTTPBackend) ExportRoster(ctx context.Context, w io.Writer) error {
	resp, err := b.send(ctx, http.MethodGet, "/admin/nurses/export", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}
	return nil
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := b.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (b *HTTPBackend) send(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+"/api"+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := b.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	b.logger.Debug("API request", "method", method, "path", path)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
