package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medihack/competency-service/internal/services"
	"github.com/medihack/competency-service/internal/utils"
)

type AssessmentHandler struct {
	BaseHandler
	assessmentService services.AssessmentService
}

func NewAssessmentHandler(assessmentService services.AssessmentService, logger utils.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assessmentService: assessmentService,
	}
}

// ListCompetencies returns the competency catalog
// @Summary List competencies
// @Tags assessment
// @Produce json
// @Success 200 {array} models.Competency
// @Router /assessment/competencies [get]
func (h *AssessmentHandler) ListCompetencies(c *gin.Context) {
	c.JSON(http.StatusOK, h.assessmentService.Competencies())
}

// StartSession opens a new assessment session for the caller
// @Summary Start session
// @Tags assessment
// @Accept json
// @Produce json
// @Param body body services.StartSessionRequest true "Session options"
// @Success 200 {object} services.StartSessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /assessment/session/start [post]
func (h *AssessmentHandler) StartSession(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req services.StartSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.assessmentService.StartSession(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to start session")
		return
	}

	h.LogRequest(c, "Session started", "session_id", resp.SessionID)
	c.JSON(http.StatusOK, resp)
}

// GenerateScenarios returns scenario prompts for one competency
// @Summary Generate scenarios
// @Tags assessment
// @Accept json
// @Produce json
// @Param body body services.GenerateScenariosRequest true "Scenario options"
// @Success 200 {array} models.Scenario
// @Failure 500 {object} ErrorResponse
// @Router /assessment/scenarios/generate [post]
func (h *AssessmentHandler) GenerateScenarios(c *gin.Context) {
	var req services.GenerateScenariosRequest
	if !h.bindJSON(c, &req) {
		return
	}

	scenarios, err := h.assessmentService.GenerateScenarios(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to generate scenarios")
		return
	}

	c.JSON(http.StatusOK, scenarios)
}

// Evaluate scores the caller's responses and stores the result
// @Summary Evaluate responses
// @Tags assessment
// @Accept json
// @Produce json
// @Param body body services.EvaluateRequest true "Scenarios and responses"
// @Success 200 {object} models.Evaluation
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /assessment/evaluate [post]
func (h *AssessmentHandler) Evaluate(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req services.EvaluateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	eval, err := h.assessmentService.Evaluate(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err, "Evaluation failed")
		return
	}

	c.JSON(http.StatusOK, eval)
}

// GenerateVoice synthesizes speech. An empty audioData means no audio is available.
func (h *AssessmentHandler) GenerateVoice(c *gin.Context) {
	var req services.VoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.assessmentService.GenerateVoice(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Voice generation failed")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AssessmentHandler) GenerateConsolidatedSummary(c *gin.Context) {
	var req services.ConsolidatedSummaryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.assessmentService.GenerateConsolidatedSummary(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to generate summary")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CompleteSession marks the caller's session completed
// @Summary Complete session
// @Tags assessment
// @Router /assessment/session/complete [post]
func (h *AssessmentHandler) CompleteSession(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req services.CompleteSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgSessionIDRequired})
		return
	}

	if err := h.assessmentService.CompleteSession(c.Request.Context(), req.SessionID, userID); err != nil {
		h.handleServiceError(c, err, "Failed to complete session")
		return
	}

	c.JSON(http.StatusOK, services.SuccessResponse{Success: true})
}

// GetSessionResults lists every stored result of one session, re-takes included.
func (h *AssessmentHandler) GetSessionResults(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	results, err := h.assessmentService.GetSessionResults(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get results")
		return
	}

	c.JSON(http.StatusOK, results)
}
