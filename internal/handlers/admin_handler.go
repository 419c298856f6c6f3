package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medihack/competency-service/internal/services"
	"github.com/medihack/competency-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	BaseHandler
	adminService services.AdminService
}

func NewAdminHandler(adminService services.AdminService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  NewBaseHandler(logger),
		adminService: adminService,
	}
}

// GetNurseRoster returns per-nurse statistics
// @Summary Nurse roster
// @Description Session, completion and score aggregates for every nurse, recomputed per request
// @Tags admin
// @Produce json
// @Success 200 {object} services.RosterResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/nurses [get]
func (h *AdminHandler) GetNurseRoster(c *gin.Context) {
	h.LogRequest(c, "Getting nurse roster")

	roster, err := h.adminService.GetNurseRoster(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "Failed to get nurse roster")
		return
	}

	c.JSON(http.StatusOK, roster)
}

// ExportNurseRoster downloads the roster as an XLSX workbook
// @Summary Export nurse roster
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /admin/nurses/export [get]
func (h *AdminHandler) ExportNurseRoster(c *gin.Context) {
	// buffered so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := h.adminService.ExportNurseRoster(c.Request.Context(), &buf); err != nil {
		h.handleServiceError(c, err, "Failed to export nurse roster")
		return
	}

	filename := fmt.Sprintf("nurses-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
