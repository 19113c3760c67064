package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studentgov/election-api/internal/dto"
	"github.com/studentgov/election-api/internal/service"
	appErrors "github.com/studentgov/election-api/pkg/errors"
	"github.com/studentgov/election-api/pkg/response"
)

// AdminHandler wires superadmin console endpoints to the admin service.
type AdminHandler struct {
	service *service.AdminService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{service: svc}
}

// GetConfig godoc
// @Summary Current election configuration
// @Tags Superadmin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /superadmin/config [get]
func (h *AdminHandler) GetConfig(c *gin.Context) {
	cfg, err := h.service.GetConfig(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, cfg, nil)
}

// UpdateConfig godoc
// @Summary Update election configuration
// @Description Partially updates windows, caps and reviewer credentials; omitted fields keep their value
// @Tags Superadmin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateConfigRequest true "Configuration changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /superadmin/config [put]
func (h *AdminHandler) UpdateConfig(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid configuration payload"))
		return
	}

	cfg, err := h.service.UpdateConfig(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, cfg, nil)
}

// Statistics godoc
// @Summary Election statistics
// @Tags Superadmin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /superadmin/statistics [get]
func (h *AdminHandler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}

// PromoteAdmin godoc
// @Summary Promote a user to admin
// @Tags Superadmin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.PromoteAdminRequest true "User to promote"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /superadmin/admins [post]
func (h *AdminHandler) PromoteAdmin(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.PromoteAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid promotion payload"))
		return
	}

	user, err := h.service.PromoteAdmin(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, user, nil)
}

// ListUsers godoc
// @Summary List all users
// @Tags Superadmin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /superadmin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, users, nil)
}

// ListActivity godoc
// @Summary Recent activity log
// @Tags Superadmin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum entries" default(100)
// @Success 200 {object} response.Envelope
// @Router /superadmin/activity [get]
func (h *AdminHandler) ListActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := h.service.ListActivity(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}

// Export godoc
// @Summary Export election data
// @Description Renders candidates, supporters, manifestos or comments as CSV or PDF
// @Tags Superadmin
// @Produce json
// @Security BearerAuth
// @Param type path string true "Dataset" Enums(candidates, supporters, manifestos, comments)
// @Param format query string false "Format" Enums(csv, pdf) default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /superadmin/export/{type} [get]
func (h *AdminHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	result, err := h.service.Export(c.Request.Context(), claims.UserID, c.Param("type"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
