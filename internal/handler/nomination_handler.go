package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studentgov/election-api/internal/dto"
	"github.com/studentgov/election-api/internal/service"
	appErrors "github.com/studentgov/election-api/pkg/errors"
	"github.com/studentgov/election-api/pkg/response"
)

// NominationHandler wires HTTP endpoints to the nomination service.
type NominationHandler struct {
	service *service.NominationService
}

// NewNominationHandler creates a new handler.
func NewNominationHandler(svc *service.NominationService) *NominationHandler {
	return &NominationHandler{service: svc}
}

// Create godoc
// @Summary File a nomination
// @Description Creates the caller's nomination while the nomination window is open
// @Tags Nominations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateNominationRequest true "Nomination payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /nominations [post]
func (h *NominationHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateNominationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid nomination payload"))
		return
	}

	nomination, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, nomination)
}

// Mine godoc
// @Summary Caller's nomination
// @Tags Nominations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /nominations/me [get]
func (h *NominationHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	nomination, err := h.service.Mine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, nomination, nil)
}

// Get godoc
// @Summary Fetch a nomination
// @Tags Nominations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Nomination ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /nominations/{id} [get]
func (h *NominationHandler) Get(c *gin.Context) {
	nomination, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, nomination, nil)
}

// Update godoc
// @Summary Amend a pending nomination
// @Tags Nominations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateNominationRequest true "Updated fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /nominations/me [put]
func (h *NominationHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateNominationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid nomination payload"))
		return
	}

	nomination, err := h.service.Update(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, nomination, nil)
}

// Decide godoc
// @Summary Accept or reject a nomination
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Nomination ID"
// @Param payload body dto.NominationDecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/nominations/{id}/decision [post]
func (h *NominationHandler) Decide(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.NominationDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}

	nomination, err := h.service.Decide(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, nomination, nil)
}

// List godoc
// @Summary List nominations
// @Description Lists all nominations, optionally filtered by status
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(PENDING, ACCEPTED, REJECTED)
// @Success 200 {object} response.Envelope
// @Router /admin/nominations [get]
func (h *NominationHandler) List(c *gin.Context) {
	nominations, err := h.service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, nominations, nil)
}

// ListAccepted godoc
// @Summary List accepted candidates
// @Tags Nominations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /candidates [get]
func (h *NominationHandler) ListAccepted(c *gin.Context) {
	nominations, err := h.service.ListAccepted(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, nominations, nil)
}
