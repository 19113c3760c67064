package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studentgov/election-api/internal/dto"
	"github.com/studentgov/election-api/internal/service"
	appErrors "github.com/studentgov/election-api/pkg/errors"
	"github.com/studentgov/election-api/pkg/response"
)

// SupporterHandler wires HTTP endpoints to the supporter service.
type SupporterHandler struct {
	service *service.SupporterService
}

// NewSupporterHandler creates a new handler.
func NewSupporterHandler(svc *service.SupporterService) *SupporterHandler {
	return &SupporterHandler{service: svc}
}

// Create godoc
// @Summary Offer support to a candidate
// @Description Files a proposer, seconder or campaigner request for a nomination
// @Tags Supporters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateSupporterRequest true "Support payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /supporters [post]
func (h *SupporterHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateSupporterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid support payload"))
		return
	}

	request, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, request)
}

// Decide godoc
// @Summary Accept or reject a support request
// @Description Candidates decide on requests against their own nomination; accepts are capped per role
// @Tags Supporters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param payload body dto.SupporterDecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /supporters/{id}/decision [post]
func (h *SupporterHandler) Decide(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SupporterDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}

	request, err := h.service.Decide(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, request, nil)
}

// Incoming godoc
// @Summary Requests against the caller's nomination
// @Tags Supporters
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /supporters/incoming [get]
func (h *SupporterHandler) Incoming(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.service.ListForCandidate(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests, nil)
}

// Mine godoc
// @Summary Requests the caller has filed
// @Tags Supporters
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /supporters/me [get]
func (h *SupporterHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.service.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests, nil)
}

// ListAll godoc
// @Summary List all support requests
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/supporters [get]
func (h *SupporterHandler) ListAll(c *gin.Context) {
	requests, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests, nil)
}
