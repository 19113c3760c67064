package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studentgov/election-api/internal/dto"
	"github.com/studentgov/election-api/internal/service"
	appErrors "github.com/studentgov/election-api/pkg/errors"
	"github.com/studentgov/election-api/pkg/response"
)

// ReviewerHandler wires HTTP endpoints to the reviewer service.
type ReviewerHandler struct {
	service *service.ReviewerService
}

// NewReviewerHandler creates a new handler.
func NewReviewerHandler(svc *service.ReviewerService) *ReviewerHandler {
	return &ReviewerHandler{service: svc}
}

// Login godoc
// @Summary Authenticate a reviewer
// @Description Exchanges per-phase reviewer credentials for a phase-scoped token
// @Tags Review
// @Accept json
// @Produce json
// @Param payload body dto.ReviewerLoginRequest true "Reviewer credentials"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /review/login [post]
func (h *ReviewerHandler) Login(c *gin.Context) {
	var req dto.ReviewerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// ListManifestos godoc
// @Summary Manifestos for the reviewer's phase
// @Tags Review
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /review/manifestos [get]
func (h *ReviewerHandler) ListManifestos(c *gin.Context) {
	claims := reviewerFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	manifestos, err := h.service.ListManifestos(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, manifestos, nil)
}

// Comment godoc
// @Summary Comment on a manifesto
// @Description Records a review comment; the manifesto must belong to the reviewer's phase
// @Tags Review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Manifesto ID"
// @Param payload body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /review/manifestos/{id}/comments [post]
func (h *ReviewerHandler) Comment(c *gin.Context) {
	claims := reviewerFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}

	comment, err := h.service.Comment(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, comment)
}

// PublicComments godoc
// @Summary Public comments on a manifesto
// @Tags Manifestos
// @Produce json
// @Param id path string true "Manifesto ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /manifestos/{id}/comments [get]
func (h *ReviewerHandler) PublicComments(c *gin.Context) {
	comments, err := h.service.PublicComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, comments, nil)
}

// ListComments godoc
// @Summary Comments on a manifesto
// @Tags Review
// @Produce json
// @Security BearerAuth
// @Param id path string true "Manifesto ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /review/manifestos/{id}/comments [get]
func (h *ReviewerHandler) ListComments(c *gin.Context) {
	claims := reviewerFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, comments, nil)
}
