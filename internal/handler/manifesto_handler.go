package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studentgov/election-api/internal/dto"
	"github.com/studentgov/election-api/internal/service"
	appErrors "github.com/studentgov/election-api/pkg/errors"
	"github.com/studentgov/election-api/pkg/response"
)

// ManifestoHandler wires HTTP endpoints to the manifesto service.
type ManifestoHandler struct {
	service *service.ManifestoService
}

// NewManifestoHandler creates a new handler.
func NewManifestoHandler(svc *service.ManifestoService) *ManifestoHandler {
	return &ManifestoHandler{service: svc}
}

// Upload godoc
// @Summary Upload a manifesto
// @Description Uploads or replaces the caller's manifesto for a phase while that phase's window is open
// @Tags Manifestos
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param phase path string true "Phase" Enums(phase1, phase2, final)
// @Param file formData file true "PDF file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /manifestos/{phase} [post]
func (h *ManifestoHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file field is required"))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read uploaded file"))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read uploaded file"))
		return
	}

	manifesto, err := h.service.Upload(c.Request.Context(), claims.UserID, c.Param("phase"), service.ManifestoUpload{
		FileName: fileHeader.Filename,
		Data:     data,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, manifesto)
}

// Delete godoc
// @Summary Delete the caller's manifesto for a phase
// @Tags Manifestos
// @Produce json
// @Security BearerAuth
// @Param phase path string true "Phase" Enums(phase1, phase2, final)
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /manifestos/{phase} [delete]
func (h *ManifestoHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("phase")); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"message": "manifesto deleted"}, nil)
}

// Mine godoc
// @Summary Caller's manifestos
// @Tags Manifestos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /manifestos/me [get]
func (h *ManifestoHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	manifestos, err := h.service.Mine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, manifestos, nil)
}

// ListForNomination godoc
// @Summary List a nomination's manifestos
// @Tags Manifestos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Nomination ID"
// @Success 200 {object} response.Envelope
// @Router /manifestos/nomination/{id} [get]
func (h *ManifestoHandler) ListForNomination(c *gin.Context) {
	manifestos, err := h.service.ListForNomination(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, manifestos, nil)
}

// ListByPhase godoc
// @Summary List manifestos for a phase
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param phase path string true "Phase" Enums(phase1, phase2, final)
// @Success 200 {object} response.Envelope
// @Router /admin/manifestos/{phase} [get]
func (h *ManifestoHandler) ListByPhase(c *gin.Context) {
	manifestos, err := h.service.ListByPhase(c.Request.Context(), c.Param("phase"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, manifestos, nil)
}

// SetLocked godoc
// @Summary Lock or unlock a manifesto
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Manifesto ID"
// @Param payload body dto.ManifestoLockRequest true "Lock state"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/manifestos/{id}/lock [post]
func (h *ManifestoHandler) SetLocked(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ManifestoLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lock payload"))
		return
	}

	manifesto, err := h.service.SetLocked(c.Request.Context(), claims.UserID, c.Param("id"), req.Locked)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, manifesto, nil)
}

// SignedURL godoc
// @Summary Issue a signed download link
// @Tags Manifestos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Manifesto ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /manifestos/{id}/signed-url [get]
func (h *ManifestoHandler) SignedURL(c *gin.Context) {
	token, expiresAt, err := h.service.SignedURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"url":        "/api/v1/manifestos/download?token=" + token,
		"expires_at": expiresAt,
	}, nil)
}

// Download godoc
// @Summary Download a manifesto file
// @Description Streams the file addressed by a signed download token
// @Tags Manifestos
// @Produce application/pdf
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /manifestos/download [get]
func (h *ManifestoHandler) Download(c *gin.Context) {
	rc, manifestoID, err := h.service.OpenSigned(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="manifesto_`+manifestoID+`.pdf"`)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

// Inline godoc
// @Summary View a manifesto inline
// @Description Proxies the manifesto file from its stored location for inline viewing
// @Tags Manifestos
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Manifesto ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /manifestos/{id}/view [get]
func (h *ManifestoHandler) Inline(c *gin.Context) {
	rc, contentType, err := h.service.FetchInline(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "inline")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}
