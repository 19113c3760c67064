package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/studentgov/election-api/internal/middleware"
	"github.com/studentgov/election-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func reviewerFromContext(c *gin.Context) *models.ReviewerClaims {
	value, exists := c.Get(middleware.ContextReviewerKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.ReviewerClaims)
	if !ok {
		return nil
	}
	return claims
}
