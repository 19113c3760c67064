package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/studentgov/election-api/internal/service"
	"github.com/studentgov/election-api/pkg/response"
)

// ContextReviewerKey is the gin context key storing reviewer claims.
const ContextReviewerKey = "currentReviewer"

// Reviewer protects review endpoints by requiring a phase-scoped reviewer
// token. User tokens are rejected here; reviewer tokens are rejected by JWT.
func Reviewer(reviewerService *service.ReviewerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		claims, err := reviewerService.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextReviewerKey, claims)
		c.Next()
	}
}
