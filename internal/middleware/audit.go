package middleware

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studentgov/election-api/internal/models"
	"github.com/studentgov/election-api/internal/repository"
)

// Audit records an activity entry after successful requests. Failures are
// dropped silently; the request outcome never depends on the audit write.
func Audit(repo *repository.ActivityRepository, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		var userID *string
		if claims, ok := c.Get(ContextUserKey); ok {
			user := claims.(*models.JWTClaims)
			userID = &user.UserID
		}

		body, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		_ = repo.Create(c.Request.Context(), &models.ActivityLog{
			UserID:   userID,
			Action:   action,
			Metadata: body,
		})
	}
}
