package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/psims/scholar-portal/pkg/helpers"
	"github.com/psims/scholar-portal/pkg/response"
)

const CtxScholarIDKey = "scholarID"

// Auth validates the access token cookie and ensures an active session exists
// in Redis for the same session id. On success it injects scholarID and
// scholarName into the Gin context.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}

		key := "scholar:session:" + claims.ScholarID
		data, err := rdb.HGetAll(c.Request.Context(), key).Result()
		if err != nil || len(data) == 0 || data["ssn"] != claims.SessionID {
			response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
			c.Abort()
			return
		}

		c.Set(CtxScholarIDKey, claims.ScholarID)
		c.Set("scholarName", data["name"])
		c.Next()
	}
}
