package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskforge/taskforge/internal/domain/repository"
	"github.com/taskforge/taskforge/pkg/helpers"
	"github.com/taskforge/taskforge/pkg/response"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxUserIDKey = "userID"
	CtxTokenKey  = "authToken"
)

// Auth validates the bearer token from the Authorization header, resolves
// the user it embeds, and confirms the token is still in that user's active
// set. On success the user id and raw token are attached to the Gin
// context; any failure aborts with 401.
func Auth(users repository.UserRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			resp := response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			resp := response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}

		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || u == nil {
			resp := response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}

		// Token must still be in the active set: logout revokes it even
		// before the JWT itself expires.
		ok, err := users.HasToken(c.Request.Context(), u.ID, token)
		if err != nil || !ok {
			resp := response.Error[any](c, http.StatusUnauthorized, "session revoked", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}

		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxTokenKey, token)
		c.Set("userName", u.Name)
		c.Set("userEmail", u.Email)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
