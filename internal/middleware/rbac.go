package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/stuteach-backend/internal/access"
	"github.com/stemsi/stuteach-backend/internal/response"
)

// RequireTeacher rejects callers that fail the teacher role gate. It must run
// after RequireAuth. Ownership is left to the service.
func RequireTeacher() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if !access.CanMutate(caller.Role) {
			response.AbortFail(c, http.StatusForbidden, response.ErrTeacherAccessOnly)
			return
		}

		c.Next()
	}
}
