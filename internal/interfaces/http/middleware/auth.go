package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/leasebot/internal/shared/constants"
	"github.com/orris-inc/leasebot/internal/shared/errors"
	"github.com/orris-inc/leasebot/internal/shared/utils"
)

// Predicate decides whether a request may reach a handler.
type Predicate func(c *gin.Context) bool

// Guard runs handler only for requests allow accepts.
func Guard(handler gin.HandlerFunc, allow Predicate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(c) {
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("missing or invalid admin token"))
			c.Abort()
			return
		}
		handler(c)
	}
}

// IsAdmin accepts requests carrying "Authorization: Bearer <token>". An empty
// token rejects everything.
func IsAdmin(token string) Predicate {
	return func(c *gin.Context) bool {
		if token == "" {
			return false
		}
		presented, ok := bearerToken(c.GetHeader(constants.HeaderAuthorization))
		if !ok {
			return false
		}
		return subtle.ConstantTimeCompare([]byte(presented), []byte(token)) == 1
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
