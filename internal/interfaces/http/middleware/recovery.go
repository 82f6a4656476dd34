package middleware

import (
	stderrors "errors"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/leasebot/internal/shared/constants"
	"github.com/orris-inc/leasebot/internal/shared/logger"
	"github.com/orris-inc/leasebot/internal/shared/utils"
)

func Recovery(log logger.Interface) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if isBrokenConnection(recovered) {
			log.Warnw("connection broken during request",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"error", recovered)
			c.Abort()
			return
		}

		dump, _ := httputil.DumpRequest(c.Request, false)
		headers := strings.Split(string(dump), "\r\n")
		for i, header := range headers {
			name, _, _ := strings.Cut(header, ":")
			if strings.EqualFold(name, constants.HeaderAuthorization) {
				headers[i] = name + ": *"
			}
		}

		log.Errorw("panic recovered",
			"request_id", c.GetString(constants.ContextKeyRequestID),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"headers", headers,
			"error", recovered,
			"stack", string(debug.Stack()))

		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error occurred")
		c.Abort()
	})
}

func isBrokenConnection(recovered any) bool {
	err, ok := recovered.(error)
	if !ok {
		return false
	}
	var opErr *net.OpError
	if !stderrors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if !stderrors.As(opErr.Err, &sysErr) {
		return false
	}
	msg := strings.ToLower(sysErr.Error())
	return strings.Contains(msg, "connection reset by peer") || strings.Contains(msg, "broken pipe")
}

// ErrorHandler renders the last error a handler attached with c.Error when
// nothing was written yet.
func ErrorHandler(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		log.Errorw("handler error occurred",
			"request_id", c.GetString(constants.ContextKeyRequestID),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"error", err)
		if !c.Writer.Written() {
			utils.ErrorResponseWithError(c, err)
		}
	}
}
