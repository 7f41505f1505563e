package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelapp/internal/domain"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// SuccessWithWarning is a degraded success: the primary action completed but
// a side effect (such as queueing a notification) did not.
func SuccessWithWarning(c *gin.Context, statusCode int, data interface{}, code, message string) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
		"warning": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// StatusFor maps a domain error kind onto an HTTP status.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindPermission:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidState:
		return http.StatusConflict
	case domain.KindEligibility:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// Fail writes classified domain errors with their code. Anything else becomes
// a generic 500; the original error is attached to the context for ErrorLogger.
func Fail(c *gin.Context, err error, meta ...any) {
	if de, ok := domain.AsError(err); ok {
		code := de.Code
		if code == "" {
			code = string(de.Kind)
		}
		Error(c, StatusFor(de.Kind), code, err.Error())
		return
	}

	ge := c.Error(err)
	if len(meta) > 0 {
		ge.SetMeta(meta[0])
	}
	Error(c, http.StatusInternalServerError, "INTERNAL", "Internal server error")
}
