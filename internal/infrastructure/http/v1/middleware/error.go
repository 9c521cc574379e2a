package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/apperror"
	appctx "github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/context"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/infrastructure/http/v1/dto"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}
		// A CSV handler may have set attachment headers before failing.
		c.Writer.Header().Del("Content-Disposition")
		c.Writer.Header().Del("Content-Type")

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}
			c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			})
			return
		}

		logger.Error(c.Request.Context(), "unhandled error", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Code:    apperror.CodeInternal,
			Message: "Internal server error",
			Details: map[string]any{
				"request_id": appctx.GetRequestID(c.Request.Context()),
			},
		})
	}
}
