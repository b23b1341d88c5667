package middleware

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tadweer/tadweer-site/errors"
	"github.com/tadweer/tadweer-site/logger"
	"github.com/tadweer/tadweer-site/types"
)

const internalErrorMessage = "Internal server error"

// ErrorHandler renders the last error pushed with c.Error as the JSON error
// envelope. Server-side failures never expose their cause to the caller.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		last := c.Errors.Last()
		err := last.Err

		var appError *errors.AppError
		if stderrors.As(err, &appError) {
			statusCode := appError.GetHTTPStatus()
			logger.LogHTTPError(c, err, statusCode, fmt.Sprintf("%s error", appError.Type))

			if statusCode >= http.StatusInternalServerError {
				c.JSON(statusCode, internalError(statusCode))
				return
			}

			response := types.ErrorResponse{
				Error: appError.Message,
				Type:  string(appError.Type),
				Code:  strconv.Itoa(statusCode),
			}
			// Only validation and not-found errors carry details to the caller
			if appError.Type == errors.ValidationError || appError.Type == errors.NotFoundError {
				response.Details = appError.Detail
			}

			c.JSON(statusCode, response)
			return
		}

		if last.Type == gin.ErrorTypeBind {
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Request binding error")
			c.JSON(http.StatusBadRequest, types.ErrorResponse{
				Error: "Invalid request body",
				Type:  string(errors.ValidationError),
				Code:  strconv.Itoa(http.StatusBadRequest),
			})
			return
		}

		logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unexpected server error")
		c.JSON(http.StatusInternalServerError, internalError(http.StatusInternalServerError))
	}
}

func internalError(statusCode int) types.ErrorResponse {
	return types.ErrorResponse{
		Error: internalErrorMessage,
		Type:  string(errors.ServerError),
		Code:  strconv.Itoa(statusCode),
	}
}
