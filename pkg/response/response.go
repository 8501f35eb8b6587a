package response

import (
	"github.com/gin-gonic/gin"

	"backend/pkg/apperror"
)

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Code       string      `json:"code,omitempty"` // machine-readable error code
	Error      string      `json:"error,omitempty"`
	Details    string      `json:"details,omitempty"` // only populated outside release mode
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError maps a typed application error onto the envelope. Technical
// details are stripped in release mode.
func FromError(err error) (int, Response) {
	app := apperror.As(err, "Unexpected error")
	res := Response{
		Status:     "error",
		StatusCode: app.Status,
		Code:       app.Code,
		Error:      app.Message,
	}
	if gin.Mode() != gin.ReleaseMode {
		res.Details = app.Details
	}
	return app.Status, res
}

// Fail writes the error envelope for err; callers return immediately after.
func Fail(c *gin.Context, err error) {
	status, res := FromError(err)
	c.JSON(status, res)
}
