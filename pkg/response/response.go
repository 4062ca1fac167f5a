package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sma-announcements/pkg/errors"
)

// Message is the body returned by operations that have no resource to echo.
type Message struct {
	Message string `json:"message"`
}

// ErrorBody is the error contract shared by every endpoint.
type ErrorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// JSON sends the payload as-is with no-store caching headers.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Error sends an error response converting the error to the common structure.
// Wrapped causes stay server side.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, ErrorBody{Detail: appErr.Message, Code: appErr.Code})
}
