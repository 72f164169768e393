package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope used by the /api endpoints. The transcribe
// endpoint keeps its own flat shape for compatibility with existing clients.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
}

func respond(c *gin.Context, httpStatus int, success bool, message string, data interface{}) {
	if message == "" {
		if success {
			message = "ok"
		} else {
			message = http.StatusText(httpStatus)
		}
	}

	resp := APIResponse{
		Success: success,
		Message: message,
		Code:    httpStatus,
	}

	if data == nil {
		resp.Data = gin.H{}
	} else {
		resp.Data = data
	}

	c.JSON(httpStatus, resp)
}

func RespondSuccess(c *gin.Context, httpStatus int, data interface{}, message string) {
	respond(c, httpStatus, true, message, data)
}

func RespondError(c *gin.Context, httpStatus int, message string, data interface{}) {
	respond(c, httpStatus, false, message, data)
}
