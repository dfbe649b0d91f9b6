package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextRequestID is the gin context key holding the request id set by the RequestID middleware
const ContextRequestID = "requestID"

// SuccessResponse sends a 200 envelope
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// CreatedResponse sends a 201 envelope for a newly stored record
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// StoredResponse answers an idempotent create: 201 when created, 200 when the record already existed.
func StoredResponse(c *gin.Context, created bool, data interface{}) {
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"success": true,
		"created": created,
		"data":    data,
	})
}

// ErrorResponse sends a failure envelope carrying the request id, so clients can quote it
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, errorBody(c, "", message))
}

// CodedErrorResponse is ErrorResponse with a machine readable code such as "room_unavailable"
func CodedErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, errorBody(c, code, message))
}

// MessageResponse sends a simple message response
func MessageResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

// FileResponse sends data as a download named filename
func FileResponse(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func errorBody(c *gin.Context, code, message string) gin.H {
	body := gin.H{
		"success": false,
		"error":   message,
	}
	if code != "" {
		body["code"] = code
	}
	if id := c.GetString(ContextRequestID); id != "" {
		body["request_id"] = id
	}
	return body
}
