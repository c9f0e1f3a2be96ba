package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the uniform API response envelope
type APIResponse struct {
	Success   bool        `json:"success"`
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// Success returns a success response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Code:      "0",
		Message:   "success",
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Fail returns a failure response
func Fail(c *gin.Context, message string) {
	FailWithCode(c, "4001", message, http.StatusBadRequest)
}

// FailWithCode returns a failure response with a specific error code
func FailWithCode(c *gin.Context, code string, message string, statusCode int) {
	c.JSON(statusCode, APIResponse{
		Success:   false,
		Code:      code,
		Message:   message,
		Data:      nil,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// BadRequest returns a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "bad request"
	}
	FailWithCode(c, "4001", message, http.StatusBadRequest)
}

// NotFound returns a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "resource not found"
	}
	FailWithCode(c, "4041", message, http.StatusNotFound)
}

// Conflict returns a 409 response
func Conflict(c *gin.Context, code string, message string) {
	FailWithCode(c, code, message, http.StatusConflict)
}

// TooManyRequests returns a 429 response
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}
	FailWithCode(c, "4291", message, http.StatusTooManyRequests)
}

// InternalError returns a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "internal server error"
	}
	FailWithCode(c, "5001", message, http.StatusInternalServerError)
}
