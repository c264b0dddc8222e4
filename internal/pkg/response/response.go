// Package response shapes the JSON envelopes used by every handler:
// errors are {"error": <message>}, successes are {"message": <message>}
// plus any relevant ids.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK writes a 200 success message. Extra key/value pairs are merged into
// the body alongside the message.
func OK(c *gin.Context, message string, extra ...gin.H) {
	c.JSON(http.StatusOK, body(message, extra))
}

// Created writes a 201 success message.
func Created(c *gin.Context, message string, extra ...gin.H) {
	c.JSON(http.StatusCreated, body(message, extra))
}

// JSON writes a 200 response with an arbitrary payload (list endpoints).
func JSON(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Error writes {"error": message} with the given status.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

func body(message string, extra []gin.H) gin.H {
	out := gin.H{"message": message}
	for _, h := range extra {
		for k, v := range h {
			out[k] = v
		}
	}
	return out
}
