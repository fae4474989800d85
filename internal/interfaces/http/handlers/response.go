// internal/interfaces/http/handlers/response.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// respond writes the success envelope
func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError writes the failure envelope
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}
