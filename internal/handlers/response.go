package handlers

import (
	"github.com/gin-gonic/gin"
)

// fail writes the error envelope used by every endpoint.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// fault is fail plus the underlying error, for 5xx responses.
func fault(c *gin.Context, status int, message string, err error) {
	c.JSON(status, gin.H{"success": false, "message": message, "error": err.Error()})
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}
