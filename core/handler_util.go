package core

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError sends the error payload {"detail": message, "code": code}.
func respondError(c *gin.Context, status int, code, message string) {
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.JSON(status, gin.H{"detail": message, "code": code})
}
