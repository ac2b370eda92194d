package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetVAPIDPublicKey returns the key browsers need to subscribe to seat
// vacancy notifications.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "push notifications are not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "public_key": h.webpush.VAPIDPublicKey})
}
