package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SummaryReport handles GET /api/reports/summary.
func (h *Handler) SummaryReport(c *gin.Context) {
	summary, err := h.reports.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

// BusinessGroupReport handles GET /api/reports/business-group.
func (h *Handler) BusinessGroupReport(c *gin.Context) {
	groups, err := h.reports.ByBusinessGroup(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": groups})
}

// FloorReport handles GET /api/reports/floor.
func (h *Handler) FloorReport(c *gin.Context) {
	floors, err := h.reports.ByFloor(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": floors})
}
