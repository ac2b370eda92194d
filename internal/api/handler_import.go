package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"seat-occupancy-backend/internal/apperr"
	"seat-occupancy-backend/internal/mapping"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AnalyzeImport handles POST /api/import/analyze with a multipart "file".
func (h *Handler) AnalyzeImport(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "file exceeds upload limit"})
			return
		}
		h.fail(c, apperr.Validation("No file uploaded"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.fail(c, apperr.IO(err, "failed to open upload"))
		return
	}
	defer f.Close()

	fileID, err := h.importer.Stage(fh.Filename, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	analysis, err := h.importer.AnalyzeFile(fileID, fh.Filename)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"fileId":            analysis.FileID,
		"headers":           analysis.Headers,
		"sampleData":        analysis.SampleData,
		"totalRows":         analysis.TotalRows,
		"suggestedMappings": analysis.SuggestedMapping,
		"hints":             analysis.Hints,
	})
}

type executeImportRequest struct {
	FileID   string            `json:"fileId" binding:"required"`
	Mappings map[string]string `json:"mappings" binding:"required"`
}

// ExecuteImport handles POST /api/import/execute.
func (h *Handler) ExecuteImport(c *gin.Context) {
	var req executeImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	m, err := mapping.Validate(req.Mappings)
	if err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.importer.ExecuteFile(c.Request.Context(), req.FileID, m)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"sessionId": res.SessionID,
		"results": gin.H{
			"totalProcessed": len(res.Succeeded) + len(res.Failed) + len(res.Conflicts) + res.Skipped,
			"successCount":   len(res.Succeeded),
			"failedCount":    len(res.Failed),
			"skippedCount":   res.Skipped,
			"conflicts":      res.Conflicts,
			"failed":         res.Failed,
		},
	})
}

// ExportImport handles GET /api/import/export.
func (h *Handler) ExportImport(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.importer.Export(c.Request.Context(), &buf); err != nil {
		h.fail(c, err)
		return
	}

	name := fmt.Sprintf("office_space_export_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListImportSessions handles GET /api/import/sessions?limit=.
func (h *Handler) ListImportSessions(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.fail(c, apperr.Validation("invalid limit %q", raw))
			return
		}
		limit = n
	}
	sessions, err := h.importer.Sessions(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(sessions), "sessions": sessions})
}

// GetImportSession handles GET /api/import/sessions/:sessionId.
func (h *Handler) GetImportSession(c *gin.Context) {
	session, err := h.importer.Session(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}
