package api

import (
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"seat-occupancy-backend/internal/apperr"
	"seat-occupancy-backend/internal/importer"
	"seat-occupancy-backend/internal/report"
	"seat-occupancy-backend/internal/seating"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	engine    *seating.Engine
	importer  *importer.Pipeline
	reports   *report.Aggregator
	db        *gorm.DB
	webpush   *webpush.Options
	maxUpload int64
	log       logrus.FieldLogger
}

// Deps bundles what NewHandler needs.
type Deps struct {
	Engine      *seating.Engine
	Importer    *importer.Pipeline
	Reports     *report.Aggregator
	DB          *gorm.DB
	WebPush     *webpush.Options
	MaxUploadMB int
	Log         logrus.FieldLogger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	maxUpload := int64(d.MaxUploadMB) << 20
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		engine:    d.Engine,
		importer:  d.Importer,
		reports:   d.Reports,
		db:        d.DB,
		webpush:   d.WebPush,
		maxUpload: maxUpload,
		log:       log,
	}
}

// statusFor maps an error kind onto an HTTP status code.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error envelope. Internal errors are logged and not echoed
// in detail.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		msg = "internal server error"
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}

func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s %q", name, c.Param(name))
	}
	return id, nil
}

// Health reports that the process is serving.
func (h *Handler) Health(c *gin.Context) {
	status := "ok"
	if h.db != nil {
		if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = "degraded"
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": status})
}
