package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"seat-occupancy-backend/internal/apperr"
	"seat-occupancy-backend/internal/model"
	"seat-occupancy-backend/internal/seating"
	"seat-occupancy-backend/internal/store"
)

// ListSeats handles GET /api/seats?floor=&status=&building=.
func (h *Handler) ListSeats(c *gin.Context) {
	filter := store.SeatFilter{
		Building: c.Query("building"),
		Status:   model.SeatStatus(c.Query("status")),
	}
	if raw := c.Query("floor"); raw != "" {
		floor, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(c, apperr.Validation("invalid floor %q", raw))
			return
		}
		filter.Floor = &floor
	}
	if filter.Status != "" && filter.Status != model.SeatVacant && filter.Status != model.SeatOccupied {
		h.fail(c, apperr.Validation("invalid status %q", filter.Status))
		return
	}

	seats, err := h.engine.ListSeats(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(seats), "seats": seats})
}

// GetSeat handles GET /api/seats/:seatId.
func (h *Handler) GetSeat(c *gin.Context) {
	seat, err := h.engine.GetSeat(c.Request.Context(), c.Param("seatId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "seat": seat})
}

type createSeatRequest struct {
	seating.SeatInput
	UpdatedBy string `json:"updatedBy"`
}

// CreateSeat handles POST /api/seats.
func (h *Handler) CreateSeat(c *gin.Context) {
	var req createSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	seat, err := h.engine.CreateSeat(c.Request.Context(), req.SeatInput, req.UpdatedBy)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "seat": seat})
}

type assignRequest struct {
	EmployeeID int64  `json:"employeeId" binding:"required"`
	AssignedBy string `json:"assignedBy"`
}

// AssignSeat handles PUT /api/seats/:seatId/assign.
func (h *Handler) AssignSeat(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	seat, err := h.engine.Assign(c.Request.Context(), c.Param("seatId"), req.EmployeeID, req.AssignedBy)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "seat": seat})
}

type vacateRequest struct {
	UpdatedBy string `json:"updatedBy"`
	Reason    string `json:"reason"`
}

// VacateSeat handles PUT /api/seats/:seatId/vacate. The body is optional.
func (h *Handler) VacateSeat(c *gin.Context) {
	var req vacateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, err)
			return
		}
	}
	seat, err := h.engine.Vacate(c.Request.Context(), c.Param("seatId"), req.UpdatedBy, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "seat": seat})
}

type moveRequest struct {
	EmployeeID int64  `json:"employeeId" binding:"required"`
	FromSeatID string `json:"fromSeatId" binding:"required"`
	ToSeatID   string `json:"toSeatId" binding:"required"`
	AssignedBy string `json:"assignedBy"`
}

// MoveEmployee handles POST /api/seats/move.
func (h *Handler) MoveEmployee(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	res, err := h.engine.Move(c.Request.Context(), req.EmployeeID, req.FromSeatID, req.ToSeatID, req.AssignedBy)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Employee moved successfully",
		"fromSeat": res.From,
		"toSeat":   res.To,
	})
}

// SeatHistory handles GET /api/seats/:seatId/history.
func (h *Handler) SeatHistory(c *gin.Context) {
	ctx := c.Request.Context()
	seatID := c.Param("seatId")
	if _, err := h.engine.GetSeat(ctx, seatID); err != nil {
		h.fail(c, err)
		return
	}

	filter := store.HistoryFilter{SeatID: seatID, OpenOnly: c.Query("open") == "true"}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.fail(c, apperr.Validation("invalid limit %q", raw))
			return
		}
		filter.Limit = limit
	}

	entries, err := h.engine.History(ctx, filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(entries), "history": entries})
}
