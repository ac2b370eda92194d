package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"seat-occupancy-backend/internal/model"
	"seat-occupancy-backend/internal/seating"
	"seat-occupancy-backend/internal/store"
)

// ListEmployees handles GET /api/employees?businessGroup=&department=&status=.
func (h *Handler) ListEmployees(c *gin.Context) {
	emps, err := h.engine.ListEmployees(c.Request.Context(), store.EmployeeFilter{
		BusinessGroup: c.Query("businessGroup"),
		Department:    c.Query("department"),
		Status:        model.EmployeeStatus(c.Query("status")),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(emps), "employees": emps})
}

// GetEmployee handles GET /api/employees/:id.
func (h *Handler) GetEmployee(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	emp, err := h.engine.GetEmployee(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "employee": emp})
}

// CreateEmployee handles POST /api/employees.
func (h *Handler) CreateEmployee(c *gin.Context) {
	var in seating.EmployeeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	emp, err := h.engine.CreateEmployee(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "employee": emp})
}

// UpdateEmployee handles PUT /api/employees/:id.
func (h *Handler) UpdateEmployee(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var in seating.EmployeeUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	emp, err := h.engine.UpdateEmployee(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "employee": emp})
}
