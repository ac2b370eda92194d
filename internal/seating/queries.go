package seating

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"seat-occupancy-backend/internal/apperr"
	"seat-occupancy-backend/internal/model"
	"seat-occupancy-backend/internal/store"
)

// SeatView is a seat with its occupant resolved.
type SeatView struct {
	model.Seat
	Occupant *model.Employee `json:"occupant"`
}

// EmployeeView is an employee with the seat they currently occupy.
type EmployeeView struct {
	model.Employee
	CurrentSeat *string `json:"currentSeat"`
}

// SeatInput describes a seat to provision.
type SeatInput struct {
	SeatID   string `json:"seatId" validate:"required,max=64"`
	Building string `json:"building" validate:"max=128"`
	Floor    int    `json:"floor"`
}

// EmployeeInput describes an employee to create.
type EmployeeInput struct {
	EmployeeNumber string `json:"employeeNumber" validate:"required,max=64"`
	FirstName      string `json:"firstName" validate:"required,max=128"`
	LastName       string `json:"lastName" validate:"required,max=128"`
	Email          string `json:"email" validate:"omitempty,email,max=256"`
	BusinessGroup  string `json:"businessGroup" validate:"max=128"`
	Department     string `json:"department" validate:"max=128"`
	TransitNumber  string `json:"transitNumber" validate:"max=64"`
}

// EmployeeUpdate changes the mutable attributes of an employee. Nil fields
// are left untouched. EmployeeNumber may be sent but must not change.
type EmployeeUpdate struct {
	EmployeeNumber *string               `json:"employeeNumber"`
	FirstName      *string               `json:"firstName" validate:"omitempty,min=1,max=128"`
	LastName       *string               `json:"lastName" validate:"omitempty,min=1,max=128"`
	Email          *string               `json:"email" validate:"omitempty,email,max=256"`
	BusinessGroup  *string               `json:"businessGroup" validate:"omitempty,max=128"`
	Department     *string               `json:"department" validate:"omitempty,max=128"`
	TransitNumber  *string               `json:"transitNumber" validate:"omitempty,max=64"`
	Status         *model.EmployeeStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

// GetSeat returns one seat with its occupant.
func (e *Engine) GetSeat(ctx context.Context, seatID string) (*SeatView, error) {
	seat, err := e.store.GetSeat(ctx, seatID)
	if err != nil {
		return nil, err
	}
	views, err := e.withOccupants(ctx, []model.Seat{*seat})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListSeats returns the seats matching filter ordered by seat id.
func (e *Engine) ListSeats(ctx context.Context, filter store.SeatFilter) ([]SeatView, error) {
	seats, err := e.store.ListSeats(ctx, filter)
	if err != nil {
		return nil, err
	}
	return e.withOccupants(ctx, seats)
}

func (e *Engine) withOccupants(ctx context.Context, seats []model.Seat) ([]SeatView, error) {
	ids := make([]int64, 0, len(seats))
	for _, s := range seats {
		if s.OccupantID != nil {
			ids = append(ids, *s.OccupantID)
		}
	}
	emps, err := e.store.GetEmployeesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]SeatView, len(seats))
	for i, s := range seats {
		views[i] = SeatView{Seat: s}
		if s.OccupantID != nil {
			if emp, ok := emps[*s.OccupantID]; ok {
				views[i].Occupant = &emp
			}
		}
	}
	return views, nil
}

// CreateSeat provisions a new vacant seat.
func (e *Engine) CreateSeat(ctx context.Context, in SeatInput, actor string) (*model.Seat, error) {
	in.SeatID = strings.TrimSpace(in.SeatID)
	in.Building = strings.TrimSpace(in.Building)
	if err := e.check(in); err != nil {
		return nil, err
	}

	seat := &model.Seat{
		SeatID:    in.SeatID,
		Building:  in.Building,
		Floor:     in.Floor,
		Status:    model.SeatVacant,
		UpdatedBy: actorOrDefault(actor),
	}
	if err := e.store.CreateSeat(ctx, seat); err != nil {
		return nil, err
	}
	return seat, nil
}

// GetEmployee returns one employee with their current seat.
func (e *Engine) GetEmployee(ctx context.Context, id int64) (*EmployeeView, error) {
	emp, err := e.store.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &EmployeeView{Employee: *emp}
	seat, err := e.store.FindSeatByOccupant(ctx, emp.ID)
	if err != nil {
		return nil, err
	}
	if seat != nil {
		view.CurrentSeat = &seat.SeatID
	}
	return view, nil
}

// ListEmployees returns the employees matching filter with their seats.
func (e *Engine) ListEmployees(ctx context.Context, filter store.EmployeeFilter) ([]EmployeeView, error) {
	emps, err := e.store.ListEmployees(ctx, filter)
	if err != nil {
		return nil, err
	}
	occupied, err := e.store.ListSeats(ctx, store.SeatFilter{Status: model.SeatOccupied})
	if err != nil {
		return nil, err
	}

	seatOf := make(map[int64]string, len(occupied))
	for _, s := range occupied {
		if s.OccupantID != nil {
			seatOf[*s.OccupantID] = s.SeatID
		}
	}

	views := make([]EmployeeView, len(emps))
	for i, emp := range emps {
		views[i] = EmployeeView{Employee: emp}
		if seatID, ok := seatOf[emp.ID]; ok {
			views[i].CurrentSeat = &seatID
		}
	}
	return views, nil
}

// CreateEmployee adds an active employee.
func (e *Engine) CreateEmployee(ctx context.Context, in EmployeeInput) (*model.Employee, error) {
	in.EmployeeNumber = strings.TrimSpace(in.EmployeeNumber)
	if err := e.check(in); err != nil {
		return nil, err
	}

	emp := &model.Employee{
		EmployeeNumber: in.EmployeeNumber,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		BusinessGroup:  in.BusinessGroup,
		Department:     in.Department,
		TransitNumber:  in.TransitNumber,
		Status:         model.EmployeeActive,
	}
	if err := e.store.CreateEmployee(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

// UpdateEmployee applies in to the employee. The employee number is the
// natural key used by reconciliation and cannot be changed.
func (e *Engine) UpdateEmployee(ctx context.Context, id int64, in EmployeeUpdate) (*model.Employee, error) {
	if err := e.check(in); err != nil {
		return nil, err
	}

	emp, err := e.store.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.EmployeeNumber != nil && strings.TrimSpace(*in.EmployeeNumber) != emp.EmployeeNumber {
		return nil, apperr.Validation("employee number of employee %d cannot be changed", id)
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&emp.FirstName, in.FirstName)
	set(&emp.LastName, in.LastName)
	set(&emp.Email, in.Email)
	set(&emp.BusinessGroup, in.BusinessGroup)
	set(&emp.Department, in.Department)
	set(&emp.TransitNumber, in.TransitNumber)
	if in.Status != nil {
		emp.Status = *in.Status
	}

	if err := e.store.UpdateEmployee(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

// History returns assignment history entries in chronological order.
func (e *Engine) History(ctx context.Context, filter store.HistoryFilter) ([]model.AssignmentHistory, error) {
	return e.store.ListHistory(ctx, filter)
}

// check runs struct validation and reports failures as validation errors.
func (e *Engine) check(v any) error {
	err := e.validate.Struct(v)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.Validation("field %s failed %q validation", fe.Field(), fe.Tag())
	}
	return apperr.Validation("%v", err)
}
