package seating

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seat-occupancy-backend/internal/apperr"
	"seat-occupancy-backend/internal/model"
	"seat-occupancy-backend/internal/store"
)

func TestEngine_CreateSeat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seat, err := f.engine.CreateSeat(ctx, SeatInput{SeatID: "  A-1 ", Building: "HQ", Floor: 2}, "")
	require.NoError(t, err)
	assert.Equal(t, "A-1", seat.SeatID)
	assert.Equal(t, model.SeatVacant, seat.Status)

	_, err = f.engine.CreateSeat(ctx, SeatInput{SeatID: "A-1"}, "")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.engine.CreateSeat(ctx, SeatInput{SeatID: " "}, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestEngine_CreateEmployeeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		in   EmployeeInput
	}{
		{"missing number", EmployeeInput{FirstName: "A", LastName: "B"}},
		{"missing first name", EmployeeInput{EmployeeNumber: "1", LastName: "B"}},
		{"bad email", EmployeeInput{EmployeeNumber: "1", FirstName: "A", LastName: "B", Email: "not-an-email"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.CreateEmployee(ctx, tc.in)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}

	f.employee(t, "E1")
	_, err := f.engine.CreateEmployee(ctx, EmployeeInput{EmployeeNumber: "E1", FirstName: "A", LastName: "B"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestEngine_UpdateEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.employee(t, "E1")

	dept := "Finance"
	inactive := model.EmployeeInactive
	same := "E1"
	emp, err := f.engine.UpdateEmployee(ctx, id, EmployeeUpdate{
		EmployeeNumber: &same,
		Department:     &dept,
		Status:         &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Finance", emp.Department)
	assert.Equal(t, model.EmployeeInactive, emp.Status)
	assert.Equal(t, "FirstE1", emp.FirstName)

	other := "E2"
	_, err = f.engine.UpdateEmployee(ctx, id, EmployeeUpdate{EmployeeNumber: &other})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	bogus := model.EmployeeStatus("retired")
	_, err = f.engine.UpdateEmployee(ctx, id, EmployeeUpdate{Status: &bogus})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.engine.UpdateEmployee(ctx, 999, EmployeeUpdate{Department: &dept})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestEngine_ListViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seat(t, "A-1")
	f.seat(t, "A-2")
	e1 := f.employee(t, "E1")
	f.employee(t, "E2")

	_, err := f.engine.Assign(ctx, "A-2", e1, "")
	require.NoError(t, err)

	seats, err := f.engine.ListSeats(ctx, store.SeatFilter{})
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.Nil(t, seats[0].Occupant)
	require.NotNil(t, seats[1].Occupant)
	assert.Equal(t, "E1", seats[1].Occupant.EmployeeNumber)

	occupied, err := f.engine.ListSeats(ctx, store.SeatFilter{Status: model.SeatOccupied})
	require.NoError(t, err)
	assert.Len(t, occupied, 1)

	emps, err := f.engine.ListEmployees(ctx, store.EmployeeFilter{BusinessGroup: "Engineering"})
	require.NoError(t, err)
	require.Len(t, emps, 2)
	require.NotNil(t, emps[0].CurrentSeat)
	assert.Equal(t, "A-2", *emps[0].CurrentSeat)
	assert.Nil(t, emps[1].CurrentSeat)
}
