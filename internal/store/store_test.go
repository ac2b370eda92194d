package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"seat-occupancy-backend/internal/apperr"
	"seat-occupancy-backend/internal/db/dbtest"
	"seat-occupancy-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormStore_UpdateSeat(t *testing.T) {
	testCases := []struct {
		name         string
		rowsAffected int64
		execErr      error
		wantKind     apperr.Kind
		wantVersion  int64
	}{
		{name: "current version is written", rowsAffected: 1, wantVersion: 4},
		{name: "stale version is a conflict", rowsAffected: 0, wantKind: apperr.KindConflict, wantVersion: 3},
		{name: "driver failure is io", execErr: errors.New("connection reset"), wantKind: apperr.KindIO, wantVersion: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB, time.Second)

			mock.ExpectBegin()
			exec := mock.ExpectExec(`UPDATE "seats" SET .*"version"=.* WHERE id = \$\d+ AND version = \$\d+`)
			if tc.execErr != nil {
				exec.WillReturnError(tc.execErr)
				mock.ExpectRollback()
			} else {
				exec.WillReturnResult(sqlmock.NewResult(0, tc.rowsAffected))
				mock.ExpectCommit()
			}

			seat := &model.Seat{ID: 7, SeatID: "A-101", Version: 3}
			seat.Occupy(42)
			err := s.UpdateSeat(context.Background(), seat)

			if tc.wantKind == "" {
				require.NoError(t, err)
			} else {
				assert.Equal(t, tc.wantKind, apperr.KindOf(err))
			}
			assert.Equal(t, tc.wantVersion, seat.Version)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_GetSeat(t *testing.T) {
	query := regexp.QuoteMeta(`SELECT * FROM "seats" WHERE seat_id = $1 ORDER BY "seats"."id" LIMIT $2`)

	t.Run("found", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		mock.ExpectQuery(query).
			WithArgs("A-101", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "seat_id", "building", "floor", "status", "occupant_id", "version"}).
				AddRow(1, "A-101", "HQ", 3, "occupied", 42, 2))

		seat, err := NewGormStore(gormDB, 0).GetSeat(context.Background(), "A-101")
		require.NoError(t, err)
		assert.True(t, seat.OccupiedBy(42))
		assert.Equal(t, int64(2), seat.Version)
	})

	t.Run("missing", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		mock.ExpectQuery(query).
			WithArgs("Z-1", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewGormStore(gormDB, 0).GetSeat(context.Background(), "Z-1")
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("driver failure", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		mock.ExpectQuery(query).WillReturnError(errors.New("broken pipe"))

		_, err := NewGormStore(gormDB, 0).GetSeat(context.Background(), "A-101")
		assert.Equal(t, apperr.KindIO, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "broken pipe")
	})
}

func TestGormStore_CloseOpenHistory(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB, time.Second)
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "assignment_histories" SET "end_date"=\$1 WHERE employee_id = \$2 AND seat_id = \$3 AND end_date IS NULL AND action <> \$4`).
		WithArgs(at, int64(42), "A-101", model.ActionVacated).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := s.CloseOpenHistory(context.Background(), 42, "A-101", at)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_TransactionTimeout(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB, 20*time.Millisecond)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := s.Transaction(context.Background(), func(ctx context.Context, tx Store) error {
		<-ctx.Done()
		_, err := tx.GetSeat(ctx, "A-101")
		return err
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindTimeout, apperr.KindOf(err))
}

func TestGormStore_OccupancyConstraints(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(dbtest.Open(t), time.Second)

	emp := &model.Employee{EmployeeNumber: "E1", FirstName: "A", LastName: "B"}
	require.NoError(t, s.CreateEmployee(ctx, emp))
	assert.Equal(t, model.EmployeeActive, emp.Status)

	first := &model.Seat{SeatID: "A-1"}
	second := &model.Seat{SeatID: "A-2"}
	require.NoError(t, s.CreateSeat(ctx, first))
	require.NoError(t, s.CreateSeat(ctx, second))
	assert.Equal(t, model.SeatVacant, first.Status)

	t.Run("duplicate seat id", func(t *testing.T) {
		err := s.CreateSeat(ctx, &model.Seat{SeatID: "A-1"})
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("employee on two seats", func(t *testing.T) {
		first.Occupy(emp.ID)
		require.NoError(t, s.UpdateSeat(ctx, first))

		second.Occupy(emp.ID)
		err := s.UpdateSeat(ctx, second)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("stale seat write", func(t *testing.T) {
		stale, err := s.GetSeat(ctx, "A-2")
		require.NoError(t, err)

		fresh, err := s.GetSeat(ctx, "A-2")
		require.NoError(t, err)
		fresh.UpdatedBy = "someone"
		require.NoError(t, s.UpdateSeat(ctx, fresh))

		stale.UpdatedBy = "someone else"
		err = s.UpdateSeat(ctx, stale)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("one open entry per employee and seat", func(t *testing.T) {
		now := time.Now().UTC()
		require.NoError(t, s.AppendHistory(ctx, &model.AssignmentHistory{
			EmployeeID: emp.ID, SeatID: "A-1", Action: model.ActionAssigned, StartDate: now,
		}))
		err := s.AppendHistory(ctx, &model.AssignmentHistory{
			EmployeeID: emp.ID, SeatID: "A-1", Action: model.ActionMoved, StartDate: now,
		})
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

		// vacated markers never count as open
		require.NoError(t, s.AppendHistory(ctx, &model.AssignmentHistory{
			EmployeeID: emp.ID, SeatID: "A-1", Action: model.ActionVacated, StartDate: now,
		}))

		n, err := s.CloseOpenHistory(ctx, emp.ID, "A-1", now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		open, err := s.ListHistory(ctx, HistoryFilter{EmployeeID: emp.ID, OpenOnly: true})
		require.NoError(t, err)
		assert.Empty(t, open)
	})
}

func TestGormStore_Transaction(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(dbtest.Open(t), time.Second)

	err := s.Transaction(ctx, func(ctx context.Context, tx Store) error {
		if err := tx.CreateSeat(ctx, &model.Seat{SeatID: "T-1"}); err != nil {
			return err
		}
		return apperr.Conflict("abort")
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = s.GetSeat(ctx, "T-1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err), "rolled back")
}

func TestGormStore_ImportSessions(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(dbtest.Open(t), time.Second)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"s-old", "s-new"} {
		require.NoError(t, s.CreateImportSession(ctx, &model.ImportSession{
			SessionID:        id,
			ImportDate:       base.Add(time.Duration(i) * time.Hour),
			RecordsProcessed: 2,
			MappingsUsed:     map[string]string{"Seat": "seatId"},
			Conflicts:        []model.ImportConflict{{Employee: "E1", CurrentSeat: "A-1", NewSeat: "A-2"}},
			Errors:           []model.ImportFailure{{Row: map[string]string{"Seat": "X"}, Error: "invalid floor"}},
		}))
	}

	sessions, err := s.ListImportSessions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s-new", sessions[0].SessionID)

	got, err := s.GetImportSession(ctx, "s-old")
	require.NoError(t, err)
	assert.Equal(t, "seatId", got.MappingsUsed["Seat"])
	assert.Equal(t, "A-2", got.Conflicts[0].NewSeat)
	assert.Equal(t, "invalid floor", got.Errors[0].Error)

	_, err = s.GetImportSession(ctx, "nope")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGormStore_Aggregates(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(dbtest.Open(t), time.Second)

	ada := &model.Employee{EmployeeNumber: "E1", FirstName: "Ada", LastName: "L", BusinessGroup: "Eng"}
	require.NoError(t, s.CreateEmployee(ctx, ada))

	seats := []*model.Seat{
		{SeatID: "B-1", Building: "HQ", Floor: 2},
		{SeatID: "A-1", Building: "HQ", Floor: 1},
		{SeatID: "A-2", Building: "HQ", Floor: 1},
	}
	for _, seat := range seats {
		require.NoError(t, s.CreateSeat(ctx, seat))
	}
	seats[1].Occupy(ada.ID)
	require.NoError(t, s.UpdateSeat(ctx, seats[1]))

	counts, err := s.CountSeats(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeatCounts{Total: 3, Occupied: 1, Vacant: 2}, counts)

	locations, err := s.GroupByLocation(ctx)
	require.NoError(t, err)
	assert.Equal(t, []LocationCount{
		{Building: "HQ", Floor: 1, TotalSeats: 2, OccupiedSeats: 1, VacantSeats: 1},
		{Building: "HQ", Floor: 2, TotalSeats: 1, OccupiedSeats: 0, VacantSeats: 1},
	}, locations)

	groups, err := s.GroupByBusinessGroup(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Nil(t, groups[0].BusinessGroup)
	require.NotNil(t, groups[1].BusinessGroup)
	assert.Equal(t, "Eng", *groups[1].BusinessGroup)

	rows, err := s.ExportRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "A-1", rows[0].SeatID)
	require.NotNil(t, rows[0].EmployeeNumber)
	assert.Equal(t, "E1", *rows[0].EmployeeNumber)
	assert.Nil(t, rows[2].EmployeeNumber)
}
