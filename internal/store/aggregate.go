package store

import (
	"context"

	"seat-occupancy-backend/internal/model"
)

func (s *gormStore) CountSeats(ctx context.Context) (SeatCounts, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	type statusRow struct {
		Status string
		Count  int64
	}
	var rows []statusRow
	if err := db.Model(&model.Seat{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return SeatCounts{}, translate(err, "failed to count seats")
	}

	var counts SeatCounts
	for _, r := range rows {
		counts.Total += r.Count
		switch model.SeatStatus(r.Status) {
		case model.SeatOccupied:
			counts.Occupied += r.Count
		case model.SeatVacant:
			counts.Vacant += r.Count
		}
	}
	return counts, nil
}

func (s *gormStore) CountActiveEmployees(ctx context.Context) (int64, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var n int64
	if err := db.Model(&model.Employee{}).Where("status = ?", model.EmployeeActive).Count(&n).Error; err != nil {
		return 0, translate(err, "failed to count employees")
	}
	return n, nil
}

// GroupByBusinessGroup counts seats by the business group of their occupant.
// Unoccupied seats land in the nil group.
func (s *gormStore) GroupByBusinessGroup(ctx context.Context) ([]GroupCount, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var rows []GroupCount
	if err := db.Table("seats").
		Select("employees.business_group AS business_group, " +
			"COUNT(*) AS total_seats, " +
			"SUM(CASE WHEN seats.status = 'occupied' THEN 1 ELSE 0 END) AS occupied_seats").
		Joins("LEFT JOIN employees ON employees.id = seats.occupant_id").
		Group("employees.business_group").
		Order("employees.business_group").
		Scan(&rows).Error; err != nil {
		return nil, translate(err, "failed to aggregate seats by business group")
	}
	return rows, nil
}

func (s *gormStore) GroupByLocation(ctx context.Context) ([]LocationCount, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var rows []LocationCount
	if err := db.Model(&model.Seat{}).
		Select("building, floor, " +
			"COUNT(*) AS total_seats, " +
			"SUM(CASE WHEN status = 'occupied' THEN 1 ELSE 0 END) AS occupied_seats, " +
			"SUM(CASE WHEN status = 'vacant' THEN 1 ELSE 0 END) AS vacant_seats").
		Group("building, floor").
		Order("building, floor").
		Scan(&rows).Error; err != nil {
		return nil, translate(err, "failed to aggregate seats by floor")
	}
	return rows, nil
}

// ExportRows returns every seat joined with its occupant, ordered by seat id.
func (s *gormStore) ExportRows(ctx context.Context) ([]ExportRow, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var rows []ExportRow
	if err := db.Table("seats").
		Select("seats.seat_id, seats.building, seats.floor, seats.status, " +
			"employees.employee_number, employees.first_name, employees.last_name, " +
			"employees.email, employees.business_group, employees.department").
		Joins("LEFT JOIN employees ON employees.id = seats.occupant_id").
		Order("seats.seat_id").
		Scan(&rows).Error; err != nil {
		return nil, translate(err, "failed to load export rows")
	}
	return rows, nil
}
