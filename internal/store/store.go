package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"seat-occupancy-backend/internal/apperr"
	"seat-occupancy-backend/internal/model"
)

// Store defines the interface for all occupancy persistence operations.
type Store interface {
	DB() *gorm.DB
	// Transaction runs fn in one database transaction bounded by the store's
	// operation timeout. fn must use the ctx and Store it is given.
	Transaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	GetSeat(ctx context.Context, seatID string) (*model.Seat, error)
	FindSeatByOccupant(ctx context.Context, employeeID int64) (*model.Seat, error)
	ListSeats(ctx context.Context, filter SeatFilter) ([]model.Seat, error)
	CreateSeat(ctx context.Context, seat *model.Seat) error
	UpdateSeat(ctx context.Context, seat *model.Seat) error

	GetEmployee(ctx context.Context, id int64) (*model.Employee, error)
	GetEmployeeByNumber(ctx context.Context, number string) (*model.Employee, error)
	GetEmployeesByID(ctx context.Context, ids []int64) (map[int64]model.Employee, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]model.Employee, error)
	CreateEmployee(ctx context.Context, emp *model.Employee) error
	UpdateEmployee(ctx context.Context, emp *model.Employee) error

	AppendHistory(ctx context.Context, entry *model.AssignmentHistory) error
	CloseOpenHistory(ctx context.Context, employeeID int64, seatID string, at time.Time) (int64, error)
	ListHistory(ctx context.Context, filter HistoryFilter) ([]model.AssignmentHistory, error)

	CreateImportSession(ctx context.Context, session *model.ImportSession) error
	GetImportSession(ctx context.Context, sessionID string) (*model.ImportSession, error)
	ListImportSessions(ctx context.Context, limit int) ([]model.ImportSession, error)

	CountSeats(ctx context.Context) (SeatCounts, error)
	CountActiveEmployees(ctx context.Context) (int64, error)
	GroupByBusinessGroup(ctx context.Context) ([]GroupCount, error)
	GroupByLocation(ctx context.Context) ([]LocationCount, error)
	ExportRows(ctx context.Context) ([]ExportRow, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormStore creates a new GORM-backed store. Every operation is bounded
// by timeout; zero disables the bound.
func NewGormStore(db *gorm.DB, timeout time.Duration) Store {
	return &gormStore{db: db, timeout: timeout}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// conn returns a session bound to ctx and a cancel func for the operation timeout.
func (s *gormStore) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		return s.db.WithContext(ctx), cancel
	}
	return s.db.WithContext(ctx), func() {}
}

func (s *gormStore) Transaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormStore{db: tx})
	})
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !apperr.Is(err, apperr.KindTimeout) {
		return apperr.Wrap(apperr.KindTimeout, err, "transaction timed out after %s", s.timeout)
	}
	return err
}

// translate maps driver errors onto the apperr taxonomy.
func translate(err error, format string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(apperr.KindNotFound, err, format, args...)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.KindConflict, err, format, args...)
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.KindTimeout, err, format, args...)
	default:
		return apperr.IO(err, format, args...)
	}
}

// --- Seats ---

func (s *gormStore) GetSeat(ctx context.Context, seatID string) (*model.Seat, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var seat model.Seat
	if err := db.Where("seat_id = ?", seatID).First(&seat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("seat %q not found", seatID)
		}
		return nil, translate(err, "failed to load seat %q", seatID)
	}
	return &seat, nil
}

// FindSeatByOccupant returns the seat held by the employee, or nil when the
// employee has no seat.
func (s *gormStore) FindSeatByOccupant(ctx context.Context, employeeID int64) (*model.Seat, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var seats []model.Seat
	if err := db.Where("occupant_id = ?", employeeID).Limit(1).Find(&seats).Error; err != nil {
		return nil, translate(err, "failed to look up seat of employee %d", employeeID)
	}
	if len(seats) == 0 {
		return nil, nil
	}
	return &seats[0], nil
}

func (s *gormStore) ListSeats(ctx context.Context, filter SeatFilter) ([]model.Seat, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	q := db.Model(&model.Seat{})
	if filter.Building != "" {
		q = q.Where("building = ?", filter.Building)
	}
	if filter.Floor != nil {
		q = q.Where("floor = ?", *filter.Floor)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var seats []model.Seat
	if err := q.Order("seat_id").Find(&seats).Error; err != nil {
		return nil, translate(err, "failed to list seats")
	}
	return seats, nil
}

func (s *gormStore) CreateSeat(ctx context.Context, seat *model.Seat) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	if seat.Status == "" {
		seat.Status = model.SeatVacant
	}
	if seat.UpdatedBy == "" {
		seat.UpdatedBy = "system"
	}
	return translate(db.Create(seat).Error, "failed to create seat %q", seat.SeatID)
}

// UpdateSeat writes the seat only if nobody else changed it since it was
// read (compare-and-update on Version).
func (s *gormStore) UpdateSeat(ctx context.Context, seat *model.Seat) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	now := time.Now().UTC()
	res := db.Model(&model.Seat{}).
		Where("id = ? AND version = ?", seat.ID, seat.Version).
		Updates(map[string]any{
			"building":    seat.Building,
			"floor":       seat.Floor,
			"status":      seat.Status,
			"occupant_id": seat.OccupantID,
			"updated_by":  seat.UpdatedBy,
			"version":     seat.Version + 1,
			"updated_at":  now,
		})
	if res.Error != nil {
		return translate(res.Error, "failed to update seat %q", seat.SeatID)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("seat %q was modified concurrently", seat.SeatID)
	}
	seat.Version++
	seat.UpdatedAt = now
	return nil
}

// --- Employees ---

func (s *gormStore) GetEmployee(ctx context.Context, id int64) (*model.Employee, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var emp model.Employee
	if err := db.First(&emp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("employee %d not found", id)
		}
		return nil, translate(err, "failed to load employee %d", id)
	}
	return &emp, nil
}

func (s *gormStore) GetEmployeeByNumber(ctx context.Context, number string) (*model.Employee, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var emp model.Employee
	if err := db.Where("employee_number = ?", number).First(&emp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("employee number %q not found", number)
		}
		return nil, translate(err, "failed to load employee number %q", number)
	}
	return &emp, nil
}

func (s *gormStore) GetEmployeesByID(ctx context.Context, ids []int64) (map[int64]model.Employee, error) {
	out := make(map[int64]model.Employee, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	var emps []model.Employee
	if err := db.Where("id IN ?", ids).Find(&emps).Error; err != nil {
		return nil, translate(err, "failed to load employees")
	}
	for _, e := range emps {
		out[e.ID] = e
	}
	return out, nil
}

func (s *gormStore) ListEmployees(ctx context.Context, filter EmployeeFilter) ([]model.Employee, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	q := db.Model(&model.Employee{})
	if filter.BusinessGroup != "" {
		q = q.Where("business_group = ?", filter.BusinessGroup)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var emps []model.Employee
	if err := q.Order("employee_number").Find(&emps).Error; err != nil {
		return nil, translate(err, "failed to list employees")
	}
	return emps, nil
}

func (s *gormStore) CreateEmployee(ctx context.Context, emp *model.Employee) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	if emp.Status == "" {
		emp.Status = model.EmployeeActive
	}
	return translate(db.Create(emp).Error, "failed to create employee %q", emp.EmployeeNumber)
}

func (s *gormStore) UpdateEmployee(ctx context.Context, emp *model.Employee) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	res := db.Model(&model.Employee{}).Where("id = ?", emp.ID).Updates(map[string]any{
		"first_name":     emp.FirstName,
		"last_name":      emp.LastName,
		"email":          emp.Email,
		"business_group": emp.BusinessGroup,
		"department":     emp.Department,
		"transit_number": emp.TransitNumber,
		"status":         emp.Status,
	})
	if res.Error != nil {
		return translate(res.Error, "failed to update employee %d", emp.ID)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("employee %d not found", emp.ID)
	}
	return nil
}

// --- Assignment history ---

func (s *gormStore) AppendHistory(ctx context.Context, entry *model.AssignmentHistory) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	if entry.AssignedBy == "" {
		entry.AssignedBy = "system"
	}
	return translate(db.Create(entry).Error,
		"failed to append %s history for employee %d on seat %q", entry.Action, entry.EmployeeID, entry.SeatID)
}

// CloseOpenHistory sets EndDate on the open entry of (employee, seat) and
// returns how many entries were closed.
func (s *gormStore) CloseOpenHistory(ctx context.Context, employeeID int64, seatID string, at time.Time) (int64, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	res := db.Model(&model.AssignmentHistory{}).
		Where("employee_id = ? AND seat_id = ? AND end_date IS NULL AND action <> ?", employeeID, seatID, model.ActionVacated).
		Update("end_date", at)
	if res.Error != nil {
		return 0, translate(res.Error, "failed to close history of employee %d on seat %q", employeeID, seatID)
	}
	return res.RowsAffected, nil
}

func (s *gormStore) ListHistory(ctx context.Context, filter HistoryFilter) ([]model.AssignmentHistory, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	q := db.Model(&model.AssignmentHistory{})
	if filter.EmployeeID != 0 {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.SeatID != "" {
		q = q.Where("seat_id = ?", filter.SeatID)
	}
	if filter.OpenOnly {
		q = q.Where("end_date IS NULL AND action <> ?", model.ActionVacated)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var entries []model.AssignmentHistory
	if err := q.Order("start_date, id").Find(&entries).Error; err != nil {
		return nil, translate(err, "failed to list assignment history")
	}
	return entries, nil
}

// --- Import sessions ---

func (s *gormStore) CreateImportSession(ctx context.Context, session *model.ImportSession) error {
	db, cancel := s.conn(ctx)
	defer cancel()
	return translate(db.Create(session).Error, "failed to record import session %s", session.SessionID)
}

func (s *gormStore) GetImportSession(ctx context.Context, sessionID string) (*model.ImportSession, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var session model.ImportSession
	if err := db.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("import session %q not found", sessionID)
		}
		return nil, translate(err, "failed to load import session %q", sessionID)
	}
	return &session, nil
}

func (s *gormStore) ListImportSessions(ctx context.Context, limit int) ([]model.ImportSession, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	q := db.Order("import_date DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var sessions []model.ImportSession
	if err := q.Find(&sessions).Error; err != nil {
		return nil, translate(err, "failed to list import sessions")
	}
	return sessions, nil
}
