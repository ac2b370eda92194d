// Package seating implements the assignment engine: the only writer of
// per-seat occupancy outside of bulk reconciliation.
package seating

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"seat-occupancy-backend/internal/apperr"
	"seat-occupancy-backend/internal/lock"
	"seat-occupancy-backend/internal/metrics"
	"seat-occupancy-backend/internal/model"
	"seat-occupancy-backend/internal/store"
)

// DefaultActor is recorded when the caller does not name who made a change.
const DefaultActor = "system"

// Notifier is told when a seat becomes free.
type Notifier interface {
	SeatVacated(seatID string)
}

type nopNotifier struct{}

func (nopNotifier) SeatVacated(string) {}

// Engine applies assign, vacate and move operations atomically.
type Engine struct {
	store    store.Store
	locker   lock.Locker
	notifier Notifier
	validate *validator.Validate
	log      logrus.FieldLogger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the receiver of seat vacancy events.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine over st. Writes are serialized per seat and
// per employee through locker.
func NewEngine(st store.Store, locker lock.Locker, log logrus.FieldLogger, opts ...Option) *Engine {
	e := &Engine{
		store:    st,
		locker:   locker,
		notifier: nopNotifier{},
		validate: validator.New(),
		log:      log.WithField("component", "seating"),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Assign places the employee on a vacant seat.
func (e *Engine) Assign(ctx context.Context, seatID string, employeeID int64, actor string) (seat *model.Seat, err error) {
	defer func() { observe("assign", err) }()
	actor = actorOrDefault(actor)

	emp, err := e.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	release, err := e.locker.Acquire(ctx, lock.SeatKey(seatID), lock.EmployeeKey(emp.EmployeeNumber))
	if err != nil {
		return nil, err
	}
	defer release()

	err = e.store.Transaction(ctx, func(ctx context.Context, tx store.Store) error {
		s, err := tx.GetSeat(ctx, seatID)
		if err != nil {
			return err
		}
		if s.IsOccupied() {
			return apperr.Conflict("seat %s is already occupied", seatID)
		}

		current, err := tx.FindSeatByOccupant(ctx, emp.ID)
		if err != nil {
			return err
		}
		if current != nil {
			return apperr.Conflict("employee %s is already assigned to seat %s", emp.EmployeeNumber, current.SeatID)
		}

		s.Occupy(emp.ID)
		s.UpdatedBy = actor
		if err := tx.UpdateSeat(ctx, s); err != nil {
			return err
		}

		if err := tx.AppendHistory(ctx, &model.AssignmentHistory{
			EmployeeID: emp.ID,
			SeatID:     seatID,
			Action:     model.ActionAssigned,
			StartDate:  e.now(),
			AssignedBy: actor,
		}); err != nil {
			return err
		}
		seat = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{"seat": seatID, "employee": emp.EmployeeNumber, "actor": actor}).Info("seat assigned")
	return seat, nil
}

// Vacate clears the occupant of an occupied seat.
func (e *Engine) Vacate(ctx context.Context, seatID, actor, reason string) (seat *model.Seat, err error) {
	defer func() { observe("vacate", err) }()
	actor = actorOrDefault(actor)

	release, err := e.locker.Acquire(ctx, lock.SeatKey(seatID))
	if err != nil {
		return nil, err
	}
	defer release()

	err = e.store.Transaction(ctx, func(ctx context.Context, tx store.Store) error {
		s, err := tx.GetSeat(ctx, seatID)
		if err != nil {
			return err
		}
		if !s.IsOccupied() {
			return apperr.Conflict("seat %s is already vacant", seatID)
		}

		now := e.now()
		if s.OccupantID != nil {
			occupant := *s.OccupantID
			if _, err := tx.CloseOpenHistory(ctx, occupant, seatID, now); err != nil {
				return err
			}
			if err := tx.AppendHistory(ctx, &model.AssignmentHistory{
				EmployeeID: occupant,
				SeatID:     seatID,
				Action:     model.ActionVacated,
				StartDate:  now,
				AssignedBy: actor,
				Reason:     reason,
			}); err != nil {
				return err
			}
		}

		s.Clear()
		s.UpdatedBy = actor
		if err := tx.UpdateSeat(ctx, s); err != nil {
			return err
		}
		seat = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{"seat": seatID, "actor": actor}).Info("seat vacated")
	e.notifier.SeatVacated(seatID)
	return seat, nil
}

// MoveResult holds both seats touched by a move.
type MoveResult struct {
	From *model.Seat `json:"fromSeat"`
	To   *model.Seat `json:"toSeat"`
}

// Move relocates an employee from the seat they occupy to a vacant seat.
func (e *Engine) Move(ctx context.Context, employeeID int64, fromSeatID, toSeatID, actor string) (res *MoveResult, err error) {
	defer func() { observe("move", err) }()
	actor = actorOrDefault(actor)

	if fromSeatID == toSeatID {
		return nil, apperr.Validation("source and destination seat are both %s", fromSeatID)
	}

	emp, err := e.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	release, err := e.locker.Acquire(ctx,
		lock.SeatKey(fromSeatID), lock.SeatKey(toSeatID), lock.EmployeeKey(emp.EmployeeNumber))
	if err != nil {
		return nil, err
	}
	defer release()

	err = e.store.Transaction(ctx, func(ctx context.Context, tx store.Store) error {
		from, err := tx.GetSeat(ctx, fromSeatID)
		if err != nil {
			return err
		}
		to, err := tx.GetSeat(ctx, toSeatID)
		if err != nil {
			return err
		}
		if !from.OccupiedBy(emp.ID) {
			return apperr.Conflict("employee %s does not occupy seat %s", emp.EmployeeNumber, fromSeatID)
		}
		if to.IsOccupied() {
			return apperr.Conflict("seat %s is already occupied", toSeatID)
		}

		// the source must be released first, occupant_id is unique
		from.Clear()
		from.UpdatedBy = actor
		if err := tx.UpdateSeat(ctx, from); err != nil {
			return err
		}
		to.Occupy(emp.ID)
		to.UpdatedBy = actor
		if err := tx.UpdateSeat(ctx, to); err != nil {
			return err
		}

		now := e.now()
		if _, err := tx.CloseOpenHistory(ctx, emp.ID, fromSeatID, now); err != nil {
			return err
		}
		previous := fromSeatID
		if err := tx.AppendHistory(ctx, &model.AssignmentHistory{
			EmployeeID:   emp.ID,
			SeatID:       toSeatID,
			Action:       model.ActionMoved,
			StartDate:    now,
			PreviousSeat: &previous,
			AssignedBy:   actor,
		}); err != nil {
			return err
		}

		res = &MoveResult{From: from, To: to}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"employee": emp.EmployeeNumber,
		"from":     fromSeatID,
		"to":       toSeatID,
		"actor":    actor,
	}).Info("employee moved")
	e.notifier.SeatVacated(fromSeatID)
	return res, nil
}

func actorOrDefault(actor string) string {
	if actor == "" {
		return DefaultActor
	}
	return actor
}

func observe(operation string, err error) {
	if err != nil {
		metrics.ObserveOperation(operation, string(apperr.KindOf(err)))
		return
	}
	metrics.ObserveOperation(operation, "ok")
}
