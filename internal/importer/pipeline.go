// Package importer reconciles spreadsheet rows into the occupancy store and
// exports the current occupancy back to a workbook.
package importer

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"seat-occupancy-backend/internal/apperr"
	"seat-occupancy-backend/internal/lock"
	"seat-occupancy-backend/internal/mapping"
	"seat-occupancy-backend/internal/metrics"
	"seat-occupancy-backend/internal/model"
	"seat-occupancy-backend/internal/sheet"
	"seat-occupancy-backend/internal/store"
)

const unknownName = "Unknown"

// Config tunes a Pipeline.
type Config struct {
	UploadDir  string
	SampleRows int
	Actor      string

	// StagedTTL is how long an analyzed but unexecuted upload is kept.
	StagedTTL time.Duration
}

// Pipeline runs spreadsheet analysis and reconciliation.
type Pipeline struct {
	store  store.Store
	locker lock.Locker
	mapper *mapping.Mapper
	cfg    Config
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewPipeline creates a pipeline writing through st.
func NewPipeline(st store.Store, locker lock.Locker, mapper *mapping.Mapper, cfg Config, log logrus.FieldLogger) *Pipeline {
	if cfg.SampleRows <= 0 {
		cfg.SampleRows = 5
	}
	if cfg.Actor == "" {
		cfg.Actor = "excel_import"
	}
	return &Pipeline{
		store:  st,
		locker: locker,
		mapper: mapper,
		cfg:    cfg,
		log:    log.WithField("component", "importer"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Analysis describes an uploaded table before it is reconciled.
type Analysis struct {
	FileID           string              `json:"fileId,omitempty"`
	FileName         string              `json:"fileName"`
	Headers          []string            `json:"headers"`
	SampleData       []map[string]string `json:"sampleData"`
	TotalRows        int                 `json:"totalRows"`
	SuggestedMapping map[string]string   `json:"suggestedMappings"`
	Hints            map[string][]string `json:"hints,omitempty"`
}

// Analyze suggests a mapping for table and returns a sample of its rows.
func (p *Pipeline) Analyze(fileName string, table *sheet.Table) *Analysis {
	sample := table.Rows
	if len(sample) > p.cfg.SampleRows {
		sample = sample[:p.cfg.SampleRows]
	}

	suggested := p.mapper.Suggest(table.Headers)
	hints := make(map[string][]string)
	for _, h := range table.Headers {
		if _, ok := suggested[h]; ok {
			continue
		}
		if hs := p.mapper.Hints(h, 3); len(hs) > 0 {
			hints[h] = hs
		}
	}

	return &Analysis{
		FileName:         fileName,
		Headers:          table.Headers,
		SampleData:       sample,
		TotalRows:        len(table.Rows),
		SuggestedMapping: suggested.Strings(),
		Hints:            hints,
	}
}

// Result is the outcome of one reconciliation run.
type Result struct {
	SessionID string                 `json:"sessionId"`
	Succeeded []map[string]string    `json:"success"`
	Failed    []model.ImportFailure  `json:"failed"`
	Conflicts []model.ImportConflict `json:"conflicts"`
	Skipped   int                    `json:"skipped"`
}

// Execute reconciles every row of table in document order and records an
// import session. Per-row failures are collected; only a failure to record
// the session is returned as an error.
func (p *Pipeline) Execute(ctx context.Context, fileName string, table *sheet.Table, m mapping.Mapping) (*Result, error) {
	started := time.Now()
	res := &Result{
		SessionID: uuid.NewString(),
		Succeeded: []map[string]string{},
		Failed:    []model.ImportFailure{},
		Conflicts: []model.ImportConflict{},
	}
	log := p.log.WithFields(logrus.Fields{"session": res.SessionID, "file": fileName})
	log.WithField("rows", len(table.Rows)).Info("starting reconciliation")

	for i, row := range table.Rows {
		rec := project(row, m)
		if rec[mapping.FieldSeatID] == "" {
			res.Skipped++
			continue
		}

		conflict, err := p.reconcileRow(ctx, rec)
		switch {
		case err != nil:
			log.WithError(err).WithField("row", i+1).Warn("row failed")
			res.Failed = append(res.Failed, model.ImportFailure{Row: row, Error: err.Error()})
		case conflict != nil:
			res.Conflicts = append(res.Conflicts, *conflict)
		default:
			res.Succeeded = append(res.Succeeded, rec.Strings())
		}
	}

	session := &model.ImportSession{
		SessionID:        res.SessionID,
		FileName:         fileName,
		ImportDate:       p.now(),
		RecordsProcessed: len(table.Rows),
		RecordsSuccess:   len(res.Succeeded),
		RecordsFailed:    len(res.Failed),
		RecordsSkipped:   res.Skipped,
		MappingsUsed:     m.Strings(),
		Conflicts:        res.Conflicts,
		Errors:           res.Failed,
	}
	if err := p.store.CreateImportSession(ctx, session); err != nil {
		return nil, err
	}

	metrics.ObserveImport(len(res.Succeeded), len(res.Failed), len(res.Conflicts), res.Skipped, time.Since(started))
	log.WithFields(logrus.Fields{
		"succeeded": len(res.Succeeded),
		"failed":    len(res.Failed),
		"conflicts": len(res.Conflicts),
		"skipped":   res.Skipped,
	}).Info("reconciliation finished")
	return res, nil
}

// record is a row projected onto canonical fields. Empty cells are absent.
type record map[mapping.Field]string

func project(row map[string]string, m mapping.Mapping) record {
	rec := make(record, len(m))
	for label, field := range m {
		if v := strings.TrimSpace(row[label]); v != "" {
			rec[field] = v
		}
	}
	return rec
}

func (r record) Strings() map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[string(k)] = v
	}
	return out
}

func (r record) wantsOccupied() bool {
	return strings.EqualFold(r[mapping.FieldStatus], string(model.SeatOccupied)) && r[mapping.FieldEmployeeNumber] != ""
}

func (r record) floor() (int, error) {
	raw := r[mapping.FieldFloor]
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, apperr.Validation("invalid floor %q", raw)
	}
	return int(f), nil
}

// reconcileRow applies one record in its own transaction. A non-nil
// conflict means the row was recognized but deliberately not applied.
func (p *Pipeline) reconcileRow(ctx context.Context, rec record) (conflict *model.ImportConflict, err error) {
	seatID := rec[mapping.FieldSeatID]
	floor, err := rec.floor()
	if err != nil {
		return nil, err
	}

	keys := []string{lock.SeatKey(seatID)}
	occupied := rec.wantsOccupied()
	if occupied {
		keys = append(keys, lock.EmployeeKey(rec[mapping.FieldEmployeeNumber]))
	}
	release, err := p.locker.Acquire(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer release()

	err = p.store.Transaction(ctx, func(ctx context.Context, tx store.Store) error {
		seat, err := tx.GetSeat(ctx, seatID)
		isNew := false
		switch {
		case apperr.Is(err, apperr.KindNotFound):
			isNew = true
			seat = &model.Seat{
				SeatID:   seatID,
				Building: rec[mapping.FieldBuilding],
				Floor:    floor,
				Status:   model.SeatVacant,
			}
		case err != nil:
			return err
		}

		before := *seat
		if occupied {
			emp, err := p.findOrCreateEmployee(ctx, tx, rec)
			if err != nil {
				return err
			}
			current, err := tx.FindSeatByOccupant(ctx, emp.ID)
			if err != nil {
				return err
			}
			if current != nil && current.SeatID != seatID {
				conflict = &model.ImportConflict{
					Employee:    emp.EmployeeNumber,
					CurrentSeat: current.SeatID,
					NewSeat:     seatID,
				}
				return nil
			}
			seat.Occupy(emp.ID)
		} else {
			seat.Clear()
		}

		seat.UpdatedBy = p.cfg.Actor
		if isNew {
			return tx.CreateSeat(ctx, seat)
		}
		if unchanged(&before, seat) {
			return nil
		}
		if displaced(&before, seat) {
			// no new history, but the previous occupant's assignment must not stay open
			if _, err := tx.CloseOpenHistory(ctx, *before.OccupantID, seatID, p.now()); err != nil {
				return err
			}
		}
		return tx.UpdateSeat(ctx, seat)
	})
	if err != nil {
		return nil, err
	}
	return conflict, nil
}

func (p *Pipeline) findOrCreateEmployee(ctx context.Context, tx store.Store, rec record) (*model.Employee, error) {
	number := rec[mapping.FieldEmployeeNumber]
	emp, err := tx.GetEmployeeByNumber(ctx, number)
	if err == nil {
		return emp, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	emp = &model.Employee{
		EmployeeNumber: number,
		FirstName:      orDefault(rec[mapping.FieldFirstName], unknownName),
		LastName:       orDefault(rec[mapping.FieldLastName], unknownName),
		Email:          rec[mapping.FieldEmail],
		BusinessGroup:  rec[mapping.FieldBusinessGroup],
		Department:     rec[mapping.FieldDepartment],
		Status:         model.EmployeeActive,
	}
	if err := tx.CreateEmployee(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

func unchanged(before, after *model.Seat) bool {
	if before.Status != after.Status {
		return false
	}
	switch {
	case before.OccupantID == nil && after.OccupantID == nil:
		return true
	case before.OccupantID == nil || after.OccupantID == nil:
		return false
	default:
		return *before.OccupantID == *after.OccupantID
	}
}

// displaced reports whether the seat's previous occupant no longer sits there.
func displaced(before, after *model.Seat) bool {
	if before.OccupantID == nil {
		return false
	}
	return after.OccupantID == nil || *after.OccupantID != *before.OccupantID
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Sessions lists the most recent import sessions, newest first.
func (p *Pipeline) Sessions(ctx context.Context, limit int) ([]model.ImportSession, error) {
	return p.store.ListImportSessions(ctx, limit)
}

// Session fetches one import session by id.
func (p *Pipeline) Session(ctx context.Context, sessionID string) (*model.ImportSession, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, apperr.NotFound("import session %q not found", sessionID)
	}
	return p.store.GetImportSession(ctx, sessionID)
}
