// Package report computes occupancy statistics from the store.
package report

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"seat-occupancy-backend/internal/store"
)

// Summary is the overall occupancy of the site.
type Summary struct {
	TotalSeats     int64   `json:"totalSeats"`
	OccupiedSeats  int64   `json:"occupiedSeats"`
	VacantSeats    int64   `json:"vacantSeats"`
	TotalEmployees int64   `json:"totalEmployees"`
	OccupancyRate  float64 `json:"occupancyRate"`
}

// GroupOccupancy is the occupancy of seats held by one business group.
type GroupOccupancy struct {
	BusinessGroup string  `json:"businessGroup"`
	TotalSeats    int64   `json:"totalSeats"`
	OccupiedSeats int64   `json:"occupiedSeats"`
	OccupancyRate float64 `json:"occupancyRate"`
}

// FloorOccupancy is the occupancy of one floor of one building.
type FloorOccupancy struct {
	Building      string  `json:"building"`
	Floor         int     `json:"floor"`
	TotalSeats    int64   `json:"totalSeats"`
	OccupiedSeats int64   `json:"occupiedSeats"`
	VacantSeats   int64   `json:"vacantSeats"`
	OccupancyRate float64 `json:"occupancyRate"`
}

// Aggregator reads aggregates from the store. It never writes.
type Aggregator struct {
	store store.Store
}

func NewAggregator(st store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// Summary returns seat counts, active employees and the occupancy rate.
func (a *Aggregator) Summary(ctx context.Context) (*Summary, error) {
	counts, err := a.store.CountSeats(ctx)
	if err != nil {
		return nil, err
	}
	employees, err := a.store.CountActiveEmployees(ctx)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalSeats:     counts.Total,
		OccupiedSeats:  counts.Occupied,
		VacantSeats:    counts.Vacant,
		TotalEmployees: employees,
		OccupancyRate:  Rate(counts.Occupied, counts.Total),
	}, nil
}

// ByBusinessGroup groups seats by their occupant's business group. Seats
// without an occupant or whose occupant has no group are left out.
func (a *Aggregator) ByBusinessGroup(ctx context.Context) ([]GroupOccupancy, error) {
	rows, err := a.store.GroupByBusinessGroup(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]GroupOccupancy, 0, len(rows))
	for _, r := range rows {
		if r.BusinessGroup == nil || *r.BusinessGroup == "" {
			continue
		}
		out = append(out, GroupOccupancy{
			BusinessGroup: *r.BusinessGroup,
			TotalSeats:    r.TotalSeats,
			OccupiedSeats: r.OccupiedSeats,
			OccupancyRate: Rate(r.OccupiedSeats, r.TotalSeats),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BusinessGroup < out[j].BusinessGroup })
	return out, nil
}

// ByFloor groups all seats by building and floor.
func (a *Aggregator) ByFloor(ctx context.Context) ([]FloorOccupancy, error) {
	rows, err := a.store.GroupByLocation(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]FloorOccupancy, 0, len(rows))
	for _, r := range rows {
		out = append(out, FloorOccupancy{
			Building:      r.Building,
			Floor:         r.Floor,
			TotalSeats:    r.TotalSeats,
			OccupiedSeats: r.OccupiedSeats,
			VacantSeats:   r.VacantSeats,
			OccupancyRate: Rate(r.OccupiedSeats, r.TotalSeats),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Building != out[j].Building {
			return out[i].Building < out[j].Building
		}
		return out[i].Floor < out[j].Floor
	})
	return out, nil
}

// Rate is occupied/total as a percentage rounded half away from zero to two
// decimals. An empty population has a rate of 0.
func Rate(occupied, total int64) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(occupied).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(2).
		InexactFloat64()
}
