// Package lock provides per-record mutual exclusion for occupancy writes.
package lock

import (
	"context"
	"sort"
)

// Locker serializes operations that touch the same seats or employees.
type Locker interface {
	// Acquire blocks until every key is held or ctx is done. The returned
	// release func must be called exactly once.
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

// SeatKey is the lock key of a seat.
func SeatKey(seatID string) string { return "seat:" + seatID }

// EmployeeKey is the lock key of an employee, by employee number.
func EmployeeKey(employeeNumber string) string { return "employee:" + employeeNumber }

// normalize sorts and deduplicates keys so that every caller acquires them in
// the same order.
func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
