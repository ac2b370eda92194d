// Package mapping suggests how spreadsheet column labels map onto canonical
// seat and employee fields.
package mapping

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"seat-occupancy-backend/internal/apperr"
)

// Field is a canonical record field a column can be mapped to.
type Field string

const (
	FieldStatus         Field = "status"
	FieldEmployeeNumber Field = "employeeNumber"
	FieldFirstName      Field = "firstName"
	FieldLastName       Field = "lastName"
	FieldEmail          Field = "email"
	FieldBusinessGroup  Field = "businessGroup"
	FieldDepartment     Field = "department"
	FieldSeatID         Field = "seatId"
	FieldFloor          Field = "floor"
	FieldBuilding       Field = "building"
)

// Fields lists every canonical field.
var Fields = []Field{
	FieldStatus, FieldEmployeeNumber, FieldFirstName, FieldLastName, FieldEmail,
	FieldBusinessGroup, FieldDepartment, FieldSeatID, FieldFloor, FieldBuilding,
}

// Valid reports whether f is a canonical field.
func (f Field) Valid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// Entry pairs a known spreadsheet label with its field.
type Entry struct {
	Label string
	Field Field
}

// Dictionary is an ordered list of known labels. Order matters: when several
// entries match a label fuzzily, the last one wins.
type Dictionary []Entry

// DefaultDictionary returns the built-in label table.
func DefaultDictionary() Dictionary {
	return Dictionary{
		{"Space Status", FieldStatus},
		{"Emp #", FieldEmployeeNumber},
		{"Employee Number", FieldEmployeeNumber},
		{"First Name", FieldFirstName},
		{"First", FieldFirstName},
		{"Last Name", FieldLastName},
		{"Last", FieldLastName},
		{"Email", FieldEmail},
		{"Business Group", FieldBusinessGroup},
		{"Department", FieldDepartment},
		{"Seat", FieldSeatID},
		{"Seat Number", FieldSeatID},
		{"Floor", FieldFloor},
		{"Building", FieldBuilding},
	}
}

// Mapping maps a column label to its canonical field.
type Mapping map[string]Field

// Mapper suggests mappings from a fixed dictionary.
type Mapper struct {
	dict  Dictionary
	exact map[string]Field
}

// NewMapper builds a mapper over a copy of dict.
func NewMapper(dict Dictionary) *Mapper {
	d := make(Dictionary, len(dict))
	copy(d, dict)
	exact := make(map[string]Field, len(d))
	for _, e := range d {
		exact[e.Label] = e.Field
	}
	return &Mapper{dict: d, exact: exact}
}

// Suggest maps each label by exact dictionary match first and otherwise by a
// case-insensitive match: substring in either direction, the label containing
// a field name, or the label abbreviating a known label word by word. Labels
// that match nothing are left out.
func (m *Mapper) Suggest(labels []string) Mapping {
	out := make(Mapping, len(labels))
	for _, label := range labels {
		if f, ok := m.match(label); ok {
			out[label] = f
		}
	}
	return out
}

func (m *Mapper) match(label string) (Field, bool) {
	if f, ok := m.exact[label]; ok {
		return f, true
	}

	lower := strings.ToLower(strings.TrimSpace(label))
	if lower == "" {
		return "", false
	}

	var (
		found Field
		ok    bool
	)
	words := tokens(lower)
	for _, e := range m.dict {
		known := strings.ToLower(e.Label)
		if strings.Contains(lower, strings.ToLower(string(e.Field))) ||
			strings.Contains(known, lower) ||
			strings.Contains(lower, known) ||
			abbreviates(words, tokens(known)) {
			found, ok = e.Field, true
		}
	}
	return found, ok
}

func tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// abbreviates reports whether every word of a label is a prefix of the word at
// the same position of a known label, as "Employee No" is of "Employee Number".
// Single-letter words are too ambiguous to count.
func abbreviates(words, known []string) bool {
	if len(words) == 0 || len(words) > len(known) {
		return false
	}
	for i, w := range words {
		if len(w) < 2 || !strings.HasPrefix(known[i], w) {
			return false
		}
	}
	return true
}

// Hints ranks dictionary labels that loosely resemble an unmapped label, best
// first. It never affects Suggest.
func (m *Mapper) Hints(label string, limit int) []string {
	targets := make([]string, len(m.dict))
	for i, e := range m.dict {
		targets[i] = e.Label
	}

	ranks := fuzzy.RankFindNormalizedFold(strings.TrimSpace(label), targets)
	if len(ranks) == 0 {
		// try the other direction: dictionary label as the pattern
		for _, t := range targets {
			if fuzzy.MatchNormalizedFold(t, label) {
				ranks = append(ranks, fuzzy.Rank{Target: t, Distance: fuzzy.LevenshteinDistance(t, label)})
			}
		}
	}
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].Distance < ranks[j].Distance })

	out := make([]string, 0, len(ranks))
	for _, r := range ranks {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, r.Target)
	}
	return out
}

// Validate rejects mappings that name an unknown field. Empty fields mean
// "skip this column" and are dropped.
func Validate(raw map[string]string) (Mapping, error) {
	out := make(Mapping, len(raw))
	for label, field := range raw {
		if field == "" {
			continue
		}
		f := Field(field)
		if !f.Valid() {
			return nil, apperr.Validation("column %q maps to unknown field %q", label, field)
		}
		out[label] = f
	}
	return out, nil
}

// Strings converts the mapping into plain strings for persistence.
func (m Mapping) Strings() map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = string(v)
	}
	return out
}
