package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seat-occupancy-backend/internal/apperr"
)

func TestMapper_Suggest(t *testing.T) {
	mapper := NewMapper(DefaultDictionary())

	testCases := []struct {
		name     string
		label    string
		expected Field
		mapped   bool
	}{
		{name: "Exact match", label: "Emp #", expected: FieldEmployeeNumber, mapped: true},
		{name: "Exact match is case sensitive, fuzzy still finds it", label: "seat number", expected: FieldSeatID, mapped: true},
		{name: "Label is prefix of a known label", label: "Employee No", expected: FieldEmployeeNumber, mapped: true},
		{name: "Abbreviated words of a known label", label: "Emp No", expected: FieldEmployeeNumber, mapped: true},
		{name: "Abbreviated second word", label: "Bus. Group", expected: FieldBusinessGroup, mapped: true},
		{name: "Label contains a known label", label: "Home Department", expected: FieldDepartment, mapped: true},
		{name: "Label contains a field name", label: "Desk Floor", expected: FieldFloor, mapped: true},
		{name: "Label contains a field name in other case", label: "EMAIL ADDRESS", expected: FieldEmail, mapped: true},
		{name: "Last match wins", label: "Name", expected: FieldLastName, mapped: true},
		{name: "Status synonym", label: "status", expected: FieldStatus, mapped: true},
		{name: "Unknown column", label: "Parking Spot", mapped: false},
		{name: "Blank label", label: "   ", mapped: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapper.Suggest([]string{tc.label})
			field, ok := got[tc.label]
			assert.Equal(t, tc.mapped, ok)
			if tc.mapped {
				assert.Equal(t, tc.expected, field)
			}
		})
	}
}

func TestAbbreviates(t *testing.T) {
	testCases := []struct {
		label, known string
		want         bool
	}{
		{"employee no", "employee number", true},
		{"emp no", "employee number", true},
		{"employee", "employee number", true},
		{"no employee", "employee number", false},
		{"employee number id", "employee number", false},
		{"e no", "employee number", false},
		{"", "employee number", false},
	}
	for _, tc := range testCases {
		t.Run(tc.label, func(t *testing.T) {
			assert.Equal(t, tc.want, abbreviates(tokens(tc.label), tokens(tc.known)))
		})
	}
}

func TestMapper_SuggestWholeHeader(t *testing.T) {
	mapper := NewMapper(DefaultDictionary())

	got := mapper.Suggest([]string{"Seat Number", "Building", "Floor", "Space Status", "Emp #", "First", "Last", "Notes"})

	assert.Equal(t, Mapping{
		"Seat Number":  FieldSeatID,
		"Building":     FieldBuilding,
		"Floor":        FieldFloor,
		"Space Status": FieldStatus,
		"Emp #":        FieldEmployeeNumber,
		"First":        FieldFirstName,
		"Last":         FieldLastName,
	}, got)
}

func TestMapper_CustomDictionaryIsIsolated(t *testing.T) {
	dict := Dictionary{{Label: "Desk", Field: FieldSeatID}}
	mapper := NewMapper(dict)

	// mutating the caller's slice must not change the mapper
	dict[0].Field = FieldFloor

	assert.Equal(t, Mapping{"Desk": FieldSeatID}, mapper.Suggest([]string{"Desk"}))
	assert.Empty(t, NewMapper(DefaultDictionary()).Suggest([]string{"Desk"}))
}

func TestMapper_Hints(t *testing.T) {
	mapper := NewMapper(DefaultDictionary())

	hints := mapper.Hints("Bldg", 3)
	require.NotEmpty(t, hints)
	assert.Contains(t, hints, "Building")
	assert.LessOrEqual(t, len(hints), 3)

	assert.Empty(t, mapper.Hints("zzz", 3))
}

func TestValidate(t *testing.T) {
	m, err := Validate(map[string]string{"Seat": "seatId", "Notes": ""})
	require.NoError(t, err)
	assert.Equal(t, Mapping{"Seat": FieldSeatID}, m)

	_, err = Validate(map[string]string{"Seat": "desk"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
