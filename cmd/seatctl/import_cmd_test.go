package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seat-occupancy-backend/internal/mapping"
)

func TestParseColumns(t *testing.T) {
	m, err := parseColumns(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = parseColumns([]string{"Seat Number=seatId", " Emp # = employeeNumber"})
	require.NoError(t, err)
	assert.Equal(t, mapping.Field("seatId"), m["Seat Number"])
	assert.Equal(t, mapping.Field("employeeNumber"), m["Emp #"])

	_, err = parseColumns([]string{"no separator"})
	assert.Error(t, err)

	_, err = parseColumns([]string{"Seat=notAField"})
	assert.Error(t, err)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"import", "export", "report", "seed"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}
