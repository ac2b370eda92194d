package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seat-occupancy-backend/config"
	"seat-occupancy-backend/internal/lock"
	"seat-occupancy-backend/internal/seating"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	log.WithField("seat", "A-1").Info("assigned")
	assert.Contains(t, buf.String(), `"seat":"A-1"`)

	buf.Reset()
	log = NewLogger(config.LogConfig{Level: "nonsense", Format: "text"}, &buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	log.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestLoadConfigWithoutFileUsesEnvironment(t *testing.T) {
	t.Setenv("PORT", "4100")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 4100, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestOpenWiresComponents(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Database.DSN = "file:" + filepath.Join(dir, "seats.db") + "?_foreign_keys=on"
	cfg.Database.LogLevel = "silent"
	cfg.Import.UploadDir = filepath.Join(dir, "uploads")

	ctx := context.Background()
	a, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &lock.MemoryLocker{}, a.Locker)

	engine := a.Engine(nil)
	_, err = engine.CreateSeat(ctx, seating.SeatInput{SeatID: "1-01", Building: "HQ", Floor: 1}, "test")
	require.NoError(t, err)
	emp, err := engine.CreateEmployee(ctx, seating.EmployeeInput{EmployeeNumber: "E1", FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	_, err = engine.Assign(ctx, "1-01", emp.ID, "test")
	require.NoError(t, err)

	summary, err := a.Reports.Summary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.TotalSeats)
	assert.EqualValues(t, 1, summary.OccupiedSeats)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = "oracle"
	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}
