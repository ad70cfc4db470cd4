package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/strefethen/rdp-go/internal/apperrors"
	"github.com/strefethen/rdp-go/internal/config"
	"github.com/strefethen/rdp-go/internal/db"
	"github.com/strefethen/rdp-go/internal/store"
)

// setupImportDB creates a database with a temperature value type and returns
// a config pointing at it.
func setupImportDB(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.SQLiteDBPath = filepath.Join(t.TempDir(), "rdp.db")

	withStore(t, cfg, func(s *store.Store) {
		id := int64(1)
		_, err := s.AddOrUpdateValueType(context.Background(), store.ValueTypeInput{ID: &id, Name: "temperature", Unit: "C"})
		require.NoError(t, err)
	})
	return cfg
}

func withStore(t *testing.T, cfg config.Config, fn func(s *store.Store)) {
	t.Helper()
	dbPair, err := db.Open(db.Options{Path: cfg.SQLiteDBPath, Driver: cfg.SQLiteDriver})
	require.NoError(t, err)
	defer dbPair.Close()
	fn(store.New(dbPair, zerolog.Nop()))
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "readings.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func countRows(t *testing.T, cfg config.Config) (devices, values int) {
	t.Helper()
	withStore(t, cfg, func(s *store.Store) {
		ctx := context.Background()
		list, err := s.GetDevices(ctx)
		require.NoError(t, err)
		result, err := s.GetValues(ctx, store.ValuesQuery{})
		require.NoError(t, err)
		devices, values = len(list), result.Count
	})
	return devices, values
}

func TestRun_CreateDeviceAndImport(t *testing.T) {
	cfg := setupImportDB(t)
	path := writeCSV(t, "time,temperature\n2023-01-01T00:00:00,21.5\n2023-01-01T00:10:00,21.7\n")

	err := run(context.Background(), cfg, zerolog.Nop(), path, 0, "/dev/ttyUSB0", "Kitchen")
	require.NoError(t, err)

	devices, values := countRows(t, cfg)
	require.Equal(t, 1, devices)
	require.Equal(t, 2, values)

	withStore(t, cfg, func(s *store.Store) {
		list, err := s.GetDevices(context.Background())
		require.NoError(t, err)
		require.Equal(t, "/dev/ttyUSB0", list[0].Device)
		require.Equal(t, "Kitchen", list[0].Name)
	})
}

func TestRun_FailedImportRemovesCreatedDevice(t *testing.T) {
	tests := []struct {
		name    string
		csvText string
		want    error
	}{
		{"unknown column", "time,unknown\n2023-01-01T00:00:00,1\n", apperrors.ErrNotFound},
		{"bad row", "time,temperature\n2023-01-01T00:00:00,1\nlater,2\n", apperrors.ErrValidation},
		{"no time column", "temperature\n1\n", apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := setupImportDB(t)
			path := writeCSV(t, tt.csvText)

			for range 2 {
				err := run(context.Background(), cfg, zerolog.Nop(), path, 0, "/dev/x", "x")
				require.ErrorIs(t, err, tt.want)
			}

			devices, values := countRows(t, cfg)
			require.Zero(t, devices)
			require.Zero(t, values)
		})
	}
}

func TestRun_FailedImportKeepsExistingDevice(t *testing.T) {
	cfg := setupImportDB(t)
	var deviceID int64
	withStore(t, cfg, func(s *store.Store) {
		device, err := s.AddOrUpdateDevice(context.Background(), store.DeviceInput{Device: "/dev/logger", Name: "logger"})
		require.NoError(t, err)
		deviceID = device.ID
	})

	path := writeCSV(t, "time,unknown\n2023-01-01T00:00:00,1\n")
	err := run(context.Background(), cfg, zerolog.Nop(), path, deviceID, "", "")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	devices, _ := countRows(t, cfg)
	require.Equal(t, 1, devices)
}

func TestRun_MissingFileCreatesNothing(t *testing.T) {
	cfg := setupImportDB(t)

	err := run(context.Background(), cfg, zerolog.Nop(), filepath.Join(t.TempDir(), "missing.csv"), 0, "/dev/x", "x")
	require.ErrorIs(t, err, os.ErrNotExist)

	devices, _ := countRows(t, cfg)
	require.Zero(t, devices)
}
