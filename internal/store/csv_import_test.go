package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strefethen/rdp-go/internal/apperrors"
	"github.com/strefethen/rdp-go/internal/db"
)

func setupImportStore(t *testing.T, driver string) (*Store, int64) {
	t.Helper()
	s := setupTestStoreWithDriver(t, driver)
	seedValueType(t, s, 1, "temperature", "C")
	seedValueType(t, s, 2, "humidity", "%")
	return s, seedDevice(t, s, "logger")
}

func TestStore_LoadCSV(t *testing.T) {
	for _, driver := range []string{db.DriverMattn, db.DriverModernc} {
		t.Run(driver, func(t *testing.T) {
			s, deviceID := setupImportStore(t, driver)
			ctx := context.Background()

			csvText := []byte("time,temperature,humidity\n" +
				"2023-01-01T00:00:00,21.5,40\n" +
				"2023-01-01T00:10:00,21.7,41.5\n" +
				"2023-01-01T00:20:00,22,42\n")

			inserted, err := s.LoadCSV(ctx, csvText, deviceID)
			require.NoError(t, err)
			require.Equal(t, 6, inserted)

			temperature, err := s.GetValues(ctx, ValuesQuery{
				ValueFilter: ValueFilter{ValueTypeID: ptr(int64(1)), DeviceID: &deviceID},
				IsAsc:       "true",
			})
			require.NoError(t, err)
			require.Equal(t, 3, temperature.Count)
			require.Equal(t, []float64{21.5, 21.7, 22}, valuesOf(temperature.Values))
			require.Equal(t, int64(1672531200), temperature.Values[0].Time)
			require.Equal(t, int64(1672531800), temperature.Values[1].Time)

			humidity, err := s.GetValuesAverage(ctx, ValueFilter{ValueTypeID: ptr(int64(2))})
			require.NoError(t, err)
			require.InDelta(t, 41.1666666, *humidity, 1e-6)
		})
	}
}

func TestStore_LoadCSV_TimeColumnAnywhere(t *testing.T) {
	s, deviceID := setupImportStore(t, db.DriverMattn)
	ctx := context.Background()

	inserted, err := s.LoadCSV(ctx, []byte("humidity, time\n55, 2023-06-01 12:00:00+02:00\n"), deviceID)
	require.NoError(t, err)
	require.Equal(t, 1, inserted)

	result, err := s.GetValues(ctx, ValuesQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	require.Equal(t, int64(1685613600), result.Values[0].Time)
	require.Equal(t, "humidity", result.Values[0].ValueType.TypeName)
}

func TestStore_LoadCSV_SkipsEmptyCells(t *testing.T) {
	s, deviceID := setupImportStore(t, db.DriverMattn)
	ctx := context.Background()

	csvText := []byte("time,temperature,humidity\n" +
		"2023-01-01T00:00:00,21.5,\n" +
		"2023-01-01T00:10:00,,41\n")

	inserted, err := s.LoadCSV(ctx, csvText, deviceID)
	require.NoError(t, err)
	require.Equal(t, 2, inserted)
}

func TestStore_LoadCSV_UnknownColumnIsNotFound(t *testing.T) {
	s, deviceID := setupImportStore(t, db.DriverMattn)
	ctx := context.Background()

	csvText := []byte("time,temperature,co2\n2023-01-01T00:00:00,21.5,400\n")

	_, err := s.LoadCSV(ctx, csvText, deviceID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	result, err := s.GetValues(ctx, ValuesQuery{})
	require.NoError(t, err)
	require.Zero(t, result.Count)

	// No implicit value type creation on import.
	valueTypes, err := s.GetValueTypes(ctx)
	require.NoError(t, err)
	require.Len(t, valueTypes, 2)
}

func TestStore_LoadCSV_ColumnNamesAreExact(t *testing.T) {
	s, deviceID := setupImportStore(t, db.DriverMattn)

	_, err := s.LoadCSV(context.Background(), []byte("time,Temperature\n2023-01-01,1\n"), deviceID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_LoadCSV_UnknownDeviceIsNotFound(t *testing.T) {
	s, _ := setupImportStore(t, db.DriverMattn)

	_, err := s.LoadCSV(context.Background(), []byte("time,temperature\n2023-01-01,1\n"), 99)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_LoadCSV_BadRowRollsBackEverything(t *testing.T) {
	for _, driver := range []string{db.DriverMattn, db.DriverModernc} {
		t.Run(driver, func(t *testing.T) {
			s, deviceID := setupImportStore(t, driver)
			ctx := context.Background()

			for name, csvText := range map[string]string{
				"bad time":   "time,temperature\n2023-01-01T00:00:00,1\n2023-01-01T00:10:00,2\nyesterday,3\n",
				"bad number": "time,temperature\n2023-01-01T00:00:00,1\n2023-01-01T00:10:00,warm\n",
			} {
				_, err := s.LoadCSV(ctx, []byte(csvText), deviceID)
				require.ErrorIs(t, err, apperrors.ErrValidation, name)

				result, err := s.GetValues(ctx, ValuesQuery{})
				require.NoError(t, err)
				require.Zero(t, result.Count, name)
			}
		})
	}
}

func TestStore_LoadCSV_MalformedInput(t *testing.T) {
	s, deviceID := setupImportStore(t, db.DriverMattn)
	ctx := context.Background()

	for name, csvText := range map[string]string{
		"empty":          "",
		"no time column": "temperature,humidity\n1,2\n",
		"ragged rows":    "time,temperature\n2023-01-01,1,2\n",
	} {
		_, err := s.LoadCSV(ctx, []byte(csvText), deviceID)
		require.ErrorIs(t, err, apperrors.ErrValidation, name)
	}
}

func TestStore_LoadCSV_HeaderOnly(t *testing.T) {
	s, deviceID := setupImportStore(t, db.DriverMattn)

	inserted, err := s.LoadCSV(context.Background(), []byte("\ufefftime,temperature\n"), deviceID)
	require.NoError(t, err)
	require.Zero(t, inserted)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"2023-01-01T00:00:00", 1672531200},
		{"2023-01-01T00:00:00Z", 1672531200},
		{"2023-01-01T00:00:00.750", 1672531200},
		{"2023-01-01T01:00:00+01:00", 1672531200},
		{"2023-01-01 00:00:00", 1672531200},
		{"2023-01-01 01:00:00+01:00", 1672531200},
		{"2023-01-01T00:00", 1672531200},
		{"2023-01-01", 1672531200},
		{" 2023-01-01 ", 1672531200},
	}
	for _, tt := range tests {
		got, err := parseTimestamp(tt.input)
		require.NoError(t, err, tt.input)
		require.Equal(t, tt.want, got, tt.input)
	}

	for _, bad := range []string{"", "yesterday", "01/02/2023", "2023-13-01"} {
		_, err := parseTimestamp(bad)
		require.Error(t, err, bad)
	}
}
