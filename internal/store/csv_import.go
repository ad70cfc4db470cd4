package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/strefethen/rdp-go/internal/apperrors"
)

// TimeColumn is the CSV header holding each row's timestamp.
const TimeColumn = "time"

// Accepted ISO-8601 timestamp layouts. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// LoadCSV imports measurements for one device.
//
// The header must contain a "time" column; every other column must be the
// exact name of an existing value type. Each non-empty cell becomes one value.
// The whole import is a single transaction: on any error nothing is stored.
// Returns the number of values inserted.
func (s *Store) LoadCSV(ctx context.Context, csvText []byte, deviceID int64) (int, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(csvText, []byte("\ufeff"))))
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return 0, apperrors.NewValidationError("malformed csv: "+err.Error(), nil)
	}
	if len(records) == 0 {
		return 0, apperrors.NewValidationError("csv has no header row", nil)
	}

	header := records[0]
	timeIndex := -1
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
		if header[i] == TimeColumn {
			timeIndex = i
		}
	}
	if timeIndex < 0 {
		return 0, apperrors.NewValidationError("csv header has no time column", map[string]any{"header": header})
	}

	inserted := 0
	err = s.withTx(ctx, "value", func(tx *sqlx.Tx) error {
		var device Device
		if err := s.getOne(ctx, tx, &device, "device", deviceID, selectDeviceSQL+" WHERE id = ?", deviceID); err != nil {
			return err
		}

		// Column index -> value type id, resolved once for the whole file.
		typeIDs := make(map[int]int64, len(header)-1)
		for i, name := range header {
			if i == timeIndex {
				continue
			}
			var valueType ValueType
			if err := s.getOne(ctx, tx, &valueType, "value type", name, selectValueTypeSQL+" WHERE type_name = ?", name); err != nil {
				return err
			}
			typeIDs[i] = valueType.ID
		}

		stmt, err := tx.PreparexContext(ctx, insertValueSQL)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for line, record := range records[1:] {
			lineNumber := line + 2
			timestamp, err := parseTimestamp(record[timeIndex])
			if err != nil {
				return apperrors.NewValidationError(fmt.Sprintf("line %d: %v", lineNumber, err), nil)
			}

			for i, cell := range record {
				typeID, ok := typeIDs[i]
				if !ok {
					continue
				}
				cell = strings.TrimSpace(cell)
				if cell == "" {
					continue
				}
				value, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return apperrors.NewValidationError(fmt.Sprintf("line %d column %q: invalid number %q", lineNumber, header[i], cell), nil)
				}
				if _, err := stmt.ExecContext(ctx, timestamp, value, typeID, device.ID); err != nil {
					return fmt.Errorf("line %d: insert value: %w", lineNumber, err)
				}
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("device_id", deviceID).Int("rows", len(records)-1).Int("values", inserted).Msg("csv imported")
	return inserted, nil
}

// parseTimestamp converts ISO-8601 text to unix seconds.
func parseTimestamp(text string) (int64, error) {
	text = strings.TrimSpace(text)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("invalid timestamp %q", text)
}
