package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// selectValuesSQL resolves each value's type and device in one row; the
// dotted aliases scan into Value.ValueType and Value.Device.
const selectValuesSQL = `
	SELECT v.id, v.time, v.value, v.value_type_id, v.device_id,
		vt.id AS "value_type.id", vt.type_name AS "value_type.type_name", vt.type_unit AS "value_type.type_unit",
		d.id AS "device.id", d.device AS "device.device", d.name AS "device.name", d.room_id AS "device.room_id"
	FROM measurement_values v
	JOIN value_types vt ON vt.id = v.value_type_id
	JOIN devices d ON d.id = v.device_id
`

const insertValueSQL = `
	INSERT INTO measurement_values (time, value, value_type_id, device_id) VALUES (?, ?, ?, ?)
`

// AddValue stores one measurement. An unknown valueTypeID creates the value
// type with default name and unit (see AddOrUpdateValueType); an unknown
// deviceID fails with an Integrity error and nothing is stored.
func (s *Store) AddValue(ctx context.Context, valueTime int64, valueTypeID int64, deviceID int64, value float64) (*Value, error) {
	var stored Value
	err := s.withTx(ctx, "value", func(tx *sqlx.Tx) error {
		if _, err := upsertValueType(ctx, tx, ValueTypeInput{ID: &valueTypeID}); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, insertValueSQL, valueTime, value, valueTypeID, deviceID)
		if err != nil {
			return fmt.Errorf("insert value: %w", err)
		}
		id, err := insertedID(result)
		if err != nil {
			return err
		}

		if err := tx.GetContext(ctx, &stored, selectValuesSQL+" WHERE v.id = ?", id); err != nil {
			return fmt.Errorf("get value %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetValues returns one page of values matching query plus the number of
// matching values across all pages.
func (s *Store) GetValues(ctx context.Context, query ValuesQuery) (*ValuesWithCount, error) {
	whereClause, args := buildWhereClause(query.ValueFilter)

	page := query.Page
	if page < 1 {
		page = 1
	}

	result := &ValuesWithCount{Values: []Value{}}
	err := s.withReadTx(ctx, func(tx *sqlx.Tx) error {
		// Get total count first
		countQuery := "SELECT COUNT(*) FROM measurement_values v " + whereClause
		if err := tx.GetContext(ctx, &result.Count, countQuery, args...); err != nil {
			return fmt.Errorf("count values: %w", err)
		}

		selectQuery := selectValuesSQL + whereClause + " " + orderClause(query.Order, query.IsAsc) + " LIMIT ? OFFSET ?"
		queryArgs := append(append([]any{}, args...), PageSize, PageSize*(page-1))

		s.logger.Debug().Str("sql", selectQuery).Interface("args", queryArgs).Msg("get values")

		if err := tx.SelectContext(ctx, &result.Values, selectQuery, queryArgs...); err != nil {
			return fmt.Errorf("select values: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetValuesAverage returns the mean of all values matching filter, or nil
// when nothing matches.
func (s *Store) GetValuesAverage(ctx context.Context, filter ValueFilter) (*float64, error) {
	whereClause, args := buildWhereClause(filter)
	query := "SELECT AVG(v.value) FROM measurement_values v " + whereClause

	s.logger.Debug().Str("sql", query).Interface("args", args).Msg("get values average")

	var avg sql.NullFloat64
	if err := s.reader.GetContext(ctx, &avg, query, args...); err != nil {
		return nil, fmt.Errorf("average values: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// buildWhereClause builds a dynamic WHERE clause based on provided filters.
// Time bounds are inclusive.
func buildWhereClause(filter ValueFilter) (string, []any) {
	conditions := []string{}
	args := []any{}

	if filter.ValueTypeID != nil {
		conditions = append(conditions, "v.value_type_id = ?")
		args = append(args, *filter.ValueTypeID)
	}
	if filter.Start != nil {
		conditions = append(conditions, "v.time >= ?")
		args = append(args, *filter.Start)
	}
	if filter.End != nil {
		conditions = append(conditions, "v.time <= ?")
		args = append(args, *filter.End)
	}
	if filter.DeviceID != nil {
		conditions = append(conditions, "v.device_id = ?")
		args = append(args, *filter.DeviceID)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	return whereClause, args
}

// orderClause maps a sort key to ORDER BY. The id tie-breaker keeps pages
// stable when many rows share a sort value.
func orderClause(order, isAsc string) string {
	direction := "DESC"
	if isAsc == "true" {
		direction = "ASC"
	}

	column := "v.time"
	switch order {
	case OrderByType:
		column = "vt.type_name"
	case OrderByValue:
		column = "v.value"
	case OrderByDevice:
		column = "d.name"
	}

	return fmt.Sprintf("ORDER BY %s %s, v.id %s", column, direction, direction)
}
