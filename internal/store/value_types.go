package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const selectValueTypeSQL = `SELECT id, type_name, type_unit FROM value_types`

// AddOrUpdateValueType creates or updates a value type.
//
// Unlike the other upserts, an id that does not exist yet creates the value
// type instead of failing; AddValue depends on this. A name or unit that is
// neither given nor already stored defaults to "TYPE_<id>" / "UNIT_<id>".
// Without an id the next free id is used, skipping any whose default name is
// taken. With an explicit id a clashing default name is an Integrity error.
func (s *Store) AddOrUpdateValueType(ctx context.Context, input ValueTypeInput) (*ValueType, error) {
	var valueType *ValueType
	err := s.withTx(ctx, "value type", func(tx *sqlx.Tx) error {
		var err error
		valueType, err = upsertValueType(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return valueType, nil
}

func upsertValueType(ctx context.Context, tx *sqlx.Tx, input ValueTypeInput) (*ValueType, error) {
	var valueType ValueType
	exists := false

	if input.ID != nil {
		err := tx.GetContext(ctx, &valueType, selectValueTypeSQL+" WHERE id = ?", *input.ID)
		switch {
		case err == nil:
			exists = true
		case errors.Is(err, sql.ErrNoRows):
			valueType.ID = *input.ID
		default:
			return nil, fmt.Errorf("get value type %d: %w", *input.ID, err)
		}
	} else {
		// INTEGER PRIMARY KEY would pick the same id; it is needed up front for the defaults.
		if err := tx.GetContext(ctx, &valueType.ID, "SELECT COALESCE(MAX(id), 0) + 1 FROM value_types"); err != nil {
			return nil, fmt.Errorf("next value type id: %w", err)
		}
		// Skip ids whose default name is already used by another type.
		for input.Name == "" {
			var taken int
			err := tx.GetContext(ctx, &taken, "SELECT COUNT(*) FROM value_types WHERE type_name = ?", fmt.Sprintf("TYPE_%d", valueType.ID))
			if err != nil {
				return nil, fmt.Errorf("check default value type name: %w", err)
			}
			if taken == 0 {
				break
			}
			valueType.ID++
		}
	}

	if input.Name != "" {
		valueType.TypeName = input.Name
	} else if valueType.TypeName == "" {
		valueType.TypeName = fmt.Sprintf("TYPE_%d", valueType.ID)
	}
	if input.Unit != "" {
		valueType.TypeUnit = input.Unit
	} else if valueType.TypeUnit == "" {
		valueType.TypeUnit = fmt.Sprintf("UNIT_%d", valueType.ID)
	}

	if exists {
		_, err := tx.ExecContext(ctx, `
			UPDATE value_types SET type_name = ?, type_unit = ? WHERE id = ?
		`, valueType.TypeName, valueType.TypeUnit, valueType.ID)
		if err != nil {
			return nil, fmt.Errorf("update value type %d: %w", valueType.ID, err)
		}
	} else {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO value_types (id, type_name, type_unit) VALUES (?, ?, ?)
		`, valueType.ID, valueType.TypeName, valueType.TypeUnit)
		if err != nil {
			return nil, fmt.Errorf("insert value type %d: %w", valueType.ID, err)
		}
	}

	var stored ValueType
	if err := tx.GetContext(ctx, &stored, selectValueTypeSQL+" WHERE id = ?", valueType.ID); err != nil {
		return nil, fmt.Errorf("reload value type %d: %w", valueType.ID, err)
	}
	return &stored, nil
}

// GetValueTypes returns all value types ordered by id.
func (s *Store) GetValueTypes(ctx context.Context) ([]ValueType, error) {
	valueTypes := []ValueType{}
	if err := s.reader.SelectContext(ctx, &valueTypes, selectValueTypeSQL+" ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list value types: %w", err)
	}
	return valueTypes, nil
}

// GetValueType returns one value type or a NotFound error.
func (s *Store) GetValueType(ctx context.Context, id int64) (*ValueType, error) {
	var valueType ValueType
	if err := s.getOne(ctx, s.reader, &valueType, "value type", id, selectValueTypeSQL+" WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &valueType, nil
}
