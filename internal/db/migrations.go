package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// runMigrations upgrades databases created before devices were placed in
// rooms and before room groups could nest.
func runMigrations(db *sqlx.DB) error {
	devicesColumns, err := tableColumns(db, "devices")
	if err != nil {
		return err
	}

	if !devicesColumns["room_id"] {
		if _, err := db.Exec("ALTER TABLE devices ADD COLUMN room_id INTEGER REFERENCES rooms(id)"); err != nil {
			return fmt.Errorf("add devices.room_id: %w", err)
		}
	}

	roomGroupsColumns, err := tableColumns(db, "room_groups")
	if err != nil {
		return err
	}

	if !roomGroupsColumns["room_group_id"] {
		if _, err := db.Exec("ALTER TABLE room_groups ADD COLUMN room_group_id INTEGER REFERENCES room_groups(id)"); err != nil {
			return fmt.Errorf("add room_groups.room_group_id: %w", err)
		}
	}

	// Indexes on the location hierarchy; created after the columns above exist.
	for _, stmt := range []string{
		"CREATE INDEX IF NOT EXISTS idx_devices_room ON devices(room_id)",
		"CREATE INDEX IF NOT EXISTS idx_rooms_group ON rooms(room_group_id)",
		"CREATE INDEX IF NOT EXISTS idx_room_groups_parent ON room_groups(room_group_id)",
	} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

type columnInfo struct {
	CID        int     `db:"cid"`
	Name       string  `db:"name"`
	Type       string  `db:"type"`
	NotNull    int     `db:"notnull"`
	DefaultVal *string `db:"dflt_value"`
	PK         int     `db:"pk"`
}

func tableColumns(db *sqlx.DB, table string) (map[string]bool, error) {
	var infos []columnInfo
	if err := db.Select(&infos, fmt.Sprintf("PRAGMA table_info(%s)", table)); err != nil {
		return nil, fmt.Errorf("inspect %s: %w", table, err)
	}

	columns := make(map[string]bool, len(infos))
	for _, info := range infos {
		columns[info.Name] = true
	}
	return columns, nil
}
