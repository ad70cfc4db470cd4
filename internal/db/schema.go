package db

const schemaSQL = `
-- ===========================================================================
-- REFERENCE ENTITIES
-- ===========================================================================

CREATE TABLE IF NOT EXISTS value_types (
  id INTEGER PRIMARY KEY,
  type_name TEXT NOT NULL UNIQUE,
  type_unit TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS room_groups (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL DEFAULT '',
  room_group_id INTEGER,
  FOREIGN KEY (room_group_id) REFERENCES room_groups(id)
);

CREATE TABLE IF NOT EXISTS rooms (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL DEFAULT '',
  room_group_id INTEGER,
  FOREIGN KEY (room_group_id) REFERENCES room_groups(id)
);

CREATE TABLE IF NOT EXISTS devices (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  device TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL DEFAULT '',
  room_id INTEGER,
  FOREIGN KEY (room_id) REFERENCES rooms(id)
);

-- ===========================================================================
-- MEASUREMENTS
-- ===========================================================================

CREATE TABLE IF NOT EXISTS measurement_values (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  time INTEGER NOT NULL,
  value REAL NOT NULL,
  value_type_id INTEGER NOT NULL,
  device_id INTEGER NOT NULL,
  FOREIGN KEY (value_type_id) REFERENCES value_types(id),
  FOREIGN KEY (device_id) REFERENCES devices(id)
);

CREATE INDEX IF NOT EXISTS idx_measurement_values_time ON measurement_values(time);
CREATE INDEX IF NOT EXISTS idx_measurement_values_type_time ON measurement_values(value_type_id, time);
CREATE INDEX IF NOT EXISTS idx_measurement_values_device_time ON measurement_values(device_id, time);
`
