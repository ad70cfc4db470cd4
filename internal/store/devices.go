package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const selectDeviceSQL = `SELECT id, device, name, room_id FROM devices`

// AddOrUpdateDevice creates a device when input.ID is nil, otherwise updates
// the existing device and fails with NotFound if there is none.
// Empty strings and a nil RoomID leave the stored fields untouched.
func (s *Store) AddOrUpdateDevice(ctx context.Context, input DeviceInput) (*Device, error) {
	var device Device
	err := s.withTx(ctx, "device", func(tx *sqlx.Tx) error {
		if input.ID != nil {
			if err := s.getOne(ctx, tx, &device, "device", *input.ID, selectDeviceSQL+" WHERE id = ?", *input.ID); err != nil {
				return err
			}
		}

		if input.Device != "" {
			device.Device = input.Device
		}
		if input.Name != "" {
			device.Name = input.Name
		}
		if input.RoomID != nil {
			roomID := *input.RoomID
			device.RoomID = &roomID
		}

		if input.ID != nil {
			_, err := tx.ExecContext(ctx, `
				UPDATE devices SET device = ?, name = ?, room_id = ? WHERE id = ?
			`, device.Device, device.Name, device.RoomID, device.ID)
			if err != nil {
				return fmt.Errorf("update device %d: %w", device.ID, err)
			}
			return s.getOne(ctx, tx, &device, "device", device.ID, selectDeviceSQL+" WHERE id = ?", device.ID)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO devices (device, name, room_id) VALUES (?, ?, ?)
		`, device.Device, device.Name, device.RoomID)
		if err != nil {
			return fmt.Errorf("insert device: %w", err)
		}
		id, err := insertedID(result)
		if err != nil {
			return err
		}
		return s.getOne(ctx, tx, &device, "device", id, selectDeviceSQL+" WHERE id = ?", id)
	})
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// DeleteDevice removes a device and returns its last stored state.
// A device that still has values fails with an Integrity error.
func (s *Store) DeleteDevice(ctx context.Context, id int64) (*Device, error) {
	var device Device
	err := s.withTx(ctx, "device", func(tx *sqlx.Tx) error {
		if err := s.getOne(ctx, tx, &device, "device", id, selectDeviceSQL+" WHERE id = ?", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete device %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// GetDevice returns one device or a NotFound error.
func (s *Store) GetDevice(ctx context.Context, id int64) (*Device, error) {
	var device Device
	if err := s.getOne(ctx, s.reader, &device, "device", id, selectDeviceSQL+" WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &device, nil
}

// GetDevices returns all devices ordered by id.
func (s *Store) GetDevices(ctx context.Context) ([]Device, error) {
	devices := []Device{}
	if err := s.reader.SelectContext(ctx, &devices, selectDeviceSQL+" ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}
