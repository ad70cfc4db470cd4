package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const (
	selectRoomSQL      = `SELECT id, name, room_group_id FROM rooms`
	selectRoomGroupSQL = `SELECT id, name, room_group_id FROM room_groups`
)

// ==========================================================================
// Rooms
// ==========================================================================

// AddOrUpdateRoom creates a room when input.ID is nil, otherwise updates the
// existing room and fails with NotFound if there is none.
func (s *Store) AddOrUpdateRoom(ctx context.Context, input RoomInput) (*Room, error) {
	var room Room
	err := s.withTx(ctx, "room", func(tx *sqlx.Tx) error {
		if input.ID != nil {
			if err := s.getOne(ctx, tx, &room, "room", *input.ID, selectRoomSQL+" WHERE id = ?", *input.ID); err != nil {
				return err
			}
		}

		if input.Name != "" {
			room.Name = input.Name
		}
		if input.RoomGroupID != nil {
			groupID := *input.RoomGroupID
			room.RoomGroupID = &groupID
		}

		if input.ID != nil {
			_, err := tx.ExecContext(ctx, `
				UPDATE rooms SET name = ?, room_group_id = ? WHERE id = ?
			`, room.Name, room.RoomGroupID, room.ID)
			if err != nil {
				return fmt.Errorf("update room %d: %w", room.ID, err)
			}
			return s.getOne(ctx, tx, &room, "room", room.ID, selectRoomSQL+" WHERE id = ?", room.ID)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO rooms (name, room_group_id) VALUES (?, ?)
		`, room.Name, room.RoomGroupID)
		if err != nil {
			return fmt.Errorf("insert room: %w", err)
		}
		id, err := insertedID(result)
		if err != nil {
			return err
		}
		return s.getOne(ctx, tx, &room, "room", id, selectRoomSQL+" WHERE id = ?", id)
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// DeleteRoom removes a room and returns its last stored state.
// A room that still has devices fails with an Integrity error.
func (s *Store) DeleteRoom(ctx context.Context, id int64) (*Room, error) {
	var room Room
	err := s.withTx(ctx, "room", func(tx *sqlx.Tx) error {
		if err := s.getOne(ctx, tx, &room, "room", id, selectRoomSQL+" WHERE id = ?", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete room %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetRoom returns one room or a NotFound error.
func (s *Store) GetRoom(ctx context.Context, id int64) (*Room, error) {
	var room Room
	if err := s.getOne(ctx, s.reader, &room, "room", id, selectRoomSQL+" WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &room, nil
}

// GetRooms returns rooms ordered by id, limited to one group when
// roomGroupID is set.
func (s *Store) GetRooms(ctx context.Context, roomGroupID *int64) ([]Room, error) {
	query := selectRoomSQL
	args := []any{}
	if roomGroupID != nil {
		query += " WHERE room_group_id = ?"
		args = append(args, *roomGroupID)
	}

	rooms := []Room{}
	if err := s.reader.SelectContext(ctx, &rooms, query+" ORDER BY id", args...); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ==========================================================================
// Room groups
// ==========================================================================

// AddOrUpdateRoomGroup creates a room group when input.ID is nil, otherwise
// updates the existing group and fails with NotFound if there is none.
// ParentGroupID nests the group below another one.
func (s *Store) AddOrUpdateRoomGroup(ctx context.Context, input RoomGroupInput) (*RoomGroup, error) {
	var group RoomGroup
	err := s.withTx(ctx, "room group", func(tx *sqlx.Tx) error {
		if input.ID != nil {
			if err := s.getOne(ctx, tx, &group, "room group", *input.ID, selectRoomGroupSQL+" WHERE id = ?", *input.ID); err != nil {
				return err
			}
		}

		if input.Name != "" {
			group.Name = input.Name
		}
		if input.ParentGroupID != nil {
			parentID := *input.ParentGroupID
			group.RoomGroupID = &parentID
		}

		if input.ID != nil {
			_, err := tx.ExecContext(ctx, `
				UPDATE room_groups SET name = ?, room_group_id = ? WHERE id = ?
			`, group.Name, group.RoomGroupID, group.ID)
			if err != nil {
				return fmt.Errorf("update room group %d: %w", group.ID, err)
			}
			return s.getOne(ctx, tx, &group, "room group", group.ID, selectRoomGroupSQL+" WHERE id = ?", group.ID)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO room_groups (name, room_group_id) VALUES (?, ?)
		`, group.Name, group.RoomGroupID)
		if err != nil {
			return fmt.Errorf("insert room group: %w", err)
		}
		id, err := insertedID(result)
		if err != nil {
			return err
		}
		return s.getOne(ctx, tx, &group, "room group", id, selectRoomGroupSQL+" WHERE id = ?", id)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// DeleteRoomGroup removes a room group and returns its last stored state.
// A group that still has rooms or child groups fails with an Integrity error.
func (s *Store) DeleteRoomGroup(ctx context.Context, id int64) (*RoomGroup, error) {
	var group RoomGroup
	err := s.withTx(ctx, "room group", func(tx *sqlx.Tx) error {
		if err := s.getOne(ctx, tx, &group, "room group", id, selectRoomGroupSQL+" WHERE id = ?", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM room_groups WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete room group %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetRoomGroup returns one room group or a NotFound error.
func (s *Store) GetRoomGroup(ctx context.Context, id int64) (*RoomGroup, error) {
	var group RoomGroup
	if err := s.getOne(ctx, s.reader, &group, "room group", id, selectRoomGroupSQL+" WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &group, nil
}

// GetRoomGroups returns room groups ordered by id, limited to the direct
// children of parentID when it is set.
func (s *Store) GetRoomGroups(ctx context.Context, parentID *int64) ([]RoomGroup, error) {
	query := selectRoomGroupSQL
	args := []any{}
	if parentID != nil {
		query += " WHERE room_group_id = ?"
		args = append(args, *parentID)
	}

	groups := []RoomGroup{}
	if err := s.reader.SelectContext(ctx, &groups, query+" ORDER BY id", args...); err != nil {
		return nil, fmt.Errorf("list room groups: %w", err)
	}
	return groups, nil
}
