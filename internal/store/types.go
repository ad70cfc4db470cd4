package store

// PageSize is the fixed number of values returned per page by GetValues.
const PageSize = 10

// Sort keys accepted by ValuesQuery.Order. Anything else sorts by time.
const (
	OrderByType   = "type"
	OrderByValue  = "value"
	OrderByDevice = "device"
)

// ValueType is a named, unit-tagged measurement kind.
type ValueType struct {
	ID       int64  `db:"id" json:"id"`
	TypeName string `db:"type_name" json:"type_name"`
	TypeUnit string `db:"type_unit" json:"type_unit"`
}

// Device is a source of measurements, optionally located in a room.
type Device struct {
	ID     int64  `db:"id" json:"id"`
	Device string `db:"device" json:"device"`
	Name   string `db:"name" json:"name"`
	RoomID *int64 `db:"room_id" json:"room_id,omitempty"`
}

// Room is a physical location, optionally part of a room group.
type Room struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	RoomGroupID *int64 `db:"room_group_id" json:"room_group_id,omitempty"`
}

// RoomGroup groups rooms; RoomGroupID points at the parent group.
type RoomGroup struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	RoomGroupID *int64 `db:"room_group_id" json:"room_group_id,omitempty"`
}

// Value is one immutable timestamped measurement with its resolved references.
type Value struct {
	ID          int64     `db:"id" json:"id"`
	Time        int64     `db:"time" json:"time"`
	Value       float64   `db:"value" json:"value"`
	ValueTypeID int64     `db:"value_type_id" json:"value_type_id"`
	DeviceID    int64     `db:"device_id" json:"device_id"`
	ValueType   ValueType `db:"value_type" json:"value_type"`
	Device      Device    `db:"device" json:"device"`
}

// ValuesWithCount is one page of values plus the size of the unpaginated result.
type ValuesWithCount struct {
	Count  int     `json:"count"`
	Values []Value `json:"values"`
}

// ValueTypeInput contains the fields for AddOrUpdateValueType.
// Empty strings leave the stored field untouched.
type ValueTypeInput struct {
	ID   *int64
	Name string
	Unit string
}

// DeviceInput contains the fields for AddOrUpdateDevice.
type DeviceInput struct {
	ID     *int64
	Device string // source path the sensor data comes from
	Name   string
	RoomID *int64
}

// RoomInput contains the fields for AddOrUpdateRoom.
type RoomInput struct {
	ID          *int64
	Name        string
	RoomGroupID *int64
}

// RoomGroupInput contains the fields for AddOrUpdateRoomGroup.
type RoomGroupInput struct {
	ID            *int64
	Name          string
	ParentGroupID *int64
}

// ValueFilter restricts values by type, inclusive time bounds and device.
// Nil fields do not restrict.
type ValueFilter struct {
	ValueTypeID *int64
	Start       *int64
	End         *int64
	DeviceID    *int64
}

// ValuesQuery is a ValueFilter plus ordering and pagination.
type ValuesQuery struct {
	ValueFilter
	Page  int    // 1-based; values below 1 are treated as 1
	Order string // OrderByType, OrderByValue, OrderByDevice; default is time
	IsAsc string // "true" sorts ascending, anything else descending
}
