package model

import "time"

// Zone represents a physical reading area in the library, such as a
// floor section or a study room.  Seats always belong to exactly one
// zone.  An inactive zone accepts no new reservations for any of its
// seats.  This struct corresponds to a row in the `zones` table.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – human readable zone name (unique).
//  Floor     – floor number the zone is located on.
//  Active    – whether the zone currently accepts reservations.
//  CreatedAt – timestamp when the zone was created.
//  UpdatedAt – timestamp of last update.
type Zone struct {
    ID        uint64    // zones.id
    Name      string    // zones.name
    Floor     int32     // zones.floor
    Active    bool      // zones.is_active
    CreatedAt time.Time // zones.created_at
    UpdatedAt time.Time // zones.updated_at
}
