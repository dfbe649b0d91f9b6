package models

import "time"

// Room is a ward room with a fixed number of beds.
// occupied_beds is only changed through the bed reservation queries.
type Room struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RoomNumber   string    `gorm:"size:20;uniqueIndex;not null" json:"room_number"`
	RoomType     string    `gorm:"size:50;default:'General'" json:"room_type"`
	BedCapacity  int       `gorm:"not null;default:1" json:"bed_capacity"`
	OccupiedBeds int       `gorm:"not null;default:0" json:"occupied_beds"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for Room model
func (Room) TableName() string {
	return "rooms"
}

// FreeBeds returns the number of unreserved beds.
func (r Room) FreeBeds() int {
	if r.OccupiedBeds >= r.BedCapacity {
		return 0
	}
	return r.BedCapacity - r.OccupiedBeds
}
