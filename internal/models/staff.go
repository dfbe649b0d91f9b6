package models

import "time"

// Role is the clinical or operational role a staff member acts under.
type Role string

const (
	RoleDoctor        Role = "doctor"
	RoleNurse         Role = "nurse"
	RoleAdmin         Role = "admin"
	RolePharmacyStaff Role = "pharmacy_staff"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleDoctor, RoleNurse, RoleAdmin, RolePharmacyStaff:
		return true
	}
	return false
}

// Clinical reports whether r can hold shifts and be attached to admissions.
func (r Role) Clinical() bool {
	return r == RoleDoctor || r == RoleNurse
}

// Staff represents the staff table
type Staff struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null;size:50" json:"username"`
	FullName  string    `gorm:"size:150" json:"full_name"`
	Role      Role      `gorm:"size:20;not null;index" json:"role"`
	Archived  bool      `gorm:"not null" json:"archived"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Staff model
func (Staff) TableName() string {
	return "staff"
}
