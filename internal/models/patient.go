package models

import (
	"time"

	"gorm.io/datatypes"
)

// Patient represents the patients table.
// Patients are archived, never hard-deleted.
type Patient struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"size:100;not null" json:"name"`
	Age         int               `gorm:"not null" json:"age"`
	Gender      string            `gorm:"size:10" json:"gender"`
	Contact     string            `gorm:"size:50" json:"contact"`
	NHSNumber   *string           `gorm:"size:10;uniqueIndex" json:"nhs_number,omitempty"`
	Insured     bool              `gorm:"not null" json:"insured"`
	Handicapped bool              `gorm:"not null" json:"handicapped"`
	Archived    bool              `gorm:"not null;index" json:"archived"`
	LabFeatures datatypes.JSONMap `gorm:"column:lab_features" json:"lab_features,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TableName specifies the table name for Patient model
func (Patient) TableName() string {
	return "patients"
}
