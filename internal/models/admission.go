package models

import "time"

// AdmissionStatus is a state of the admission workflow.
type AdmissionStatus string

const (
	AdmissionPending          AdmissionStatus = "pending"
	AdmissionAdmitted         AdmissionStatus = "admitted"
	AdmissionPendingDischarge AdmissionStatus = "pending_discharge"
	AdmissionDischarged       AdmissionStatus = "discharged"
)

// Open reports whether an admission in this status is still an open encounter.
func (s AdmissionStatus) Open() bool {
	return s != AdmissionDischarged
}

// Admission represents the admissions table.
// Every clinical encounter, inpatient or outpatient, is one row.
type Admission struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	PatientID         uint            `gorm:"not null;index" json:"patient_id"`
	DoctorID          *uint           `gorm:"index" json:"doctor_id"`
	NurseID           *uint           `gorm:"index" json:"nurse_id"`
	CurrentRoomID     *uint           `gorm:"index" json:"current_room_id"`
	LastRoomNumber    string          `gorm:"size:20" json:"last_room_number"`
	Status            AdmissionStatus `gorm:"size:20;not null;index" json:"status"`
	AdmissionDate     time.Time       `gorm:"not null" json:"admission_date"`
	DischargeDate     *time.Time      `json:"discharge_date"`
	RequiresInpatient bool            `gorm:"not null" json:"requires_inpatient"`
	DoctorNotes       string          `gorm:"type:text" json:"doctor_notes"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// Relationships
	Patient     *Patient    `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor      *Staff      `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Nurse       *Staff      `gorm:"foreignKey:NurseID" json:"nurse,omitempty"`
	CurrentRoom *Room       `gorm:"foreignKey:CurrentRoomID" json:"current_room,omitempty"`
	Procedures  []Procedure `gorm:"many2many:admission_procedures" json:"procedures"`
}

// TableName specifies the table name for Admission model
func (Admission) TableName() string {
	return "admissions"
}

// AdmissionProcedure is the join row of the admission procedure set.
// The composite key makes the set semantics hold at the data layer.
type AdmissionProcedure struct {
	AdmissionID uint `gorm:"primaryKey"`
	ProcedureID uint `gorm:"primaryKey"`
}

// TableName specifies the table name for AdmissionProcedure model
func (AdmissionProcedure) TableName() string {
	return "admission_procedures"
}
