package models

import "time"

// AuditLog represents the audit_logs table
// Every committed mutation and every rejected discharge leaves one row here
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   *uint     `gorm:"index" json:"actor_id"`
	Action    string    `gorm:"size:100;not null" json:"action"`
	Entity    string    `gorm:"size:50;index:idx_audit_entity" json:"entity"`
	EntityID  uint      `gorm:"index:idx_audit_entity" json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `json:"created_at"`
	Actor     *Staff    `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

// TableName specifies the table name for AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
