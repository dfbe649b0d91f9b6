package models

import "github.com/shopspring/decimal"

const (
	ProcedureSurgical    = "surgical"
	ProcedureNonSurgical = "non_surgical"
)

// Procedure is a billable catalog entry
type Procedure struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:200;not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Cost          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"cost"`
	ProcedureType string          `gorm:"size:20;not null" json:"procedure_type"`
}

// TableName specifies the table name for Procedure model
func (Procedure) TableName() string {
	return "procedures"
}
