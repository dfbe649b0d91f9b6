package service

import (
	"math"
	"time"

	"hospital-operations-backend/internal/config"
	"hospital-operations-backend/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BillingInput is everything the calculator reads.
type BillingInput struct {
	Procedures    []models.Procedure
	AdmissionDate time.Time
	DischargeDate *time.Time
	Now           time.Time
	Insured       bool
	Handicapped   bool
}

// Breakdown is the computed bill before it is persisted.
type Breakdown struct {
	ProcedureCost       decimal.Decimal `json:"procedure_cost"`
	LengthOfStayDays    int             `json:"length_of_stay_days"`
	DailyCareCost       decimal.Decimal `json:"daily_care_cost"`
	TotalBeforeDiscount decimal.Decimal `json:"total_before_discount"`
	DiscountPercent     decimal.Decimal `json:"discount_percent"`
	FinalAmount         decimal.Decimal `json:"final_amount"`
}

// Calculator prices an admission. It has no side effects.
type Calculator struct {
	cfg config.BillingConfig
}

func NewCalculator(cfg config.BillingConfig) Calculator {
	return Calculator{cfg: cfg}
}

// Calculate applies the tariff: procedures plus daily care, less the patient's discount,
// rounded half-up to cents.
func (c Calculator) Calculate(in BillingInput) Breakdown {
	procedureCost := decimal.Zero
	for _, p := range in.Procedures {
		procedureCost = procedureCost.Add(p.Cost)
	}

	end := in.Now
	if in.DischargeDate != nil {
		end = *in.DischargeDate
	}
	days := LengthOfStay(in.AdmissionDate, end)
	dailyCare := c.cfg.DailyRate.Mul(decimal.NewFromInt(int64(days)))

	total := procedureCost.Add(dailyCare)
	discount := c.DiscountPercent(in.Handicapped, in.Insured, total)
	final := total.Mul(hundred.Sub(discount)).Div(hundred).Round(2)

	return Breakdown{
		ProcedureCost:       procedureCost.Round(2),
		LengthOfStayDays:    days,
		DailyCareCost:       dailyCare.Round(2),
		TotalBeforeDiscount: total.Round(2),
		DiscountPercent:     discount.Round(2),
		FinalAmount:         final,
	}
}

// DiscountPercent picks the first matching category: handicapped, then insured, then uninsured.
func (c Calculator) DiscountPercent(handicapped, insured bool, total decimal.Decimal) decimal.Decimal {
	switch {
	case handicapped:
		if total.LessThan(c.cfg.HandicapWaiverThreshold) {
			return c.cfg.HandicapWaiverPercent
		}
		return c.cfg.HandicapDiscountPercent
	case insured:
		return c.cfg.InsuranceDiscountPercent
	default:
		return c.cfg.UninsuredDiscountPercent
	}
}

// LengthOfStay counts started days between admission and end, minimum one.
func LengthOfStay(admitted, end time.Time) int {
	days := int(math.Ceil(end.Sub(admitted).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}
