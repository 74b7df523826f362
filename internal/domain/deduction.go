package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CalcMethodPercentage = "percentage"
	CalcMethodFixed      = "fixed"
)

// Deduction line categories, in the order they are assembled.
const (
	DeductionCategoryMandatory  = "mandatory"
	DeductionCategoryEmployee   = "employee"
	DeductionCategoryAttendance = "attendance"
	DeductionCategoryLoan       = "loan"
)

// DeductionType is a reusable catalog entry ("Income Tax", "Pension Fund")
// defining how the amount is derived and whether it applies to everyone.
type DeductionType struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	CalcMethod  string          `json:"calc_method" db:"calc_method"`
	Percentage  decimal.Decimal `json:"percentage" db:"percentage"`
	FixedAmount decimal.Decimal `json:"fixed_amount" db:"fixed_amount"`
	Mandatory   bool            `json:"mandatory" db:"mandatory"`
	Active      bool            `json:"active" db:"active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// AmountFor resolves the deduction amount against a gross salary.
func (t *DeductionType) AmountFor(gross decimal.Decimal) decimal.Decimal {
	if t.CalcMethod == CalcMethodPercentage {
		return gross.Mul(t.Percentage).Div(decimal.NewFromInt(100)).Round(2)
	}
	return t.FixedAmount.Round(2)
}

// EmployeeDeduction binds a DeductionType to one employee over an effective
// date range, with an optional custom override. At most one active enrollment
// of a given type may cover any day.
type EmployeeDeduction struct {
	ID                 uuid.UUID           `json:"id" db:"id"`
	EmployeeID         uuid.UUID           `json:"employee_id" db:"employee_id"`
	DeductionTypeID    uuid.UUID           `json:"deduction_type_id" db:"deduction_type_id"`
	OverrideAmount     decimal.NullDecimal `json:"override_amount,omitempty" db:"override_amount"`
	OverridePercentage decimal.NullDecimal `json:"override_percentage,omitempty" db:"override_percentage"`
	EffectiveFrom      time.Time           `json:"effective_from" db:"effective_from"`
	EffectiveTo        *time.Time          `json:"effective_to,omitempty" db:"effective_to"`
	Active             bool                `json:"active" db:"active"`
	CreatedAt          time.Time           `json:"created_at" db:"created_at"`
}

// CoversDate reports whether the enrollment is effective on the given day.
func (d *EmployeeDeduction) CoversDate(day time.Time) bool {
	if day.Before(d.EffectiveFrom) {
		return false
	}
	if d.EffectiveTo != nil && day.After(*d.EffectiveTo) {
		return false
	}
	return true
}

// AmountFor resolves the enrollment amount: custom override first, then the
// catalog type's default formula.
func (d *EmployeeDeduction) AmountFor(t *DeductionType, gross decimal.Decimal) decimal.Decimal {
	if d.OverrideAmount.Valid {
		return d.OverrideAmount.Decimal.Round(2)
	}
	if d.OverridePercentage.Valid {
		return gross.Mul(d.OverridePercentage.Decimal).Div(decimal.NewFromInt(100)).Round(2)
	}
	return t.AmountFor(gross)
}

// DTOs

type CreateDeductionTypeRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	CalcMethod  string          `json:"calc_method" validate:"required,oneof=percentage fixed"`
	Percentage  decimal.Decimal `json:"percentage"`
	FixedAmount decimal.Decimal `json:"fixed_amount"`
	Mandatory   bool            `json:"mandatory"`
}

type EnrollDeductionRequest struct {
	EmployeeID         string              `json:"employee_id" validate:"required,uuid4"`
	DeductionTypeID    string              `json:"deduction_type_id" validate:"required,uuid4"`
	OverrideAmount     decimal.NullDecimal `json:"override_amount"`
	OverridePercentage decimal.NullDecimal `json:"override_percentage"`
	EffectiveFrom      string              `json:"effective_from" validate:"required"`
	EffectiveTo        string              `json:"effective_to"`
}
