package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PayslipStatusDraft        = "draft"
	PayslipStatusGenerated    = "generated"
	PayslipStatusSent         = "sent"
	PayslipStatusAcknowledged = "acknowledged"
)

// Payslip is the output aggregate for one employee and one pay period. It owns
// its earning, deduction and employer-contribution line items.
type Payslip struct {
	ID                         uuid.UUID       `json:"id" db:"id"`
	EmployeeID                 uuid.UUID       `json:"employee_id" db:"employee_id"`
	PayPeriodStart             time.Time       `json:"pay_period_start" db:"pay_period_start"`
	PayPeriodEnd               time.Time       `json:"pay_period_end" db:"pay_period_end"`
	PayDate                    time.Time       `json:"pay_date" db:"pay_date"`
	GrossSalary                decimal.Decimal `json:"gross_salary" db:"gross_salary"`
	TotalEarnings              decimal.Decimal `json:"total_earnings" db:"total_earnings"`
	TotalDeductions            decimal.Decimal `json:"total_deductions" db:"total_deductions"`
	TotalEmployerContributions decimal.Decimal `json:"total_employer_contributions" db:"total_employer_contributions"`
	NetPay                     decimal.Decimal `json:"net_pay" db:"net_pay"`
	DaysWorked                 int             `json:"days_worked" db:"days_worked"`
	DaysAbsent                 int             `json:"days_absent" db:"days_absent"`
	OvertimeHours              decimal.Decimal `json:"overtime_hours" db:"overtime_hours"`
	Status                     string          `json:"status" db:"status"`
	PDFPath                    *string         `json:"pdf_path,omitempty" db:"pdf_path"`
	CreatedBy                  string          `json:"created_by" db:"created_by"`
	GeneratedAt                *time.Time      `json:"generated_at,omitempty" db:"generated_at"`
	SentAt                     *time.Time      `json:"sent_at,omitempty" db:"sent_at"`
	AcknowledgedAt             *time.Time      `json:"acknowledged_at,omitempty" db:"acknowledged_at"`
	SettledAt                  *time.Time      `json:"settled_at,omitempty" db:"settled_at"`
	CreatedAt                  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at" db:"updated_at"`

	Earnings      []*Earning              `json:"earnings,omitempty" db:"-"`
	Deductions    []*Deduction            `json:"deductions,omitempty" db:"-"`
	Contributions []*EmployerContribution `json:"employer_contributions,omitempty" db:"-"`
}

// CanCancel reports whether the payslip may still be cancelled (deleted).
// Once sent or acknowledged it is immutable.
func (p *Payslip) CanCancel() bool {
	return p.Status == PayslipStatusDraft || p.Status == PayslipStatusGenerated
}

// CanTransitionTo enforces the draft -> generated -> sent -> acknowledged
// state machine.
func (p *Payslip) CanTransitionTo(next string) bool {
	switch p.Status {
	case PayslipStatusDraft:
		return next == PayslipStatusGenerated
	case PayslipStatusGenerated:
		return next == PayslipStatusSent
	case PayslipStatusSent:
		return next == PayslipStatusAcknowledged
	default:
		return false
	}
}

// Earning is one earning line item owned by a payslip.
type Earning struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	PayslipID   uuid.UUID       `json:"payslip_id" db:"payslip_id"`
	Description string          `json:"description" db:"description"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
}

// Deduction is one deduction line item owned by a payslip. Lines sourced from
// a loan installment carry the originating schedule id so settlement never
// depends on period arithmetic alone.
type Deduction struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	PayslipID        uuid.UUID       `json:"payslip_id" db:"payslip_id"`
	Category         string          `json:"category" db:"category"`
	Description      string          `json:"description" db:"description"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	SourceScheduleID *uuid.UUID      `json:"source_schedule_id,omitempty" db:"source_schedule_id"`
}

// EmployerContribution is a cost borne by the employer, computed alongside the
// payslip but never deducted from employee pay.
type EmployerContribution struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	PayslipID   uuid.UUID       `json:"payslip_id" db:"payslip_id"`
	Description string          `json:"description" db:"description"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
}

// DTOs

type GeneratePayslipRequest struct {
	EmployeeID  string `json:"employee_id" validate:"required,uuid4"`
	PeriodStart string `json:"period_start" validate:"required"`
	PeriodEnd   string `json:"period_end" validate:"required"`
	PayDate     string `json:"pay_date" validate:"required"`
}

type UpdatePayslipStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=generated sent acknowledged"`
}

type MonthlyRunRequest struct {
	YearMonth string `json:"year_month" validate:"required"`
	CreatedBy string `json:"created_by"`
}

type MonthlyRunResponse struct {
	YearMonth string     `json:"year_month"`
	Generated []*Payslip `json:"generated"`
	Skipped   int        `json:"skipped"`
	Failed    int        `json:"failed"`
}
