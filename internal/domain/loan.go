package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusPending   = "pending"
	LoanStatusActive    = "active"
	LoanStatusRejected  = "rejected"
	LoanStatusCancelled = "cancelled"
	LoanStatusCompleted = "completed"
)

const (
	FrequencyMonthly = "monthly"
	FrequencyWeekly  = "weekly" // deprecated by business rule, still accepted
)

// Loan represents a borrowing agreement for one employee. The interest rate is
// informational: amortization is flat-installment, the rate is never compounded
// into the schedule.
type Loan struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	EmployeeID           uuid.UUID       `json:"employee_id" db:"employee_id"`
	Principal            decimal.Decimal `json:"principal" db:"principal"`
	RemainingBalance     decimal.Decimal `json:"remaining_balance" db:"remaining_balance"`
	InterestRate         decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	StartDate            time.Time       `json:"start_date" db:"start_date"`
	EndDate              time.Time       `json:"end_date" db:"end_date"`
	InstallmentAmount    decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	InstallmentFrequency string          `json:"installment_frequency" db:"installment_frequency"`
	TotalInstallments    int             `json:"total_installments" db:"total_installments"`
	PaidInstallments     int             `json:"paid_installments" db:"paid_installments"`
	Status               string          `json:"status" db:"status"`
	Description          string          `json:"description" db:"description"`
	CreatedBy            string          `json:"created_by" db:"created_by"`
	ApprovedBy           *string         `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt           *time.Time      `json:"approved_at,omitempty" db:"approved_at"`
	RejectedBy           *string         `json:"rejected_by,omitempty" db:"rejected_by"`
	RejectedAt           *time.Time      `json:"rejected_at,omitempty" db:"rejected_at"`
	RejectionReason      *string         `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether the loan can no longer change state.
func (l *Loan) IsTerminal() bool {
	return l.Status == LoanStatusRejected ||
		l.Status == LoanStatusCancelled ||
		l.Status == LoanStatusCompleted
}

// IsOutstanding reports whether the loan still counts toward the employee's
// exposure limit.
func (l *Loan) IsOutstanding() bool {
	return l.Status == LoanStatusPending || l.Status == LoanStatusActive
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	EmployeeID           string          `json:"employee_id" validate:"required,uuid4"`
	Principal            decimal.Decimal `json:"principal" validate:"required"`
	InterestRate         decimal.Decimal `json:"interest_rate"`
	StartDate            string          `json:"start_date" validate:"required"`
	EndDate              string          `json:"end_date" validate:"required"`
	InstallmentAmount    decimal.Decimal `json:"installment_amount" validate:"required"`
	InstallmentFrequency string          `json:"installment_frequency" validate:"required"`
	TotalInstallments    int             `json:"total_installments" validate:"required"`
	Description          string          `json:"description"`
}

type ReviewLoanRequest struct {
	Reviewer string `json:"reviewer" validate:"required"`
	Reason   string `json:"reason"`
}

type RecordRepaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type LoanResponse struct {
	Loan *Loan `json:"loan"`
	// SchedulePending is true when the loan was persisted but its repayment
	// schedule has not been generated yet.
	SchedulePending bool                 `json:"schedule_pending"`
	Schedule        []*RepaymentSchedule `json:"schedule,omitempty"`
}

type OutstandingResponse struct {
	EmployeeID  string          `json:"employee_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
}
