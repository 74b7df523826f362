package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ScheduleStatusPending = "pending"
	ScheduleStatusPaid    = "paid"
)

// RepaymentSchedule is one installment of a loan's amortization schedule.
// Rows only transition to paid through payslip finalization.
type RepaymentSchedule struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	LoanID            uuid.UUID       `json:"loan_id" db:"loan_id"`
	InstallmentNumber int             `json:"installment_number" db:"installment_number"`
	DueDate           time.Time       `json:"due_date" db:"due_date"`
	ScheduledAmount   decimal.Decimal `json:"scheduled_amount" db:"scheduled_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	PaymentDate       *time.Time      `json:"payment_date,omitempty" db:"payment_date"`
	Status            string          `json:"status" db:"status"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

type ScheduleResponse struct {
	LoanID   string               `json:"loan_id"`
	Schedule []*RepaymentSchedule `json:"schedule"`
}
