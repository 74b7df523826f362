package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hrsuite/payroll-engine/internal/domain"
)

// LoanRepository defines the interface for loan and repayment-schedule data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// GetByEmployee retrieves all loans for an employee
	GetByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*domain.Loan, error)

	// GetPendingByEmployee retrieves the employee's pending loan, if any
	GetPendingByEmployee(ctx context.Context, employeeID uuid.UUID) (*domain.Loan, error)

	// SumOutstandingByEmployee totals remaining balances across the employee's
	// non-terminal loans
	SumOutstandingByEmployee(ctx context.Context, employeeID uuid.UUID) (decimal.Decimal, error)

	// Update updates a loan's mutable fields
	Update(ctx context.Context, loan *domain.Loan) error

	// ReplaceSchedule deletes any existing schedule rows for the loan and
	// inserts the new ones in a single transaction
	ReplaceSchedule(ctx context.Context, loanID uuid.UUID, schedules []*domain.RepaymentSchedule) error

	// GetScheduleByLoanID retrieves a loan's schedule ordered by installment
	GetScheduleByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.RepaymentSchedule, error)

	// GetScheduleByID retrieves a single schedule row
	GetScheduleByID(ctx context.Context, scheduleID uuid.UUID) (*domain.RepaymentSchedule, error)

	// GetDueSchedules retrieves every schedule row for the employee's loans with
	// a due date inside [start, end], any status
	GetDueSchedules(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]*domain.RepaymentSchedule, error)

	// GetUpcomingSchedules retrieves pending schedule rows due in [from, to]
	// across all loans
	GetUpcomingSchedules(ctx context.Context, from, to time.Time) ([]*domain.RepaymentSchedule, error)

	// ListOverdueLoans retrieves active loans with at least one pending
	// installment past due
	ListOverdueLoans(ctx context.Context, asOf time.Time) ([]*domain.Loan, error)

	// ApplyRepayment marks the schedule row paid and updates the loan's balance
	// and counters in one transaction; the two writes are atomic
	ApplyRepayment(ctx context.Context, loan *domain.Loan, schedule *domain.RepaymentSchedule) error
}

// DeductionRepository defines the interface for the deduction catalog and
// employee enrollments
type DeductionRepository interface {
	// CreateType creates a deduction catalog entry
	CreateType(ctx context.Context, deductionType *domain.DeductionType) error

	// GetTypeByID retrieves a catalog entry
	GetTypeByID(ctx context.Context, id uuid.UUID) (*domain.DeductionType, error)

	// ListTypes retrieves the whole catalog
	ListTypes(ctx context.Context) ([]*domain.DeductionType, error)

	// ListActiveMandatoryTypes retrieves active catalog entries flagged mandatory
	ListActiveMandatoryTypes(ctx context.Context) ([]*domain.DeductionType, error)

	// CreateEnrollment binds a deduction type to an employee
	CreateEnrollment(ctx context.Context, enrollment *domain.EmployeeDeduction) error

	// ListEnrollmentsForPeriod retrieves the employee's active enrollments whose
	// effective range overlaps [start, end]
	ListEnrollmentsForPeriod(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]*domain.EmployeeDeduction, error)

	// HasOverlappingEnrollment reports whether an active enrollment of the same
	// type already covers any day of the given range
	HasOverlappingEnrollment(ctx context.Context, employeeID, typeID uuid.UUID, from time.Time, to *time.Time) (bool, error)
}

// PayslipRepository defines the interface for payslip aggregate persistence
type PayslipRepository interface {
	// Create persists the payslip and all owned line items in one transaction
	Create(ctx context.Context, payslip *domain.Payslip) error

	// GetByID retrieves the payslip with its line items
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payslip, error)

	// ExistsForPeriod reports whether a payslip already exists for the employee
	// and exact pay period
	ExistsForPeriod(ctx context.Context, employeeID uuid.UUID, start, end time.Time) (bool, error)

	// UpdateStatus persists a status transition and its timestamps
	UpdateStatus(ctx context.Context, payslip *domain.Payslip) error

	// MarkSettled stamps settled_at if and only if it is still null; returns
	// false when the payslip was already settled
	MarkSettled(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// Delete removes the payslip and its line items
	Delete(ctx context.Context, id uuid.UUID) error
}
