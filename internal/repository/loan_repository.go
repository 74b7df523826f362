package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/hrsuite/payroll-engine/internal/domain"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `
	id, employee_id, principal, remaining_balance, interest_rate, start_date, end_date,
	installment_amount, installment_frequency, total_installments, paid_installments,
	status, description, created_by, approved_by, approved_at, rejected_by, rejected_at,
	rejection_reason, created_at, updated_at
`

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES (:id, :employee_id, :principal, :remaining_balance, :interest_rate, :start_date,
			:end_date, :installment_amount, :installment_frequency, :total_installments,
			:paid_installments, :status, :description, :created_by, :approved_by, :approved_at,
			:rejected_by, :rejected_at, :rejection_reason, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, loan)
	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) GetByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE employee_id = $1 ORDER BY created_at DESC`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, employeeID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) GetPendingByEmployee(ctx context.Context, employeeID uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE employee_id = $1 AND status = $2 LIMIT 1`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, employeeID, domain.LoanStatusPending); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) SumOutstandingByEmployee(ctx context.Context, employeeID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(remaining_balance), 0)
		FROM loans
		WHERE employee_id = $1 AND status IN ($2, $3)
	`

	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total, query, employeeID, domain.LoanStatusPending, domain.LoanStatusActive)
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET principal = :principal, remaining_balance = :remaining_balance,
			interest_rate = :interest_rate, start_date = :start_date, end_date = :end_date,
			installment_amount = :installment_amount, installment_frequency = :installment_frequency,
			total_installments = :total_installments, paid_installments = :paid_installments,
			status = :status, description = :description, approved_by = :approved_by,
			approved_at = :approved_at, rejected_by = :rejected_by, rejected_at = :rejected_at,
			rejection_reason = :rejection_reason, updated_at = :updated_at
		WHERE id = :id
	`

	loan.UpdatedAt = time.Now()
	_, err := r.db.NamedExecContext(ctx, query, loan)
	return err
}

const scheduleColumns = `
	id, loan_id, installment_number, due_date, scheduled_amount, paid_amount,
	payment_date, status, created_at
`

func (r *loanRepository) ReplaceSchedule(ctx context.Context, loanID uuid.UUID, schedules []*domain.RepaymentSchedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM repayment_schedules WHERE loan_id = $1`, loanID); err != nil {
		return err
	}

	query := `
		INSERT INTO repayment_schedules (` + scheduleColumns + `)
		VALUES (:id, :loan_id, :installment_number, :due_date, :scheduled_amount,
			:paid_amount, :payment_date, :status, :created_at)
	`

	for _, schedule := range schedules {
		if _, err = tx.NamedExecContext(ctx, query, schedule); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) GetScheduleByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.RepaymentSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM repayment_schedules
		WHERE loan_id = $1
		ORDER BY installment_number
	`

	var schedules []*domain.RepaymentSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, loanID); err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *loanRepository) GetScheduleByID(ctx context.Context, scheduleID uuid.UUID) (*domain.RepaymentSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM repayment_schedules WHERE id = $1`

	var schedule domain.RepaymentSchedule
	if err := r.db.GetContext(ctx, &schedule, query, scheduleID); err != nil {
		return nil, err
	}

	return &schedule, nil
}

func (r *loanRepository) GetDueSchedules(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]*domain.RepaymentSchedule, error) {
	query := `
		SELECT rs.id, rs.loan_id, rs.installment_number, rs.due_date, rs.scheduled_amount,
			rs.paid_amount, rs.payment_date, rs.status, rs.created_at
		FROM repayment_schedules rs
		JOIN loans l ON l.id = rs.loan_id
		WHERE l.employee_id = $1 AND l.status = $2
			AND rs.due_date >= $3 AND rs.due_date <= $4
		ORDER BY rs.due_date, rs.installment_number
	`

	var schedules []*domain.RepaymentSchedule
	err := r.db.SelectContext(ctx, &schedules, query, employeeID, domain.LoanStatusActive, start, end)
	if err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *loanRepository) GetUpcomingSchedules(ctx context.Context, from, to time.Time) ([]*domain.RepaymentSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM repayment_schedules
		WHERE status = $1 AND due_date >= $2 AND due_date <= $3
		ORDER BY due_date
	`

	var schedules []*domain.RepaymentSchedule
	err := r.db.SelectContext(ctx, &schedules, query, domain.ScheduleStatusPending, from, to)
	if err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *loanRepository) ListOverdueLoans(ctx context.Context, asOf time.Time) ([]*domain.Loan, error) {
	query := `
		SELECT DISTINCT l.id, l.employee_id, l.principal, l.remaining_balance, l.interest_rate,
			l.start_date, l.end_date, l.installment_amount, l.installment_frequency,
			l.total_installments, l.paid_installments, l.status, l.description, l.created_by,
			l.approved_by, l.approved_at, l.rejected_by, l.rejected_at, l.rejection_reason,
			l.created_at, l.updated_at
		FROM loans l
		JOIN repayment_schedules rs ON rs.loan_id = l.id
		WHERE l.status = $1 AND rs.status = $2 AND rs.due_date < $3
		ORDER BY l.created_at
	`

	var loans []*domain.Loan
	err := r.db.SelectContext(ctx, &loans, query, domain.LoanStatusActive, domain.ScheduleStatusPending, asOf)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ApplyRepayment(ctx context.Context, loan *domain.Loan, schedule *domain.RepaymentSchedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Guard against a concurrent settlement of the same installment.
	res, err := tx.ExecContext(ctx, `
		UPDATE repayment_schedules
		SET status = $1, paid_amount = $2, payment_date = $3
		WHERE id = $4 AND status = $5
	`, schedule.Status, schedule.PaidAmount, schedule.PaymentDate, schedule.ID, domain.ScheduleStatusPending)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.New("schedule row no longer pending")
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE loans
		SET remaining_balance = $1, paid_installments = $2, status = $3, updated_at = $4
		WHERE id = $5
	`, loan.RemainingBalance, loan.PaidInstallments, loan.Status, time.Now(), loan.ID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// IsNoRows reports whether a repository error means "no such row".
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
