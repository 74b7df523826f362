package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hrsuite/payroll-engine/internal/domain"
)

type payslipRepository struct {
	db *sqlx.DB
}

func NewPayslipRepository(db *sqlx.DB) PayslipRepository {
	return &payslipRepository{db: db}
}

const payslipColumns = `
	id, employee_id, pay_period_start, pay_period_end, pay_date, gross_salary,
	total_earnings, total_deductions, total_employer_contributions, net_pay,
	days_worked, days_absent, overtime_hours, status, pdf_path, created_by,
	generated_at, sent_at, acknowledged_at, settled_at, created_at, updated_at
`

func (r *payslipRepository) Create(ctx context.Context, payslip *domain.Payslip) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO payslips (` + payslipColumns + `)
		VALUES (:id, :employee_id, :pay_period_start, :pay_period_end, :pay_date, :gross_salary,
			:total_earnings, :total_deductions, :total_employer_contributions, :net_pay,
			:days_worked, :days_absent, :overtime_hours, :status, :pdf_path, :created_by,
			:generated_at, :sent_at, :acknowledged_at, :settled_at, :created_at, :updated_at)
	`

	if _, err = tx.NamedExecContext(ctx, query, payslip); err != nil {
		return err
	}

	for _, earning := range payslip.Earnings {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO payslip_earnings (id, payslip_id, description, amount)
			VALUES ($1, $2, $3, $4)
		`, earning.ID, earning.PayslipID, earning.Description, earning.Amount)
		if err != nil {
			return err
		}
	}

	for _, deduction := range payslip.Deductions {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO payslip_deductions (id, payslip_id, category, description, amount, source_schedule_id)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, deduction.ID, deduction.PayslipID, deduction.Category, deduction.Description,
			deduction.Amount, deduction.SourceScheduleID)
		if err != nil {
			return err
		}
	}

	for _, contribution := range payslip.Contributions {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO payslip_employer_contributions (id, payslip_id, description, amount)
			VALUES ($1, $2, $3, $4)
		`, contribution.ID, contribution.PayslipID, contribution.Description, contribution.Amount)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *payslipRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payslip, error) {
	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE id = $1`

	var payslip domain.Payslip
	if err := r.db.GetContext(ctx, &payslip, query, id); err != nil {
		return nil, err
	}

	err := r.db.SelectContext(ctx, &payslip.Earnings, `
		SELECT id, payslip_id, description, amount
		FROM payslip_earnings WHERE payslip_id = $1 ORDER BY description
	`, id)
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &payslip.Deductions, `
		SELECT id, payslip_id, category, description, amount, source_schedule_id
		FROM payslip_deductions WHERE payslip_id = $1 ORDER BY category, description
	`, id)
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &payslip.Contributions, `
		SELECT id, payslip_id, description, amount
		FROM payslip_employer_contributions WHERE payslip_id = $1 ORDER BY description
	`, id)
	if err != nil {
		return nil, err
	}

	return &payslip, nil
}

func (r *payslipRepository) ExistsForPeriod(ctx context.Context, employeeID uuid.UUID, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM payslips
			WHERE employee_id = $1 AND pay_period_start = $2 AND pay_period_end = $3
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, employeeID, start, end); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *payslipRepository) UpdateStatus(ctx context.Context, payslip *domain.Payslip) error {
	query := `
		UPDATE payslips
		SET status = :status, pdf_path = :pdf_path, generated_at = :generated_at,
			sent_at = :sent_at, acknowledged_at = :acknowledged_at, updated_at = :updated_at
		WHERE id = :id
	`

	payslip.UpdatedAt = time.Now()
	_, err := r.db.NamedExecContext(ctx, query, payslip)
	return err
}

func (r *payslipRepository) MarkSettled(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payslips
		SET settled_at = $1, updated_at = $1
		WHERE id = $2 AND settled_at IS NULL
	`, at, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *payslipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"payslip_earnings", "payslip_deductions", "payslip_employer_contributions"} {
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE payslip_id = $1`, id); err != nil {
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM payslips WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit()
}
