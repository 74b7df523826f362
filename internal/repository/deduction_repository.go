package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hrsuite/payroll-engine/internal/domain"
)

type deductionRepository struct {
	db *sqlx.DB
}

func NewDeductionRepository(db *sqlx.DB) DeductionRepository {
	return &deductionRepository{db: db}
}

const deductionTypeColumns = `
	id, name, description, calc_method, percentage, fixed_amount, mandatory, active,
	created_at, updated_at
`

func (r *deductionRepository) CreateType(ctx context.Context, deductionType *domain.DeductionType) error {
	query := `
		INSERT INTO deduction_types (` + deductionTypeColumns + `)
		VALUES (:id, :name, :description, :calc_method, :percentage, :fixed_amount,
			:mandatory, :active, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, deductionType)
	return err
}

func (r *deductionRepository) GetTypeByID(ctx context.Context, id uuid.UUID) (*domain.DeductionType, error) {
	query := `SELECT ` + deductionTypeColumns + ` FROM deduction_types WHERE id = $1`

	var deductionType domain.DeductionType
	if err := r.db.GetContext(ctx, &deductionType, query, id); err != nil {
		return nil, err
	}

	return &deductionType, nil
}

func (r *deductionRepository) ListTypes(ctx context.Context) ([]*domain.DeductionType, error) {
	query := `SELECT ` + deductionTypeColumns + ` FROM deduction_types ORDER BY name`

	var types []*domain.DeductionType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, err
	}

	return types, nil
}

func (r *deductionRepository) ListActiveMandatoryTypes(ctx context.Context) ([]*domain.DeductionType, error) {
	query := `
		SELECT ` + deductionTypeColumns + `
		FROM deduction_types
		WHERE mandatory = TRUE AND active = TRUE
		ORDER BY name
	`

	var types []*domain.DeductionType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, err
	}

	return types, nil
}

const enrollmentColumns = `
	id, employee_id, deduction_type_id, override_amount, override_percentage,
	effective_from, effective_to, active, created_at
`

func (r *deductionRepository) CreateEnrollment(ctx context.Context, enrollment *domain.EmployeeDeduction) error {
	query := `
		INSERT INTO employee_deductions (` + enrollmentColumns + `)
		VALUES (:id, :employee_id, :deduction_type_id, :override_amount, :override_percentage,
			:effective_from, :effective_to, :active, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, enrollment)
	return err
}

func (r *deductionRepository) ListEnrollmentsForPeriod(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]*domain.EmployeeDeduction, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM employee_deductions
		WHERE employee_id = $1 AND active = TRUE
			AND effective_from <= $3
			AND (effective_to IS NULL OR effective_to >= $2)
		ORDER BY effective_from
	`

	var enrollments []*domain.EmployeeDeduction
	if err := r.db.SelectContext(ctx, &enrollments, query, employeeID, start, end); err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *deductionRepository) HasOverlappingEnrollment(ctx context.Context, employeeID, typeID uuid.UUID, from time.Time, to *time.Time) (bool, error) {
	// An open-ended range overlaps everything from its start onward.
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM employee_deductions
			WHERE employee_id = $1 AND deduction_type_id = $2 AND active = TRUE
				AND ($4::date IS NULL OR effective_from <= $4)
				AND (effective_to IS NULL OR effective_to >= $3)
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, employeeID, typeID, from, to); err != nil {
		return false, err
	}

	return exists, nil
}
