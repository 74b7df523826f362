package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hrsuite/payroll-engine/internal/domain"
)

// sqlEmployeeDirectory reads employee master data straight from the shared ERP
// schema. It is a thin lookup adapter, not an owner of the data.
type sqlEmployeeDirectory struct {
	db *sqlx.DB
}

func NewEmployeeDirectory(db *sqlx.DB) EmployeeDirectory {
	return &sqlEmployeeDirectory{db: db}
}

const employeeQuery = `
	SELECT e.id, e.full_name, e.status, e.base_salary_override, e.hired_at,
		p.id AS position_id, p.title AS position_title, p.contract_type,
		p.base_salary AS position_salary, p.hourly_rate AS position_hourly_rate,
		p.overtime_multiplier AS position_overtime_multiplier
	FROM employees e
	JOIN job_positions p ON p.id = e.job_position_id
`

func (d *sqlEmployeeDirectory) GetEmployee(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	var employee domain.Employee
	var position domain.JobPosition

	row := d.db.QueryRowxContext(ctx, employeeQuery+` WHERE e.id = $1`, id)
	err := row.Scan(
		&employee.ID, &employee.FullName, &employee.Status, &employee.BaseSalaryOverride,
		&employee.HiredAt, &position.ID, &position.Title, &position.ContractType,
		&position.BaseSalary, &position.HourlyRate, &position.OvertimeMultiplier,
	)
	if err != nil {
		return nil, err
	}

	employee.JobPosition = &position
	return &employee, nil
}

func (d *sqlEmployeeDirectory) ListActiveEmployees(ctx context.Context) ([]*domain.Employee, error) {
	rows, err := d.db.QueryxContext(ctx, employeeQuery+` WHERE e.status = $1 ORDER BY e.full_name`, domain.EmployeeStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*domain.Employee
	for rows.Next() {
		var employee domain.Employee
		var position domain.JobPosition

		err = rows.Scan(
			&employee.ID, &employee.FullName, &employee.Status, &employee.BaseSalaryOverride,
			&employee.HiredAt, &position.ID, &position.Title, &position.ContractType,
			&position.BaseSalary, &position.HourlyRate, &position.OvertimeMultiplier,
		)
		if err != nil {
			return nil, err
		}

		employee.JobPosition = &position
		employees = append(employees, &employee)
	}

	return employees, rows.Err()
}
