package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ContractMonthly = "monthly"
	ContractDaily   = "daily"
	ContractHourly  = "hourly"
)

const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
)

// JobPosition carries the salary figures a contract falls back to when the
// employee has no override.
type JobPosition struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	Title              string          `json:"title" db:"title"`
	ContractType       string          `json:"contract_type" db:"contract_type"`
	BaseSalary         decimal.Decimal `json:"base_salary" db:"base_salary"`
	HourlyRate         decimal.Decimal `json:"hourly_rate" db:"hourly_rate"`
	OvertimeMultiplier decimal.Decimal `json:"overtime_multiplier" db:"overtime_multiplier"`
}

// Employee is the master-data shape consumed from the employee directory
// collaborator; this engine never owns or mutates it.
type Employee struct {
	ID                 uuid.UUID           `json:"id" db:"id"`
	FullName           string              `json:"full_name" db:"full_name"`
	Status             string              `json:"status" db:"status"`
	BaseSalaryOverride decimal.NullDecimal `json:"base_salary_override" db:"base_salary_override"`
	HiredAt            time.Time           `json:"hired_at" db:"hired_at"`

	JobPosition *JobPosition `json:"job_position,omitempty" db:"-"`
}

// AttendanceSummary is the precomputed attendance record for one employee and
// one pay period, produced by the attendance collaborator.
type AttendanceSummary struct {
	DaysWorked       int             `json:"days_worked" db:"days_worked"`
	DaysAbsent       int             `json:"days_absent" db:"days_absent"`
	TotalWorkingDays int             `json:"total_working_days" db:"total_working_days"`
	LateDays         int             `json:"late_days" db:"late_days"`
	TotalHours       decimal.Decimal `json:"total_hours" db:"total_hours"`
	OvertimeHours    decimal.Decimal `json:"overtime_hours" db:"overtime_hours"`
}
