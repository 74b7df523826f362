package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hrsuite/payroll-engine/internal/config"
	"github.com/hrsuite/payroll-engine/internal/domain"
	apperrors "github.com/hrsuite/payroll-engine/pkg/errors"
)

// SalaryService computes gross salary, earnings and employer contributions
// from contract terms and an attendance summary. It is pure calculation, no
// persistence.
type SalaryService struct {
	config *config.Config
}

func NewSalaryService(cfg *config.Config) *SalaryService {
	return &SalaryService{config: cfg}
}

// CalculateGrossSalary prorates the employee's base figure by contract type:
// monthly contracts by days worked over working days, daily contracts by days
// worked, hourly contracts by hours worked.
func (s *SalaryService) CalculateGrossSalary(employee *domain.Employee, attendance *domain.AttendanceSummary) (decimal.Decimal, error) {
	position := employee.JobPosition
	if position == nil {
		return decimal.Zero, apperrors.NewValidationError(
			fmt.Sprintf("employee %s has no job position", employee.ID))
	}

	switch position.ContractType {
	case domain.ContractMonthly:
		monthly, err := s.resolveBaseSalary(employee)
		if err != nil {
			return decimal.Zero, err
		}
		if attendance.TotalWorkingDays <= 0 {
			return decimal.Zero, apperrors.NewValidationError(
				"attendance summary has no working days")
		}
		dailyRate := monthly.Div(decimal.NewFromInt(int64(attendance.TotalWorkingDays)))
		return dailyRate.Mul(decimal.NewFromInt(int64(attendance.DaysWorked))).Round(2), nil

	case domain.ContractDaily:
		dailyRate, err := s.resolveBaseSalary(employee)
		if err != nil {
			return decimal.Zero, err
		}
		return dailyRate.Mul(decimal.NewFromInt(int64(attendance.DaysWorked))).Round(2), nil

	case domain.ContractHourly:
		if position.HourlyRate.IsZero() {
			return decimal.Zero, apperrors.NewValidationError(
				fmt.Sprintf("employee %s has no hourly rate", employee.ID))
		}
		return position.HourlyRate.Mul(attendance.TotalHours).Round(2), nil

	default:
		return decimal.Zero, apperrors.NewValidationError(
			fmt.Sprintf("unknown contract type %q", position.ContractType))
	}
}

// CalculateEarnings returns the earning line items for the period. Overtime is
// the only earning source: hourly contracts use their hourly rate, other
// contracts derive an implied hourly rate from the monthly base.
func (s *SalaryService) CalculateEarnings(employee *domain.Employee, attendance *domain.AttendanceSummary) ([]*domain.Earning, error) {
	if attendance.OvertimeHours.LessThanOrEqual(decimal.Zero) {
		return nil, nil
	}

	position := employee.JobPosition
	if position == nil {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("employee %s has no job position", employee.ID))
	}

	var rate decimal.Decimal
	if position.ContractType == domain.ContractHourly {
		rate = position.HourlyRate
	} else {
		base, err := s.resolveBaseSalary(employee)
		if err != nil {
			return nil, err
		}
		rate = base.Div(s.config.ImpliedMonthlyHours())
	}

	multiplier := position.OvertimeMultiplier
	if multiplier.LessThanOrEqual(decimal.Zero) {
		multiplier = s.config.OvertimeMultiplier()
	}

	amount := rate.Mul(multiplier).Mul(attendance.OvertimeHours).Round(2)
	earning := &domain.Earning{
		ID:          uuid.New(),
		Description: fmt.Sprintf("Overtime (%s h at %sx)", attendance.OvertimeHours.String(), multiplier.String()),
		Amount:      amount,
	}

	return []*domain.Earning{earning}, nil
}

// CalculateEmployerContributions computes the employer-side costs attached to
// a payslip; they are never deducted from employee pay.
func (s *SalaryService) CalculateEmployerContributions(employee *domain.Employee, gross decimal.Decimal) []*domain.EmployerContribution {
	hundred := decimal.NewFromInt(100)
	ssRate := s.config.SocialSecurityRate()
	hiRate := s.config.HealthInsuranceRate()

	return []*domain.EmployerContribution{
		{
			ID:          uuid.New(),
			Description: fmt.Sprintf("Social security (%s%%)", ssRate.String()),
			Amount:      gross.Mul(ssRate).Div(hundred).Round(2),
		},
		{
			ID:          uuid.New(),
			Description: fmt.Sprintf("Health insurance (%s%%)", hiRate.String()),
			Amount:      gross.Mul(hiRate).Div(hundred).Round(2),
		},
	}
}

// resolveBaseSalary prefers the employee's override, falling back to the job
// position's base figure.
func (s *SalaryService) resolveBaseSalary(employee *domain.Employee) (decimal.Decimal, error) {
	if employee.BaseSalaryOverride.Valid && employee.BaseSalaryOverride.Decimal.GreaterThan(decimal.Zero) {
		return employee.BaseSalaryOverride.Decimal, nil
	}

	position := employee.JobPosition
	if position == nil || position.BaseSalary.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperrors.NewValidationError(
			fmt.Sprintf("no salary figure resolvable for employee %s", employee.ID))
	}

	return position.BaseSalary, nil
}
