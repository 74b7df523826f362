package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/hrsuite/payroll-engine/internal/domain"
	apperrors "github.com/hrsuite/payroll-engine/pkg/errors"
)

func monthlyEmployee(base int64) *domain.Employee {
	return &domain.Employee{
		ID: uuid.New(),
		JobPosition: &domain.JobPosition{
			ID:           uuid.New(),
			ContractType: domain.ContractMonthly,
			BaseSalary:   decimal.NewFromInt(base),
		},
	}
}

func TestCalculateGrossSalary_MonthlyProrated(t *testing.T) {
	service := &SalaryService{config: testConfig()}

	employee := monthlyEmployee(3000)
	attendance := &domain.AttendanceSummary{
		DaysWorked:       18,
		DaysAbsent:       2,
		TotalWorkingDays: 20,
	}

	gross, err := service.CalculateGrossSalary(employee, attendance)

	assert.NoError(t, err)
	assert.True(t, gross.Equal(decimal.NewFromInt(2700)), "got %s", gross)
}

func TestCalculateGrossSalary_FullMonth(t *testing.T) {
	service := &SalaryService{config: testConfig()}

	employee := monthlyEmployee(3000)
	attendance := &domain.AttendanceSummary{
		DaysWorked:       20,
		TotalWorkingDays: 20,
	}

	gross, err := service.CalculateGrossSalary(employee, attendance)

	assert.NoError(t, err)
	assert.True(t, gross.Equal(decimal.NewFromInt(3000)))
}

func TestCalculateGrossSalary_DailyContract(t *testing.T) {
	service := &SalaryService{config: testConfig()}

	employee := &domain.Employee{
		ID: uuid.New(),
		JobPosition: &domain.JobPosition{
			ContractType: domain.ContractDaily,
			BaseSalary:   decimal.NewFromInt(150),
		},
	}
	attendance := &domain.AttendanceSummary{DaysWorked: 17}

	gross, err := service.CalculateGrossSalary(employee, attendance)

	assert.NoError(t, err)
	assert.True(t, gross.Equal(decimal.NewFromInt(2550)))
}

func TestCalculateGrossSalary_HourlyContract(t *testing.T) {
	service := &SalaryService{config: testConfig()}

	employee := &domain.Employee{
		ID: uuid.New(),
		JobPosition: &domain.JobPosition{
			ContractType: domain.ContractHourly,
			HourlyRate:   decimal.NewFromFloat(18.50),
		},
	}
	attendance := &domain.AttendanceSummary{TotalHours: decimal.NewFromInt(160)}

	gross, err := service.CalculateGrossSalary(employee, attendance)

	assert.NoError(t, err)
	assert.True(t, gross.Equal(decimal.NewFromInt(2960)))
}

func TestCalculateGrossSalary_SalaryOverrideWins(t *testing.T) {
	service := &SalaryService{config: testConfig()}

	employee := monthlyEmployee(3000)
	employee.BaseSalaryOverride = decimal.NewNullDecimal(decimal.NewFromInt(3600))
	attendance := &domain.AttendanceSummary{DaysWorked: 20, TotalWorkingDays: 20}

	gross, err := service.CalculateGrossSalary(employee, attendance)

	assert.NoError(t, err)
	assert.True(t, gross.Equal(decimal.NewFromInt(3600)))
}

func TestCalculateGrossSalary_MissingPosition(t *testing.T) {
	service := &SalaryService{config: testConfig()}

	employee := &domain.Employee{ID: uuid.New()}
	attendance := &domain.AttendanceSummary{DaysWorked: 20, TotalWorkingDays: 20}

	_, err := service.CalculateGrossSalary(employee, attendance)

	assert.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCalculateEarnings_NoOvertimeNoLines(t *testing.T) {
	service := &SalaryService{config: testConfig()}

	earnings, err := service.CalculateEarnings(monthlyEmployee(3000), &domain.AttendanceSummary{})

	assert.NoError(t, err)
	assert.Empty(t, earnings)
}

func TestCalculateEarnings_HourlyOvertime(t *testing.T) {
	service := &SalaryService{config: testConfig()}

	employee := &domain.Employee{
		ID: uuid.New(),
		JobPosition: &domain.JobPosition{
			ContractType: domain.ContractHourly,
			HourlyRate:   decimal.NewFromInt(10),
		},
	}
	attendance := &domain.AttendanceSummary{OvertimeHours: decimal.NewFromInt(10)}

	earnings, err := service.CalculateEarnings(employee, attendance)

	assert.NoError(t, err)
	assert.Len(t, earnings, 1)
	// 10/h * 1.5 * 10h
	assert.True(t, earnings[0].Amount.Equal(decimal.NewFromInt(150)))
}

func TestCalculateEarnings_ImpliedHourlyRate(t *testing.T) {
	service := &SalaryService{config: testConfig()}

	employee := monthlyEmployee(3200)
	attendance := &domain.AttendanceSummary{OvertimeHours: decimal.NewFromInt(8)}

	earnings, err := service.CalculateEarnings(employee, attendance)

	assert.NoError(t, err)
	assert.Len(t, earnings, 1)
	// 3200/160 = 20/h, * 1.5 * 8h
	assert.True(t, earnings[0].Amount.Equal(decimal.NewFromInt(240)))
}

func TestCalculateEarnings_PositionMultiplierOverride(t *testing.T) {
	service := &SalaryService{config: testConfig()}

	employee := &domain.Employee{
		ID: uuid.New(),
		JobPosition: &domain.JobPosition{
			ContractType:       domain.ContractHourly,
			HourlyRate:         decimal.NewFromInt(10),
			OvertimeMultiplier: decimal.NewFromInt(2),
		},
	}
	attendance := &domain.AttendanceSummary{OvertimeHours: decimal.NewFromInt(5)}

	earnings, err := service.CalculateEarnings(employee, attendance)

	assert.NoError(t, err)
	assert.True(t, earnings[0].Amount.Equal(decimal.NewFromInt(100)))
}

func TestCalculateEmployerContributions(t *testing.T) {
	service := &SalaryService{config: testConfig()}

	contributions := service.CalculateEmployerContributions(monthlyEmployee(3000), decimal.NewFromInt(2700))

	assert.Len(t, contributions, 2)
	// 15% and 5% of gross
	assert.True(t, contributions[0].Amount.Equal(decimal.NewFromInt(405)))
	assert.True(t, contributions[1].Amount.Equal(decimal.NewFromInt(135)))
}
