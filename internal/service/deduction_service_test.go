package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hrsuite/payroll-engine/internal/domain"
	"github.com/hrsuite/payroll-engine/internal/mocks"
	apperrors "github.com/hrsuite/payroll-engine/pkg/errors"
)

func periodSeptember() (time.Time, time.Time) {
	return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
}

func TestCalculateDeductions_AllCategories(t *testing.T) {
	mockDeductionRepo := &mocks.MockDeductionRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	service := &DeductionService{deductionRepo: mockDeductionRepo, loanRepo: mockLoanRepo, config: testConfig()}

	employee := &domain.Employee{ID: uuid.New()}
	gross := decimal.NewFromInt(2700)
	attendance := &domain.AttendanceSummary{
		DaysWorked:       18,
		DaysAbsent:       2,
		TotalWorkingDays: 20,
	}
	start, end := periodSeptember()

	taxType := &domain.DeductionType{
		ID:         uuid.New(),
		Name:       "Income tax",
		CalcMethod: domain.CalcMethodPercentage,
		Percentage: decimal.NewFromInt(10),
		Mandatory:  true,
		Active:     true,
	}

	loanID := uuid.New()
	loan := &domain.Loan{ID: loanID, TotalInstallments: 12}
	dueSchedule := &domain.RepaymentSchedule{
		ID:                uuid.New(),
		LoanID:            loanID,
		InstallmentNumber: 3,
		DueDate:           time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		ScheduledAmount:   decimal.NewFromInt(100),
		Status:            domain.ScheduleStatusPending,
	}
	paidSchedule := &domain.RepaymentSchedule{
		ID:              uuid.New(),
		LoanID:          loanID,
		DueDate:         time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
		ScheduledAmount: decimal.NewFromInt(100),
		Status:          domain.ScheduleStatusPaid,
	}

	mockDeductionRepo.On("ListActiveMandatoryTypes", mock.Anything).Return([]*domain.DeductionType{taxType}, nil)
	mockDeductionRepo.On("ListEnrollmentsForPeriod", mock.Anything, employee.ID, start, end).Return([]*domain.EmployeeDeduction{}, nil)
	mockLoanRepo.On("GetDueSchedules", mock.Anything, employee.ID, start, end).Return([]*domain.RepaymentSchedule{dueSchedule, paidSchedule}, nil)
	mockLoanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)

	deductions := service.CalculateDeductions(context.Background(), employee, gross, attendance, start, end)

	assert.Len(t, deductions, 3)

	byCategory := make(map[string]*domain.Deduction)
	for _, d := range deductions {
		byCategory[d.Category] = d
	}

	// 10% of 2700
	assert.True(t, byCategory[domain.DeductionCategoryMandatory].Amount.Equal(decimal.NewFromInt(270)))

	// (2700 / 18 days worked) * 2 days absent
	assert.True(t, byCategory[domain.DeductionCategoryAttendance].Amount.Equal(decimal.NewFromInt(300)))

	// only the pending installment contributes, with its schedule id attached
	loanLine := byCategory[domain.DeductionCategoryLoan]
	assert.True(t, loanLine.Amount.Equal(decimal.NewFromInt(100)))
	assert.NotNil(t, loanLine.SourceScheduleID)
	assert.Equal(t, dueSchedule.ID, *loanLine.SourceScheduleID)
}

func TestCalculateDeductions_CategoryFailureIsIsolated(t *testing.T) {
	mockDeductionRepo := &mocks.MockDeductionRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	service := &DeductionService{deductionRepo: mockDeductionRepo, loanRepo: mockLoanRepo, config: testConfig()}

	employee := &domain.Employee{ID: uuid.New()}
	attendance := &domain.AttendanceSummary{DaysWorked: 20, TotalWorkingDays: 20, LateDays: 2}
	start, end := periodSeptember()

	mockDeductionRepo.On("ListActiveMandatoryTypes", mock.Anything).Return(nil, errors.New("connection refused"))
	mockDeductionRepo.On("ListEnrollmentsForPeriod", mock.Anything, employee.ID, start, end).Return([]*domain.EmployeeDeduction{}, nil)
	mockLoanRepo.On("GetDueSchedules", mock.Anything, employee.ID, start, end).Return([]*domain.RepaymentSchedule{}, nil)

	deductions := service.CalculateDeductions(context.Background(), employee, decimal.NewFromInt(3000), attendance, start, end)

	// mandatory pass failed but the late penalty still lands: 10 * 2 days
	assert.Len(t, deductions, 1)
	assert.Equal(t, domain.DeductionCategoryAttendance, deductions[0].Category)
	assert.True(t, deductions[0].Amount.Equal(decimal.NewFromInt(20)))
}

func TestCanAffordLoanDeductions_Boundary(t *testing.T) {
	service := &DeductionService{config: testConfig()}

	gross := decimal.NewFromInt(2000)

	// exactly half of gross is still affordable
	assert.True(t, service.CanAffordLoanDeductions(gross, decimal.NewFromInt(1000)))
	assert.False(t, service.CanAffordLoanDeductions(gross, decimal.NewFromFloat(1000.01)))
}

func TestLoanDeductionTotal_OnlyLoanLines(t *testing.T) {
	service := &DeductionService{config: testConfig()}

	deductions := []*domain.Deduction{
		{Category: domain.DeductionCategoryMandatory, Amount: decimal.NewFromInt(270)},
		{Category: domain.DeductionCategoryLoan, Amount: decimal.NewFromInt(100)},
		{Category: domain.DeductionCategoryLoan, Amount: decimal.NewFromInt(50)},
	}

	total := service.LoanDeductionTotal(deductions)
	assert.True(t, total.Equal(decimal.NewFromInt(150)))
}

func TestCreateType_ValidatesPercentage(t *testing.T) {
	mockDeductionRepo := &mocks.MockDeductionRepository{}
	service := &DeductionService{deductionRepo: mockDeductionRepo, config: testConfig()}

	_, err := service.CreateType(context.Background(), &domain.CreateDeductionTypeRequest{
		Name:       "Broken",
		CalcMethod: domain.CalcMethodPercentage,
		Percentage: decimal.NewFromInt(120),
	})

	assert.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	mockDeductionRepo.AssertNotCalled(t, "CreateType", mock.Anything, mock.Anything)
}

func TestEnroll_RejectsOverlap(t *testing.T) {
	mockDeductionRepo := &mocks.MockDeductionRepository{}
	service := &DeductionService{deductionRepo: mockDeductionRepo, config: testConfig()}

	typeID := uuid.New()
	deductionType := &domain.DeductionType{ID: typeID, Name: "Union dues"}

	mockDeductionRepo.On("GetTypeByID", mock.Anything, typeID).Return(deductionType, nil)
	mockDeductionRepo.On("HasOverlappingEnrollment", mock.Anything, mock.Anything, typeID, mock.Anything, mock.Anything).Return(true, nil)

	_, err := service.Enroll(context.Background(), &domain.EnrollDeductionRequest{
		EmployeeID:      uuid.New().String(),
		DeductionTypeID: typeID.String(),
		EffectiveFrom:   "2026-09-01",
	})

	assert.Error(t, err)
	assert.True(t, apperrors.IsStateConflict(err))
	mockDeductionRepo.AssertNotCalled(t, "CreateEnrollment", mock.Anything, mock.Anything)
}
