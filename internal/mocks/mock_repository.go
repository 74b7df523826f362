package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/hrsuite/payroll-engine/internal/domain"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*domain.Loan, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetPendingByEmployee(ctx context.Context, employeeID uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) SumOutstandingByEmployee(ctx context.Context, employeeID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, employeeID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLoanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) ReplaceSchedule(ctx context.Context, loanID uuid.UUID, schedules []*domain.RepaymentSchedule) error {
	args := m.Called(ctx, loanID, schedules)
	return args.Error(0)
}

func (m *MockLoanRepository) GetScheduleByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.RepaymentSchedule, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RepaymentSchedule), args.Error(1)
}

func (m *MockLoanRepository) GetScheduleByID(ctx context.Context, scheduleID uuid.UUID) (*domain.RepaymentSchedule, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepaymentSchedule), args.Error(1)
}

func (m *MockLoanRepository) GetDueSchedules(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]*domain.RepaymentSchedule, error) {
	args := m.Called(ctx, employeeID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RepaymentSchedule), args.Error(1)
}

func (m *MockLoanRepository) GetUpcomingSchedules(ctx context.Context, from, to time.Time) ([]*domain.RepaymentSchedule, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RepaymentSchedule), args.Error(1)
}

func (m *MockLoanRepository) ListOverdueLoans(ctx context.Context, asOf time.Time) ([]*domain.Loan, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ApplyRepayment(ctx context.Context, loan *domain.Loan, schedule *domain.RepaymentSchedule) error {
	args := m.Called(ctx, loan, schedule)
	return args.Error(0)
}

type MockDeductionRepository struct {
	mock.Mock
}

func (m *MockDeductionRepository) CreateType(ctx context.Context, deductionType *domain.DeductionType) error {
	args := m.Called(ctx, deductionType)
	return args.Error(0)
}

func (m *MockDeductionRepository) GetTypeByID(ctx context.Context, id uuid.UUID) (*domain.DeductionType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeductionType), args.Error(1)
}

func (m *MockDeductionRepository) ListTypes(ctx context.Context) ([]*domain.DeductionType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DeductionType), args.Error(1)
}

func (m *MockDeductionRepository) ListActiveMandatoryTypes(ctx context.Context) ([]*domain.DeductionType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DeductionType), args.Error(1)
}

func (m *MockDeductionRepository) CreateEnrollment(ctx context.Context, enrollment *domain.EmployeeDeduction) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *MockDeductionRepository) ListEnrollmentsForPeriod(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]*domain.EmployeeDeduction, error) {
	args := m.Called(ctx, employeeID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EmployeeDeduction), args.Error(1)
}

func (m *MockDeductionRepository) HasOverlappingEnrollment(ctx context.Context, employeeID, typeID uuid.UUID, from time.Time, to *time.Time) (bool, error) {
	args := m.Called(ctx, employeeID, typeID, from, to)
	return args.Bool(0), args.Error(1)
}

type MockPayslipRepository struct {
	mock.Mock
}

func (m *MockPayslipRepository) Create(ctx context.Context, payslip *domain.Payslip) error {
	args := m.Called(ctx, payslip)
	return args.Error(0)
}

func (m *MockPayslipRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payslip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payslip), args.Error(1)
}

func (m *MockPayslipRepository) ExistsForPeriod(ctx context.Context, employeeID uuid.UUID, start, end time.Time) (bool, error) {
	args := m.Called(ctx, employeeID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *MockPayslipRepository) UpdateStatus(ctx context.Context, payslip *domain.Payslip) error {
	args := m.Called(ctx, payslip)
	return args.Error(0)
}

func (m *MockPayslipRepository) MarkSettled(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockPayslipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
