package service

import (
	"context"
	"database/sql"
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

type payslipFixture struct {
	payslipRepo   *mocks.MockPayslipRepository
	loanRepo      *mocks.MockLoanRepository
	deductionRepo *mocks.MockDeductionRepository
	employees     *mocks.MockEmployeeDirectory
	attendance    *mocks.MockAttendanceProvider
	renderer      *mocks.MockDocumentRenderer
	notifier      *mocks.MockNotificationSink
	service       *PayslipService
}

func newPayslipFixture() *payslipFixture {
	f := &payslipFixture{
		payslipRepo:   &mocks.MockPayslipRepository{},
		loanRepo:      &mocks.MockLoanRepository{},
		deductionRepo: &mocks.MockDeductionRepository{},
		employees:     &mocks.MockEmployeeDirectory{},
		attendance:    &mocks.MockAttendanceProvider{},
		renderer:      &mocks.MockDocumentRenderer{},
		notifier:      &mocks.MockNotificationSink{},
	}

	cfg := testConfig()
	f.service = &PayslipService{
		payslipRepo: f.payslipRepo,
		salary:      &SalaryService{config: cfg},
		deductions:  &DeductionService{deductionRepo: f.deductionRepo, loanRepo: f.loanRepo, config: cfg},
		loans:       &LoanService{loanRepo: f.loanRepo, config: cfg},
		employees:   f.employees,
		attendance:  f.attendance,
		renderer:    f.renderer,
		notifier:    f.notifier,
		config:      cfg,
	}

	return f
}

func TestGeneratePayslip_Success(t *testing.T) {
	f := newPayslipFixture()

	employeeID := uuid.New()
	employee := &domain.Employee{
		ID: employeeID,
		JobPosition: &domain.JobPosition{
			ContractType: domain.ContractMonthly,
			BaseSalary:   decimal.NewFromInt(3000),
		},
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
	dueSchedule := &domain.RepaymentSchedule{
		ID:                uuid.New(),
		LoanID:            loanID,
		InstallmentNumber: 1,
		DueDate:           time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		ScheduledAmount:   decimal.NewFromInt(100),
		Status:            domain.ScheduleStatusPending,
	}

	f.employees.On("GetEmployee", mock.Anything, employeeID).Return(employee, nil)
	f.payslipRepo.On("ExistsForPeriod", mock.Anything, employeeID, start, end).Return(false, nil)
	f.attendance.On("Summary", mock.Anything, employeeID, start, end).Return(&domain.AttendanceSummary{
		DaysWorked:       18,
		DaysAbsent:       2,
		TotalWorkingDays: 20,
	}, nil)
	f.deductionRepo.On("ListActiveMandatoryTypes", mock.Anything).Return([]*domain.DeductionType{taxType}, nil)
	f.deductionRepo.On("ListEnrollmentsForPeriod", mock.Anything, employeeID, start, end).Return([]*domain.EmployeeDeduction{}, nil)
	f.loanRepo.On("GetDueSchedules", mock.Anything, employeeID, start, end).Return([]*domain.RepaymentSchedule{dueSchedule}, nil)
	f.loanRepo.On("GetByID", mock.Anything, loanID).Return(&domain.Loan{ID: loanID, TotalInstallments: 12}, nil)
	f.payslipRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	payslip, err := f.service.GeneratePayslip(context.Background(), employeeID, start, end, end, "hr-admin")

	assert.NoError(t, err)
	assert.Equal(t, domain.PayslipStatusDraft, payslip.Status)
	assert.True(t, payslip.GrossSalary.Equal(decimal.NewFromInt(2700)))

	// tax 270 + absence 300 + loan installment 100
	assert.True(t, payslip.TotalDeductions.Equal(decimal.NewFromInt(670)))
	assert.True(t, payslip.NetPay.Equal(decimal.NewFromInt(2030)))

	// employer contributions never reduce net pay
	assert.True(t, payslip.TotalEmployerContributions.Equal(decimal.NewFromInt(540)))

	// every line carries the payslip id
	for _, d := range payslip.Deductions {
		assert.Equal(t, payslip.ID, d.PayslipID)
	}

	f.payslipRepo.AssertExpectations(t)
}

func TestGeneratePayslip_DuplicatePeriod(t *testing.T) {
	f := newPayslipFixture()

	employeeID := uuid.New()
	start, end := periodSeptember()

	f.employees.On("GetEmployee", mock.Anything, employeeID).Return(&domain.Employee{ID: employeeID}, nil)
	f.payslipRepo.On("ExistsForPeriod", mock.Anything, employeeID, start, end).Return(true, nil)

	_, err := f.service.GeneratePayslip(context.Background(), employeeID, start, end, end, "hr-admin")

	assert.Error(t, err)
	assert.True(t, apperrors.IsStateConflict(err))
	f.payslipRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGeneratePayslip_AffordabilityExceeded(t *testing.T) {
	f := newPayslipFixture()

	employeeID := uuid.New()
	employee := &domain.Employee{
		ID: employeeID,
		JobPosition: &domain.JobPosition{
			ContractType: domain.ContractMonthly,
			BaseSalary:   decimal.NewFromInt(2000),
		},
	}
	start, end := periodSeptember()

	loanID := uuid.New()
	hugeInstallment := &domain.RepaymentSchedule{
		ID:                uuid.New(),
		LoanID:            loanID,
		InstallmentNumber: 1,
		DueDate:           time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		ScheduledAmount:   decimal.NewFromInt(1500),
		Status:            domain.ScheduleStatusPending,
	}

	f.employees.On("GetEmployee", mock.Anything, employeeID).Return(employee, nil)
	f.payslipRepo.On("ExistsForPeriod", mock.Anything, employeeID, start, end).Return(false, nil)
	f.attendance.On("Summary", mock.Anything, employeeID, start, end).Return(&domain.AttendanceSummary{
		DaysWorked:       20,
		TotalWorkingDays: 20,
	}, nil)
	f.deductionRepo.On("ListActiveMandatoryTypes", mock.Anything).Return([]*domain.DeductionType{}, nil)
	f.deductionRepo.On("ListEnrollmentsForPeriod", mock.Anything, employeeID, start, end).Return([]*domain.EmployeeDeduction{}, nil)
	f.loanRepo.On("GetDueSchedules", mock.Anything, employeeID, start, end).Return([]*domain.RepaymentSchedule{hugeInstallment}, nil)
	f.loanRepo.On("GetByID", mock.Anything, loanID).Return(&domain.Loan{ID: loanID, TotalInstallments: 2}, nil)

	// 1500 loan deduction against gross 2000 blows the 50% cap
	_, err := f.service.GeneratePayslip(context.Background(), employeeID, start, end, end, "hr-admin")

	assert.Error(t, err)
	assert.True(t, apperrors.IsStateConflict(err))
	f.payslipRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGeneratePayslip_EmployeeNotFound(t *testing.T) {
	f := newPayslipFixture()

	employeeID := uuid.New()
	start, end := periodSeptember()

	f.employees.On("GetEmployee", mock.Anything, employeeID).Return(nil, sql.ErrNoRows)

	_, err := f.service.GeneratePayslip(context.Background(), employeeID, start, end, end, "hr-admin")

	assert.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFinalize_SettlesLoanLinesOnce(t *testing.T) {
	f := newPayslipFixture()

	payslipID := uuid.New()
	employeeID := uuid.New()
	loanID := uuid.New()
	scheduleID := uuid.New()

	payslip := &domain.Payslip{
		ID:         payslipID,
		EmployeeID: employeeID,
		Status:     domain.PayslipStatusSent,
		Deductions: []*domain.Deduction{
			{Category: domain.DeductionCategoryMandatory, Amount: decimal.NewFromInt(270)},
			{Category: domain.DeductionCategoryLoan, Amount: decimal.NewFromInt(100), SourceScheduleID: &scheduleID},
		},
	}
	schedule := &domain.RepaymentSchedule{
		ID:              scheduleID,
		LoanID:          loanID,
		ScheduledAmount: decimal.NewFromInt(100),
		Status:          domain.ScheduleStatusPending,
	}
	loan := &domain.Loan{
		ID:                loanID,
		EmployeeID:        employeeID,
		RemainingBalance:  decimal.NewFromInt(1200),
		TotalInstallments: 12,
		Status:            domain.LoanStatusActive,
	}

	f.payslipRepo.On("GetByID", mock.Anything, payslipID).Return(payslip, nil)
	f.loanRepo.On("GetScheduleByID", mock.Anything, scheduleID).Return(schedule, nil)
	f.loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)
	f.loanRepo.On("ApplyRepayment", mock.Anything, loan, schedule).Return(nil)
	f.payslipRepo.On("MarkSettled", mock.Anything, payslipID, mock.Anything).Return(true, nil)

	_, err := f.service.Finalize(context.Background(), payslipID)

	assert.NoError(t, err)
	assert.True(t, loan.RemainingBalance.Equal(decimal.NewFromInt(1100)))
	assert.Equal(t, domain.ScheduleStatusPaid, schedule.Status)

	f.loanRepo.AssertNumberOfCalls(t, "ApplyRepayment", 1)
	f.payslipRepo.AssertExpectations(t)
}

func TestFinalize_AlreadySettled(t *testing.T) {
	f := newPayslipFixture()

	payslipID := uuid.New()
	settledAt := time.Now()
	payslip := &domain.Payslip{
		ID:         payslipID,
		EmployeeID: uuid.New(),
		Status:     domain.PayslipStatusSent,
		SettledAt:  &settledAt,
	}

	f.payslipRepo.On("GetByID", mock.Anything, payslipID).Return(payslip, nil)

	_, err := f.service.Finalize(context.Background(), payslipID)

	assert.Error(t, err)
	assert.True(t, apperrors.IsStateConflict(err))
	f.payslipRepo.AssertNotCalled(t, "MarkSettled", mock.Anything, mock.Anything, mock.Anything)
}

func TestFinalize_SkipsAlreadyPaidInstallment(t *testing.T) {
	f := newPayslipFixture()

	payslipID := uuid.New()
	scheduleID := uuid.New()
	payslip := &domain.Payslip{
		ID:         payslipID,
		EmployeeID: uuid.New(),
		Status:     domain.PayslipStatusSent,
		Deductions: []*domain.Deduction{
			{Category: domain.DeductionCategoryLoan, Amount: decimal.NewFromInt(100), SourceScheduleID: &scheduleID},
		},
	}
	paidSchedule := &domain.RepaymentSchedule{
		ID:     scheduleID,
		LoanID: uuid.New(),
		Status: domain.ScheduleStatusPaid,
	}

	f.payslipRepo.On("GetByID", mock.Anything, payslipID).Return(payslip, nil)
	f.loanRepo.On("GetScheduleByID", mock.Anything, scheduleID).Return(paidSchedule, nil)
	f.payslipRepo.On("MarkSettled", mock.Anything, payslipID, mock.Anything).Return(true, nil)

	_, err := f.service.Finalize(context.Background(), payslipID)

	assert.NoError(t, err)
	f.loanRepo.AssertNotCalled(t, "ApplyRepayment", mock.Anything, mock.Anything, mock.Anything)
	f.payslipRepo.AssertExpectations(t)
}

func TestFinalize_RejectsDraft(t *testing.T) {
	f := newPayslipFixture()

	payslipID := uuid.New()
	payslip := &domain.Payslip{
		ID:         payslipID,
		EmployeeID: uuid.New(),
		Status:     domain.PayslipStatusDraft,
	}

	f.payslipRepo.On("GetByID", mock.Anything, payslipID).Return(payslip, nil)

	_, err := f.service.Finalize(context.Background(), payslipID)

	assert.Error(t, err)
	assert.True(t, apperrors.IsStateConflict(err))
}

func TestCancel_DraftDeleted(t *testing.T) {
	f := newPayslipFixture()

	payslipID := uuid.New()
	payslip := &domain.Payslip{ID: payslipID, Status: domain.PayslipStatusDraft}

	f.payslipRepo.On("GetByID", mock.Anything, payslipID).Return(payslip, nil)
	f.payslipRepo.On("Delete", mock.Anything, payslipID).Return(nil)

	err := f.service.Cancel(context.Background(), payslipID)

	assert.NoError(t, err)
	f.payslipRepo.AssertExpectations(t)
}

func TestCancel_SentIsImmutable(t *testing.T) {
	f := newPayslipFixture()

	payslipID := uuid.New()
	payslip := &domain.Payslip{ID: payslipID, Status: domain.PayslipStatusSent}

	f.payslipRepo.On("GetByID", mock.Anything, payslipID).Return(payslip, nil)

	err := f.service.Cancel(context.Background(), payslipID)

	assert.Error(t, err)
	assert.True(t, apperrors.IsStateConflict(err))
	f.payslipRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRender_MovesDraftToGenerated(t *testing.T) {
	f := newPayslipFixture()

	payslipID := uuid.New()
	employeeID := uuid.New()
	payslip := &domain.Payslip{ID: payslipID, EmployeeID: employeeID, Status: domain.PayslipStatusDraft}
	employee := &domain.Employee{ID: employeeID, FullName: "Dana Reyes"}

	f.payslipRepo.On("GetByID", mock.Anything, payslipID).Return(payslip, nil)
	f.employees.On("GetEmployee", mock.Anything, employeeID).Return(employee, nil)
	f.renderer.On("RenderPayslip", mock.Anything, payslip, employee).Return("./payslips/payslip.pdf", nil)
	f.payslipRepo.On("UpdateStatus", mock.Anything, payslip).Return(nil)

	updated, err := f.service.Render(context.Background(), payslipID)

	assert.NoError(t, err)
	assert.Equal(t, domain.PayslipStatusGenerated, updated.Status)
	assert.NotNil(t, updated.PDFPath)
	assert.NotNil(t, updated.GeneratedAt)
}

func TestSend_NotifiesEmployee(t *testing.T) {
	f := newPayslipFixture()

	payslipID := uuid.New()
	employeeID := uuid.New()
	payslip := &domain.Payslip{ID: payslipID, EmployeeID: employeeID, Status: domain.PayslipStatusGenerated}

	f.payslipRepo.On("GetByID", mock.Anything, payslipID).Return(payslip, nil)
	f.notifier.On("Notify", mock.Anything, employeeID, mock.Anything, mock.Anything).Return(nil)
	f.payslipRepo.On("UpdateStatus", mock.Anything, payslip).Return(nil)

	updated, err := f.service.Send(context.Background(), payslipID)

	assert.NoError(t, err)
	assert.Equal(t, domain.PayslipStatusSent, updated.Status)
	f.notifier.AssertExpectations(t)
}

func TestUpdateStatus_RejectsSkippedStep(t *testing.T) {
	f := newPayslipFixture()

	payslipID := uuid.New()
	payslip := &domain.Payslip{ID: payslipID, EmployeeID: uuid.New(), Status: domain.PayslipStatusDraft}

	f.payslipRepo.On("GetByID", mock.Anything, payslipID).Return(payslip, nil)

	// draft cannot jump straight to sent
	_, err := f.service.UpdateStatus(context.Background(), payslipID, domain.PayslipStatusSent)

	assert.Error(t, err)
	assert.True(t, apperrors.IsStateConflict(err))
}

func TestGenerateMonthlyPayslips_IsolatesFailures(t *testing.T) {
	f := newPayslipFixture()

	healthy := &domain.Employee{
		ID: uuid.New(),
		JobPosition: &domain.JobPosition{
			ContractType: domain.ContractMonthly,
			BaseSalary:   decimal.NewFromInt(3000),
		},
	}
	existing := &domain.Employee{ID: uuid.New()}
	broken := &domain.Employee{ID: uuid.New()}

	f.employees.On("ListActiveEmployees", mock.Anything).Return([]*domain.Employee{healthy, existing, broken}, nil)

	f.payslipRepo.On("ExistsForPeriod", mock.Anything, healthy.ID, mock.Anything, mock.Anything).Return(false, nil)
	f.payslipRepo.On("ExistsForPeriod", mock.Anything, existing.ID, mock.Anything, mock.Anything).Return(true, nil)
	f.payslipRepo.On("ExistsForPeriod", mock.Anything, broken.ID, mock.Anything, mock.Anything).Return(false, nil)

	f.employees.On("GetEmployee", mock.Anything, healthy.ID).Return(healthy, nil)
	f.employees.On("GetEmployee", mock.Anything, broken.ID).Return(broken, nil)

	f.attendance.On("Summary", mock.Anything, healthy.ID, mock.Anything, mock.Anything).Return(&domain.AttendanceSummary{
		DaysWorked:       20,
		TotalWorkingDays: 20,
	}, nil)
	f.attendance.On("Summary", mock.Anything, broken.ID, mock.Anything, mock.Anything).Return(nil, errors.New("attendance feed down"))

	f.deductionRepo.On("ListActiveMandatoryTypes", mock.Anything).Return([]*domain.DeductionType{}, nil)
	f.deductionRepo.On("ListEnrollmentsForPeriod", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]*domain.EmployeeDeduction{}, nil)
	f.loanRepo.On("GetDueSchedules", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]*domain.RepaymentSchedule{}, nil)
	f.payslipRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.GenerateMonthlyPayslips(context.Background(), "2026-09", "scheduler")

	assert.NoError(t, err)
	assert.Len(t, result.Generated, 1)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)
}

func TestGenerateMonthlyPayslips_BadYearMonth(t *testing.T) {
	f := newPayslipFixture()

	_, err := f.service.GenerateMonthlyPayslips(context.Background(), "September 2026", "scheduler")

	assert.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
