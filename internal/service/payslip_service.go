package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hrsuite/payroll-engine/internal/config"
	"github.com/hrsuite/payroll-engine/internal/domain"
	"github.com/hrsuite/payroll-engine/internal/gateway"
	"github.com/hrsuite/payroll-engine/internal/repository"
	apperrors "github.com/hrsuite/payroll-engine/pkg/errors"
	"github.com/hrsuite/payroll-engine/pkg/utils"
)

// PayslipService orchestrates salary, deduction and contribution calculation
// into the payslip aggregate, drives its status lifecycle, and settles loan
// installments on finalization.
type PayslipService struct {
	payslipRepo repository.PayslipRepository
	salary      *SalaryService
	deductions  *DeductionService
	loans       *LoanService
	employees   gateway.EmployeeDirectory
	attendance  gateway.AttendanceProvider
	renderer    gateway.DocumentRenderer
	notifier    gateway.NotificationSink
	config      *config.Config

	// Generation and finalization are serialized per employee; operations on
	// different employees run concurrently.
	locks keyedMutex
}

func NewPayslipService(
	payslipRepo repository.PayslipRepository,
	salary *SalaryService,
	deductions *DeductionService,
	loans *LoanService,
	employees gateway.EmployeeDirectory,
	attendance gateway.AttendanceProvider,
	renderer gateway.DocumentRenderer,
	notifier gateway.NotificationSink,
	cfg *config.Config,
) *PayslipService {
	return &PayslipService{
		payslipRepo: payslipRepo,
		salary:      salary,
		deductions:  deductions,
		loans:       loans,
		employees:   employees,
		attendance:  attendance,
		renderer:    renderer,
		notifier:    notifier,
		config:      cfg,
	}
}

// GeneratePayslip assembles and persists a draft payslip for one employee and
// pay period. Exactly one payslip may exist per (employee, period).
func (s *PayslipService) GeneratePayslip(
	ctx context.Context,
	employeeID uuid.UUID,
	periodStart, periodEnd, payDate time.Time,
	createdBy string,
) (*domain.Payslip, error) {
	unlock := s.locks.lock(employeeID.String())
	defer unlock()

	employee, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, apperrors.WrapEmployeeNotFound(employeeID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	exists, err := s.payslipRepo.ExistsForPeriod(ctx, employeeID, periodStart, periodEnd)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	if exists {
		return nil, apperrors.WrapPayslipExists(employeeID.String())
	}

	summary, err := s.attendance.Summary(ctx, employeeID, periodStart, periodEnd)
	if err != nil {
		return nil, apperrors.NewComputationError("attendance lookup", err)
	}

	gross, err := s.salary.CalculateGrossSalary(employee, summary)
	if err != nil {
		return nil, err
	}

	earnings, err := s.salary.CalculateEarnings(employee, summary)
	if err != nil {
		return nil, err
	}

	deductions := s.deductions.CalculateDeductions(ctx, employee, gross, summary, periodStart, periodEnd)

	loanTotal := s.deductions.LoanDeductionTotal(deductions)
	if !s.deductions.CanAffordLoanDeductions(gross, loanTotal) {
		return nil, apperrors.WrapAffordabilityExceeded(employeeID.String())
	}

	contributions := s.salary.CalculateEmployerContributions(employee, gross)

	totalEarnings := decimal.Zero
	for _, e := range earnings {
		totalEarnings = totalEarnings.Add(e.Amount)
	}
	totalDeductions := decimal.Zero
	for _, d := range deductions {
		totalDeductions = totalDeductions.Add(d.Amount)
	}
	totalContributions := decimal.Zero
	for _, c := range contributions {
		totalContributions = totalContributions.Add(c.Amount)
	}

	now := time.Now()
	payslip := &domain.Payslip{
		ID:                         uuid.New(),
		EmployeeID:                 employeeID,
		PayPeriodStart:             periodStart,
		PayPeriodEnd:               periodEnd,
		PayDate:                    payDate,
		GrossSalary:                gross,
		TotalEarnings:              totalEarnings.Round(2),
		TotalDeductions:            totalDeductions.Round(2),
		TotalEmployerContributions: totalContributions.Round(2),
		NetPay:                     gross.Add(totalEarnings).Sub(totalDeductions).Round(2),
		DaysWorked:                 summary.DaysWorked,
		DaysAbsent:                 summary.DaysAbsent,
		OvertimeHours:              summary.OvertimeHours,
		Status:                     domain.PayslipStatusDraft,
		CreatedBy:                  createdBy,
		CreatedAt:                  now,
		UpdatedAt:                  now,
		Earnings:                   earnings,
		Deductions:                 deductions,
		Contributions:              contributions,
	}

	for _, e := range payslip.Earnings {
		e.PayslipID = payslip.ID
	}
	for _, d := range payslip.Deductions {
		d.PayslipID = payslip.ID
	}
	for _, c := range payslip.Contributions {
		c.PayslipID = payslip.ID
	}

	if err = s.payslipRepo.Create(ctx, payslip); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return payslip, nil
}

// GenerateFromRequest parses the boundary DTO and delegates to GeneratePayslip.
func (s *PayslipService) GenerateFromRequest(ctx context.Context, request *domain.GeneratePayslipRequest, createdBy string) (*domain.Payslip, error) {
	var violations []string

	employeeID, err := uuid.Parse(request.EmployeeID)
	if err != nil {
		violations = append(violations, "employee_id must be a valid uuid")
	}

	periodStart, err := time.Parse("2006-01-02", request.PeriodStart)
	if err != nil {
		violations = append(violations, "period_start must be a date (2006-01-02)")
	}
	periodEnd, err := time.Parse("2006-01-02", request.PeriodEnd)
	if err != nil {
		violations = append(violations, "period_end must be a date (2006-01-02)")
	} else if !periodEnd.After(periodStart) {
		violations = append(violations, "period_end must be after period_start")
	}
	payDate, err := time.Parse("2006-01-02", request.PayDate)
	if err != nil {
		violations = append(violations, "pay_date must be a date (2006-01-02)")
	}

	if len(violations) > 0 {
		return nil, apperrors.NewValidationError(violations...)
	}

	return s.GeneratePayslip(ctx, employeeID, periodStart, periodEnd, payDate, createdBy)
}

// Finalize settles every loan-repayment line of the payslip exactly once.
// This is the only path by which repayment schedules become paid and loan
// balances decrease.
func (s *PayslipService) Finalize(ctx context.Context, payslipID uuid.UUID) (*domain.Payslip, error) {
	payslip, err := s.getPayslip(ctx, payslipID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(payslip.EmployeeID.String())
	defer unlock()

	if payslip.SettledAt != nil {
		return nil, apperrors.WrapPayslipAlreadySettled(payslipID.String())
	}
	if payslip.Status == domain.PayslipStatusDraft {
		return nil, apperrors.WrapInvalidPayslipState(payslipID.String(), payslip.Status, domain.PayslipStatusGenerated)
	}

	for _, deduction := range payslip.Deductions {
		if deduction.Category != domain.DeductionCategoryLoan || deduction.SourceScheduleID == nil {
			continue
		}

		if _, err := s.loans.RecordRepayment(ctx, *deduction.SourceScheduleID, deduction.Amount); err != nil {
			if apperrors.IsStateConflict(err) {
				// Installment was already settled; applying it again would
				// double-deduct, so it is skipped.
				log.Printf("payslip %s: schedule %s already settled: %v", payslipID, deduction.SourceScheduleID, err)
				continue
			}
			return nil, apperrors.NewComputationError(
				fmt.Sprintf("settle schedule %s", deduction.SourceScheduleID), err)
		}
	}

	settled, err := s.payslipRepo.MarkSettled(ctx, payslipID, time.Now())
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	if !settled {
		return nil, apperrors.WrapPayslipAlreadySettled(payslipID.String())
	}

	return s.getPayslip(ctx, payslipID)
}

// Render produces the payslip document and moves draft -> generated.
func (s *PayslipService) Render(ctx context.Context, payslipID uuid.UUID) (*domain.Payslip, error) {
	payslip, err := s.getPayslip(ctx, payslipID)
	if err != nil {
		return nil, err
	}
	if payslip.Status != domain.PayslipStatusDraft {
		return nil, apperrors.WrapInvalidPayslipState(payslipID.String(), payslip.Status, domain.PayslipStatusDraft)
	}

	employee, err := s.employees.GetEmployee(ctx, payslip.EmployeeID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	path, err := s.renderer.RenderPayslip(ctx, payslip, employee)
	if err != nil {
		return nil, apperrors.NewComputationError("render payslip document", err)
	}

	now := time.Now()
	payslip.Status = domain.PayslipStatusGenerated
	payslip.PDFPath = &path
	payslip.GeneratedAt = &now

	if err = s.payslipRepo.UpdateStatus(ctx, payslip); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return payslip, nil
}

// Send delivers the rendered payslip and moves generated -> sent.
func (s *PayslipService) Send(ctx context.Context, payslipID uuid.UUID) (*domain.Payslip, error) {
	payslip, err := s.getPayslip(ctx, payslipID)
	if err != nil {
		return nil, err
	}
	if payslip.Status != domain.PayslipStatusGenerated {
		return nil, apperrors.WrapInvalidPayslipState(payslipID.String(), payslip.Status, domain.PayslipStatusGenerated)
	}

	message := fmt.Sprintf("Your payslip for %s - %s is available.",
		payslip.PayPeriodStart.Format("2006-01-02"), payslip.PayPeriodEnd.Format("2006-01-02"))
	if err = s.notifier.Notify(ctx, payslip.EmployeeID, "Payslip available", message); err != nil {
		return nil, apperrors.NewComputationError("deliver payslip notification", err)
	}

	now := time.Now()
	payslip.Status = domain.PayslipStatusSent
	payslip.SentAt = &now

	if err = s.payslipRepo.UpdateStatus(ctx, payslip); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return payslip, nil
}

// Acknowledge records the employee's confirmation, sent -> acknowledged.
func (s *PayslipService) Acknowledge(ctx context.Context, payslipID uuid.UUID) (*domain.Payslip, error) {
	payslip, err := s.getPayslip(ctx, payslipID)
	if err != nil {
		return nil, err
	}
	if payslip.Status != domain.PayslipStatusSent {
		return nil, apperrors.WrapInvalidPayslipState(payslipID.String(), payslip.Status, domain.PayslipStatusSent)
	}

	now := time.Now()
	payslip.Status = domain.PayslipStatusAcknowledged
	payslip.AcknowledgedAt = &now

	if err = s.payslipRepo.UpdateStatus(ctx, payslip); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return payslip, nil
}

// UpdateStatus advances the payslip one step along its state machine.
func (s *PayslipService) UpdateStatus(ctx context.Context, payslipID uuid.UUID, status string) (*domain.Payslip, error) {
	switch status {
	case domain.PayslipStatusGenerated:
		return s.Render(ctx, payslipID)
	case domain.PayslipStatusSent:
		return s.Send(ctx, payslipID)
	case domain.PayslipStatusAcknowledged:
		return s.Acknowledge(ctx, payslipID)
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown target status %q", status))
	}
}

// Cancel deletes a payslip that has not been sent yet.
func (s *PayslipService) Cancel(ctx context.Context, payslipID uuid.UUID) error {
	payslip, err := s.getPayslip(ctx, payslipID)
	if err != nil {
		return err
	}
	if !payslip.CanCancel() {
		return apperrors.WrapInvalidPayslipState(payslipID.String(), payslip.Status, "draft or generated")
	}

	if err = s.payslipRepo.Delete(ctx, payslipID); err != nil {
		return apperrors.WrapDatabaseError(err)
	}

	return nil
}

// GetPayslip returns the payslip aggregate with its line items.
func (s *PayslipService) GetPayslip(ctx context.Context, payslipID uuid.UUID) (*domain.Payslip, error) {
	return s.getPayslip(ctx, payslipID)
}

// GenerateMonthlyPayslips runs payroll for a calendar month across every
// active employee. One employee's failure never aborts the batch: it is
// logged, counted and skipped.
func (s *PayslipService) GenerateMonthlyPayslips(ctx context.Context, yearMonth, createdBy string) (*domain.MonthlyRunResponse, error) {
	year, month, err := utils.ParseYearMonth(yearMonth)
	if err != nil {
		return nil, apperrors.NewValidationError("year_month must look like 2006-01")
	}
	periodStart, periodEnd := utils.MonthPeriod(year, month)

	employees, err := s.employees.ListActiveEmployees(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	result := &domain.MonthlyRunResponse{YearMonth: yearMonth}
	for _, employee := range employees {
		exists, err := s.payslipRepo.ExistsForPeriod(ctx, employee.ID, periodStart, periodEnd)
		if err != nil {
			log.Printf("payroll run %s: duplicate check failed for employee %s: %v", yearMonth, employee.ID, err)
			result.Failed++
			continue
		}
		if exists {
			result.Skipped++
			continue
		}

		payslip, err := s.GeneratePayslip(ctx, employee.ID, periodStart, periodEnd, periodEnd, createdBy)
		if err != nil {
			log.Printf("payroll run %s: employee %s skipped: %v", yearMonth, employee.ID, err)
			result.Failed++
			continue
		}

		result.Generated = append(result.Generated, payslip)
	}

	log.Printf("payroll run %s: %d generated, %d skipped, %d failed",
		yearMonth, len(result.Generated), result.Skipped, result.Failed)

	return result, nil
}

func (s *PayslipService) getPayslip(ctx context.Context, payslipID uuid.UUID) (*domain.Payslip, error) {
	payslip, err := s.payslipRepo.GetByID(ctx, payslipID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, apperrors.WrapPayslipNotFound(payslipID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}
	return payslip, nil
}

// keyedMutex serializes operations sharing a key while keys proceed
// independently.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
