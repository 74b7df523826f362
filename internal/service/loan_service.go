package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/hrsuite/payroll-engine/internal/config"
	"github.com/hrsuite/payroll-engine/internal/domain"
	"github.com/hrsuite/payroll-engine/internal/repository"
	apperrors "github.com/hrsuite/payroll-engine/pkg/errors"
	"github.com/hrsuite/payroll-engine/pkg/utils"
)

const outstandingCacheTTL = time.Hour

// LoanService owns the loan and repayment-schedule lifecycle: creation with
// aggregated validation, amortization-schedule generation, review transitions
// and installment settlement.
type LoanService struct {
	loanRepo repository.LoanRepository
	redis    *redis.Client
	config   *config.Config
}

func NewLoanService(loanRepo repository.LoanRepository, redisClient *redis.Client, cfg *config.Config) *LoanService {
	return &LoanService{
		loanRepo: loanRepo,
		redis:    redisClient,
		config:   cfg,
	}
}

// CreateLoan validates the request, enforces the pending-loan and exposure
// rules, persists the loan and generates its repayment schedule. A schedule
// generation failure does not roll the loan back: the committed financial
// record survives and the schedule can be regenerated later.
func (s *LoanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest, createdBy string) (*domain.LoanResponse, error) {
	employeeID, startDate, endDate, vErr := s.validateLoanRequest(request)
	if vErr != nil {
		return nil, vErr
	}

	pending, err := s.loanRepo.GetPendingByEmployee(ctx, employeeID)
	if err != nil && !repository.IsNoRows(err) {
		return nil, apperrors.WrapDatabaseError(err)
	}
	if pending != nil {
		return nil, apperrors.WrapPendingLoanExists(request.EmployeeID)
	}

	outstanding, err := s.loanRepo.SumOutstandingByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	if outstanding.Add(request.Principal).GreaterThan(s.config.MaxExposure()) {
		return nil, apperrors.WrapExposureExceeded(request.EmployeeID, s.config.MaxExposure().String())
	}

	now := time.Now()
	loan := &domain.Loan{
		ID:                   uuid.New(),
		EmployeeID:           employeeID,
		Principal:            request.Principal.Round(2),
		RemainingBalance:     request.Principal.Round(2),
		InterestRate:         request.InterestRate,
		StartDate:            startDate,
		EndDate:              endDate,
		InstallmentAmount:    request.InstallmentAmount.Round(2),
		InstallmentFrequency: request.InstallmentFrequency,
		TotalInstallments:    request.TotalInstallments,
		Status:               domain.LoanStatusPending,
		Description:          request.Description,
		CreatedBy:            createdBy,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err = s.loanRepo.Create(ctx, loan); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.invalidateOutstanding(ctx, employeeID)

	schedules := s.buildSchedule(loan)
	if err = s.loanRepo.ReplaceSchedule(ctx, loan.ID, schedules); err != nil {
		// The loan is committed; losing it over a transient schedule failure is
		// worse than surfacing the degraded state. Callers retry through
		// RegenerateSchedule.
		compErr := apperrors.NewComputationError("generate repayment schedule", err)
		log.Printf("loan %s created without schedule: %v", loan.ID, compErr)
		return &domain.LoanResponse{Loan: loan, SchedulePending: true}, nil
	}

	return &domain.LoanResponse{Loan: loan, Schedule: schedules}, nil
}

// UpdateLoan edits a pending loan and regenerates its schedule wholesale.
func (s *LoanService) UpdateLoan(ctx context.Context, loanID uuid.UUID, request *domain.CreateLoanRequest) (*domain.LoanResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusPending {
		return nil, apperrors.WrapInvalidLoanState(loanID.String(), loan.Status, domain.LoanStatusPending)
	}

	employeeID, startDate, endDate, vErr := s.validateLoanRequest(request)
	if vErr != nil {
		return nil, vErr
	}
	if employeeID != loan.EmployeeID {
		return nil, apperrors.NewValidationError("employee_id of a loan cannot change")
	}

	loan.Principal = request.Principal.Round(2)
	loan.RemainingBalance = loan.Principal
	loan.InterestRate = request.InterestRate
	loan.StartDate = startDate
	loan.EndDate = endDate
	loan.InstallmentAmount = request.InstallmentAmount.Round(2)
	loan.InstallmentFrequency = request.InstallmentFrequency
	loan.TotalInstallments = request.TotalInstallments
	loan.Description = request.Description

	if err = s.loanRepo.Update(ctx, loan); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.invalidateOutstanding(ctx, loan.EmployeeID)

	schedules := s.buildSchedule(loan)
	if err = s.loanRepo.ReplaceSchedule(ctx, loan.ID, schedules); err != nil {
		compErr := apperrors.NewComputationError("regenerate repayment schedule", err)
		log.Printf("loan %s updated without schedule: %v", loan.ID, compErr)
		return &domain.LoanResponse{Loan: loan, SchedulePending: true}, nil
	}

	return &domain.LoanResponse{Loan: loan, Schedule: schedules}, nil
}

// RegenerateSchedule rebuilds the amortization schedule of a loan that has no
// paid installment yet. It is the explicit retry path for loans persisted in
// the schedule-pending sub-state.
func (s *LoanService) RegenerateSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.RepaymentSchedule, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.IsTerminal() {
		return nil, apperrors.WrapInvalidLoanState(loanID.String(), loan.Status, "pending or active")
	}
	if loan.PaidInstallments > 0 {
		return nil, apperrors.NewStateConflictError(
			apperrors.ErrCodeInvalidLoanState,
			fmt.Sprintf("loan %s already has paid installments", loanID))
	}

	schedules := s.buildSchedule(loan)
	if err = s.loanRepo.ReplaceSchedule(ctx, loanID, schedules); err != nil {
		return nil, apperrors.NewComputationError("regenerate repayment schedule", err)
	}

	return schedules, nil
}

// Approve moves a pending loan to active and stamps the approver.
func (s *LoanService) Approve(ctx context.Context, loanID uuid.UUID, approver string) (*domain.Loan, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusPending {
		return nil, apperrors.WrapInvalidLoanState(loanID.String(), loan.Status, domain.LoanStatusPending)
	}

	now := time.Now()
	loan.Status = domain.LoanStatusActive
	loan.ApprovedBy = &approver
	loan.ApprovedAt = &now

	if err = s.loanRepo.Update(ctx, loan); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return loan, nil
}

// Reject moves a pending loan to rejected; a reason is required.
func (s *LoanService) Reject(ctx context.Context, loanID uuid.UUID, rejecter, reason string) (*domain.Loan, error) {
	if reason == "" {
		return nil, apperrors.NewValidationError("rejection reason is required")
	}

	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusPending {
		return nil, apperrors.WrapInvalidLoanState(loanID.String(), loan.Status, domain.LoanStatusPending)
	}

	now := time.Now()
	loan.Status = domain.LoanStatusRejected
	loan.RejectedBy = &rejecter
	loan.RejectedAt = &now
	loan.RejectionReason = &reason

	if err = s.loanRepo.Update(ctx, loan); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.invalidateOutstanding(ctx, loan.EmployeeID)

	return loan, nil
}

// Cancel cancels any loan that has not reached a terminal state.
func (s *LoanService) Cancel(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.IsTerminal() {
		return nil, apperrors.WrapInvalidLoanState(loanID.String(), loan.Status, "a non-terminal status")
	}

	loan.Status = domain.LoanStatusCancelled
	if err = s.loanRepo.Update(ctx, loan); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.invalidateOutstanding(ctx, loan.EmployeeID)

	return loan, nil
}

// RecordRepayment settles one installment: the schedule row flips to paid and
// the loan balance drops, atomically. A second call for the same schedule is
// rejected, never applied twice.
func (s *LoanService) RecordRepayment(ctx context.Context, scheduleID uuid.UUID, paidAmount decimal.Decimal) (*domain.Loan, error) {
	if paidAmount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidationError("paid amount must be greater than 0")
	}

	schedule, err := s.loanRepo.GetScheduleByID(ctx, scheduleID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, apperrors.WrapScheduleNotFound(scheduleID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}
	if schedule.Status == domain.ScheduleStatusPaid {
		return nil, apperrors.WrapScheduleAlreadyPaid(scheduleID.String())
	}

	loan, err := s.getLoan(ctx, schedule.LoanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, apperrors.WrapInvalidLoanState(loan.ID.String(), loan.Status, domain.LoanStatusActive)
	}

	now := time.Now()
	schedule.Status = domain.ScheduleStatusPaid
	schedule.PaidAmount = paidAmount.Round(2)
	schedule.PaymentDate = &now

	loan.RemainingBalance = loan.RemainingBalance.Sub(schedule.PaidAmount)
	loan.PaidInstallments++
	if loan.RemainingBalance.LessThanOrEqual(decimal.Zero) || loan.PaidInstallments >= loan.TotalInstallments {
		loan.Status = domain.LoanStatusCompleted
		if loan.RemainingBalance.LessThan(decimal.Zero) {
			loan.RemainingBalance = decimal.Zero
		}
	}

	if err = s.loanRepo.ApplyRepayment(ctx, loan, schedule); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.invalidateOutstanding(ctx, loan.EmployeeID)

	return loan, nil
}

// GetDueRepayments returns every schedule row for the employee whose due date
// falls inside [start, end]. This is the sole integration point the deduction
// aggregation consumes.
func (s *LoanService) GetDueRepayments(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]*domain.RepaymentSchedule, error) {
	schedules, err := s.loanRepo.GetDueSchedules(ctx, employeeID, start, end)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return schedules, nil
}

// GetOutstandingBalance sums remaining balances across the employee's
// non-terminal loans, cached in Redis for the exposure check.
func (s *LoanService) GetOutstandingBalance(ctx context.Context, employeeID uuid.UUID) (decimal.Decimal, error) {
	cacheKey := s.outstandingKey(employeeID)

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			if total, parseErr := decimal.NewFromString(cached); parseErr == nil {
				return total, nil
			}
		} else if err != redis.Nil {
			log.Printf("outstanding cache read failed: %v", apperrors.WrapCacheError(err))
		}
	}

	total, err := s.loanRepo.SumOutstandingByEmployee(ctx, employeeID)
	if err != nil {
		return decimal.Zero, apperrors.WrapDatabaseError(err)
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, total.String(), outstandingCacheTTL).Err(); err != nil {
			log.Printf("outstanding cache write failed: %v", apperrors.WrapCacheError(err))
		}
	}

	return total, nil
}

// GetLoan returns a loan with its schedule and schedule-pending sub-state.
func (s *LoanService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.LoanResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	schedules, err := s.loanRepo.GetScheduleByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return &domain.LoanResponse{
		Loan:            loan,
		Schedule:        schedules,
		SchedulePending: len(schedules) == 0 && !loan.IsTerminal(),
	}, nil
}

// GetLoansByEmployee lists all of an employee's loans.
func (s *LoanService) GetLoansByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*domain.Loan, error) {
	loans, err := s.loanRepo.GetByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return loans, nil
}

// GetOverdueLoans lists active loans with at least one pending installment
// past its due date.
func (s *LoanService) GetOverdueLoans(ctx context.Context) ([]*domain.Loan, error) {
	loans, err := s.loanRepo.ListOverdueLoans(ctx, time.Now())
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return loans, nil
}

// GetUpcomingRepayments lists pending installments due within the next N days,
// feeding the reminder sweep.
func (s *LoanService) GetUpcomingRepayments(ctx context.Context, days int) ([]*domain.RepaymentSchedule, error) {
	now := time.Now()
	schedules, err := s.loanRepo.GetUpcomingSchedules(ctx, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return schedules, nil
}

// buildSchedule produces the flat-installment amortization schedule: exactly
// totalInstallments rows, due dates one frequency unit apart starting one unit
// after the start date, each row scheduled at the installment amount. Pure
// function of the loan fields, safe to re-run.
func (s *LoanService) buildSchedule(loan *domain.Loan) []*domain.RepaymentSchedule {
	schedules := make([]*domain.RepaymentSchedule, 0, loan.TotalInstallments)
	now := time.Now()

	for k := 1; k <= loan.TotalInstallments; k++ {
		schedules = append(schedules, &domain.RepaymentSchedule{
			ID:                uuid.New(),
			LoanID:            loan.ID,
			InstallmentNumber: k,
			DueDate:           utils.InstallmentDueDate(loan.StartDate, loan.InstallmentFrequency, k),
			ScheduledAmount:   loan.InstallmentAmount,
			PaidAmount:        decimal.Zero,
			Status:            domain.ScheduleStatusPending,
			CreatedAt:         now,
		})
	}

	return schedules
}

// validateLoanRequest checks every business rule and reports all violations
// together rather than stopping at the first.
func (s *LoanService) validateLoanRequest(request *domain.CreateLoanRequest) (uuid.UUID, time.Time, time.Time, error) {
	var violations []string

	employeeID, err := uuid.Parse(request.EmployeeID)
	if err != nil {
		violations = append(violations, "employee_id must be a valid uuid")
	}

	if request.Principal.LessThan(s.config.MinLoanPrincipal()) || request.Principal.GreaterThan(s.config.MaxLoanPrincipal()) {
		violations = append(violations, fmt.Sprintf("principal must be between %s and %s",
			s.config.MinLoanPrincipal(), s.config.MaxLoanPrincipal()))
	}

	if request.InterestRate.LessThan(decimal.Zero) || request.InterestRate.GreaterThan(s.config.MaxInterestRate()) {
		violations = append(violations, fmt.Sprintf("interest rate must be between 0 and %s",
			s.config.MaxInterestRate()))
	}

	startDate, err := time.Parse("2006-01-02", request.StartDate)
	if err != nil {
		violations = append(violations, "start_date must be a date (2006-01-02)")
	} else if startDate.Before(utils.DateOnly(time.Now())) {
		violations = append(violations, "start_date must not be in the past")
	}

	endDate, err := time.Parse("2006-01-02", request.EndDate)
	if err != nil {
		violations = append(violations, "end_date must be a date (2006-01-02)")
	} else if !endDate.After(startDate) {
		violations = append(violations, "end_date must be after start_date")
	}

	if request.InstallmentAmount.LessThanOrEqual(decimal.Zero) {
		violations = append(violations, "installment_amount must be greater than 0")
	}

	if request.TotalInstallments < 1 || request.TotalInstallments > s.config.Business.MaxInstallments {
		violations = append(violations, fmt.Sprintf("total_installments must be between 1 and %d",
			s.config.Business.MaxInstallments))
	}

	if request.InstallmentFrequency != domain.FrequencyMonthly && request.InstallmentFrequency != domain.FrequencyWeekly {
		violations = append(violations, "installment_frequency must be monthly or weekly")
	}

	if len(violations) > 0 {
		return uuid.Nil, time.Time{}, time.Time{}, apperrors.NewValidationError(violations...)
	}

	return employeeID, startDate, endDate, nil
}

func (s *LoanService) getLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, apperrors.WrapLoanNotFound(loanID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}
	return loan, nil
}

func (s *LoanService) outstandingKey(employeeID uuid.UUID) string {
	return "loan:outstanding:" + employeeID.String()
}

func (s *LoanService) invalidateOutstanding(ctx context.Context, employeeID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, s.outstandingKey(employeeID)).Err(); err != nil {
		log.Printf("outstanding cache invalidation failed: %v", apperrors.WrapCacheError(err))
	}
}
