package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hrsuite/payroll-engine/internal/config"
	"github.com/hrsuite/payroll-engine/internal/domain"
	"github.com/hrsuite/payroll-engine/internal/repository"
	apperrors "github.com/hrsuite/payroll-engine/pkg/errors"
	"github.com/hrsuite/payroll-engine/pkg/utils"
)

// DeductionService aggregates every deduction source for an employee and pay
// period: mandatory catalog entries, employee enrollments, attendance
// penalties and loan installments due in the period.
type DeductionService struct {
	deductionRepo repository.DeductionRepository
	loanRepo      repository.LoanRepository
	config        *config.Config
}

func NewDeductionService(
	deductionRepo repository.DeductionRepository,
	loanRepo repository.LoanRepository,
	cfg *config.Config,
) *DeductionService {
	return &DeductionService{
		deductionRepo: deductionRepo,
		loanRepo:      loanRepo,
		config:        cfg,
	}
}

// CalculateDeductions assembles the deduction list in a fixed order. Each
// sub-category is isolated: a failure in one is logged and skipped, the
// others still contribute.
func (s *DeductionService) CalculateDeductions(
	ctx context.Context,
	employee *domain.Employee,
	gross decimal.Decimal,
	attendance *domain.AttendanceSummary,
	periodStart, periodEnd time.Time,
) []*domain.Deduction {
	var deductions []*domain.Deduction

	mandatory, err := s.mandatoryDeductions(ctx, gross)
	if err != nil {
		log.Printf("mandatory deductions skipped for employee %s: %v", employee.ID, err)
	} else {
		deductions = append(deductions, mandatory...)
	}

	specific, err := s.employeeDeductions(ctx, employee.ID, gross, periodStart, periodEnd)
	if err != nil {
		log.Printf("employee deductions skipped for employee %s: %v", employee.ID, err)
	} else {
		deductions = append(deductions, specific...)
	}

	attendanceLines, err := s.attendanceDeductions(gross, attendance)
	if err != nil {
		log.Printf("attendance deductions skipped for employee %s: %v", employee.ID, err)
	} else {
		deductions = append(deductions, attendanceLines...)
	}

	loanLines, err := s.loanDeductions(ctx, employee.ID, periodStart, periodEnd)
	if err != nil {
		log.Printf("loan deductions skipped for employee %s: %v", employee.ID, err)
	} else {
		deductions = append(deductions, loanLines...)
	}

	return deductions
}

// LoanDeductionTotal sums the loan-sourced lines of a deduction list.
func (s *DeductionService) LoanDeductionTotal(deductions []*domain.Deduction) decimal.Decimal {
	total := decimal.Zero
	for _, d := range deductions {
		if d.Category == domain.DeductionCategoryLoan {
			total = total.Add(d.Amount)
		}
	}
	return total
}

// CanAffordLoanDeductions applies the affordability cap: total loan deductions
// may take up to the configured share of gross salary, boundary inclusive.
func (s *DeductionService) CanAffordLoanDeductions(gross, loanTotal decimal.Decimal) bool {
	return loanTotal.LessThanOrEqual(gross.Mul(s.config.AffordabilityCap()))
}

func (s *DeductionService) mandatoryDeductions(ctx context.Context, gross decimal.Decimal) ([]*domain.Deduction, error) {
	types, err := s.deductionRepo.ListActiveMandatoryTypes(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	var deductions []*domain.Deduction
	for _, t := range types {
		deductions = append(deductions, &domain.Deduction{
			ID:          uuid.New(),
			Category:    domain.DeductionCategoryMandatory,
			Description: t.Name,
			Amount:      t.AmountFor(gross),
		})
	}

	return deductions, nil
}

func (s *DeductionService) employeeDeductions(
	ctx context.Context,
	employeeID uuid.UUID,
	gross decimal.Decimal,
	periodStart, periodEnd time.Time,
) ([]*domain.Deduction, error) {
	enrollments, err := s.deductionRepo.ListEnrollmentsForPeriod(ctx, employeeID, periodStart, periodEnd)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	var deductions []*domain.Deduction
	for _, enrollment := range enrollments {
		deductionType, err := s.deductionRepo.GetTypeByID(ctx, enrollment.DeductionTypeID)
		if err != nil {
			log.Printf("deduction type %s lookup failed: %v", enrollment.DeductionTypeID, err)
			continue
		}
		if deductionType.Mandatory && deductionType.Active {
			// Already counted in the mandatory pass.
			continue
		}

		deductions = append(deductions, &domain.Deduction{
			ID:          uuid.New(),
			Category:    domain.DeductionCategoryEmployee,
			Description: deductionType.Name,
			Amount:      enrollment.AmountFor(deductionType, gross),
		})
	}

	return deductions, nil
}

func (s *DeductionService) attendanceDeductions(gross decimal.Decimal, attendance *domain.AttendanceSummary) ([]*domain.Deduction, error) {
	if attendance == nil {
		return nil, fmt.Errorf("attendance summary missing")
	}

	var deductions []*domain.Deduction

	if attendance.DaysAbsent > 0 && attendance.DaysWorked > 0 {
		dailyRate := gross.Div(decimal.NewFromInt(int64(attendance.DaysWorked)))
		amount := dailyRate.Mul(decimal.NewFromInt(int64(attendance.DaysAbsent))).Round(2)
		deductions = append(deductions, &domain.Deduction{
			ID:          uuid.New(),
			Category:    domain.DeductionCategoryAttendance,
			Description: fmt.Sprintf("Absence (%d days)", attendance.DaysAbsent),
			Amount:      amount,
		})
	}

	if attendance.LateDays > 0 {
		amount := s.config.LatePenaltyRate().Mul(decimal.NewFromInt(int64(attendance.LateDays))).Round(2)
		deductions = append(deductions, &domain.Deduction{
			ID:          uuid.New(),
			Category:    domain.DeductionCategoryAttendance,
			Description: fmt.Sprintf("Late penalty (%d days)", attendance.LateDays),
			Amount:      amount,
		})
	}

	return deductions, nil
}

// loanDeductions emits one line per pending installment due inside the period.
// An installment already paid was settled by an earlier payslip and is never
// deducted again.
func (s *DeductionService) loanDeductions(
	ctx context.Context,
	employeeID uuid.UUID,
	periodStart, periodEnd time.Time,
) ([]*domain.Deduction, error) {
	schedules, err := s.loanRepo.GetDueSchedules(ctx, employeeID, periodStart, periodEnd)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	loans := make(map[uuid.UUID]*domain.Loan)
	var deductions []*domain.Deduction
	for _, schedule := range schedules {
		if schedule.Status != domain.ScheduleStatusPending {
			continue
		}
		if schedule.ScheduledAmount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if !utils.WithinPeriod(schedule.DueDate, periodStart, periodEnd) {
			continue
		}

		loan, ok := loans[schedule.LoanID]
		if !ok {
			loan, err = s.loanRepo.GetByID(ctx, schedule.LoanID)
			if err != nil {
				log.Printf("loan %s lookup failed: %v", schedule.LoanID, err)
				continue
			}
			loans[schedule.LoanID] = loan
		}

		scheduleID := schedule.ID
		deductions = append(deductions, &domain.Deduction{
			ID:       uuid.New(),
			Category: domain.DeductionCategoryLoan,
			Description: fmt.Sprintf("Loan repayment - installment %d/%d due %s",
				schedule.InstallmentNumber, loan.TotalInstallments,
				schedule.DueDate.Format("2006-01-02")),
			Amount:           schedule.ScheduledAmount,
			SourceScheduleID: &scheduleID,
		})
	}

	return deductions, nil
}

// CreateType adds a deduction catalog entry.
func (s *DeductionService) CreateType(ctx context.Context, req *domain.CreateDeductionTypeRequest) (*domain.DeductionType, error) {
	var violations []string
	if req.CalcMethod == domain.CalcMethodPercentage {
		if req.Percentage.LessThanOrEqual(decimal.Zero) || req.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			violations = append(violations, "percentage must be in (0, 100]")
		}
	} else if req.FixedAmount.LessThanOrEqual(decimal.Zero) {
		violations = append(violations, "fixed amount must be greater than 0")
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError(violations...)
	}

	now := time.Now()
	deductionType := &domain.DeductionType{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		CalcMethod:  req.CalcMethod,
		Percentage:  req.Percentage,
		FixedAmount: req.FixedAmount,
		Mandatory:   req.Mandatory,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.deductionRepo.CreateType(ctx, deductionType); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return deductionType, nil
}

// ListTypes returns the whole deduction catalog.
func (s *DeductionService) ListTypes(ctx context.Context) ([]*domain.DeductionType, error) {
	types, err := s.deductionRepo.ListTypes(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return types, nil
}

// Enroll binds a deduction type to an employee for a date range. At most one
// active enrollment of a type may cover any given day.
func (s *DeductionService) Enroll(ctx context.Context, req *domain.EnrollDeductionRequest) (*domain.EmployeeDeduction, error) {
	var violations []string

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		violations = append(violations, "employee_id must be a valid uuid")
	}
	typeID, err := uuid.Parse(req.DeductionTypeID)
	if err != nil {
		violations = append(violations, "deduction_type_id must be a valid uuid")
	}

	from, err := time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		violations = append(violations, "effective_from must be a date (2006-01-02)")
	}

	var to *time.Time
	if req.EffectiveTo != "" {
		parsed, err := time.Parse("2006-01-02", req.EffectiveTo)
		if err != nil {
			violations = append(violations, "effective_to must be a date (2006-01-02)")
		} else if !parsed.After(from) {
			violations = append(violations, "effective_to must be after effective_from")
		} else {
			to = &parsed
		}
	}

	if len(violations) > 0 {
		return nil, apperrors.NewValidationError(violations...)
	}

	deductionType, err := s.deductionRepo.GetTypeByID(ctx, typeID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, apperrors.WrapDeductionTypeNotFound(req.DeductionTypeID)
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	overlap, err := s.deductionRepo.HasOverlappingEnrollment(ctx, employeeID, typeID, from, to)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	if overlap {
		return nil, apperrors.WrapDeductionOverlap(req.EmployeeID, deductionType.Name)
	}

	enrollment := &domain.EmployeeDeduction{
		ID:                 uuid.New(),
		EmployeeID:         employeeID,
		DeductionTypeID:    typeID,
		OverrideAmount:     req.OverrideAmount,
		OverridePercentage: req.OverridePercentage,
		EffectiveFrom:      from,
		EffectiveTo:        to,
		Active:             true,
		CreatedAt:          time.Now(),
	}

	if err := s.deductionRepo.CreateEnrollment(ctx, enrollment); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return enrollment, nil
}
