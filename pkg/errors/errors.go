package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes
const (
	ErrCodeLoanNotFound          = "LOAN_NOT_FOUND"
	ErrCodeScheduleNotFound      = "SCHEDULE_NOT_FOUND"
	ErrCodeEmployeeNotFound      = "EMPLOYEE_NOT_FOUND"
	ErrCodePayslipNotFound       = "PAYSLIP_NOT_FOUND"
	ErrCodeDeductionTypeNotFound = "DEDUCTION_TYPE_NOT_FOUND"

	ErrCodePendingLoanExists     = "PENDING_LOAN_EXISTS"
	ErrCodeExposureExceeded      = "EXPOSURE_EXCEEDED"
	ErrCodeInvalidLoanState      = "INVALID_LOAN_STATE"
	ErrCodeScheduleAlreadyPaid   = "SCHEDULE_ALREADY_PAID"
	ErrCodePayslipExists         = "PAYSLIP_EXISTS"
	ErrCodeInvalidPayslipState   = "INVALID_PAYSLIP_STATE"
	ErrCodePayslipAlreadySettled = "PAYSLIP_ALREADY_SETTLED"
	ErrCodeDeductionOverlap      = "DEDUCTION_OVERLAP"
	ErrCodeAffordabilityExceeded = "AFFORDABILITY_EXCEEDED"

	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeComputationError = "COMPUTATION_ERROR"
	ErrCodeDatabaseError    = "DATABASE_ERROR"
	ErrCodeCacheError       = "CACHE_ERROR"
)

// ValidationError aggregates every violated rule of a request so the caller
// sees the full list, not just the first failure.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCodeValidationFailed, strings.Join(e.Violations, "; "))
}

// NewValidationError creates a validation error from the collected violations.
func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// StateConflictError reports an operation attempted against an entity that is
// not in the required state (wrong status, duplicate, overlap).
type StateConflictError struct {
	Code    string
	Message string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewStateConflictError(code, message string) *StateConflictError {
	return &StateConflictError{Code: code, Message: message}
}

// NotFoundError reports a missing entity by kind and identifier.
type NotFoundError struct {
	Code   string
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s %s not found", e.Code, e.Entity, e.ID)
}

func NewNotFoundError(code, entity, id string) *NotFoundError {
	return &NotFoundError{Code: code, Entity: entity, ID: id}
}

// ComputationError reports a sub-calculation that failed after the parent
// record was already committed; the system continues in a degraded but
// consistent state.
type ComputationError struct {
	Code string
	Op   string
	Err  error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

func NewComputationError(op string, err error) *ComputationError {
	return &ComputationError{Code: ErrCodeComputationError, Op: op, Err: err}
}

// DatabaseError wraps an infrastructure failure from a repository or cache.
type DatabaseError struct {
	Code string
	Err  error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

func WrapDatabaseError(err error) *DatabaseError {
	return &DatabaseError{Code: ErrCodeDatabaseError, Err: err}
}

func WrapCacheError(err error) *DatabaseError {
	return &DatabaseError{Code: ErrCodeCacheError, Err: err}
}

// Wrap common errors with business context

func WrapLoanNotFound(loanID string) *NotFoundError {
	return NewNotFoundError(ErrCodeLoanNotFound, "loan", loanID)
}

func WrapScheduleNotFound(scheduleID string) *NotFoundError {
	return NewNotFoundError(ErrCodeScheduleNotFound, "repayment schedule", scheduleID)
}

func WrapEmployeeNotFound(employeeID string) *NotFoundError {
	return NewNotFoundError(ErrCodeEmployeeNotFound, "employee", employeeID)
}

func WrapPayslipNotFound(payslipID string) *NotFoundError {
	return NewNotFoundError(ErrCodePayslipNotFound, "payslip", payslipID)
}

func WrapDeductionTypeNotFound(typeID string) *NotFoundError {
	return NewNotFoundError(ErrCodeDeductionTypeNotFound, "deduction type", typeID)
}

func WrapPendingLoanExists(employeeID string) *StateConflictError {
	return NewStateConflictError(
		ErrCodePendingLoanExists,
		fmt.Sprintf("employee %s already has a pending loan", employeeID),
	)
}

func WrapExposureExceeded(employeeID, limit string) *StateConflictError {
	return NewStateConflictError(
		ErrCodeExposureExceeded,
		fmt.Sprintf("total outstanding for employee %s would exceed limit %s", employeeID, limit),
	)
}

func WrapInvalidLoanState(loanID, current, required string) *StateConflictError {
	return NewStateConflictError(
		ErrCodeInvalidLoanState,
		fmt.Sprintf("loan %s is %s, operation requires %s", loanID, current, required),
	)
}

func WrapScheduleAlreadyPaid(scheduleID string) *StateConflictError {
	return NewStateConflictError(
		ErrCodeScheduleAlreadyPaid,
		fmt.Sprintf("repayment schedule %s is already paid", scheduleID),
	)
}

func WrapPayslipExists(employeeID string) *StateConflictError {
	return NewStateConflictError(
		ErrCodePayslipExists,
		fmt.Sprintf("payslip already exists for employee %s in this period", employeeID),
	)
}

func WrapInvalidPayslipState(payslipID, current, required string) *StateConflictError {
	return NewStateConflictError(
		ErrCodeInvalidPayslipState,
		fmt.Sprintf("payslip %s is %s, operation requires %s", payslipID, current, required),
	)
}

func WrapPayslipAlreadySettled(payslipID string) *StateConflictError {
	return NewStateConflictError(
		ErrCodePayslipAlreadySettled,
		fmt.Sprintf("payslip %s has already been finalized", payslipID),
	)
}

func WrapDeductionOverlap(employeeID, typeName string) *StateConflictError {
	return NewStateConflictError(
		ErrCodeDeductionOverlap,
		fmt.Sprintf("employee %s already has an active %s deduction covering this range", employeeID, typeName),
	)
}

func WrapAffordabilityExceeded(employeeID string) *StateConflictError {
	return NewStateConflictError(
		ErrCodeAffordabilityExceeded,
		fmt.Sprintf("loan deductions for employee %s exceed the affordability cap", employeeID),
	)
}

// Kind checks used by handlers to pick a status code.

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsStateConflict(err error) bool {
	var sc *StateConflictError
	return errors.As(err, &sc)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsComputation(err error) bool {
	var ce *ComputationError
	return errors.As(err, &ce)
}
