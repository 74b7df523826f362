package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_JoinsViolations(t *testing.T) {
	err := NewValidationError("principal must be between 100 and 50000", "start_date must not be in the past")

	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "VALIDATION_FAILED")
	assert.Contains(t, err.Error(), "principal must be between 100 and 50000")
	assert.Contains(t, err.Error(), "start_date must not be in the past")
	assert.Len(t, err.Violations, 2)
}

func TestKindChecks_AreExclusive(t *testing.T) {
	notFound := WrapLoanNotFound("abc")
	conflict := WrapScheduleAlreadyPaid("abc")
	computation := NewComputationError("generate schedule", errors.New("boom"))

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsStateConflict(notFound))

	assert.True(t, IsStateConflict(conflict))
	assert.False(t, IsNotFound(conflict))

	assert.True(t, IsComputation(computation))
	assert.False(t, IsValidation(computation))
}

func TestKindChecks_SeeThroughWrapping(t *testing.T) {
	inner := WrapPayslipExists("emp-1")
	wrapped := fmt.Errorf("generate payslip: %w", inner)

	assert.True(t, IsStateConflict(wrapped))
}

func TestComputationError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewComputationError("generate repayment schedule", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "COMPUTATION_ERROR")
	assert.Contains(t, err.Error(), "generate repayment schedule")
}

func TestDatabaseError_KeepsCause(t *testing.T) {
	cause := errors.New("pq: deadlock detected")
	err := WrapDatabaseError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "DATABASE_ERROR")

	cacheErr := WrapCacheError(errors.New("redis down"))
	assert.Contains(t, cacheErr.Error(), "CACHE_ERROR")
}
