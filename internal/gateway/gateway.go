package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hrsuite/payroll-engine/internal/domain"
)

// EmployeeDirectory looks up employee master data. The payroll engine consumes
// it read-only; the data is owned elsewhere in the ERP.
type EmployeeDirectory interface {
	// GetEmployee retrieves one employee with its job position
	GetEmployee(ctx context.Context, id uuid.UUID) (*domain.Employee, error)

	// ListActiveEmployees retrieves every employee eligible for a payroll run
	ListActiveEmployees(ctx context.Context) ([]*domain.Employee, error)
}

// AttendanceProvider returns the precomputed attendance summary for a period.
type AttendanceProvider interface {
	Summary(ctx context.Context, employeeID uuid.UUID, start, end time.Time) (*domain.AttendanceSummary, error)
}

// DocumentRenderer renders a payslip document and returns an opaque path.
type DocumentRenderer interface {
	RenderPayslip(ctx context.Context, payslip *domain.Payslip, employee *domain.Employee) (string, error)
}

// NotificationSink delivers a message to an employee.
type NotificationSink interface {
	Notify(ctx context.Context, employeeID uuid.UUID, subject, message string) error
}
