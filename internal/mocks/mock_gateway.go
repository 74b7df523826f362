package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/hrsuite/payroll-engine/internal/domain"
)

type MockEmployeeDirectory struct {
	mock.Mock
}

func (m *MockEmployeeDirectory) GetEmployee(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockEmployeeDirectory) ListActiveEmployees(ctx context.Context) ([]*domain.Employee, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Employee), args.Error(1)
}

type MockAttendanceProvider struct {
	mock.Mock
}

func (m *MockAttendanceProvider) Summary(ctx context.Context, employeeID uuid.UUID, start, end time.Time) (*domain.AttendanceSummary, error) {
	args := m.Called(ctx, employeeID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AttendanceSummary), args.Error(1)
}

type MockDocumentRenderer struct {
	mock.Mock
}

func (m *MockDocumentRenderer) RenderPayslip(ctx context.Context, payslip *domain.Payslip, employee *domain.Employee) (string, error) {
	args := m.Called(ctx, payslip, employee)
	return args.String(0), args.Error(1)
}

type MockNotificationSink struct {
	mock.Mock
}

func (m *MockNotificationSink) Notify(ctx context.Context, employeeID uuid.UUID, subject, message string) error {
	args := m.Called(ctx, employeeID, subject, message)
	return args.Error(0)
}
