package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hrsuite/payroll-engine/internal/domain"
)

// sqlAttendanceProvider reads the attendance summary precomputed by the
// attendance module for an exact pay period.
type sqlAttendanceProvider struct {
	db *sqlx.DB
}

func NewAttendanceProvider(db *sqlx.DB) AttendanceProvider {
	return &sqlAttendanceProvider{db: db}
}

func (p *sqlAttendanceProvider) Summary(ctx context.Context, employeeID uuid.UUID, start, end time.Time) (*domain.AttendanceSummary, error) {
	query := `
		SELECT days_worked, days_absent, total_working_days, late_days, total_hours, overtime_hours
		FROM attendance_summaries
		WHERE employee_id = $1 AND period_start = $2 AND period_end = $3
	`

	var summary domain.AttendanceSummary
	if err := p.db.GetContext(ctx, &summary, query, employeeID, start, end); err != nil {
		return nil, err
	}

	return &summary, nil
}
