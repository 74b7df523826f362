package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPayslip_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		allowed bool
	}{
		{"draft to generated", PayslipStatusDraft, PayslipStatusGenerated, true},
		{"generated to sent", PayslipStatusGenerated, PayslipStatusSent, true},
		{"sent to acknowledged", PayslipStatusSent, PayslipStatusAcknowledged, true},
		{"draft cannot skip to sent", PayslipStatusDraft, PayslipStatusSent, false},
		{"generated cannot go back", PayslipStatusGenerated, PayslipStatusDraft, false},
		{"acknowledged is final", PayslipStatusAcknowledged, PayslipStatusSent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Payslip{Status: tt.current}
			assert.Equal(t, tt.allowed, p.CanTransitionTo(tt.next))
		})
	}
}

func TestPayslip_CanCancel(t *testing.T) {
	assert.True(t, (&Payslip{Status: PayslipStatusDraft}).CanCancel())
	assert.True(t, (&Payslip{Status: PayslipStatusGenerated}).CanCancel())
	assert.False(t, (&Payslip{Status: PayslipStatusSent}).CanCancel())
	assert.False(t, (&Payslip{Status: PayslipStatusAcknowledged}).CanCancel())
}

func TestLoan_IsTerminal(t *testing.T) {
	assert.False(t, (&Loan{Status: LoanStatusPending}).IsTerminal())
	assert.False(t, (&Loan{Status: LoanStatusActive}).IsTerminal())
	assert.True(t, (&Loan{Status: LoanStatusRejected}).IsTerminal())
	assert.True(t, (&Loan{Status: LoanStatusCancelled}).IsTerminal())
	assert.True(t, (&Loan{Status: LoanStatusCompleted}).IsTerminal())
}

func TestDeductionType_AmountFor(t *testing.T) {
	pct := &DeductionType{CalcMethod: CalcMethodPercentage, Percentage: decimal.NewFromInt(10)}
	assert.True(t, pct.AmountFor(decimal.NewFromInt(2700)).Equal(decimal.NewFromInt(270)))

	fixed := &DeductionType{CalcMethod: CalcMethodFixed, FixedAmount: decimal.NewFromFloat(49.999)}
	assert.True(t, fixed.AmountFor(decimal.NewFromInt(2700)).Equal(decimal.NewFromInt(50)))
}

func TestEmployeeDeduction_AmountFor_OverridePrecedence(t *testing.T) {
	catalog := &DeductionType{CalcMethod: CalcMethodPercentage, Percentage: decimal.NewFromInt(10)}
	gross := decimal.NewFromInt(2000)

	byAmount := &EmployeeDeduction{OverrideAmount: decimal.NewNullDecimal(decimal.NewFromInt(75))}
	assert.True(t, byAmount.AmountFor(catalog, gross).Equal(decimal.NewFromInt(75)))

	byPercentage := &EmployeeDeduction{OverridePercentage: decimal.NewNullDecimal(decimal.NewFromInt(5))}
	assert.True(t, byPercentage.AmountFor(catalog, gross).Equal(decimal.NewFromInt(100)))

	plain := &EmployeeDeduction{}
	assert.True(t, plain.AmountFor(catalog, gross).Equal(decimal.NewFromInt(200)))
}

func TestEmployeeDeduction_CoversDate(t *testing.T) {
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	bounded := &EmployeeDeduction{EffectiveFrom: from, EffectiveTo: &to}
	assert.True(t, bounded.CoversDate(from))
	assert.True(t, bounded.CoversDate(to))
	assert.False(t, bounded.CoversDate(from.AddDate(0, 0, -1)))
	assert.False(t, bounded.CoversDate(to.AddDate(0, 0, 1)))

	openEnded := &EmployeeDeduction{EffectiveFrom: from}
	assert.True(t, openEnded.CoversDate(from.AddDate(5, 0, 0)))
}
