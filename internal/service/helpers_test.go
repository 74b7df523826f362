package service

import (
	"github.com/hrsuite/payroll-engine/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			MinLoanPrincipal:    "100",
			MaxLoanPrincipal:    "50000",
			MaxInterestRate:     "30",
			MaxInstallments:     60,
			MaxExposure:         "100000",
			AffordabilityCap:    "0.5",
			LatePenaltyRate:     "10",
			OvertimeMultiplier:  "1.5",
			ImpliedMonthlyHours: "160",
			SocialSecurityRate:  "15",
			HealthInsuranceRate: "5",
			PayslipDir:          "./payslips",
		},
	}
}
