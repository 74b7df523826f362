package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for the payroll engine
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	// MonthlyRunSpec is a 6-field cron expression for the monthly payroll batch.
	MonthlyRunSpec string `mapstructure:"SCHEDULER_MONTHLY_RUN_SPEC"`
	// OverdueSweepSpec drives the daily overdue-installment sweep.
	OverdueSweepSpec string `mapstructure:"SCHEDULER_OVERDUE_SWEEP_SPEC"`
	Timezone         string `mapstructure:"SCHEDULER_TIMEZONE"`
}

// BusinessConfig carries every payroll and loan tunable. Decimal-valued
// settings are kept as strings and exposed through typed getters.
type BusinessConfig struct {
	MinLoanPrincipal    string `mapstructure:"MIN_LOAN_PRINCIPAL"`
	MaxLoanPrincipal    string `mapstructure:"MAX_LOAN_PRINCIPAL"`
	MaxInterestRate     string `mapstructure:"MAX_INTEREST_RATE"`
	MaxInstallments     int    `mapstructure:"MAX_INSTALLMENTS"`
	MaxExposure         string `mapstructure:"MAX_EXPOSURE"`
	AffordabilityCap    string `mapstructure:"AFFORDABILITY_CAP"`
	LatePenaltyRate     string `mapstructure:"LATE_PENALTY_RATE"`
	OvertimeMultiplier  string `mapstructure:"OVERTIME_MULTIPLIER"`
	ImpliedMonthlyHours string `mapstructure:"IMPLIED_MONTHLY_HOURS"`
	SocialSecurityRate  string `mapstructure:"SOCIAL_SECURITY_RATE"`
	HealthInsuranceRate string `mapstructure:"HEALTH_INSURANCE_RATE"`
	PayslipDir          string `mapstructure:"PAYSLIP_DIR"`
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SCHEDULER_MONTHLY_RUN_SPEC", "0 0 2 1 * *")
	viper.SetDefault("SCHEDULER_OVERDUE_SWEEP_SPEC", "0 0 0 * * *")
	viper.SetDefault("SCHEDULER_TIMEZONE", "UTC")
	viper.SetDefault("MIN_LOAN_PRINCIPAL", "100")
	viper.SetDefault("MAX_LOAN_PRINCIPAL", "50000")
	viper.SetDefault("MAX_INTEREST_RATE", "30")
	viper.SetDefault("MAX_INSTALLMENTS", 60)
	viper.SetDefault("MAX_EXPOSURE", "100000")
	viper.SetDefault("AFFORDABILITY_CAP", "0.5")
	viper.SetDefault("LATE_PENALTY_RATE", "10")
	viper.SetDefault("OVERTIME_MULTIPLIER", "1.5")
	viper.SetDefault("IMPLIED_MONTHLY_HOURS", "160")
	viper.SetDefault("SOCIAL_SECURITY_RATE", "15")
	viper.SetDefault("HEALTH_INSURANCE_RATE", "5")
	viper.SetDefault("PAYSLIP_DIR", "./payslips")

	viper.AutomaticEnv()
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_PASSWORD")

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Business.MaxInstallments <= 0 {
		return fmt.Errorf("MAX_INSTALLMENTS must be greater than 0")
	}

	decimals := map[string]string{
		"MIN_LOAN_PRINCIPAL":    c.Business.MinLoanPrincipal,
		"MAX_LOAN_PRINCIPAL":    c.Business.MaxLoanPrincipal,
		"MAX_INTEREST_RATE":     c.Business.MaxInterestRate,
		"MAX_EXPOSURE":          c.Business.MaxExposure,
		"AFFORDABILITY_CAP":     c.Business.AffordabilityCap,
		"LATE_PENALTY_RATE":     c.Business.LatePenaltyRate,
		"OVERTIME_MULTIPLIER":   c.Business.OvertimeMultiplier,
		"IMPLIED_MONTHLY_HOURS": c.Business.ImpliedMonthlyHours,
		"SOCIAL_SECURITY_RATE":  c.Business.SocialSecurityRate,
		"HEALTH_INSURANCE_RATE": c.Business.HealthInsuranceRate,
	}
	for name, value := range decimals {
		if _, err := decimal.NewFromString(value); err != nil {
			return fmt.Errorf("%s must be a valid decimal: %w", name, err)
		}
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

func (c *Config) mustDecimal(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func (c *Config) MinLoanPrincipal() decimal.Decimal {
	return c.mustDecimal(c.Business.MinLoanPrincipal)
}

func (c *Config) MaxLoanPrincipal() decimal.Decimal {
	return c.mustDecimal(c.Business.MaxLoanPrincipal)
}

func (c *Config) MaxInterestRate() decimal.Decimal {
	return c.mustDecimal(c.Business.MaxInterestRate)
}

func (c *Config) MaxExposure() decimal.Decimal {
	return c.mustDecimal(c.Business.MaxExposure)
}

// AffordabilityCap returns the loan-deduction ceiling as a ratio of gross
// salary (0.5 means half of gross is affordable).
func (c *Config) AffordabilityCap() decimal.Decimal {
	return c.mustDecimal(c.Business.AffordabilityCap)
}

// LatePenaltyRate returns the flat penalty charged per late day.
func (c *Config) LatePenaltyRate() decimal.Decimal {
	return c.mustDecimal(c.Business.LatePenaltyRate)
}

func (c *Config) OvertimeMultiplier() decimal.Decimal {
	return c.mustDecimal(c.Business.OvertimeMultiplier)
}

// ImpliedMonthlyHours is the divisor used to derive an hourly rate from a
// monthly salary for overtime on non-hourly contracts.
func (c *Config) ImpliedMonthlyHours() decimal.Decimal {
	return c.mustDecimal(c.Business.ImpliedMonthlyHours)
}

func (c *Config) SocialSecurityRate() decimal.Decimal {
	return c.mustDecimal(c.Business.SocialSecurityRate)
}

func (c *Config) HealthInsuranceRate() decimal.Decimal {
	return c.mustDecimal(c.Business.HealthInsuranceRate)
}
