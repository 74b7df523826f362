package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/hrsuite/payroll-engine/internal/config"
	"github.com/hrsuite/payroll-engine/internal/gateway"
	"github.com/hrsuite/payroll-engine/internal/repository"
	"github.com/hrsuite/payroll-engine/internal/service"
)

func main() {
	log.Println("Starting payroll scheduler...")

	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	loanRepo := repository.NewLoanRepository(db)
	deductionRepo := repository.NewDeductionRepository(db)
	payslipRepo := repository.NewPayslipRepository(db)

	employees := gateway.NewEmployeeDirectory(db)
	attendance := gateway.NewAttendanceProvider(db)
	renderer := gateway.NewPDFRenderer(cfg.Business.PayslipDir)
	notifier := gateway.NewLogNotifier()

	loanService := service.NewLoanService(loanRepo, redisClient, cfg)
	salaryService := service.NewSalaryService(cfg)
	deductionService := service.NewDeductionService(deductionRepo, loanRepo, cfg)
	payslipService := service.NewPayslipService(
		payslipRepo, salaryService, deductionService, loanService,
		employees, attendance, renderer, notifier, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Schedule tasks
	setupCronJobs(c, cfg, payslipService, loanService, notifier)

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	ctx := c.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

func setupCronJobs(
	c *cron.Cron,
	cfg *config.Config,
	payslips *service.PayslipService,
	loans *service.LoanService,
	notifier gateway.NotificationSink,
) {
	// Monthly payroll run, generating payslips for the month that just ended
	_, err := c.AddFunc(cfg.Scheduler.MonthlyRunSpec, func() {
		runMonthlyPayroll(payslips)
	})
	if err != nil {
		log.Printf("Error scheduling monthly payroll job: %v", err)
	}

	// Daily sweep for overdue installments and upcoming-repayment reminders
	_, err = c.AddFunc(cfg.Scheduler.OverdueSweepSpec, func() {
		sweepOverdueLoans(loans, notifier)
	})
	if err != nil {
		log.Printf("Error scheduling overdue sweep job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}

func runMonthlyPayroll(payslips *service.PayslipService) {
	log.Println("Running monthly payroll job...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	yearMonth := time.Now().AddDate(0, -1, 0).Format("2006-01")
	result, err := payslips.GenerateMonthlyPayslips(ctx, yearMonth, "scheduler")
	if err != nil {
		log.Printf("Monthly payroll run %s failed: %v", yearMonth, err)
		return
	}

	log.Printf("Monthly payroll run %s finished: %d generated, %d skipped, %d failed",
		yearMonth, len(result.Generated), result.Skipped, result.Failed)
}

func sweepOverdueLoans(loans *service.LoanService, notifier gateway.NotificationSink) {
	log.Println("Running daily overdue sweep job...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	overdue, err := loans.GetOverdueLoans(ctx)
	if err != nil {
		log.Printf("Overdue sweep failed: %v", err)
	} else {
		for _, loan := range overdue {
			log.Printf("Loan %s (employee %s) has overdue installments, remaining balance %s",
				loan.ID, loan.EmployeeID, loan.RemainingBalance.StringFixed(2))
		}
	}

	upcoming, err := loans.GetUpcomingRepayments(ctx, 3)
	if err != nil {
		log.Printf("Upcoming repayment lookup failed: %v", err)
		return
	}

	for _, schedule := range upcoming {
		loan, err := loans.GetLoan(ctx, schedule.LoanID)
		if err != nil {
			log.Printf("Loan %s lookup failed: %v", schedule.LoanID, err)
			continue
		}

		message := fmt.Sprintf("Installment %d of %s is due on %s.",
			schedule.InstallmentNumber,
			schedule.ScheduledAmount.StringFixed(2),
			schedule.DueDate.Format("2006-01-02"))
		if err := notifier.Notify(ctx, loan.Loan.EmployeeID, "Upcoming loan repayment", message); err != nil {
			log.Printf("Repayment reminder for loan %s failed: %v", schedule.LoanID, err)
		}
	}
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
