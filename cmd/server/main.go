package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/hrsuite/payroll-engine/internal/config"
	"github.com/hrsuite/payroll-engine/internal/gateway"
	"github.com/hrsuite/payroll-engine/internal/handler"
	"github.com/hrsuite/payroll-engine/internal/repository"
	"github.com/hrsuite/payroll-engine/internal/service"
	"github.com/hrsuite/payroll-engine/pkg/response"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	loanRepo := repository.NewLoanRepository(db)
	deductionRepo := repository.NewDeductionRepository(db)
	payslipRepo := repository.NewPayslipRepository(db)

	// Initialize gateways
	employees := gateway.NewEmployeeDirectory(db)
	attendance := gateway.NewAttendanceProvider(db)
	renderer := gateway.NewPDFRenderer(cfg.Business.PayslipDir)
	notifier := gateway.NewLogNotifier()

	// Initialize services
	loanService := service.NewLoanService(loanRepo, redisClient, cfg)
	salaryService := service.NewSalaryService(cfg)
	deductionService := service.NewDeductionService(deductionRepo, loanRepo, cfg)
	payslipService := service.NewPayslipService(
		payslipRepo, salaryService, deductionService, loanService,
		employees, attendance, renderer, notifier, cfg)

	loanHandler := handler.NewLoanHandler(loanService)
	deductionHandler := handler.NewDeductionHandler(deductionService)
	payslipHandler := handler.NewPayslipHandler(payslipService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(loanHandler, deductionHandler, payslipHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
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

func setupRoutes(
	loanHandler *handler.LoanHandler,
	deductionHandler *handler.DeductionHandler,
	payslipHandler *handler.PayslipHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/loans", loanHandler.CreateLoan).Methods("POST")
	api.HandleFunc("/loans/overdue", loanHandler.GetOverdueLoans).Methods("GET")
	api.HandleFunc("/loans/upcoming", loanHandler.GetUpcomingRepayments).Methods("GET")
	api.HandleFunc("/loans/{loanId}", loanHandler.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanId}", loanHandler.UpdateLoan).Methods("PUT")
	api.HandleFunc("/loans/{loanId}/approve", loanHandler.ApproveLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}/reject", loanHandler.RejectLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}/cancel", loanHandler.CancelLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}/schedule/regenerate", loanHandler.RegenerateSchedule).Methods("POST")
	api.HandleFunc("/schedules/{scheduleId}/repayment", loanHandler.RecordRepayment).Methods("POST")

	api.HandleFunc("/employees/{employeeId}/loans", loanHandler.GetEmployeeLoans).Methods("GET")
	api.HandleFunc("/employees/{employeeId}/loans/outstanding", loanHandler.GetOutstanding).Methods("GET")

	api.HandleFunc("/deduction-types", deductionHandler.CreateType).Methods("POST")
	api.HandleFunc("/deduction-types", deductionHandler.ListTypes).Methods("GET")
	api.HandleFunc("/deductions/enrollments", deductionHandler.Enroll).Methods("POST")

	api.HandleFunc("/payslips", payslipHandler.GeneratePayslip).Methods("POST")
	api.HandleFunc("/payslips/{payslipId}", payslipHandler.GetPayslip).Methods("GET")
	api.HandleFunc("/payslips/{payslipId}", payslipHandler.CancelPayslip).Methods("DELETE")
	api.HandleFunc("/payslips/{payslipId}/status", payslipHandler.UpdateStatus).Methods("PATCH")
	api.HandleFunc("/payslips/{payslipId}/finalize", payslipHandler.FinalizePayslip).Methods("POST")
	api.HandleFunc("/payroll/runs", payslipHandler.RunMonthlyPayroll).Methods("POST")

	return router
}
