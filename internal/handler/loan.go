package handler

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/hrsuite/payroll-engine/internal/domain"
	"github.com/hrsuite/payroll-engine/internal/service"
	"github.com/hrsuite/payroll-engine/pkg/response"
)

type LoanHandler struct {
	service   *service.LoanService
	validator *validator.Validate
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: validator.New(),
	}
}

// CreateLoan handles POST /api/v1/loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.FromError(w, err)
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), &req, actor(r))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, loan)
}

// GetLoan handles GET /api/v1/loans/{loanId}
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	loan, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

// UpdateLoan handles PUT /api/v1/loans/{loanId}
func (h *LoanHandler) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	var req domain.CreateLoanRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.FromError(w, err)
		return
	}

	loan, err := h.service.UpdateLoan(r.Context(), loanID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

// ApproveLoan handles POST /api/v1/loans/{loanId}/approve
func (h *LoanHandler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	var req domain.ReviewLoanRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.FromError(w, err)
		return
	}

	loan, err := h.service.Approve(r.Context(), loanID, req.Reviewer)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

// RejectLoan handles POST /api/v1/loans/{loanId}/reject
func (h *LoanHandler) RejectLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	var req domain.ReviewLoanRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.FromError(w, err)
		return
	}

	loan, err := h.service.Reject(r.Context(), loanID, req.Reviewer, req.Reason)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

// CancelLoan handles POST /api/v1/loans/{loanId}/cancel
func (h *LoanHandler) CancelLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	loan, err := h.service.Cancel(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

// RegenerateSchedule handles POST /api/v1/loans/{loanId}/schedule/regenerate
func (h *LoanHandler) RegenerateSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	schedule, err := h.service.RegenerateSchedule(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, schedule)
}

// RecordRepayment handles POST /api/v1/schedules/{scheduleId}/repayment
func (h *LoanHandler) RecordRepayment(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := pathUUID(r, "scheduleId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	var req domain.RecordRepaymentRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.FromError(w, err)
		return
	}

	loan, err := h.service.RecordRepayment(r.Context(), scheduleID, req.Amount)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

// GetEmployeeLoans handles GET /api/v1/employees/{employeeId}/loans
func (h *LoanHandler) GetEmployeeLoans(w http.ResponseWriter, r *http.Request) {
	employeeID, err := pathUUID(r, "employeeId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	loans, err := h.service.GetLoansByEmployee(r.Context(), employeeID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loans)
}

// GetOutstanding handles GET /api/v1/employees/{employeeId}/loans/outstanding
func (h *LoanHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	employeeID, err := pathUUID(r, "employeeId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	outstanding, err := h.service.GetOutstandingBalance(r.Context(), employeeID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, domain.OutstandingResponse{
		EmployeeID:  employeeID.String(),
		Outstanding: outstanding,
	})
}

// GetOverdueLoans handles GET /api/v1/loans/overdue
func (h *LoanHandler) GetOverdueLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.GetOverdueLoans(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loans)
}

// GetUpcomingRepayments handles GET /api/v1/loans/upcoming?days=N
func (h *LoanHandler) GetUpcomingRepayments(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, "days must be a positive integer", nil)
			return
		}
		days = parsed
	}

	schedules, err := h.service.GetUpcomingRepayments(r.Context(), days)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, schedules)
}
