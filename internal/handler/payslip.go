package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hrsuite/payroll-engine/internal/domain"
	"github.com/hrsuite/payroll-engine/internal/service"
	"github.com/hrsuite/payroll-engine/pkg/response"
)

type PayslipHandler struct {
	service   *service.PayslipService
	validator *validator.Validate
}

func NewPayslipHandler(service *service.PayslipService) *PayslipHandler {
	return &PayslipHandler{
		service:   service,
		validator: validator.New(),
	}
}

// GeneratePayslip handles POST /api/v1/payslips
func (h *PayslipHandler) GeneratePayslip(w http.ResponseWriter, r *http.Request) {
	var req domain.GeneratePayslipRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.FromError(w, err)
		return
	}

	payslip, err := h.service.GenerateFromRequest(r.Context(), &req, actor(r))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, payslip)
}

// GetPayslip handles GET /api/v1/payslips/{payslipId}
func (h *PayslipHandler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	payslipID, err := pathUUID(r, "payslipId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	payslip, err := h.service.GetPayslip(r.Context(), payslipID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payslip)
}

// UpdateStatus handles PATCH /api/v1/payslips/{payslipId}/status
func (h *PayslipHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	payslipID, err := pathUUID(r, "payslipId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	var req domain.UpdatePayslipStatusRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.FromError(w, err)
		return
	}

	payslip, err := h.service.UpdateStatus(r.Context(), payslipID, req.Status)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payslip)
}

// FinalizePayslip handles POST /api/v1/payslips/{payslipId}/finalize
func (h *PayslipHandler) FinalizePayslip(w http.ResponseWriter, r *http.Request) {
	payslipID, err := pathUUID(r, "payslipId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	payslip, err := h.service.Finalize(r.Context(), payslipID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payslip)
}

// CancelPayslip handles DELETE /api/v1/payslips/{payslipId}
func (h *PayslipHandler) CancelPayslip(w http.ResponseWriter, r *http.Request) {
	payslipID, err := pathUUID(r, "payslipId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	if err := h.service.Cancel(r.Context(), payslipID); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, map[string]string{"status": "cancelled"})
}

// RunMonthlyPayroll handles POST /api/v1/payroll/runs
func (h *PayslipHandler) RunMonthlyPayroll(w http.ResponseWriter, r *http.Request) {
	var req domain.MonthlyRunRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.FromError(w, err)
		return
	}

	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = actor(r)
	}

	result, err := h.service.GenerateMonthlyPayslips(r.Context(), req.YearMonth, createdBy)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}
