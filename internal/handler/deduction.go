package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hrsuite/payroll-engine/internal/domain"
	"github.com/hrsuite/payroll-engine/internal/service"
	"github.com/hrsuite/payroll-engine/pkg/response"
)

type DeductionHandler struct {
	service   *service.DeductionService
	validator *validator.Validate
}

func NewDeductionHandler(service *service.DeductionService) *DeductionHandler {
	return &DeductionHandler{
		service:   service,
		validator: validator.New(),
	}
}

// CreateType handles POST /api/v1/deduction-types
func (h *DeductionHandler) CreateType(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDeductionTypeRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.FromError(w, err)
		return
	}

	deductionType, err := h.service.CreateType(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, deductionType)
}

// ListTypes handles GET /api/v1/deduction-types
func (h *DeductionHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListTypes(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, types)
}

// Enroll handles POST /api/v1/deductions/enrollments
func (h *DeductionHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req domain.EnrollDeductionRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.FromError(w, err)
		return
	}

	enrollment, err := h.service.Enroll(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, enrollment)
}
