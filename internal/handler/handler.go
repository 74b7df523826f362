package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	apperrors "github.com/hrsuite/payroll-engine/pkg/errors"
)

// decodeAndValidate decodes the request body into dst and runs struct
// validation, folding all tag failures into one aggregated validation error.
func decodeAndValidate(r *http.Request, validate *validator.Validate, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("request body must be valid JSON")
	}

	if err := validate.Struct(dst); err != nil {
		fieldErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperrors.NewValidationError(err.Error())
		}

		violations := make([]string, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			violations = append(violations, violationMessage(fe))
		}
		return apperrors.NewValidationError(violations...)
	}

	return nil
}

func violationMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "uuid4":
		return fmt.Sprintf("%s must be a valid uuid", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// pathUUID extracts and parses a uuid path variable.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError(fmt.Sprintf("%s must be a valid uuid", name))
	}
	return id, nil
}

// actor identifies the caller for audit fields. There is no authentication
// layer; upstream infrastructure sets the header.
func actor(r *http.Request) string {
	if v := r.Header.Get("X-Actor"); v != "" {
		return v
	}
	return "system"
}
