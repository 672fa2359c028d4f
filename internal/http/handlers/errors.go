package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/http/middleware"
	"umrahtransfer/internal/utils"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses. Field problems
// are returned as details {field: message} so the wizard can mark them.
func RespondDomainError(c *gin.Context, err error) {
	var (
		fields domain.FieldErrors
		single domain.ValidationError
	)
	switch {
	case errors.As(err, &fields):
		respondError(c, http.StatusBadRequest, "validation_error", "please correct the highlighted fields", fields.Fields())
	case errors.As(err, &single):
		var details any
		if single.Field != "" {
			details = map[string]string{single.Field: single.Msg}
		}
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), details)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	default:
		utils.LogError(middleware.GetRequestID(c), "http", c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}

func respondBindError(c *gin.Context, err error) {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		details := make(map[string]string, len(ves))
		for _, fe := range ves {
			if _, ok := details[fe.Field()]; !ok {
				details[fe.Field()] = bindMessage(fe)
			}
		}
		respondError(c, http.StatusBadRequest, "validation_error", "please correct the highlighted fields", details)
		return
	}
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typ):
		respondError(c, http.StatusBadRequest, "invalid_payload", fmt.Sprintf("%s has the wrong type", typ.Field), nil)
	case errors.As(err, &syntax):
		respondError(c, http.StatusBadRequest, "invalid_payload", "malformed JSON", nil)
	default:
		respondError(c, http.StatusBadRequest, "invalid_payload", err.Error(), nil)
	}
}

func bindMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "enter a valid email address"
	case "saphone":
		return "enter a Saudi mobile number, e.g. 05XXXXXXXX"
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "is invalid"
}
