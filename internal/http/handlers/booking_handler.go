package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"umrahtransfer/internal/utils"
	"umrahtransfer/internal/wizard"
)

// contactRequest proves the caller owns a booking: the email or phone it
// was made with.
type contactRequest struct {
	Email string `json:"email" form:"email" binding:"omitempty,email"`
	Phone string `json:"phone" form:"phone" binding:"omitempty,saphone"`
}

func bindContact(c *gin.Context) (string, bool) {
	var req contactRequest
	var err error
	if c.Request.Method != http.MethodGet && c.Request.ContentLength > 0 {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil {
		respondBindError(c, err)
		return "", false
	}
	contact := utils.FirstNonEmpty(req.Email, req.Phone)
	if contact == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "email or phone is required",
			map[string]string{"email": "email or phone is required"})
		return "", false
	}
	return contact, true
}

// POST /api/bookings/quote
func (h *Handler) Quote(c *gin.Context) {
	var form wizard.Form
	if !BindJSONOrError(c, &form) {
		return
	}
	q, err := h.pricing(c).Quote(c.Request.Context(), form)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// POST /api/bookings/steps/:step
func (h *Handler) CheckStep(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_step", "step must be a number", nil)
		return
	}
	var form wizard.Form
	if !BindJSONOrError(c, &form) {
		return
	}
	next, err := h.bookings(c).CheckStep(c.Request.Context(), step, form)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"step": step, "next": next, "nextName": wizard.StepName(next)})
}

// POST /api/bookings
func (h *Handler) SubmitBooking(c *gin.Context) {
	var form wizard.Form
	if !BindJSONOrError(c, &form) {
		return
	}
	b, err := h.bookings(c).Submit(c.Request.Context(), form)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GET /api/bookings/:ref?email=guest@mail.com
func (h *Handler) LookupBooking(c *gin.Context) {
	contact, ok := bindContact(c)
	if !ok {
		return
	}
	b, err := h.bookings(c).Lookup(c.Request.Context(), c.Param("ref"), contact)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /api/bookings/:ref/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	contact, ok := bindContact(c)
	if !ok {
		return
	}
	b, err := h.bookings(c).Cancel(c.Request.Context(), c.Param("ref"), contact)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
