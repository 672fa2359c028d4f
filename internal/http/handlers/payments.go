package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"umrahtransfer/internal/http/middleware"
)

// Stripe signs payloads well under this size.
const maxWebhookBytes = 64 << 10

// POST /api/bookings/:ref/checkout
func (h *Handler) Checkout(c *gin.Context) {
	contact, ok := bindContact(c)
	if !ok {
		return
	}
	svc := h.Payments
	svc.Bookings = h.Bookings
	svc.RequestID = middleware.GetRequestID(c)

	sess, err := svc.Checkout(c.Request.Context(), c.Param("ref"), contact)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// POST /api/payments/stripe/webhook
func (h *Handler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "cannot read body", nil)
		return
	}
	if len(payload) > maxWebhookBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "payload_too_large", "webhook body too large", nil)
		return
	}
	svc := h.Payments
	svc.Bookings = h.Bookings
	svc.RequestID = middleware.GetRequestID(c)

	if err := svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
