package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"umrahtransfer/internal/http/middleware"
)

// GET /api/bookings/:ref/voucher?email=guest@mail.com
func (h *Handler) Voucher(c *gin.Context) {
	contact, ok := bindContact(c)
	if !ok {
		return
	}
	svc := h.Docs
	svc.Bookings = h.Bookings
	svc.RequestID = middleware.GetRequestID(c)
	if svc.Location == nil {
		svc.Location = h.loc()
	}

	pdfBytes, filename, err := svc.Voucher(c.Request.Context(), c.Param("ref"), contact)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	disposition := "inline"
	if c.Query("download") == "1" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
