package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/http/middleware"
	"umrahtransfer/internal/services"
	"umrahtransfer/internal/utils"
)

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// bookingFilter reads ?status=&from=&to=&q=. Dates are YYYY-MM-DD in the
// service timezone and "to" includes the whole day.
func (h *Handler) bookingFilter(c *gin.Context) (models.BookingFilter, bool) {
	f := models.BookingFilter{
		Status: models.BookingStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		Query:  strings.TrimSpace(c.Query("q")),
	}
	if f.Status != "" && !f.Status.Valid() {
		respondError(c, http.StatusBadRequest, "validation_error", "unknown status",
			map[string]string{"status": "must be pending, confirmed, completed or cancelled"})
		return f, false
	}
	if raw := c.Query("from"); raw != "" {
		t, err := utils.ParseDate(raw, h.loc())
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "from must be YYYY-MM-DD",
				map[string]string{"from": "must be YYYY-MM-DD"})
			return f, false
		}
		f.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := utils.ParseDate(raw, h.loc())
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "to must be YYYY-MM-DD",
				map[string]string{"to": "must be YYYY-MM-DD"})
			return f, false
		}
		end := t.AddDate(0, 0, 1)
		f.To = &end
	}
	return f, true
}

// GET /api/admin/bookings
func (h *Handler) AdminListBookings(c *gin.Context) {
	f, ok := h.bookingFilter(c)
	if !ok {
		return
	}
	list, page, err := h.bookings(c).AdminList(c.Request.Context(), f, pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	c.JSON(http.StatusOK, listResponse[models.Booking]{Items: list, Page: page})
}

// GET /api/admin/bookings/:id
func (h *Handler) AdminGetBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.bookings(c).AdminGet(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PATCH /api/admin/bookings/:id/status
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	to := models.BookingStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	b, err := h.bookings(c).UpdateStatus(c.Request.Context(), id, to)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PATCH /api/admin/bookings/:id/price
func (h *Handler) OverrideBookingPrice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.PriceOverride
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.bookings(c).OverridePrice(c.Request.Context(), id, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GET /api/admin/bookings/export
func (h *Handler) ExportBookings(c *gin.Context) {
	f, ok := h.bookingFilter(c)
	if !ok {
		return
	}
	name := fmt.Sprintf("bookings_%s.csv", time.Now().In(h.loc()).Format("20060102_1504"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Status(http.StatusOK)
	if _, err := h.bookings(c).ExportCSV(c.Request.Context(), c.Writer, f); err != nil {
		// headers are already out; the truncated file is all we can do
		utils.LogError(middleware.GetRequestID(c), "booking", "export", err)
	}
}

// GET /api/admin/stats
func (h *Handler) BookingStats(c *gin.Context) {
	st, err := h.bookings(c).Stats(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
