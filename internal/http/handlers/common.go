package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/http/middleware"
	"umrahtransfer/internal/realtime"
	"umrahtransfer/internal/services"
	"umrahtransfer/internal/utils"
)

// Handler holds one configured copy of every service. Each request works
// on a copy stamped with its request id.
type Handler struct {
	Bookings   services.BookingService
	Drafts     services.DraftService
	Pricing    services.PricingService
	Catalog    services.CatalogService
	Fleet      services.FleetService
	Routes     services.RouteService
	Promotions services.PromotionService
	Settings   services.SettingsService
	Auth       services.AuthService
	Payments   services.PaymentService
	Docs       services.DocsService
	Uploads    services.UploadSigner
	Hub        *realtime.Hub
	DB         *sql.DB
	Location   *time.Location
}

func (h *Handler) loc() *time.Location {
	if h.Location == nil {
		return utils.ServiceLocation("")
	}
	return h.Location
}

func (h *Handler) bookings(c *gin.Context) services.BookingService {
	s := h.Bookings
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (h *Handler) drafts(c *gin.Context) services.DraftService {
	s := h.Drafts
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (h *Handler) pricing(c *gin.Context) services.PricingService {
	s := h.Pricing
	s.RequestID = middleware.GetRequestID(c)
	return s
}

// RespondError sends standard error payload with request_id included.
// Keeps backward compatibility by always providing "message".
func RespondError(c *gin.Context, status int, message string, err error) {
	payload := gin.H{
		"message":    message,
		"request_id": middleware.GetRequestID(c),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "empty_body", "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_id", name+" must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

// pagination reads ?page=&limit=; bad values fall back to the defaults.
func pagination(c *gin.Context) domain.Pagination {
	page, _ := strconv.Atoi(strings.TrimSpace(c.Query("page")))
	limit, _ := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	return domain.Pagination{Page: page, PageSize: limit}.Normalize()
}

type listResponse[T any] struct {
	Items []T               `json:"items"`
	Page  domain.Pagination `json:"pagination"`
}
