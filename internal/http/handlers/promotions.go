package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/http/middleware"
	"umrahtransfer/internal/services"
)

func (h *Handler) promotions(c *gin.Context) services.PromotionService {
	s := h.Promotions
	s.RequestID = middleware.GetRequestID(c)
	return s
}

// GET /api/admin/promotions
func (h *Handler) ListPromotions(c *gin.Context) {
	list, err := h.promotions(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promotions": list})
}

// POST /api/admin/promotions
func (h *Handler) CreatePromotion(c *gin.Context) {
	var p models.PromotionPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	promo, err := h.promotions(c).Create(c.Request.Context(), p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, promo)
}

// PUT /api/admin/promotions/:id
func (h *Handler) UpdatePromotion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p models.PromotionPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	promo, err := h.promotions(c).Update(c.Request.Context(), id, p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, promo)
}

// DELETE /api/admin/promotions/:id
func (h *Handler) DeletePromotion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.promotions(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/admin/settings
func (h *Handler) GetSettings(c *gin.Context) {
	st, err := h.Settings.Get(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// PUT /api/admin/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	var in models.Settings
	if !BindJSONOrError(c, &in) {
		return
	}
	svc := h.Settings
	svc.RequestID = middleware.GetRequestID(c)
	st, err := svc.Update(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
