package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/services"
)

// POST /api/bookings/draft
func (h *Handler) SaveDraft(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxDraftBytes+4<<10)
	var in services.DraftInput
	if !BindJSONOrError(c, &in) {
		return
	}
	saved, err := h.drafts(c).Save(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// GET /api/bookings/draft/:id
func (h *Handler) GetDraft(c *gin.Context) {
	d, err := h.drafts(c).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// DELETE /api/bookings/draft/:id
func (h *Handler) DeleteDraft(c *gin.Context) {
	if err := h.drafts(c).Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/admin/drafts?page=1&limit=50
func (h *Handler) AdminListDrafts(c *gin.Context) {
	list, p, err := h.drafts(c).List(c.Request.Context(), pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.Draft]{Items: list, Page: p})
}

