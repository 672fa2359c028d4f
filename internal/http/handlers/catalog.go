package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"umrahtransfer/internal/http/middleware"
)

// GET /api/routes
func (h *Handler) PublicRoutes(c *gin.Context) {
	svc := h.Catalog
	svc.RequestID = middleware.GetRequestID(c)
	routes, err := svc.PublicRoutes(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

// GET /api/vehicles
func (h *Handler) PublicVehicles(c *gin.Context) {
	vehicles, err := h.Catalog.PublicVehicles(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
}

// GET /api/settings/public
func (h *Handler) PublicSettings(c *gin.Context) {
	st, err := h.Catalog.PublicSettings(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, st)
}
