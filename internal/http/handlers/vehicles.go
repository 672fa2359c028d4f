package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/http/middleware"
	"umrahtransfer/internal/services"
)

func (h *Handler) fleet(c *gin.Context) services.FleetService {
	s := h.Fleet
	s.RequestID = middleware.GetRequestID(c)
	return s
}

// GET /api/admin/fleet
func (h *Handler) ListFleet(c *gin.Context) {
	list, err := h.fleet(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": list})
}

// GET /api/admin/fleet/:id
func (h *Handler) GetVehicle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	v, err := h.fleet(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// POST /api/admin/fleet
func (h *Handler) CreateVehicle(c *gin.Context) {
	var p models.VehiclePayload
	if !BindJSONOrError(c, &p) {
		return
	}
	v, err := h.fleet(c).Create(c.Request.Context(), p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// PUT /api/admin/fleet/:id
func (h *Handler) UpdateVehicle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p models.VehiclePayload
	if !BindJSONOrError(c, &p) {
		return
	}
	v, err := h.fleet(c).Update(c.Request.Context(), id, p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// DELETE /api/admin/fleet/:id
// Vehicles that were booked are retired (deactivated) instead of removed.
func (h *Handler) DeleteVehicle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	retired, err := h.fleet(c).Delete(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": !retired, "retired": retired})
}
