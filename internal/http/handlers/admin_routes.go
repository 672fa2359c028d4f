package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/http/middleware"
	"umrahtransfer/internal/services"
)

func (h *Handler) routes(c *gin.Context) services.RouteService {
	s := h.Routes
	s.RequestID = middleware.GetRequestID(c)
	return s
}

type faresRequest struct {
	Fares []struct {
		VehicleID int64 `json:"vehicleId" binding:"required,min=1"`
		Price     int64 `json:"price" binding:"required,min=1"`
	} `json:"fares" binding:"dive"`
}

// GET /api/admin/routes
func (h *Handler) ListRoutes(c *gin.Context) {
	list, err := h.routes(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": list})
}

// GET /api/admin/routes/:id
func (h *Handler) GetRoute(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rt, err := h.routes(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rt)
}

// POST /api/admin/routes
func (h *Handler) CreateRoute(c *gin.Context) {
	var p models.RoutePayload
	if !BindJSONOrError(c, &p) {
		return
	}
	rt, err := h.routes(c).Create(c.Request.Context(), p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rt)
}

// PUT /api/admin/routes/:id
func (h *Handler) UpdateRoute(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p models.RoutePayload
	if !BindJSONOrError(c, &p) {
		return
	}
	rt, err := h.routes(c).Update(c.Request.Context(), id, p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rt)
}

// DELETE /api/admin/routes/:id
func (h *Handler) DeleteRoute(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	retired, err := h.routes(c).Delete(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": !retired, "retired": retired})
}

// PUT /api/admin/routes/:id/fares
func (h *Handler) SetRouteFares(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req faresRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	fares := make([]models.RouteFare, 0, len(req.Fares))
	for _, f := range req.Fares {
		fares = append(fares, models.RouteFare{RouteID: id, VehicleID: f.VehicleID, Price: f.Price})
	}
	rt, err := h.routes(c).SetFares(c.Request.Context(), id, fares)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rt)
}
