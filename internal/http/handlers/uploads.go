package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"umrahtransfer/internal/http/middleware"
	"umrahtransfer/internal/utils"
)

type signRequest struct {
	Folder string `json:"folder"`
}

// POST /api/admin/uploads/sign
func (h *Handler) SignUpload(c *gin.Context) {
	var req signRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}
	sig, err := h.Uploads.Sign(req.Folder)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "upload", "sign", sig.Folder+"/"+sig.PublicID)
	c.JSON(http.StatusOK, sig)
}

// GET /api/admin/live
// Upgrades to a websocket that streams booking and catalog events.
func (h *Handler) Live(c *gin.Context) {
	if h.Hub == nil {
		respondError(c, http.StatusServiceUnavailable, "live_unavailable", "live updates are disabled", nil)
		return
	}
	if err := h.Hub.ServeWS(c.Writer, c.Request); err != nil {
		// the upgrader has already written the error response
		utils.LogError(middleware.GetRequestID(c), "live", "upgrade", err)
	}
}
