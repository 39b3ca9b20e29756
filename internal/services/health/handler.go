package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/server/respond"
)

// Handler serves the health endpoint.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.status)
}

func (h *Handler) status(c *gin.Context) {
	report := h.Svc.Status(c.Request.Context())
	status := http.StatusOK
	if report.Status != StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	respond.JSON(c, status, report)
}
