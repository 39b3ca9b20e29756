package analyses

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"resume-matcher/internal/documents"
	"resume-matcher/internal/extract"
	"resume-matcher/internal/shared/server/respond"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/analyze", h.analyzeDocument)
	rg.POST("/analyze/query", h.matchQuery)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
}

type queryRequest struct {
	Query       string   `json:"query" validate:"required,max=2000"`
	DocumentIDs []string `json:"documentIds" validate:"max=100,dive,required"`
}

func (h *Handler) analyzeDocument(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	force := false
	if v := c.Query("force"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "force must be a boolean", nil)
			return
		}
		force = parsed
	}

	analysis, reused, err := h.Svc.AnalyzeDocument(c.Request.Context(), documentID, force)
	if err != nil {
		writeError(c, err, "failed to analyze document")
		return
	}

	status := http.StatusCreated
	if reused {
		status = http.StatusOK
	}
	respond.JSON(c, status, gin.H{
		"analysis": analysis,
		"reused":   reused,
	})
}

func (h *Handler) matchQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if err := validate.Struct(req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid query request", validationDetails(err))
		return
	}

	ranking, err := h.Svc.MatchQuery(c.Request.Context(), req.Query, req.DocumentIDs)
	if err != nil {
		writeError(c, err, "failed to match query")
		return
	}
	respond.OK(c, ranking)
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysis, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to fetch analysis")
		return
	}
	respond.OK(c, analysis)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	limit, offset, ok := respond.PageParams(c)
	if !ok {
		return
	}

	items, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err, "failed to list analyses")
		return
	}
	respond.Page(c, "analyses", items, limit, offset)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, extract.ErrUnsupportedType):
		respond.Error(c, http.StatusUnprocessableEntity, "unsupported_file_type", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func validationDetails(err error) []map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, map[string]string{
			"field": fe.Field(),
			"issue": fe.Tag(),
		})
	}
	return out
}
