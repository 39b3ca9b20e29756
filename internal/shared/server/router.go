package server

import (
	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/server/middleware"
)

// RouteRegistrar attaches a feature's routes to the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries everything NewRouter wires together.
type RouterDeps struct {
	CORSAllowOrigin []string
	RateLimit       middleware.RateLimitConfig
	Metrics         gin.HandlerFunc
	Routes          []RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.CORSAllowOrigin),
		middleware.RateLimit(deps.RateLimit),
	)

	if deps.Metrics != nil {
		r.GET("/metrics", deps.Metrics)
	}

	api := r.Group("/api/v1")
	for _, reg := range deps.Routes {
		if reg != nil {
			reg.RegisterRoutes(api)
		}
	}
	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
