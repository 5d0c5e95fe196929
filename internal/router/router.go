// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ip-licensing-portal/internal/config"
	"github.com/javajoker/ip-licensing-portal/internal/handlers"
	"github.com/javajoker/ip-licensing-portal/internal/hub"
	"github.com/javajoker/ip-licensing-portal/internal/middleware"
	"github.com/javajoker/ip-licensing-portal/internal/services"
	"github.com/javajoker/ip-licensing-portal/internal/store"
)

// Services bundles everything the routes need so tests can swap pieces.
type Services struct {
	Gateway    *services.GatewayService
	Submission *services.SubmissionService
	Review     *services.ReviewService
	Hub        *hub.Hub
}

// NewServices wires the portal on top of a request store. Generation goes
// through the in-process gateway unless cfg asks for HTTP dispatch.
func NewServices(cfg *config.Config, requestStore store.RequestStore, tableHub *hub.Hub, client *http.Client) *Services {
	gatewayService := services.NewGatewayService(cfg.LLM, client)

	var dispatcher services.Dispatcher = services.NewLocalDispatcher(gatewayService)
	if cfg.Generation.Dispatch == "http" {
		dispatcher = services.NewHTTPDispatcher(cfg.Generation.GatewayBaseURL, client)
	}
	generator := services.NewLicenseGenerator(dispatcher)

	return &Services{
		Gateway:    gatewayService,
		Submission: services.NewSubmissionService(requestStore, generator, cfg.Generation.Provider, tableHub),
		Review:     services.NewReviewService(requestStore, tableHub),
		Hub:        tableHub,
	}
}

func Initialize(cfg *config.Config, svc *Services) *gin.Engine {
	// Initialize handlers
	gatewayHandler := handlers.NewGatewayHandler(svc.Gateway)
	licenseHandler := handlers.NewLicenseHandler(svc.Submission)
	adminHandler := handlers.NewAdminHandler(svc.Review, svc.Hub)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Gateway routes keep the paths the browser client has always used.
	for providerKey, route := range services.GatewayRoutes {
		r.POST(route, gatewayHandler.Generate(providerKey))
	}

	// API v1 routes
	v1 := r.Group("/v1")
	{
		v1.POST("/gateway/:provider", gatewayHandler.GenerateByParam)

		// License request routes
		licenses := v1.Group("/licenses")
		{
			licenses.GET("/form", licenseHandler.GetForm)
			licenses.POST("/requests", licenseHandler.SubmitRequest)
		}

		// Admin routes
		admin := v1.Group("/admin")
		{
			requests := admin.Group("/requests")
			{
				requests.GET("", adminHandler.GetRequests)
				requests.GET("/ws", adminHandler.StreamRequests)
				requests.PUT("/:index/approve", adminHandler.ApproveRequest)
				requests.PUT("/:index/reject", adminHandler.RejectRequest)
			}
		}
	}

	return r
}
