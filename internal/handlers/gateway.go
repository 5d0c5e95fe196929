// internal/handlers/gateway.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ip-licensing-portal/internal/services"
)

// GatewayHandler exposes the LLM gateway with its fixed wire contract:
// 200 {"result": ...} or 500 {"error": ...}. It does not use the portal's
// response envelope.
type GatewayHandler struct {
	gatewayService *services.GatewayService
}

func NewGatewayHandler(gatewayService *services.GatewayService) *GatewayHandler {
	return &GatewayHandler{
		gatewayService: gatewayService,
	}
}

// POST /.netlify/functions/generate_license_<provider>
func (h *GatewayHandler) Generate(providerKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.generate(c, providerKey)
	}
}

// POST /v1/gateway/:provider
func (h *GatewayHandler) GenerateByParam(c *gin.Context) {
	providerKey := c.Param("provider")
	if !services.IsKnownProvider(providerKey) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown provider: " + providerKey})
		return
	}
	h.generate(c, providerKey)
}

func (h *GatewayHandler) generate(c *gin.Context, providerKey string) {
	var body []byte
	if c.Request.Body != nil {
		// An unreadable body is treated like an empty one.
		body, _ = io.ReadAll(c.Request.Body)
	}

	result, err := h.gatewayService.Invoke(c.Request.Context(), providerKey, body)
	if err != nil {
		status := http.StatusInternalServerError
		var gwErr *services.GatewayError
		if errors.As(err, &gwErr) {
			status = gwErr.Status
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
