package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	serviceName           = "inventory-service"
	serviceVersion        = "1.0.0"
	healthStatusOK        = "healthy"
	healthStatusUnhealthy = "unhealthy"
)

type HealthChecker interface {
	Health() error
}

func RegisterRoutes(router *gin.Engine, handler *Handler, checker HealthChecker) {
	api := router.Group("/api/inventory")
	api.GET("/", handler.ListProducts)
	api.POST("/", handler.CreateProduct)
	api.GET("/alerts/low-stock", handler.LowStockProducts)
	api.GET("/:id", handler.GetProduct)
	api.PUT("/:id", handler.UpdateProduct)
	api.PUT("/:id/inventory", handler.UpdateInventory)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"service": serviceName,
			"message": "Inventory Service is running",
			"version": serviceVersion,
		})
	})

	health := healthHandler(checker)
	router.GET("/healthz", health)
	router.GET("/health", health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func healthHandler(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"service":   serviceName,
			"timestamp": time.Now().UTC(),
		}
		if err := checker.Health(); err != nil {
			body["success"] = false
			body["status"] = healthStatusUnhealthy
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["success"] = true
		body["status"] = healthStatusOK
		c.JSON(http.StatusOK, body)
	}
}
