package service

import (
	"proxyprobe/middleware"

	"github.com/gin-gonic/gin"
)

// NewStatusRouter 注册状态接口路由，/health 不需要认证
func NewStatusRouter(h *StatusHandler, apiKey string) *gin.Engine {
	router := gin.New()
	router.Use(middleware.ErrorMiddleware())
	router.NoRoute(middleware.NotFoundHandler())

	router.GET("/health", h.HealthHandler)

	authed := router.Group("/", middleware.AuthMiddleware(apiKey))
	{
		authed.GET("/progress", h.ProgressHandler)
		authed.GET("/metrics", h.MetricsHandler)
		authed.GET("/prometheus", h.PrometheusHandler())
	}
	return router
}
