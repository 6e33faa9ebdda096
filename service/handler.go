package service

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusHandler 运行状态接口
type StatusHandler struct {
	reporter  *Reporter
	metrics   *Metrics
	providers map[string]MetricsProvider
	startTime time.Time
}

// NewStatusHandler 创建状态处理器，providers 的指标合并进 /metrics
func NewStatusHandler(reporter *Reporter, metrics *Metrics, providers map[string]MetricsProvider) *StatusHandler {
	return &StatusHandler{
		reporter:  reporter,
		metrics:   metrics,
		providers: providers,
		startTime: time.Now(),
	}
}

// HealthHandler 健康检查
func (h *StatusHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.startTime).String(),
	})
}

// ProgressHandler 当前批次进度
func (h *StatusHandler) ProgressHandler(c *gin.Context) {
	if h.reporter == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	snap := h.reporter.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"family":  snap.Family,
		"total":   snap.Total,
		"settled": snap.Settled,
		"live":    snap.Live,
		"elapsed": snap.Elapsed.String(),
	})
}

// MetricsHandler 组件与运行时指标
func (h *StatusHandler) MetricsHandler(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	components := make(map[string]interface{}, len(h.providers))
	for name, p := range h.providers {
		components[name] = p.GetMetrics()
	}

	body := gin.H{
		"uptime":        time.Since(h.startTime).String(),
		"num_goroutine": runtime.NumGoroutine(),
		"allocated_mem": mem.Alloc,
		"num_gc":        mem.NumGC,
		"components":    components,
	}
	if h.reporter != nil {
		body["progress"] = h.reporter.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// PrometheusHandler Prometheus 文本格式指标
func (h *StatusHandler) PrometheusHandler() gin.HandlerFunc {
	if h.metrics == nil {
		return func(c *gin.Context) { c.Status(http.StatusNotFound) }
	}
	return gin.WrapH(promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{}))
}
