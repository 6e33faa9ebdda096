package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"proxyprobe/config"
	"proxyprobe/log"
	"proxyprobe/models"
	"proxyprobe/pkg/connpool"
	"proxyprobe/pkg/constants"
	"proxyprobe/pkg/manager"
	"proxyprobe/pkg/ratelimit"
	"proxyprobe/proxy"
	"proxyprobe/service"
	"proxyprobe/sink"
	"proxyprobe/source"

	"github.com/gin-gonic/gin"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 加载配置
	cfg, err := config.NewConfig()
	if err != nil {
		log.Error("加载配置失败: %v", err)
		return 1
	}
	setupLogging(cfg)

	specs, err := loadSpecs(cfg)
	if err != nil {
		log.Error("加载代理来源失败: %v", err)
		return 1
	}

	policy, err := proxy.PolicyByName(cfg.Probe.EndpointPolicy)
	if err != nil {
		log.Error("配置验证失败: %v", err)
		return 1
	}

	agents := manager.NewAgentRotator(cfg.Source.UserAgents)
	dialer := connpool.NewDialer(cfg.Probe.Timeout, nil)
	verifiers := proxy.NewVerifierSet(proxy.Options{
		Timeout:   cfg.Probe.Timeout,
		EchoHTTP:  cfg.Echo.HTTP,
		EchoSocks: cfg.Echo.Socks,
		UserAgent: agents.Next(),
		Dialer:    dialer,
	})

	prober := service.NewProber(verifiers, service.ProberOptions{
		Concurrency: cfg.Probe.Concurrency,
		Timeout:     cfg.Probe.Timeout,
		Retries:     cfg.Probe.Retries,
		Policy:      policy,
	})
	metrics := service.NewMetrics(prober, dialer.Metrics())
	prober.Subscribe(metrics)
	reporter := service.NewReporter(cfg.Output.ProgressEvery)

	fetcher := source.NewFetcher(source.Options{
		Timeout:     cfg.Source.Timeout,
		Concurrency: cfg.Source.Concurrency,
		Limiter:     ratelimit.NewTokenBucketLimiter(cfg.Source.Rate, cfg.Source.Burst),
		Agents:      agents,
	})

	runner := service.NewRunner(
		source.NewListSource(fetcher, specs),
		prober,
		sink.NewFileSink(cfg.Output.Dir),
		reporter,
		cfg.Probe.Families,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var server *http.Server
	if cfg.Status.Addr != "" {
		handler := service.NewStatusHandler(reporter, metrics, map[string]service.MetricsProvider{
			"verifier": verifiers,
			"source":   fetcher,
		})
		server = startStatusServer(cfg, handler)
	}

	_, runErr := runner.Run(ctx)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.StatusShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("状态服务关闭异常: %v", err)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			log.Warn("运行被中断，未完成的批次没有保存")
		} else {
			log.Error("运行失败: %v", runErr)
		}
		return 1
	}
	return 0
}

// setupLogging 设置日志级别和颜色
func setupLogging(cfg *config.Config) {
	if cfg.Log.NoColor {
		log.DisableColor()
	}
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn("未知的日志级别 %q，使用 info", cfg.Log.Level)
		level = log.LevelInfo
	}
	log.SetLevel(level)
}

// loadSpecs 读取来源列表，只保留启用的协议族
func loadSpecs(cfg *config.Config) ([]source.Spec, error) {
	specs := source.DefaultSpecs()
	if cfg.Source.File != "" {
		loaded, err := source.LoadSpecs(cfg.Source.File)
		if err != nil {
			return nil, err
		}
		specs = loaded
	}

	enabled := make(map[models.ProtocolFamily]bool, len(cfg.Probe.Families))
	for _, f := range cfg.Probe.Families {
		enabled[f] = true
	}
	filtered := specs[:0]
	for _, s := range specs {
		if enabled[s.Family] {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

// startStatusServer 异步启动状态接口
func startStatusServer(cfg *config.Config, handler *service.StatusHandler) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := service.NewStatusRouter(handler, cfg.Status.ApiKey)

	server := &http.Server{
		Addr:         cfg.Status.Addr,
		Handler:      router,
		ReadTimeout:  constants.StatusReadTimeout,
		WriteTimeout: constants.StatusWriteTimeout,
		IdleTimeout:  constants.StatusIdleTimeout,
	}

	go func() {
		log.Info("状态服务正在运行，监听 %s", cfg.Status.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("启动状态服务失败: %v", err)
		}
	}()
	return server
}
