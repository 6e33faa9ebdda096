package config

import (
	"fmt"
	"net/url"
	"os"
	"proxyprobe/log"
	"proxyprobe/models"
	"proxyprobe/pkg/constants"
	"proxyprobe/pkg/errors"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置结构
type Config struct {
	Probe  ProbeConfig  `json:"probe"`
	Echo   EchoConfig   `json:"echo"`
	Source SourceConfig `json:"source"`
	Output OutputConfig `json:"output"`
	Status StatusConfig `json:"status"`
	Log    LogConfig    `json:"log"`
}

// ProbeConfig 探测配置
type ProbeConfig struct {
	Concurrency    int                     `json:"concurrency"`
	Timeout        time.Duration           `json:"timeout"`
	Retries        int                     `json:"retries"`
	EndpointPolicy string                  `json:"endpoint_policy"`
	Families       []models.ProtocolFamily `json:"families"`
}

// EchoConfig 回显服务配置
type EchoConfig struct {
	HTTP  string `json:"http"`
	Socks string `json:"socks"`
}

// SourceConfig 代理列表来源配置
type SourceConfig struct {
	File        string        `json:"file"`
	Timeout     time.Duration `json:"timeout"`
	Concurrency int           `json:"concurrency"`
	Rate        float64       `json:"rate"`
	Burst       int           `json:"burst"`
	UserAgents  []string      `json:"user_agents"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	Dir           string `json:"dir"`
	ProgressEvery int    `json:"progress_every"`
}

// StatusConfig 状态接口配置
type StatusConfig struct {
	Addr   string `json:"addr"`
	ApiKey string `json:"-"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string `json:"level"`
	NoColor bool   `json:"no_color"`
}

// NewConfig 创建新的配置实例
func NewConfig() (*Config, error) {
	// 加载环境变量文件
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded: %v", err)
	}

	config := &Config{}

	configLoaders := []struct {
		name   string
		loader func() error
	}{
		{"probe", config.loadProbeConfig},
		{"echo", config.loadEchoConfig},
		{"source", config.loadSourceConfig},
		{"output", config.loadOutputConfig},
		{"status", config.loadStatusConfig},
		{"log", config.loadLogConfig},
	}

	for _, cl := range configLoaders {
		if err := cl.loader(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrConfigLoad, cl.name, err)
		}
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigValidation, err)
	}

	return config, nil
}

// loadProbeConfig 加载探测配置
func (c *Config) loadProbeConfig() error {
	c.Probe.Concurrency = getEnvAsInt(constants.EnvConcurrency, constants.DefaultConcurrency)
	c.Probe.Timeout = getEnvAsDuration(constants.EnvProbeTimeout, constants.DefaultProbeTimeout)
	c.Probe.Retries = getEnvAsInt(constants.EnvRetries, constants.DefaultRetries)
	c.Probe.EndpointPolicy = strings.ToLower(getEnvWithDefault(constants.EnvEndpointPolicy, constants.DefaultEndpointPolicy))

	families, err := parseFamilies(getEnvWithDefault(constants.EnvFamilies, constants.DefaultFamilies))
	if err != nil {
		return err
	}
	c.Probe.Families = families
	return nil
}

// loadEchoConfig 加载回显服务配置
func (c *Config) loadEchoConfig() error {
	c.Echo.HTTP = getEnvWithDefault(constants.EnvEchoURLHTTP, constants.DefaultEchoURLHTTP)
	c.Echo.Socks = getEnvWithDefault(constants.EnvEchoURLSocks, constants.DefaultEchoURLSocks)
	return nil
}

// loadSourceConfig 加载来源配置
func (c *Config) loadSourceConfig() error {
	c.Source.File = os.Getenv(constants.EnvSourcesFile)
	c.Source.Timeout = getEnvAsDuration(constants.EnvSourceTimeout, constants.DefaultSourceTimeout)
	c.Source.Concurrency = getEnvAsInt(constants.EnvSourceConcurrency, constants.DefaultSourceConcurrency)
	c.Source.Burst = getEnvAsInt(constants.EnvSourceBurst, constants.DefaultSourceBurst)

	rateStr := os.Getenv(constants.EnvSourceRate)
	c.Source.Rate = constants.DefaultSourceRate
	if rateStr != "" {
		rate, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number, got: %s", constants.EnvSourceRate, rateStr)
		}
		c.Source.Rate = rate
	}

	c.Source.UserAgents = splitList(getEnvWithDefault(constants.EnvUserAgents, constants.UserAgent))
	return nil
}

// loadOutputConfig 加载输出配置
func (c *Config) loadOutputConfig() error {
	c.Output.Dir = getEnvWithDefault(constants.EnvOutputDir, constants.DefaultOutputDir)
	c.Output.ProgressEvery = getEnvAsInt(constants.EnvProgressEvery, constants.DefaultProgressEvery)
	return nil
}

// loadStatusConfig 加载状态接口配置
func (c *Config) loadStatusConfig() error {
	c.Status.Addr = os.Getenv(constants.EnvStatusAddr)
	c.Status.ApiKey = os.Getenv(constants.EnvStatusAPIKey)
	return nil
}

// loadLogConfig 加载日志配置
func (c *Config) loadLogConfig() error {
	c.Log.Level = getEnvWithDefault(constants.EnvLogLevel, constants.DefaultLogLevel)
	_, c.Log.NoColor = os.LookupEnv(constants.EnvNoColor)
	return nil
}

// validate 验证配置
func (c *Config) validate() error {
	if c.Probe.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Probe.Concurrency)
	}
	if c.Probe.Timeout <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %s", c.Probe.Timeout)
	}
	if c.Probe.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Probe.Retries)
	}
	if c.Probe.EndpointPolicy != "strict" && c.Probe.EndpointPolicy != "loose" {
		return fmt.Errorf("endpoint policy must be strict or loose, got %q", c.Probe.EndpointPolicy)
	}
	if len(c.Probe.Families) == 0 {
		return fmt.Errorf("at least one protocol family must be enabled")
	}

	for name, raw := range map[string]string{"http echo": c.Echo.HTTP, "socks echo": c.Echo.Socks} {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("invalid %s url: %q", name, raw)
		}
	}

	if c.Source.Concurrency < 1 {
		return fmt.Errorf("source concurrency must be at least 1")
	}
	if c.Source.Timeout <= 0 {
		return fmt.Errorf("source timeout must be positive")
	}
	if c.Source.Rate < 0 {
		return fmt.Errorf("source rate must not be negative")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output dir must not be empty")
	}
	if c.Output.ProgressEvery < 1 {
		c.Output.ProgressEvery = constants.DefaultProgressEvery
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// parseFamilies 解析逗号分隔的协议族列表，保持固定顺序并去重
func parseFamilies(raw string) ([]models.ProtocolFamily, error) {
	enabled := make(map[models.ProtocolFamily]bool)
	for _, name := range splitList(raw) {
		f, err := models.ParseFamily(name)
		if err != nil {
			return nil, err
		}
		enabled[f] = true
	}

	var families []models.ProtocolFamily
	for _, f := range models.Families() {
		if enabled[f] {
			families = append(families, f)
		}
	}
	return families, nil
}

// splitList 按逗号拆分并清理空白
func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt 获取环境变量并转换为整数
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvAsDuration 获取时长，支持 "7s" 这样的写法或整数秒
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}

	log.Warn("Invalid duration value for %s: %s, using default: %s", key, valueStr, defaultValue)
	return defaultValue
}

// MaxAttempts 每个候选项的最大尝试次数
func (c *Config) MaxAttempts() int {
	return 1 + c.Probe.Retries
}
