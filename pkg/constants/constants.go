package constants

import "time"

// 探测相关常量
const (
	DefaultConcurrency    = 250
	DefaultProbeTimeout   = 5 * time.Second
	DefaultRetries        = 1
	DefaultEchoURLHTTP    = "http://icanhazip.com"
	DefaultEchoURLSocks   = "http://httpbin.org/ip"
	DefaultEndpointPolicy = "strict"
	DefaultFamilies       = "http,socks4,socks5"
	UserAgent             = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	MaxEchoBodySize       = 64 * 1024
	ResolveCacheTTL       = 5 * time.Minute
	ResolveTimeout        = 5 * time.Second
)

// 代理列表来源常量
const (
	DefaultSourceTimeout     = 10 * time.Second
	DefaultSourceConcurrency = 120
	DefaultSourceRate        = 0
	DefaultSourceBurst       = 10
)

// 输出和进度
const (
	DefaultOutputDir     = "checked"
	LiveFileSuffix       = "_live.txt"
	DefaultProgressEvery = 50
	DefaultLogLevel      = "info"
)

// 状态接口
const (
	StatusShutdownTimeout = 5 * time.Second
	StatusReadTimeout     = 5 * time.Second
	StatusWriteTimeout    = 10 * time.Second
	StatusIdleTimeout     = 60 * time.Second
)

// 环境变量名
const (
	EnvConcurrency       = "PROBE_CONCURRENCY"
	EnvProbeTimeout      = "PROBE_TIMEOUT"
	EnvRetries           = "PROBE_RETRIES"
	EnvEchoURLHTTP       = "ECHO_URL_HTTP"
	EnvEchoURLSocks      = "ECHO_URL_SOCKS"
	EnvEndpointPolicy    = "ENDPOINT_POLICY"
	EnvFamilies          = "FAMILIES"
	EnvSourcesFile       = "SOURCES_FILE"
	EnvSourceTimeout     = "SOURCE_TIMEOUT"
	EnvSourceConcurrency = "SOURCE_CONCURRENCY"
	EnvSourceRate        = "SOURCE_RATE"
	EnvSourceBurst       = "SOURCE_BURST"
	EnvUserAgents        = "USER_AGENTS"
	EnvOutputDir         = "OUTPUT_DIR"
	EnvProgressEvery     = "PROGRESS_EVERY"
	EnvStatusAddr        = "STATUS_ADDR"
	EnvStatusAPIKey      = "STATUS_APIKEY"
	EnvLogLevel          = "LOG_LEVEL"
	EnvNoColor           = "NO_COLOR"
)
