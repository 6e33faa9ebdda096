package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Level 日志级别
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var (
	mu     sync.RWMutex
	level  = LevelInfo
	logger = stdlog.New(os.Stdout, "", stdlog.LstdFlags)

	debugTag = color.New(color.FgHiBlack).Sprint("[DEBUG]")
	infoTag  = color.New(color.FgCyan).Sprint("[INFO]")
	warnTag  = color.New(color.FgYellow).Sprint("[WARN]")
	errorTag = color.New(color.FgHiRed).Sprint("[ERROR]")
	fatalTag = color.New(color.FgRed, color.Bold).Sprint("[FATAL]")
)

var exit = os.Exit

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (Level, error) {
	if l, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %q", name)
}

// SetLevel 设置日志级别
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetOutput 设置日志输出位置
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

// DisableColor 关闭彩色输出
func DisableColor() {
	color.NoColor = true
	mu.Lock()
	defer mu.Unlock()
	debugTag, infoTag, warnTag, errorTag, fatalTag = "[DEBUG]", "[INFO]", "[WARN]", "[ERROR]", "[FATAL]"
}

func output(l Level, fatal bool, format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if l < level {
		return
	}
	var tag string
	switch {
	case fatal:
		tag = fatalTag
	case l == LevelDebug:
		tag = debugTag
	case l == LevelInfo:
		tag = infoTag
	case l == LevelWarn:
		tag = warnTag
	default:
		tag = errorTag
	}
	logger.Printf("%s %s", tag, fmt.Sprintf(format, args...))
}

// Debug 调试日志
func Debug(format string, args ...interface{}) {
	output(LevelDebug, false, format, args...)
}

// Info 普通日志
func Info(format string, args ...interface{}) {
	output(LevelInfo, false, format, args...)
}

// Warn 警告日志
func Warn(format string, args ...interface{}) {
	output(LevelWarn, false, format, args...)
}

// Error 错误日志
func Error(format string, args ...interface{}) {
	output(LevelError, false, format, args...)
}

// Fatal 记录日志后退出进程
func Fatal(format string, args ...interface{}) {
	output(LevelError, true, format, args...)
	exit(1)
}
