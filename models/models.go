package models

import (
	"fmt"
	"strings"
	"time"
)

// ProtocolFamily 代理协议族
type ProtocolFamily string

const (
	HTTPForward ProtocolFamily = "http"
	Socks4      ProtocolFamily = "socks4"
	Socks5      ProtocolFamily = "socks5"
)

// Families 返回固定的处理顺序
func Families() []ProtocolFamily {
	return []ProtocolFamily{HTTPForward, Socks4, Socks5}
}

// ParseFamily 解析协议族名称，https 视为 http 代理
func ParseFamily(name string) (ProtocolFamily, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "http", "https":
		return HTTPForward, nil
	case "socks4":
		return Socks4, nil
	case "socks5":
		return Socks5, nil
	default:
		return "", fmt.Errorf("unknown protocol family: %q", name)
	}
}

// Label 用于汇总输出的大写名称
func (f ProtocolFamily) Label() string {
	return strings.ToUpper(string(f))
}

// Candidate 待验证的 (协议族, 地址) 对
type Candidate struct {
	Family   ProtocolFamily `json:"family"`
	Endpoint string         `json:"endpoint"`
}

// Key 候选项的唯一键
func (c Candidate) Key() string {
	return string(c.Family) + "|" + c.Endpoint
}

func (c Candidate) String() string {
	return string(c.Family) + "://" + c.Endpoint
}

// ProbeOutcome 候选项的最终验证结果
type ProbeOutcome struct {
	Candidate Candidate `json:"candidate"`
	Live      bool      `json:"live"`
	Reason    string    `json:"reason,omitempty"` // 仅用于诊断
	Attempts  int       `json:"attempts"`
}

// BatchResult 单个协议族的批量验证结果
type BatchResult struct {
	Family    ProtocolFamily `json:"family"`
	Live      []string       `json:"live"` // 升序且无重复
	Attempted int            `json:"attempted"`
	LiveCount int            `json:"live_count"`
	Malformed int            `json:"malformed"`
	Elapsed   time.Duration  `json:"elapsed"`
}

// ProgressSnapshot 进度快照
type ProgressSnapshot struct {
	Family  ProtocolFamily `json:"family"`
	Total   int            `json:"total"`
	Settled int            `json:"settled"`
	Live    int            `json:"live"`
	Elapsed time.Duration  `json:"elapsed"`
}
