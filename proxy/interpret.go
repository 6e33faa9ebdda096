package proxy

import (
	"bytes"
	"encoding/json"
	"net/netip"
)

// ResponseInterpreter 判断回显服务的响应体是否可信
type ResponseInterpreter interface {
	Name() string
	Match(body []byte) bool
}

// IPLiteral 响应体本身就是一个IP地址，例如 icanhazip.com
type IPLiteral struct{}

func (IPLiteral) Name() string { return "ip-literal" }

func (IPLiteral) Match(body []byte) bool {
	_, err := netip.ParseAddr(string(bytes.TrimSpace(body)))
	return err == nil
}

// OriginJSON 响应体是含有 origin 字段的JSON对象，例如 httpbin.org/ip
type OriginJSON struct{}

func (OriginJSON) Name() string { return "origin-json" }

func (OriginJSON) Match(body []byte) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(body), &obj); err != nil {
		return false
	}
	_, ok := obj["origin"]
	return ok
}

// DefaultInterpreters 按顺序先尝试IP字面量，再尝试JSON
func DefaultInterpreters() []ResponseInterpreter {
	return []ResponseInterpreter{IPLiteral{}, OriginJSON{}}
}

// Interpret 依次尝试解释器，返回第一个匹配的名称
func Interpret(body []byte, interpreters []ResponseInterpreter) (string, bool) {
	for _, in := range interpreters {
		if in.Match(body) {
			return in.Name(), true
		}
	}
	return "", false
}
