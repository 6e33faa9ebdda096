package manager

import (
	"proxyprobe/pkg/constants"
	"sync/atomic"
)

// AgentRotator 轮询返回 User-Agent
type AgentRotator struct {
	agents []string
	index  atomic.Int64
}

// NewAgentRotator 创建新的 User-Agent 轮询器，列表为空时使用默认值
func NewAgentRotator(agents []string) *AgentRotator {
	cleaned := make([]string, 0, len(agents))
	for _, a := range agents {
		if a != "" {
			cleaned = append(cleaned, a)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []string{constants.UserAgent}
	}
	r := &AgentRotator{agents: cleaned}
	r.index.Store(-1)
	return r
}

// Next 获取下一个 User-Agent（轮询方式）
func (r *AgentRotator) Next() string {
	i := r.index.Add(1)
	return r.agents[i%int64(len(r.agents))]
}

// Count 获取 User-Agent 数量
func (r *AgentRotator) Count() int {
	return len(r.agents)
}
