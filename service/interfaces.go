package service

import (
	"context"
	"proxyprobe/models"
)

// Observer 接收每个已确定的结果，按完成顺序调用，只读
type Observer interface {
	Observe(outcome models.ProbeOutcome)
}

// ObserverFunc 函数形式的 Observer
type ObserverFunc func(outcome models.ProbeOutcome)

func (f ObserverFunc) Observe(outcome models.ProbeOutcome) { f(outcome) }

// CandidateSource 提供已去重的候选项
type CandidateSource interface {
	Candidates(ctx context.Context) []models.Candidate
}

// ResultSink 持久化单个协议族的结果，返回写入位置
type ResultSink interface {
	Write(result models.BatchResult) (string, error)
}

// MetricsProvider 状态接口使用的指标来源
type MetricsProvider interface {
	GetMetrics() map[string]interface{}
}
