package service

import "fmt"

// attemptState 候选项在验证过程中的状态
//
// pending    -> attempting
// attempting -> live | retrying | dead
// retrying   -> attempting
//
// live 和 dead 为终态
type attemptState int

const (
	statePending attemptState = iota
	stateAttempting
	stateRetrying
	stateLive
	stateDead
)

func (s attemptState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateAttempting:
		return "attempting"
	case stateRetrying:
		return "retrying"
	case stateLive:
		return "live"
	case stateDead:
		return "dead"
	default:
		return fmt.Sprintf("attemptState(%d)", int(s))
	}
}

func (s attemptState) terminal() bool {
	return s == stateLive || s == stateDead
}

// attemptTracker 记录单个候选项的尝试预算
type attemptTracker struct {
	state    attemptState
	attempts int
	budget   int
	lastErr  error
}

func newAttemptTracker(budget int) *attemptTracker {
	if budget < 1 {
		budget = 1
	}
	return &attemptTracker{state: statePending, budget: budget}
}

// begin 开始一次尝试
func (a *attemptTracker) begin() error {
	if a.state != statePending && a.state != stateRetrying {
		return fmt.Errorf("cannot start attempt from state %s", a.state)
	}
	a.state = stateAttempting
	a.attempts++
	return nil
}

// settle 根据本次尝试的结果迁移状态
func (a *attemptTracker) settle(err error) {
	if a.state != stateAttempting {
		return
	}
	a.lastErr = err
	switch {
	case err == nil:
		a.state = stateLive
	case a.attempts < a.budget:
		a.state = stateRetrying
	default:
		a.state = stateDead
	}
}

// abort 批次被中止时直接进入 dead，中止后到达的成功结果同样作废
func (a *attemptTracker) abort(err error) {
	if a.state == stateDead {
		return
	}
	a.lastErr = err
	a.state = stateDead
}

func (a *attemptTracker) done() bool {
	return a.state.terminal()
}
