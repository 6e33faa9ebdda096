package service

import (
	"errors"
	"testing"
)

func TestAttemptTracker(t *testing.T) {
	fail := errors.New("refused")

	tests := []struct {
		name      string
		budget    int
		results   []error
		wantState attemptState
		wantCount int
	}{
		{"live first try", 2, []error{nil}, stateLive, 1},
		{"live on retry", 2, []error{fail, nil}, stateLive, 2},
		{"dead after budget", 2, []error{fail, fail}, stateDead, 2},
		{"no retries", 1, []error{fail}, stateDead, 1},
		{"zero budget means one attempt", 0, []error{fail}, stateDead, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAttemptTracker(tt.budget)
			if a.state != statePending {
				t.Fatalf("initial state = %s", a.state)
			}
			for _, r := range tt.results {
				if a.done() {
					t.Fatalf("tracker finished early in state %s", a.state)
				}
				if err := a.begin(); err != nil {
					t.Fatalf("begin: %v", err)
				}
				if a.state != stateAttempting {
					t.Fatalf("state after begin = %s", a.state)
				}
				a.settle(r)
			}
			if a.state != tt.wantState {
				t.Errorf("state = %s, want %s", a.state, tt.wantState)
			}
			if a.attempts != tt.wantCount {
				t.Errorf("attempts = %d, want %d", a.attempts, tt.wantCount)
			}
		})
	}
}

func TestAttemptTrackerRejectsInvalidTransitions(t *testing.T) {
	a := newAttemptTracker(2)
	if err := a.begin(); err != nil {
		t.Fatal(err)
	}
	if err := a.begin(); err == nil {
		t.Error("begin while attempting should fail")
	}
	a.settle(nil)
	if err := a.begin(); err == nil {
		t.Error("begin after live should fail")
	}
	a.settle(errors.New("late"))
	if a.state != stateLive {
		t.Errorf("settle changed terminal state to %s", a.state)
	}
}

func TestAttemptTrackerAbortRevokesLive(t *testing.T) {
	a := newAttemptTracker(2)
	_ = a.begin()
	a.settle(nil)
	a.abort(errors.New("canceled"))
	if a.state != stateDead {
		t.Fatalf("state = %s, want dead", a.state)
	}

	a.abort(errors.New("second"))
	if a.lastErr.Error() != "canceled" {
		t.Errorf("abort on dead overwrote reason: %v", a.lastErr)
	}
}

func TestAttemptTrackerAbort(t *testing.T) {
	a := newAttemptTracker(3)
	_ = a.begin()
	a.settle(errors.New("refused"))
	if a.state != stateRetrying {
		t.Fatalf("state = %s, want retrying", a.state)
	}
	a.abort(errors.New("canceled"))
	if a.state != stateDead || a.lastErr.Error() != "canceled" {
		t.Errorf("state = %s, err = %v", a.state, a.lastErr)
	}
}
