package manager

import (
	"proxyprobe/pkg/constants"
	"testing"
)

func TestAgentRotatorRoundRobin(t *testing.T) {
	r := NewAgentRotator([]string{"a", "", "b", "c"})
	if r.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", r.Count())
	}
	want := []string{"a", "b", "c", "a", "b"}
	for i, w := range want {
		if got := r.Next(); got != w {
			t.Fatalf("Next() #%d = %q, want %q", i, got, w)
		}
	}
}

func TestAgentRotatorDefault(t *testing.T) {
	r := NewAgentRotator(nil)
	if got := r.Next(); got != constants.UserAgent {
		t.Fatalf("Next() = %q, want default agent", got)
	}
}
