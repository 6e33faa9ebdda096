package proxy

import (
	stderrors "errors"
	"proxyprobe/pkg/errors"
	"testing"
)

func TestStrictEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		ok       bool
	}{
		{"1.2.3.4:8080", true},
		{"proxy.example.com:3128", true},
		{"[2001:db8::1]:1080", true},
		{"bad-endpoint", false},
		{"", false},
		{":8080", false},
		{"1.2.3.4:", false},
		{"1.2.3.4:0", false},
		{"1.2.3.4:70000", false},
		{"1.2.3.4:http", false},
		{"2001:db8::1:1080", false},
	}
	for _, tt := range tests {
		err := StrictEndpoint(tt.endpoint)
		if (err == nil) != tt.ok {
			t.Errorf("StrictEndpoint(%q) = %v, want ok=%v", tt.endpoint, err, tt.ok)
		}
		if err != nil && !stderrors.Is(err, errors.ErrMalformedEndpoint) {
			t.Errorf("StrictEndpoint(%q) error %v does not wrap ErrMalformedEndpoint", tt.endpoint, err)
		}
	}
}

func TestLooseEndpoint(t *testing.T) {
	if err := LooseEndpoint("bad-endpoint"); !stderrors.Is(err, errors.ErrMalformedEndpoint) {
		t.Fatalf("LooseEndpoint(bad-endpoint) = %v", err)
	}
	if err := LooseEndpoint("host:notaport"); err != nil {
		t.Fatalf("LooseEndpoint(host:notaport) = %v", err)
	}
}

func TestPolicyByName(t *testing.T) {
	for _, name := range []string{"", "strict", "LOOSE"} {
		if _, err := PolicyByName(name); err != nil {
			t.Errorf("PolicyByName(%q) error = %v", name, err)
		}
	}
	if _, err := PolicyByName("none"); err == nil {
		t.Error("PolicyByName(none) should fail")
	}
}
