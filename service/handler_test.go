package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"proxyprobe/models"

	"github.com/gin-gonic/gin"
)

type fixedProvider map[string]interface{}

func (p fixedProvider) GetMetrics() map[string]interface{} { return p }

func newTestRouter(apiKey string) (*gin.Engine, *Reporter) {
	gin.SetMode(gin.TestMode)
	reporter := NewReporter(100)
	reporter.logf = func(string, ...interface{}) {}
	metrics := NewMetrics(nil, nil)
	h := NewStatusHandler(reporter, metrics, map[string]MetricsProvider{
		"dial": fixedProvider{"opened": 3},
	})
	return NewStatusRouter(h, apiKey), reporter
}

func serve(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStatusAuth(t *testing.T) {
	r, _ := newTestRouter("secret")

	tests := []struct {
		path  string
		token string
		want  int
	}{
		{"/health", "", http.StatusOK},
		{"/progress", "", http.StatusUnauthorized},
		{"/progress", "wrong", http.StatusUnauthorized},
		{"/progress", "secret", http.StatusOK},
		{"/metrics", "secret", http.StatusOK},
		{"/prometheus", "", http.StatusUnauthorized},
		{"/prometheus", "secret", http.StatusOK},
		{"/nope", "secret", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.token, func(t *testing.T) {
			if w := serve(r, tt.path, tt.token); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestProgressHandler(t *testing.T) {
	r, reporter := newTestRouter("")
	reporter.Begin(models.Socks5, 4)
	reporter.Observe(models.ProbeOutcome{Live: true})

	w := serve(r, "/progress", "")
	var body struct {
		Family  string `json:"family"`
		Total   int    `json:"total"`
		Settled int    `json:"settled"`
		Live    int    `json:"live"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Family != "socks5" || body.Total != 4 || body.Settled != 1 || body.Live != 1 {
		t.Errorf("progress = %+v", body)
	}
}

func TestMetricsHandlerIncludesComponents(t *testing.T) {
	r, _ := newTestRouter("")
	w := serve(r, "/metrics", "")

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	components, ok := body["components"].(map[string]interface{})
	if !ok || components["dial"] == nil {
		t.Errorf("components = %v", body["components"])
	}
}

func TestPrometheusHandler(t *testing.T) {
	r, _ := newTestRouter("")
	w := serve(r, "/prometheus", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "proxyprobe_candidates_settled_total") &&
		!strings.Contains(w.Header().Get("Content-Type"), "text/plain") {
		t.Errorf("unexpected body: %q", w.Body.String())
	}
}
