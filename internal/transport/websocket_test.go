package transport

import (
	"net/http/httptest"
	"testing"
)

func TestCheckOrigin(t *testing.T) {
	t.Parallel()

	h := &Handler{allowedOrigins: []string{"https://shop.example.com"}}

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"allowed origin", "https://shop.example.com", true},
		{"disallowed origin", "https://evil.example.com", false},
		{"no origin header", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/ws/chat", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := h.checkOrigin(r); got != tt.want {
				t.Errorf("checkOrigin = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckOriginDevModeAllowsAll(t *testing.T) {
	t.Parallel()

	h := &Handler{isDev: true}
	r := httptest.NewRequest("GET", "/ws/chat", nil)
	r.Header.Set("Origin", "https://anything.example.com")
	if !h.checkOrigin(r) {
		t.Fatal("dev mode should accept any origin")
	}
}

func TestCheckOriginWildcard(t *testing.T) {
	t.Parallel()

	h := &Handler{allowedOrigins: []string{"*"}}
	r := httptest.NewRequest("GET", "/ws/chat", nil)
	r.Header.Set("Origin", "https://anywhere.example.com")
	if !h.checkOrigin(r) {
		t.Fatal("wildcard should accept any origin")
	}
}

func TestRemoteIP(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/ws/chat", nil)
	r.RemoteAddr = "203.0.113.7:52100"
	if got := remoteIP(r); got != "203.0.113.7" {
		t.Errorf("remoteIP = %q", got)
	}

	r.RemoteAddr = "203.0.113.7"
	if got := remoteIP(r); got != "203.0.113.7" {
		t.Errorf("remoteIP without port = %q", got)
	}
}
