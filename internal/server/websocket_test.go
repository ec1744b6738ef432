package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		host   string
		want   bool
	}{
		{"no origin header", "", "player.example.com", true},
		{"localhost", "http://localhost:8080", "player.example.com", true},
		{"loopback v4", "http://127.0.0.1:8080", "player.example.com", true},
		{"loopback v6", "http://[::1]:8080", "player.example.com", true},
		{"same origin", "https://player.example.com", "player.example.com:443", true},
		{"same origin with port", "http://player.example.com:8080", "player.example.com:8080", true},
		{"private network", "http://192.168.1.20:8080", "player.example.com", true},
		{"ten dot", "http://10.0.0.5", "player.example.com", true},
		{"foreign origin", "https://evil.example.org", "player.example.com", false},
		{"public ip", "http://203.0.113.5", "player.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := checkOrigin(r); got != tt.want {
				t.Errorf("checkOrigin(origin=%q, host=%q) = %v, want %v", tt.origin, tt.host, got, tt.want)
			}
		})
	}
}
