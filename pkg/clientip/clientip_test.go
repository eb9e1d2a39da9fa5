package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		forwarded  string
		realIP     string
		trustProxy bool
		want       string
	}{
		{"remote addr", "10.0.0.1:5555", "", "", false, "10.0.0.1"},
		{"headers ignored when untrusted", "10.0.0.1:5555", "1.2.3.4", "5.6.7.8", false, "10.0.0.1"},
		{"forwarded first hop", "10.0.0.1:5555", "1.2.3.4, 10.0.0.2", "", true, "1.2.3.4"},
		{"real ip fallback", "10.0.0.1:5555", "garbage", "5.6.7.8", true, "5.6.7.8"},
		{"no headers", "10.0.0.1:5555", "", "", true, "10.0.0.1"},
		{"remote without port", "10.0.0.1", "", "", false, "10.0.0.1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remote
			if tc.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realIP != "" {
				r.Header.Set("X-Real-IP", tc.realIP)
			}
			assert.Equal(t, tc.want, FromRequest(r, tc.trustProxy))
		})
	}
}
