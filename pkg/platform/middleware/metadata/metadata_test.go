package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentgate/pkg/requestcontext"
)

func TestMiddlewareHandler(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		wantIP     string
		wantUA     string
	}{
		{
			name:       "ignores forwarding headers without trusted proxies",
			remoteAddr: "192.168.1.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1", "User-Agent": "Mozilla/5.0"},
			wantIP:     "192.168.1.1",
			wantUA:     "Mozilla/5.0",
		},
		{
			name:       "uses first forwarded address from trusted proxy",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.5"},
			wantIP:     "203.0.113.1",
		},
		{
			name:       "ignores untrusted proxy",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "172.16.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1"},
			wantIP:     "172.16.0.1",
		},
		{
			name:       "uses X-Real-IP from trusted proxy",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:80",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			wantIP:     "198.51.100.7",
		},
		{
			name:       "rejects malformed forwarded address",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			wantIP:     "10.0.0.1",
		},
		{
			name:       "strips brackets from ipv6 remote",
			remoteAddr: "[::1]:8080",
			wantIP:     "::1",
		},
		{
			name:   "unknown without remote address",
			wantIP: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefixes, err := ParsePrefixes(tt.trusted)
			require.NoError(t, err)

			var gotIP, gotUA string
			handler := NewMiddleware(prefixes...).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotIP = requestcontext.ClientIP(r.Context())
				gotUA = requestcontext.UserAgent(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.wantIP, gotIP)
			assert.Equal(t, tt.wantUA, gotUA)
		})
	}
}

func TestParsePrefixes(t *testing.T) {
	_, err := ParsePrefixes([]string{"10.0.0.0/8", "bogus"})
	assert.Error(t, err)

	got, err := ParsePrefixes(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
