package httpprobe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/resistanceisuseless/subrecon/internal/config"
)

func newTestProber(t *testing.T, timeout time.Duration) *Prober {
	cfg := config.Default()
	cfg.HTTP.TimeoutMs = int(timeout / time.Millisecond)
	cfg.HTTP.UserAgent = "subrecon-test"
	return New(cfg, zaptest.NewLogger(t))
}

func hostOf(t *testing.T, server *httptest.Server) string {
	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	return u.Host
}

func TestProbeStatuses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name:    "ok",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
			want:    "HTTP 200",
		},
		{
			name: "permanent redirect",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "https://www.example.com/", http.StatusMovedPermanently)
			},
			want: "HTTP 301 -> https://www.example.com/",
		},
		{
			name: "found without location",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusFound)
			},
			want: "HTTP 302 -> unknown",
		},
		{
			name: "temporary redirect is not expanded",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
			},
			want: "HTTP 307",
		},
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
			want:    "HTTP 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			got, ok := newTestProber(t, time.Second).Probe(context.Background(), hostOf(t, server))
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProbeDoesNotFollowRedirects(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "subrecon-test", r.UserAgent())
		http.Redirect(w, r, "/next", http.StatusFound)
	}))
	defer server.Close()

	got, ok := newTestProber(t, time.Second).Probe(context.Background(), hostOf(t, server))
	assert.True(t, ok)
	assert.Equal(t, "HTTP 302 -> /next", got)
	assert.Equal(t, int32(1), hits.Load())
}

func TestProbeUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	host := hostOf(t, server)
	server.Close()

	got, ok := newTestProber(t, time.Second).Probe(context.Background(), host)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestProbeTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	_, ok := newTestProber(t, 100*time.Millisecond).Probe(context.Background(), hostOf(t, server))
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "HTTP 404", Describe(404, "/ignored"))
	assert.Equal(t, "HTTP 301 -> unknown", Describe(301, ""))
}
