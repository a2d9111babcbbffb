// Package httpprobe reports the HTTP status a host answers with on port 80.
package httpprobe

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/resistanceisuseless/subrecon/internal/config"
)

// Redirect bodies are not interesting; drain a little so the connection
// can be reused and drop the rest.
const maxDrain = 64 << 10

type Prober struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

func New(config *config.Config, logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := config.HTTPTimeout()
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	return &Prober{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse // Report redirects, don't follow them
			},
		},
		userAgent: config.HTTP.UserAgent,
		logger:    logger,
	}
}

// Probe issues one GET to http://<host> and describes the response status.
// It returns false when the host could not be reached at all.
func (p *Prober) Probe(ctx context.Context, host string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+host, nil)
	if err != nil {
		p.logger.Debug("invalid probe target", zap.String("host", host), zap.Error(err))
		return "", false
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("http probe failed", zap.String("host", host), zap.Error(err))
		return "", false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	return Describe(resp.StatusCode, resp.Header.Get("Location")), true
}

// Describe renders a status line, including the target for 301 and 302.
func Describe(status int, location string) string {
	if status == http.StatusMovedPermanently || status == http.StatusFound {
		if location == "" {
			location = "unknown"
		}
		return fmt.Sprintf("HTTP %d -> %s", status, location)
	}
	return fmt.Sprintf("HTTP %d", status)
}
