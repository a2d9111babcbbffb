package wildcard

import (
	"context"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/resistanceisuseless/subrecon/internal/config"
	subdns "github.com/resistanceisuseless/subrecon/internal/dns"
	"github.com/resistanceisuseless/subrecon/internal/dns/dnstest"
)

func newDetector(t *testing.T, server *dnstest.Server) *Detector {
	cfg := config.Default()
	cfg.DNS.Servers = []string{server.Addr}
	cfg.DNS.TimeoutMs = 200
	cfg.RateLimit.Global = 0
	logger := zaptest.NewLogger(t)
	return New(subdns.New(cfg, logger), logger)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		records []string
		rcodes  []int
		want    bool
	}{
		{
			name:    "wildcard zone",
			records: []string{"*.example.com. 60 IN A 10.1.1.1", "*.example.com. 60 IN A 10.1.1.1"},
			want:    true,
		},
		{
			name: "nxdomain",
			want: false,
		},
		{
			name:    "wildcard cname only",
			records: []string{"*.example.com. 60 IN CNAME parking.example.net."},
			want:    false,
		},
		{
			name:   "persistent servfail",
			rcodes: []int{dns.RcodeServerFailure, dns.RcodeServerFailure},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := dnstest.NewServer(t)
			for _, rr := range tt.records {
				server.Add(t, rr)
			}
			server.Queue("*.example.com", tt.rcodes...)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			assert.Equal(t, tt.want, newDetector(t, server).Detect(ctx, "example.com"))
			assert.GreaterOrEqual(t, server.Count("*.example.com"), 1)
		})
	}
}

func TestContainsIP(t *testing.T) {
	assert.True(t, containsIP([]string{"1.1.1.1", "2.2.2.2"}, "2.2.2.2"))
	assert.False(t, containsIP(nil, "2.2.2.2"))
}
