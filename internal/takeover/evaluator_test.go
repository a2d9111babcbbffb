package takeover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/resistanceisuseless/subrecon/internal/config"
	"github.com/resistanceisuseless/subrecon/internal/dns"
	"github.com/resistanceisuseless/subrecon/internal/dns/dnstest"
)

func TestEvaluate(t *testing.T) {
	server := dnstest.NewServer(t)
	server.Add(t, "live.herokuapp.com. 60 IN A 1.2.3.4")
	server.Add(t, "parked.example.net. 60 IN A 0.0.0.0")
	server.Add(t, "mixed.example.net. 60 IN A 0.0.0.0")
	server.Add(t, "mixed.example.net. 60 IN A 5.6.7.8")
	server.Add(t, "aliasonly.example.net. 60 IN CNAME elsewhere.example.net.")

	cfg := config.Default()
	cfg.DNS.Servers = []string{server.Addr}
	cfg.DNS.TimeoutMs = 200
	cfg.RateLimit.Global = 0
	logger := zaptest.NewLogger(t)
	evaluator := New(dns.New(cfg, logger), logger)

	tests := []struct {
		target string
		risky  bool
	}{
		{target: "live.herokuapp.com", risky: false},
		{target: "api-backend.herokuapp.com", risky: true},
		{target: "parked.example.net", risky: true},
		{target: "mixed.example.net", risky: false},
		{target: "aliasonly.example.net", risky: true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			note, ok := evaluator.Evaluate(context.Background(), tt.target)
			assert.Equal(t, tt.risky, ok)
			if tt.risky {
				assert.Equal(t, "Possible dangling CNAME/subdomain takeover risk", note)
			} else {
				assert.Empty(t, note)
			}
		})
	}
}

func TestEvaluateCancelledIsNotAVerdict(t *testing.T) {
	server := dnstest.NewServer(t)
	cfg := config.Default()
	cfg.DNS.Servers = []string{server.Addr}
	cfg.RateLimit.Global = 0
	evaluator := New(dns.New(cfg, nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	note, ok := evaluator.Evaluate(ctx, "gone.herokuapp.com")
	assert.False(t, ok)
	assert.Empty(t, note)
}

func TestProvider(t *testing.T) {
	tests := map[string]string{
		"api-backend.herokuapp.com":                 "Heroku",
		"Org.GitHub.io.":                            "GitHub-Pages",
		"assets.s3.amazonaws.com":                   "AWS-S3",
		"bucket.s3-website-us-east-1.amazonaws.com": "AWS-S3",
		"d111111abcdef8.cloudfront.net":             "AWS-CloudFront",
		"my-lb-1234.us-east-1.elb.amazonaws.com":    "AWS-ELB",
		"contoso.azurewebsites.net":                 "Azure-AppService",
		"site.netlify.app":                          "Netlify",
		"internal.example.com":                      "unknown",
		"herokuapp.com":                             "Heroku",
		"bucket.s3.eu-west-1.amazonaws.com":         "AWS-General",
		"notazure.company.net":                      "unknown",
		"notazure.com":                              "unknown",
		"amazonaws.com.attacker.net":                "unknown",
		"fakecloudfront.net":                        "unknown",
	}

	for target, want := range tests {
		assert.Equal(t, want, Provider(target), target)
	}
}
