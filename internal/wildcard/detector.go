package wildcard

import (
	"context"

	"go.uber.org/zap"

	"github.com/resistanceisuseless/subrecon/internal/dns"
)

// Resolver is the lookup the detector needs.
type Resolver interface {
	Resolve(ctx context.Context, name string, rtype dns.RecordType) ([]dns.Record, error)
}

type Detector struct {
	resolver Resolver
	logger   *zap.Logger
}

func New(resolver Resolver, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		resolver: resolver,
		logger:   logger,
	}
}

// Detect reports whether the zone answers A queries for the literal
// wildcard label. Any lookup failure counts as no wildcard.
func (w *Detector) Detect(ctx context.Context, targetDomain string) bool {
	testDomain := "*." + targetDomain

	records, err := w.resolver.Resolve(ctx, testDomain, dns.TypeA)
	if err != nil || len(records) == 0 {
		w.logger.Debug("no wildcard dns detected",
			zap.String("domain", targetDomain),
			zap.Error(err))
		return false
	}

	var ips []string
	for _, record := range records {
		if !containsIP(ips, record.Value) {
			ips = append(ips, record.Value)
		}
	}
	w.logger.Info("wildcard dns detected",
		zap.String("domain", targetDomain),
		zap.Strings("ips", ips))
	return true
}

func containsIP(ipList []string, targetIP string) bool {
	for _, ip := range ipList {
		if ip == targetIP {
			return true
		}
	}
	return false
}
