package enumeration

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/resistanceisuseless/subrecon/internal/dns"
)

// ProbeOrder is the order record types are tried in. The first type that
// resolves wins.
var ProbeOrder = []dns.RecordType{dns.TypeA, dns.TypeCNAME, dns.TypeMX}

// Prober classifies a single fully-qualified name.
type Prober struct {
	resolver Resolver
	http     HTTPProber
	takeover TakeoverEvaluator
	logger   *zap.Logger
	now      func() time.Time
}

// NewProber wires a prober. httpProber and evaluator may be nil, in which
// case the matching annotation is never produced.
func NewProber(resolver Resolver, httpProber HTTPProber, evaluator TakeoverEvaluator, logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{
		resolver: resolver,
		http:     httpProber,
		takeover: evaluator,
		logger:   logger,
		now:      time.Now,
	}
}

// Probe returns the finding for fqdn, or false when no record type resolves
// or the context ends first.
func (p *Prober) Probe(ctx context.Context, fqdn string) (Finding, bool) {
	for _, rtype := range ProbeOrder {
		records, err := p.resolver.Resolve(ctx, fqdn, rtype)
		if ctx.Err() != nil {
			return Finding{}, false
		}
		if err != nil || len(records) == 0 {
			p.logger.Debug("no record",
				zap.String("subdomain", fqdn),
				zap.String("type", rtype.String()),
				zap.Error(err))
			continue
		}
		return p.finding(ctx, fqdn, rtype, records), true
	}
	return Finding{}, false
}

func (p *Prober) finding(ctx context.Context, fqdn string, rtype dns.RecordType, records []dns.Record) Finding {
	finding := Finding{
		Subdomain:    fqdn,
		RecordType:   rtype,
		DiscoveredAt: p.now(),
	}

	switch rtype {
	case dns.TypeA:
		finding.Value = Multiple(recordValues(records))
		if p.http != nil {
			if status, ok := p.http.Probe(ctx, fqdn); ok {
				finding.AdditionalInfo = status
			}
		}

	case dns.TypeCNAME:
		target := records[0].Value
		finding.Value = Single(target)
		if p.takeover != nil {
			if note, ok := p.takeover.Evaluate(ctx, target); ok {
				finding.AdditionalInfo = note
			}
		}

	case dns.TypeMX:
		sorted := append([]dns.Record{}, records...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Preference < sorted[j].Preference
		})
		finding.Value = Multiple(recordValues(sorted))
		finding.AdditionalInfo = fmt.Sprintf("MX priority %d", sorted[0].Preference)
	}

	p.logger.Debug("found subdomain",
		zap.String("subdomain", fqdn),
		zap.String("type", rtype.String()),
		zap.Strings("values", finding.Value.Strings()),
		zap.String("info", finding.AdditionalInfo))
	return finding
}

func recordValues(records []dns.Record) []string {
	values := make([]string, 0, len(records))
	for _, record := range records {
		values = append(values, record.Value)
	}
	return values
}
