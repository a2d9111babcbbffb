// Package takeover flags alias targets that look claimable by a third party.
package takeover

import (
	"context"

	"go.uber.org/zap"

	"github.com/resistanceisuseless/subrecon/internal/dns"
)

// RiskNote is the annotation attached to a risky alias.
const RiskNote = "Possible dangling CNAME/subdomain takeover risk"

// unrouteable is what some providers answer for released resources.
const unrouteable = "0.0.0.0"

// Resolver is the lookup the evaluator needs.
type Resolver interface {
	Resolve(ctx context.Context, name string, rtype dns.RecordType) ([]dns.Record, error)
}

type Evaluator struct {
	resolver Resolver
	logger   *zap.Logger
}

func New(resolver Resolver, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		resolver: resolver,
		logger:   logger,
	}
}

// Evaluate resolves the alias target and returns RiskNote when it does not
// resolve or only resolves to 0.0.0.0. A missing note is not proof of safety.
func (e *Evaluator) Evaluate(ctx context.Context, target string) (string, bool) {
	records, err := e.resolver.Resolve(ctx, target, dns.TypeA)
	if ctx.Err() != nil {
		// Abandoned lookups say nothing about the target
		return "", false
	}

	if err == nil && !allUnrouteable(records) {
		return "", false
	}

	e.logger.Info("possible subdomain takeover",
		zap.String("target", target),
		zap.String("provider", Provider(target)),
		zap.Error(err))
	return RiskNote, true
}

func allUnrouteable(records []dns.Record) bool {
	for _, record := range records {
		if record.Value != unrouteable {
			return false
		}
	}
	return true
}
