package enumeration

import (
	"context"

	"github.com/resistanceisuseless/subrecon/internal/dns"
)

// Resolver performs one typed lookup, retries included.
type Resolver interface {
	Resolve(ctx context.Context, name string, rtype dns.RecordType) ([]dns.Record, error)
}

// HTTPProber describes the HTTP status of a host, or reports false when
// the host is unreachable.
type HTTPProber interface {
	Probe(ctx context.Context, host string) (string, bool)
}

// TakeoverEvaluator annotates alias targets that look claimable.
type TakeoverEvaluator interface {
	Evaluate(ctx context.Context, target string) (string, bool)
}

// WildcardDetector reports whether a zone answers for arbitrary labels.
type WildcardDetector interface {
	Detect(ctx context.Context, domain string) bool
}

// Progress receives one increment per finished candidate.
type Progress interface {
	StartPhase(phase string, total int)
	Increment()
	Complete()
}

type nopProgress struct{}

func (nopProgress) StartPhase(string, int) {}
func (nopProgress) Increment()             {}
func (nopProgress) Complete()              {}
