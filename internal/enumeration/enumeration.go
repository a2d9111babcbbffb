package enumeration

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/resistanceisuseless/subrecon/internal/candidates"
	"github.com/resistanceisuseless/subrecon/internal/config"
	"github.com/resistanceisuseless/subrecon/internal/dns"
	"github.com/resistanceisuseless/subrecon/internal/httpprobe"
	"github.com/resistanceisuseless/subrecon/internal/takeover"
	"github.com/resistanceisuseless/subrecon/internal/wildcard"
)

// Request is one enumeration call. Candidates overrides the configured
// list; Page and PageSize default to 1 and the configured page size.
type Request struct {
	Domain     string
	Candidates []string
	Page       int
	PageSize   int
}

type Enumerator struct {
	wildcard   WildcardDetector
	prober     *Prober
	progress   Progress
	logger     *zap.Logger
	workers    int
	deadline   time.Duration
	pageSize   int
	candidates []string
}

type options struct {
	resolver Resolver
	http     HTTPProber
	takeover TakeoverEvaluator
	wildcard WildcardDetector
	progress Progress
	now      func() time.Time
}

type Option func(*options)

// WithResolver replaces the DNS client used by every stage.
func WithResolver(r Resolver) Option { return func(o *options) { o.resolver = r } }

func WithHTTPProber(h HTTPProber) Option { return func(o *options) { o.http = h } }

func WithTakeoverEvaluator(t TakeoverEvaluator) Option { return func(o *options) { o.takeover = t } }

func WithWildcardDetector(w WildcardDetector) Option { return func(o *options) { o.wildcard = w } }

func WithProgress(p Progress) Option { return func(o *options) { o.progress = p } }

// WithClock sets the time source for Finding.DiscoveredAt.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func New(config *config.Config, logger *zap.Logger, opts ...Option) *Enumerator {
	if logger == nil {
		logger = zap.NewNop()
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.resolver == nil {
		o.resolver = dns.New(config, logger)
	}
	if o.http == nil {
		o.http = httpprobe.New(config, logger)
	}
	if o.takeover == nil {
		o.takeover = takeover.New(o.resolver, logger)
	}
	if o.wildcard == nil {
		o.wildcard = wildcard.New(o.resolver, logger)
	}
	if o.progress == nil {
		o.progress = nopProgress{}
	}

	prober := NewProber(o.resolver, o.http, o.takeover, logger)
	if o.now != nil {
		prober.now = o.now
	}

	e := &Enumerator{
		wildcard:   o.wildcard,
		prober:     prober,
		progress:   o.progress,
		logger:     logger,
		workers:    config.Enumeration.Workers,
		deadline:   config.Deadline(),
		pageSize:   config.Enumeration.PageSize,
		candidates: config.Enumeration.Candidates,
	}
	if e.workers < 1 {
		e.workers = 1
	}
	if e.deadline <= 0 {
		e.deadline = 30 * time.Second
	}
	if e.pageSize < 1 {
		e.pageSize = 10
	}
	return e
}

// Enumerate probes every candidate label under req.Domain. Only a malformed
// domain is an error; lookup failures just leave candidates out, and an
// expired deadline returns whatever finished with Result.Partial set.
func (e *Enumerator) Enumerate(ctx context.Context, req Request) (*Result, error) {
	domain, err := NormalizeDomain(req.Domain)
	if err != nil {
		return nil, err
	}

	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = e.pageSize
	}

	override := req.Candidates
	if len(override) == 0 {
		override = e.candidates
	}
	labels := candidates.Generate(override)

	runCtx, cancel := context.WithTimeout(ctx, e.deadline)
	defer cancel()

	started := time.Now()
	e.logger.Info("starting enumeration",
		zap.String("domain", domain),
		zap.Int("candidates", len(labels)),
		zap.Int("workers", e.workers))

	wildcardDetected := e.wildcard.Detect(runCtx, domain)
	findings, partial := e.fanout(runCtx, domain, labels)

	if partial {
		e.logger.Warn("enumeration deadline reached, returning partial results",
			zap.String("domain", domain),
			zap.Duration("deadline", e.deadline),
			zap.Int("found", len(findings)))
	}
	e.logger.Info("enumeration finished",
		zap.String("domain", domain),
		zap.Int("found", len(findings)),
		zap.Bool("wildcard", wildcardDetected),
		zap.Bool("partial", partial),
		zap.Duration("elapsed", time.Since(started)))

	return &Result{
		Domain:           domain,
		Findings:         findings,
		WildcardDetected: wildcardDetected,
		Page:             page,
		PageSize:         pageSize,
		Partial:          partial,
	}, nil
}

type slot struct {
	index   int
	finding Finding
	found   bool
	// abandoned is set when the context ended while the probe ran, so its
	// lookups may have been cut short.
	abandoned bool
}

// fanout probes labels on a bounded pool and returns the findings in label
// order. It stops waiting when ctx ends and reports that as partial.
func (e *Enumerator) fanout(ctx context.Context, domain string, labels []string) ([]Finding, bool) {
	e.progress.StartPhase("Probing candidates", len(labels))
	defer e.progress.Complete()

	// Buffered to len(labels) so abandoned workers never block on send
	results := make(chan slot, len(labels))

	go func() {
		defer close(results)

		var g errgroup.Group
		g.SetLimit(e.workers)
		for i, label := range labels {
			if ctx.Err() != nil {
				break
			}
			fqdn := label + "." + domain
			g.Go(func() error {
				results <- e.probe(ctx, i, fqdn)
				return nil
			})
		}
		_ = g.Wait()
	}()

	slots := make([]slot, len(labels))
	received := 0
	partial := false
	record := func(s slot) {
		slots[s.index] = s
		received++
		if s.abandoned {
			partial = true
		}
	}

	// drain keeps whatever already finished without waiting for the rest
	drain := func() {
		for {
			select {
			case s, ok := <-results:
				if !ok {
					return
				}
				record(s)
			default:
				return
			}
		}
	}

collect:
	for {
		select {
		case s, ok := <-results:
			if !ok {
				break collect
			}
			record(s)
		case <-ctx.Done():
			drain()
			break collect
		}
	}
	if received < len(labels) {
		partial = true
	}

	findings := make([]Finding, 0, len(labels))
	for _, s := range slots {
		if s.found {
			findings = append(findings, s.finding)
		}
	}
	return findings, partial
}

// probe isolates one candidate so a panic only loses that candidate.
func (e *Enumerator) probe(ctx context.Context, index int, fqdn string) (s slot) {
	s.index = index
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("probe panicked",
				zap.String("subdomain", fqdn),
				zap.Any("panic", r))
			s.found = false
		}
		e.progress.Increment()
	}()

	s.finding, s.found = e.prober.Probe(ctx, fqdn)
	s.abandoned = ctx.Err() != nil
	return s
}
