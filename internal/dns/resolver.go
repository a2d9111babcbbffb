package dns

import (
	"context"
	"errors"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/resistanceisuseless/subrecon/internal/config"
)

// Resolver issues typed queries against a fixed set of recursive servers.
// It keeps no per-query state, so one instance is shared by all probes.
type Resolver struct {
	servers     []string
	timeout     time.Duration
	retries     int
	rateLimiter *rate.Limiter
	udp         *dns.Client
	tcp         *dns.Client
	logger      *zap.Logger
}

func New(config *config.Config, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}

	var servers []string
	for _, server := range config.DNS.Servers {
		servers = append(servers, withPort(server))
	}

	// A zero rate disables pacing
	var limiter *rate.Limiter
	if config.RateLimit.Global > 0 {
		burst := config.RateLimit.Burst
		if burst <= 0 {
			burst = config.RateLimit.Global
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit.Global), burst)
	}

	timeout := config.DNSTimeout()
	return &Resolver{
		servers:     servers,
		timeout:     timeout,
		retries:     config.DNS.Retries,
		rateLimiter: limiter,
		udp:         &dns.Client{Net: "udp", Timeout: timeout},
		tcp:         &dns.Client{Net: "tcp", Timeout: timeout},
		logger:      logger,
	}
}

// Resolve returns the answers of type rtype for name. Timeouts and server
// failures are retried against the next server; NXDOMAIN and empty answers
// are final.
func (r *Resolver) Resolve(ctx context.Context, name string, rtype RecordType) ([]Record, error) {
	qtype, err := queryType(rtype)
	if err != nil {
		return nil, &Error{Kind: KindOther, Name: name, Type: rtype, Err: err}
	}
	if len(r.servers) == 0 {
		return nil, &Error{Kind: KindOther, Name: name, Type: rtype, Err: errors.New("no dns servers configured")}
	}

	var lastErr *Error
	for attempt := 0; attempt <= r.retries; attempt++ {
		server := r.servers[attempt%len(r.servers)]

		records, err := r.query(ctx, server, name, rtype, qtype)
		if err == nil {
			return records, nil
		}

		lastErr = err
		if !err.Transient() || ctx.Err() != nil {
			break
		}
		r.logger.Debug("retrying dns query",
			zap.String("name", name),
			zap.String("type", rtype.String()),
			zap.String("server", server),
			zap.Stringer("kind", err.Kind),
			zap.Int("attempt", attempt+1))
	}

	return nil, lastErr
}

func (r *Resolver) query(ctx context.Context, server, name string, rtype RecordType, qtype uint16) ([]Record, *Error) {
	fail := func(kind ErrorKind, err error) *Error {
		return &Error{Kind: kind, Name: name, Type: rtype, Err: err}
	}

	if r.rateLimiter != nil {
		if err := r.rateLimiter.Wait(ctx); err != nil {
			return nil, fail(classifyNetError(ctx, err), err)
		}
	}

	msg := &dns.Msg{}
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	queryCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, _, err := r.udp.ExchangeContext(queryCtx, msg, server)
	if err == nil && resp.Truncated {
		resp, _, err = r.tcp.ExchangeContext(queryCtx, msg, server)
	}
	if err != nil {
		return nil, fail(classifyNetError(queryCtx, err), err)
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, fail(KindNXDomain, nil)
	case dns.RcodeServerFailure, dns.RcodeRefused:
		return nil, fail(KindServFail, errors.New(dns.RcodeToString[resp.Rcode]))
	default:
		return nil, fail(KindOther, errors.New(dns.RcodeToString[resp.Rcode]))
	}

	records := extract(resp.Answer, rtype)
	if len(records) == 0 {
		return nil, fail(KindNoData, nil)
	}
	return records, nil
}

// extract keeps the answers of the asked type. Recursive servers also
// return the CNAME chain for A queries, which is skipped here.
func extract(answers []dns.RR, rtype RecordType) []Record {
	var records []Record
	for _, ans := range answers {
		switch rr := ans.(type) {
		case *dns.A:
			if rtype == TypeA {
				records = append(records, Record{Type: TypeA, Value: rr.A.String()})
			}
		case *dns.CNAME:
			if rtype == TypeCNAME {
				records = append(records, Record{Type: TypeCNAME, Value: strings.TrimSuffix(rr.Target, ".")})
			}
		case *dns.MX:
			if rtype == TypeMX {
				records = append(records, Record{Type: TypeMX, Value: strings.TrimSuffix(rr.Mx, "."), Preference: rr.Preference})
			}
		}
	}

	if rtype == TypeMX {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Preference < records[j].Preference
		})
	}
	return records
}

func classifyNetError(ctx context.Context, err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindOther
}

func queryType(rtype RecordType) (uint16, error) {
	switch rtype {
	case TypeA:
		return dns.TypeA, nil
	case TypeCNAME:
		return dns.TypeCNAME, nil
	case TypeMX:
		return dns.TypeMX, nil
	}
	return 0, errors.New("unsupported record type " + string(rtype))
}

func withPort(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, "53")
}
