package enumeration

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/resistanceisuseless/subrecon/internal/dns"
)

// fakeResolver answers from a table keyed by name and type. Unknown names
// are NXDOMAIN.
type fakeResolver struct {
	mu      sync.Mutex
	records map[string]map[dns.RecordType][]dns.Record
	delays  map[string]time.Duration
	panics  map[string]bool
	calls   []string

	// Lookups running at the same time, and the highest value seen.
	inFlight int
	peak     int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		records: make(map[string]map[dns.RecordType][]dns.Record),
		delays:  make(map[string]time.Duration),
		panics:  make(map[string]bool),
	}
}

func (f *fakeResolver) add(name string, rtype dns.RecordType, values ...string) *fakeResolver {
	if f.records[name] == nil {
		f.records[name] = make(map[dns.RecordType][]dns.Record)
	}
	for _, value := range values {
		f.records[name][rtype] = append(f.records[name][rtype], dns.Record{Type: rtype, Value: value})
	}
	return f
}

func (f *fakeResolver) addMX(name string, preference uint16, host string) *fakeResolver {
	if f.records[name] == nil {
		f.records[name] = make(map[dns.RecordType][]dns.Record)
	}
	f.records[name][dns.TypeMX] = append(f.records[name][dns.TypeMX],
		dns.Record{Type: dns.TypeMX, Value: host, Preference: preference})
	return f
}

func (f *fakeResolver) Resolve(ctx context.Context, name string, rtype dns.RecordType) ([]dns.Record, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rtype.String()+" "+name)
	delay := f.delays[name]
	shouldPanic := f.panics[name]
	records := f.records[strings.ToLower(name)][rtype]
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if shouldPanic {
		panic("resolver exploded for " + name)
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, &dns.Error{Kind: dns.KindTimeout, Name: name, Type: rtype, Err: ctx.Err()}
		}
	}

	if len(records) == 0 {
		return nil, &dns.Error{Kind: dns.KindNXDomain, Name: name, Type: rtype}
	}
	return append([]dns.Record{}, records...), nil
}

func (f *fakeResolver) peakInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak
}

func (f *fakeResolver) called(entry string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, call := range f.calls {
		if call == entry {
			return true
		}
	}
	return false
}

// fakeHTTP answers with a fixed status per host; unknown hosts are
// unreachable.
type fakeHTTP map[string]string

func (f fakeHTTP) Probe(ctx context.Context, host string) (string, bool) {
	status, ok := f[host]
	return status, ok
}

type countingProgress struct {
	mu         sync.Mutex
	total      int
	increments int
	completed  bool
}

func (p *countingProgress) StartPhase(phase string, total int) {
	p.mu.Lock()
	p.total = total
	p.mu.Unlock()
}

func (p *countingProgress) Increment() {
	p.mu.Lock()
	p.increments++
	p.mu.Unlock()
}

func (p *countingProgress) Complete() {
	p.mu.Lock()
	p.completed = true
	p.mu.Unlock()
}
