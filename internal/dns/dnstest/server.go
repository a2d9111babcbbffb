// Package dnstest provides an in-process DNS server for tests.
package dnstest

import (
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/miekg/dns"
)

// Server answers from a static record table and counts queries per name.
// Names without records get NXDOMAIN; names with records but none of the
// asked type get an empty NOERROR answer. It listens on UDP and TCP on the
// same port.
type Server struct {
	Addr string

	mu         sync.Mutex
	records    map[string][]dns.RR
	rcodes     map[string][]int
	silent     map[string]bool
	truncated  map[string]bool
	queries    map[string]int
	tcpQueries map[string]int
}

// NewServer starts UDP and TCP listeners on a random loopback port. They
// are shut down when the test finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		records:    make(map[string][]dns.RR),
		rcodes:     make(map[string][]int),
		silent:     make(map[string]bool),
		truncated:  make(map[string]bool),
		queries:    make(map[string]int),
		tcpQueries: make(map[string]int),
	}

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	l, err := net.Listen("tcp", pc.LocalAddr().String())
	if err != nil {
		_ = pc.Close()
		t.Fatalf("listen tcp: %v", err)
	}

	udp := &dns.Server{PacketConn: pc, Handler: dns.HandlerFunc(s.handle)}
	tcp := &dns.Server{Listener: l, Handler: dns.HandlerFunc(s.handle)}
	for _, server := range []*dns.Server{udp, tcp} {
		started := make(chan struct{})
		server.NotifyStartedFunc = func() { close(started) }
		go func() { _ = server.ActivateAndServe() }()

		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("mock dns server did not start")
		}
		t.Cleanup(func() { _ = server.Shutdown() })
	}

	s.Addr = pc.LocalAddr().String()
	return s
}

// Add registers a record in zone file syntax, e.g.
// "www.example.com. 60 IN A 93.184.216.34".
func (s *Server) Add(t testing.TB, rr string) {
	t.Helper()
	record, err := dns.NewRR(rr)
	if err != nil {
		t.Fatalf("bad record %q: %v", rr, err)
	}
	name := strings.ToLower(record.Header().Name)

	s.mu.Lock()
	s.records[name] = append(s.records[name], record)
	s.mu.Unlock()
}

// Queue makes the next queries for name fail with the given rcodes, in order.
func (s *Server) Queue(name string, rcodes ...int) {
	name = key(name)
	s.mu.Lock()
	s.rcodes[name] = append(s.rcodes[name], rcodes...)
	s.mu.Unlock()
}

// Silence drops every query for name so the client times out.
func (s *Server) Silence(name string) {
	s.mu.Lock()
	s.silent[key(name)] = true
	s.mu.Unlock()
}

// Truncate makes UDP answers for name empty with the TC bit set, so only
// TCP gets the records.
func (s *Server) Truncate(name string) {
	s.mu.Lock()
	s.truncated[key(name)] = true
	s.mu.Unlock()
}

// TCPCount returns how many queries for name arrived over TCP.
func (s *Server) TCPCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tcpQueries[key(name)]
}

// Count returns how many queries for name have been received.
func (s *Server) Count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[key(name)]
}

func (s *Server) handle(w dns.ResponseWriter, r *dns.Msg) {
	if len(r.Question) == 0 {
		return
	}
	q := r.Question[0]
	name := strings.ToLower(q.Name)

	_, overTCP := w.RemoteAddr().(*net.TCPAddr)

	s.mu.Lock()
	s.queries[name]++
	if overTCP {
		s.tcpQueries[name]++
	}
	truncate := s.truncated[name] && !overTCP
	if s.silent[name] {
		s.mu.Unlock()
		return
	}
	rcode := -1
	if queued := s.rcodes[name]; len(queued) > 0 {
		rcode, s.rcodes[name] = queued[0], queued[1:]
	}
	records := s.records[name]
	s.mu.Unlock()

	msg := new(dns.Msg)
	msg.SetReply(r)

	switch {
	case rcode >= 0:
		msg.SetRcode(r, rcode)
	case truncate:
		msg.Truncated = true
	case len(records) == 0:
		msg.SetRcode(r, dns.RcodeNameError)
	default:
		for _, rr := range records {
			if rr.Header().Rrtype == q.Qtype {
				msg.Answer = append(msg.Answer, rr)
			}
		}
	}
	_ = w.WriteMsg(msg)
}

func key(name string) string {
	return strings.ToLower(dns.Fqdn(name))
}
