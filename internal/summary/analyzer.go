package summary

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/resistanceisuseless/subrecon/internal/dns"
	"github.com/resistanceisuseless/subrecon/internal/enumeration"
	"github.com/resistanceisuseless/subrecon/internal/takeover"
)

type Summary struct {
	Domain           string
	TotalSubdomains  int
	RecordTypes      map[string]int
	HTTPStatuses     map[string]int // status class, e.g. "2xx"
	Providers        map[string]int // hosting services behind CNAME targets
	TakeoverRisks    []string
	NoHTTP           int
	WildcardDetected bool
	Partial          bool
}

// Analyze summarizes every finding of result, not just the requested page.
func Analyze(result *enumeration.Result) *Summary {
	summary := &Summary{
		Domain:           result.Domain,
		TotalSubdomains:  result.Total(),
		RecordTypes:      make(map[string]int),
		HTTPStatuses:     make(map[string]int),
		Providers:        make(map[string]int),
		WildcardDetected: result.WildcardDetected,
		Partial:          result.Partial,
	}

	for _, finding := range result.Findings {
		summary.RecordTypes[finding.RecordType.String()]++

		switch finding.RecordType {
		case dns.TypeA:
			if class := statusClass(finding.AdditionalInfo); class != "" {
				summary.HTTPStatuses[class]++
			} else {
				summary.NoHTTP++
			}
		case dns.TypeCNAME:
			values := finding.Value.Strings()
			if len(values) > 0 {
				if provider := takeover.Provider(values[0]); provider != "unknown" {
					summary.Providers[provider]++
				}
			}
			if finding.AdditionalInfo == takeover.RiskNote {
				summary.TakeoverRisks = append(summary.TakeoverRisks, finding.Subdomain)
			}
		}
	}

	return summary
}

// statusClass maps "HTTP 301 -> ..." to "3xx".
func statusClass(info string) string {
	if !strings.HasPrefix(info, "HTTP ") || len(info) < 6 {
		return ""
	}
	return info[5:6] + "xx"
}

var (
	headerColor = color.New(color.FgWhite, color.Bold)
	warnColor   = color.New(color.FgYellow)
	riskColor   = color.New(color.FgRed, color.Bold)
)

func (s *Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 60))
	headerColor.Fprintf(w, "              ENUMERATION SUMMARY: %s\n", s.Domain)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	fmt.Fprintf(w, "\nSubdomains found: %d\n", s.TotalSubdomains)
	for _, kv := range sortMapByValue(s.RecordTypes) {
		fmt.Fprintf(w, "   %-25s: %d\n", kv.Key+" records", kv.Value)
	}

	if len(s.HTTPStatuses) > 0 || s.NoHTTP > 0 {
		fmt.Fprintf(w, "\nHTTP reachability:\n")
		for _, kv := range sortMapByValue(s.HTTPStatuses) {
			fmt.Fprintf(w, "   %-25s: %d\n", kv.Key, kv.Value)
		}
		if s.NoHTTP > 0 {
			fmt.Fprintf(w, "   %-25s: %d\n", "no answer", s.NoHTTP)
		}
	}

	if len(s.Providers) > 0 {
		fmt.Fprintf(w, "\nHosting services (via CNAME):\n")
		for _, kv := range sortMapByValue(s.Providers) {
			fmt.Fprintf(w, "   %-25s: %d\n", kv.Key, kv.Value)
		}
	}

	if len(s.TakeoverRisks) > 0 {
		riskColor.Fprintf(w, "\nPossible takeover risks: %d\n", len(s.TakeoverRisks))
		for _, name := range s.TakeoverRisks {
			fmt.Fprintf(w, "   %s\n", name)
		}
	}

	if s.WildcardDetected {
		warnColor.Fprintln(w, "\nWildcard DNS detected: findings may include false positives")
	}
	if s.Partial {
		warnColor.Fprintln(w, "\nDeadline reached: results are partial")
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 60))
}

type KeyValue struct {
	Key   string
	Value int
}

func sortMapByValue(m map[string]int) []KeyValue {
	var kvs []KeyValue
	for k, v := range m {
		kvs = append(kvs, KeyValue{k, v})
	}

	sort.Slice(kvs, func(i, j int) bool {
		if kvs[i].Value != kvs[j].Value {
			return kvs[i].Value > kvs[j].Value
		}
		return kvs[i].Key < kvs[j].Key
	})

	return kvs
}
