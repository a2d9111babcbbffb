package enumeration

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/resistanceisuseless/subrecon/internal/dns"
)

// Value holds either one string or a list of strings and keeps that shape
// on the wire.
type Value struct {
	values   []string
	multiple bool
}

func Single(value string) Value {
	return Value{values: []string{value}}
}

func Multiple(values []string) Value {
	return Value{values: append([]string{}, values...), multiple: true}
}

func (v Value) IsMultiple() bool { return v.multiple }

// Strings returns a copy of the held values.
func (v Value) Strings() []string {
	return append([]string{}, v.values...)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.multiple {
		return json.Marshal(v.Strings())
	}
	if len(v.values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(v.values[0])
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*v = Multiple(values)
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*v = Single(value)
	return nil
}

// Finding is one discovered subdomain.
type Finding struct {
	Subdomain      string
	RecordType     dns.RecordType
	Value          Value
	AdditionalInfo string
	DiscoveredAt   time.Time
}

// Detail is the wire form of a Finding.
type Detail struct {
	Subdomain      string         `json:"subdomain"`
	RecordType     dns.RecordType `json:"record_type"`
	Value          Value          `json:"value"`
	AdditionalInfo *string        `json:"additional_info"`
}

func (f Finding) Detail() Detail {
	detail := Detail{
		Subdomain:  f.Subdomain,
		RecordType: f.RecordType,
		Value:      f.Value,
	}
	if f.AdditionalInfo != "" {
		info := f.AdditionalInfo
		detail.AdditionalInfo = &info
	}
	return detail
}

// Result holds every finding of one enumeration in candidate order.
// Page and PageSize select the view returned by PageFindings and Response.
type Result struct {
	Domain           string
	Findings         []Finding
	WildcardDetected bool
	Page             int
	PageSize         int

	// Partial is set when the deadline expired before every candidate
	// finished. It is not part of the wire response.
	Partial bool
}

func (r *Result) Total() int { return len(r.Findings) }

// PageFindings returns the requested page without modifying Findings.
func (r *Result) PageFindings() []Finding {
	return Paginate(r.Findings, r.Page, r.PageSize)
}

// Response is the wire shape returned to API and CLI callers.
type Response struct {
	Domain           string   `json:"domain"`
	FoundSubdomains  []Detail `json:"found_subdomains"`
	TotalSubdomains  int      `json:"total_subdomains"`
	Page             int      `json:"page"`
	PageSize         int      `json:"page_size"`
	WildcardDetected bool     `json:"wildcard_detected"`
}

func (r *Result) Response() Response {
	page := r.PageFindings()
	details := make([]Detail, 0, len(page))
	for _, finding := range page {
		details = append(details, finding.Detail())
	}

	return Response{
		Domain:           r.Domain,
		FoundSubdomains:  details,
		TotalSubdomains:  r.Total(),
		Page:             r.Page,
		PageSize:         r.PageSize,
		WildcardDetected: r.WildcardDetected,
	}
}

// Paginate returns the 1-based page of findings. Pages past the end are
// empty rather than an error.
func Paginate(findings []Finding, page, pageSize int) []Finding {
	if page < 1 || pageSize < 1 || page-1 > len(findings)/pageSize {
		return []Finding{}
	}

	start := (page - 1) * pageSize
	if start >= len(findings) {
		return []Finding{}
	}
	end := start + pageSize
	if end > len(findings) {
		end = len(findings)
	}
	return findings[start:end:end]
}
