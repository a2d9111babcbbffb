package dns

import (
	"errors"
	"fmt"
)

// RecordType is the subset of DNS record types the prober understands.
type RecordType string

const (
	TypeA     RecordType = "A"
	TypeCNAME RecordType = "CNAME"
	TypeMX    RecordType = "MX"
)

func (t RecordType) String() string { return string(t) }

// Record is one answer value. Preference is only set for MX.
type Record struct {
	Type       RecordType
	Value      string
	Preference uint16
}

// ErrorKind classifies a failed lookup.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindNXDomain
	KindNoData
	KindTimeout
	KindServFail
)

func (k ErrorKind) String() string {
	switch k {
	case KindNXDomain:
		return "NXDOMAIN"
	case KindNoData:
		return "NODATA"
	case KindTimeout:
		return "timeout"
	case KindServFail:
		return "SERVFAIL"
	default:
		return "other"
	}
}

// Error is returned by Resolve for every failed lookup.
type Error struct {
	Kind ErrorKind
	Name string
	Type RecordType
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Type, e.Name, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Type, e.Name, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether the lookup is worth asking again.
func (e *Error) Transient() bool {
	return e.Kind == KindTimeout || e.Kind == KindServFail
}

// IsNotFound reports whether err is an authoritative "no such record" answer.
func IsNotFound(err error) bool {
	var dnsErr *Error
	if errors.As(err, &dnsErr) {
		return dnsErr.Kind == KindNXDomain || dnsErr.Kind == KindNoData
	}
	return false
}

// IsTransient reports whether err is a timeout or server failure.
func IsTransient(err error) bool {
	var dnsErr *Error
	return errors.As(err, &dnsErr) && dnsErr.Transient()
}
