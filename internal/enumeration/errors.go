package enumeration

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
)

// ErrInvalidInput is returned before any network activity when the target
// domain is unusable.
var ErrInvalidInput = errors.New("invalid input")

var domainPattern = regexp.MustCompile(`^[a-z0-9_]([a-z0-9_\-]{0,61}[a-z0-9])?(\.[a-z0-9_]([a-z0-9_\-]{0,61}[a-z0-9])?)*$`)

// NormalizeDomain turns user input such as "https://Example.com/login" into
// a bare lower-case zone name.
func NormalizeDomain(raw string) (string, error) {
	domain := strings.TrimSpace(raw)

	if i := strings.Index(domain, "://"); i >= 0 {
		domain = domain[i+3:]
	}
	if i := strings.IndexAny(domain, "/?#"); i >= 0 {
		domain = domain[:i]
	}
	if i := strings.LastIndex(domain, "@"); i >= 0 {
		domain = domain[i+1:]
	}
	if host, _, err := net.SplitHostPort(domain); err == nil {
		domain = host
	}
	domain = strings.TrimSuffix(strings.ToLower(domain), ".")

	if domain == "" {
		return "", fmt.Errorf("%w: empty domain %q", ErrInvalidInput, raw)
	}
	if len(domain) > 253 || !domainPattern.MatchString(domain) {
		return "", fmt.Errorf("%w: malformed domain %q", ErrInvalidInput, raw)
	}
	return domain, nil
}
