package tenancy

import (
	"fmt"
	"regexp"
	"strings"
)

// Subdomain length limits. Registration enforces the tighter bound; the
// directory schema itself allows up to 63 characters for platform-seeded
// records.
const (
	SubdomainMinLen = 3
	SubdomainMaxLen = 20
)

// Validation reason codes surfaced by the validate-subdomain endpoint.
const (
	ReasonInvalidFormat = "invalid_format"
	ReasonTooShort      = "too_short"
	ReasonTooLong       = "too_long"
	ReasonReserved      = "reserved"
	ReasonTaken         = "taken"
)

// subdomainPattern allows lowercase alphanumeric runs joined by single
// hyphens. No leading, trailing, or doubled hyphens.
var subdomainPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// reservedSubdomains can never be registered by a school.
var reservedSubdomains = map[string]struct{}{
	"www": {}, "api": {}, "app": {}, "admin": {}, "platform": {},
	"mail": {}, "smtp": {}, "ftp": {}, "ns1": {}, "ns2": {},
	"staging": {}, "dev": {}, "test": {}, "demo": {}, "status": {},
	"docs": {}, "support": {}, "help": {}, "blog": {}, "cdn": {},
	"assets": {}, "static": {}, "portal": {}, "dashboard": {}, "oneclass": {},
}

// NormalizeSubdomain lowercases and trims a subdomain so lookups and
// comparisons are case-insensitive everywhere.
func NormalizeSubdomain(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateSubdomain checks length, format, and the reserved list, returning
// a reason code and ok=false on the first violation. Availability against
// the directory (ReasonTaken) is a separate check owned by the schools
// service.
func ValidateSubdomain(s string) (string, bool) {
	sub := NormalizeSubdomain(s)
	switch {
	case len(sub) < SubdomainMinLen:
		return ReasonTooShort, false
	case len(sub) > SubdomainMaxLen:
		return ReasonTooLong, false
	case !subdomainPattern.MatchString(sub):
		return ReasonInvalidFormat, false
	}
	if _, reserved := reservedSubdomains[sub]; reserved {
		return ReasonReserved, false
	}
	return "", true
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a subdomain candidate from a school name: lowercase,
// non-alphanumeric runs collapsed to single hyphens, trimmed to the
// registration length limit.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > SubdomainMaxLen {
		s = strings.Trim(s[:SubdomainMaxLen], "-")
	}
	return s
}

// SubdomainCandidates returns deterministic candidate subdomains for a
// school name, most specific first. Candidates that fail validation (for
// example a reserved slug) are dropped; availability filtering is the
// caller's job.
func SubdomainCandidates(name string) []string {
	base := Slugify(name)
	if base == "" {
		return nil
	}

	raw := []string{base}
	for _, suffix := range []string{"school", "academy", "college"} {
		raw = append(raw, suffixed(base, suffix))
	}
	for i := 2; i <= 5; i++ {
		raw = append(raw, suffixed(base, fmt.Sprintf("%d", i)))
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		if _, ok := ValidateSubdomain(c); ok {
			out = append(out, c)
		}
	}
	return out
}

// suffixed joins base and suffix with a hyphen, shortening the base so the
// result stays within the length limit.
func suffixed(base, suffix string) string {
	maxBase := SubdomainMaxLen - len(suffix) - 1
	if len(base) > maxBase {
		base = strings.Trim(base[:maxBase], "-")
	}
	return base + "-" + suffix
}
