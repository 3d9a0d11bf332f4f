package bank

import "strings"

// Domain is an FEA knowledge category.
type Domain string

const (
	DomainStructural Domain = "Structural"
	DomainCrash      Domain = "Crash"
	DomainCFD        Domain = "CFD"
	DomainNVH        Domain = "NVH"

	// DomainAll selects the whole bank. It is never stored on a question.
	DomainAll Domain = "All"
)

// Domains lists the question domains in display order.
var Domains = []Domain{DomainStructural, DomainCrash, DomainCFD, DomainNVH}

// ParseDomain matches s case-insensitively against the known domains and
// "all". Unknown names are returned as-is so that filtering can apply its
// fallback policy.
func ParseDomain(s string) Domain {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, string(DomainAll)) {
		return DomainAll
	}
	for _, d := range Domains {
		if strings.EqualFold(s, string(d)) {
			return d
		}
	}
	return Domain(s)
}

// IsAll reports whether d selects the full bank.
func (d Domain) IsAll() bool {
	return strings.EqualFold(string(d), string(DomainAll))
}

// Matches reports whether a question tagged with other belongs to d.
func (d Domain) Matches(other Domain) bool {
	return strings.EqualFold(string(d), string(other))
}

func (d Domain) String() string {
	return string(d)
}
