// Package filter derives read-only subsets of the catalogue from the current
// search text and select-filter values.
//
// Filtering is a stable subsequence: records keep their dataset order and a
// record is never duplicated or dropped unless a predicate rejects it.
// Missing optional fields never raise; they simply fail the predicate that
// reads them.
package filter

import (
	"net/url"
	"strings"

	"github.com/DukeRupert/uphill/internal/domain"
)

// AccessFilter is the value of the operational-hours select. There is no way
// to ask for resorts whose access is unknown.
type AccessFilter string

const (
	AccessAny AccessFilter = ""
	AccessYes AccessFilter = "true"
	AccessNo  AccessFilter = "false"
)

// ParseAccessFilter maps a select value onto an AccessFilter. Unrecognised
// values are treated as unset.
func ParseAccessFilter(raw string) AccessFilter {
	switch strings.TrimSpace(raw) {
	case "true":
		return AccessYes
	case "false":
		return AccessNo
	default:
		return AccessAny
	}
}

// Matches reports whether a resort's tri-state flag satisfies the filter.
func (f AccessFilter) Matches(a domain.Access) bool {
	switch f {
	case AccessYes:
		return a == domain.AccessYes
	case AccessNo:
		return a == domain.AccessNo
	default:
		return true
	}
}

// Criteria is the filter state of the resort view.
type Criteria struct {
	Search string
	Pass   domain.Pass // zero means any pass
	Access AccessFilter
}

// IsZero reports whether every filter is back at its empty default.
func (c Criteria) IsZero() bool {
	return c.Search == "" && c.Pass == "" && c.Access == AccessAny
}

// Values encodes the criteria as query parameters, omitting unset filters.
func (c Criteria) Values() url.Values {
	v := url.Values{}
	if c.Search != "" {
		v.Set("search", c.Search)
	}
	if c.Pass != "" {
		v.Set("pass", string(c.Pass))
	}
	if c.Access != AccessAny {
		v.Set("access", string(c.Access))
	}
	return v
}

// ParseCriteria reads search, pass and access from query parameters.
func ParseCriteria(v url.Values) Criteria {
	return Criteria{
		Search: v.Get("search"),
		Pass:   ParsePassFilter(v.Get("pass")),
		Access: ParseAccessFilter(v.Get("access")),
	}
}

// ParsePassFilter maps a pass select value onto a Pass. Only the exact
// option values select a pass; anything else means any pass.
func ParsePassFilter(raw string) domain.Pass {
	if p := domain.Pass(raw); p.IsValid() {
		return p
	}
	return ""
}

// MatchesName is the search predicate: a case-insensitive substring match.
// An empty term matches everything.
func MatchesName(name, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}

// Match reports whether a single resort passes all three predicates.
func (c Criteria) Match(r domain.Resort) bool {
	if !MatchesName(r.Name, c.Search) {
		return false
	}
	if c.Pass != "" && r.Pass != c.Pass {
		return false
	}
	return c.Access.Matches(r.Access())
}

// Resorts returns the resorts matching c in their original order.
func Resorts(records []domain.Resort, c Criteria) []domain.Resort {
	out := make([]domain.Resort, 0, len(records))
	for _, r := range records {
		if c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// TrailMaps returns the trail maps whose name contains query, case-insensitively,
// in their original order.
func TrailMaps(maps []domain.TrailMap, query string) []domain.TrailMap {
	out := make([]domain.TrailMap, 0, len(maps))
	for _, m := range maps {
		if MatchesName(m.Name, query) {
			out = append(out, m)
		}
	}
	return out
}
