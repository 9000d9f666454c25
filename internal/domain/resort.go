// Package domain contains core catalogue types shared by every layer.
//
// This file defines the Resort record and the enumerations hanging off it:
// season pass affiliation, the tri-state operational-hours access flag and
// the presentational rank tiers.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// =============================================================================
// Pass
// =============================================================================

// Pass is the multi-resort season pass a resort belongs to.
// The zero value means "no pass selected" and is only meaningful for filters;
// decoded resorts always carry one of the three named passes.
type Pass string

const (
	PassEpic        Pass = "Epic"
	PassIkon        Pass = "Ikon"
	PassIndependent Pass = "Independent"
)

// String returns the string representation of the pass.
func (p Pass) String() string {
	return string(p)
}

// IsValid returns true if the pass is one of the named passes.
func (p Pass) IsValid() bool {
	switch p {
	case PassEpic, PassIkon, PassIndependent:
		return true
	}
	return false
}

// ParsePass maps a raw value onto a Pass. Epic and Ikon are matched
// case-insensitively; anything else non-empty is Independent. An empty
// value returns the zero Pass.
func ParsePass(raw string) Pass {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return ""
	case strings.EqualFold(raw, string(PassEpic)):
		return PassEpic
	case strings.EqualFold(raw, string(PassIkon)):
		return PassIkon
	default:
		return PassIndependent
	}
}

// UnmarshalJSON accepts any string; unknown affiliations decode as Independent.
func (p *Pass) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("pass: %w", err)
	}
	parsed := ParsePass(raw)
	if parsed == "" {
		parsed = PassIndependent
	}
	*p = parsed
	return nil
}

// =============================================================================
// Access
// =============================================================================

// Access records whether uphill travel is allowed while lifts are spinning.
// Unknown is distinct from No and must never be collapsed into it.
type Access int8

const (
	AccessUnknown Access = iota
	AccessYes
	AccessNo
)

// AccessOf converts an optional boolean into an Access value.
func AccessOf(v *bool) Access {
	switch {
	case v == nil:
		return AccessUnknown
	case *v:
		return AccessYes
	default:
		return AccessNo
	}
}

// Known reports whether the flag carries a yes/no answer.
func (a Access) Known() bool {
	return a == AccessYes || a == AccessNo
}

// String renders the flag as it appears in data attributes.
func (a Access) String() string {
	switch a {
	case AccessYes:
		return "true"
	case AccessNo:
		return "false"
	default:
		return "unknown"
	}
}

// UnmarshalJSON decodes true, false and null.
func (a *Access) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = AccessUnknown
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("operationalHoursAccess: %w", err)
	}
	*a = AccessOf(&v)
	return nil
}

// MarshalJSON encodes the flag back to true, false or null.
func (a Access) MarshalJSON() ([]byte, error) {
	switch a {
	case AccessYes:
		return []byte("true"), nil
	case AccessNo:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// =============================================================================
// Rank tiers
// =============================================================================

// Tier is the display bucket a rank falls into.
type Tier string

const (
	TierGold   Tier = "rank-gold"
	TierSilver Tier = "rank-silver"
	TierBronze Tier = "rank-bronze"
	TierBase   Tier = "rank-base"
)

// RankTier buckets a rank: <=5 gold, <=10 silver, <=15 bronze, else base.
func RankTier(rank int) Tier {
	switch {
	case rank <= 5:
		return TierGold
	case rank <= 10:
		return TierSilver
	case rank <= 15:
		return TierBronze
	default:
		return TierBase
	}
}

// =============================================================================
// Resort
// =============================================================================

// Resort is one entry of the catalogue. Records are immutable after load.
type Resort struct {
	Name         string        `json:"name"`
	Pass         Pass          `json:"pass"`
	Website      string        `json:"website"`
	UphillPolicy *UphillPolicy `json:"uphillPolicy,omitempty"`
}

// UphillPolicy holds the optional policy details of a resort.
// Several resorts may share a rank; rank is not a key.
type UphillPolicy struct {
	Rank                   *int   `json:"rank,omitempty"`
	Link                   string `json:"link,omitempty"`
	TrailMap               string `json:"trailMap,omitempty"`
	Note                   string `json:"note,omitempty"`
	OperationalHoursAccess Access `json:"operationalHoursAccess"`
	Schedule               string `json:"schedule,omitempty"`
	Cost                   string `json:"cost,omitempty"`
}

// Policy returns the uphill policy, or an empty one when absent, so callers
// can read optional fields without nil checks.
func (r *Resort) Policy() UphillPolicy {
	if r.UphillPolicy == nil {
		return UphillPolicy{}
	}
	return *r.UphillPolicy
}

// Rank returns the policy rank, or nil when unranked.
func (r *Resort) Rank() *int {
	return r.Policy().Rank
}

// Access returns the operational-hours access flag.
func (r *Resort) Access() Access {
	return r.Policy().OperationalHoursAccess
}

// Validate checks the fields a record must carry to be rendered.
func (r Resort) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Pass, validation.Required, validation.In(PassEpic, PassIkon, PassIndependent)),
		validation.Field(&r.Website, validation.Required, is.URL),
		validation.Field(&r.UphillPolicy),
	)
}

// Validate checks the optional policy fields that have constraints.
func (p UphillPolicy) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Rank, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&p.Link, is.URL),
	)
}
