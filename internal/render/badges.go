// Package render turns catalogue records into HTML fragments.
//
// Every function here is pure: identical input yields byte-identical output
// and nothing reads global state. The server, the live view sessions and the
// static site generator all call the same functions, which is what keeps the
// pre-rendered page and the dynamically re-rendered page interchangeable.
package render

import (
	"fmt"
	"html/template"
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/DukeRupert/uphill/internal/domain"
)

const (
	passHeightCompact = 20
	passHeightRegular = 24

	// Intrinsic logo sizes.
	epicLogoWidth, epicLogoHeight = 160, 39
	ikonLogoWidth, ikonLogoHeight = 160, 71
)

// notePolicy strips all markup from free-text notes before they land in an attribute.
var notePolicy = bluemonday.StrictPolicy()

func esc(s string) string {
	return template.HTMLEscapeString(s)
}

// RankBadge renders the gold/silver/bronze/base rank badge. An absent rank
// renders nothing.
func RankBadge(rank *int) template.HTML {
	if rank == nil || *rank <= 0 {
		return ""
	}
	return template.HTML(fmt.Sprintf(
		`<span class="rank-badge %s" title="Uphill Policy Rank #%d">#%d</span>`,
		domain.RankTier(*rank), *rank, *rank,
	))
}

// PassWidth returns the logo width that keeps the brand's aspect ratio at height.
func PassWidth(pass domain.Pass, height int) int {
	switch pass {
	case domain.PassEpic:
		return int(math.Round(float64(height*epicLogoWidth) / epicLogoHeight))
	case domain.PassIkon:
		return int(math.Round(float64(height*ikonLogoWidth) / ikonLogoHeight))
	default:
		return 0
	}
}

// PassBadge renders the Epic/Ikon logo, or a text badge for independents.
// compact selects the 20px card size instead of the 24px table size.
func PassBadge(pass domain.Pass, compact bool) template.HTML {
	height := passHeightRegular
	if compact {
		height = passHeightCompact
	}

	switch pass {
	case domain.PassEpic:
		return logo("/images/epic-logo.webp", "Epic Pass", PassWidth(pass, height), height)
	case domain.PassIkon:
		return logo("/images/ikon-logo.webp", "Ikon Pass", PassWidth(pass, height), height)
	default:
		label := "Independent"
		if compact {
			label = "Indie"
		}
		return template.HTML(`<span class="badge bg-secondary">` + label + `</span>`)
	}
}

func logo(src, alt string, width, height int) template.HTML {
	return template.HTML(fmt.Sprintf(
		`<img src="%s" alt="%s" width="%d" height="%d" class="img-fluid" style="max-height: %dpx;" decoding="async">`,
		src, alt, width, height, height,
	))
}

// AccessBadge renders yes, no and unknown as three distinct fragments.
func AccessBadge(a domain.Access) template.HTML {
	switch a {
	case domain.AccessYes:
		return `<span class="badge bg-success">Yes</span>`
	case domain.AccessNo:
		return `<span class="badge bg-warning text-dark">No</span>`
	default:
		return placeholder
	}
}

const placeholder template.HTML = `<span class="text-muted">-</span>`

// Hostname returns the host of raw without a leading "www.". Input that does
// not parse as an absolute URL is returned unchanged.
func Hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// HighlightMatch wraps every case-insensitive occurrence of query in text
// with <mark>. Text outside and inside the marks is escaped.
func HighlightMatch(text, query string) template.HTML {
	if query == "" {
		return template.HTML(esc(text))
	}

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return template.HTML(esc(text))
	}

	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		b.WriteString(esc(text[last:loc[0]]))
		b.WriteString("<mark>")
		b.WriteString(esc(text[loc[0]:loc[1]]))
		b.WriteString("</mark>")
		last = loc[1]
	}
	b.WriteString(esc(text[last:]))
	return template.HTML(b.String())
}

// noteTitle returns a plain-text, attribute-safe version of a note.
func noteTitle(note string) string {
	return notePolicy.Sanitize(note)
}

// orDash returns the escaped value, or "-" when empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return esc(s)
}
