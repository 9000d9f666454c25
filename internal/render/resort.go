package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/DukeRupert/uphill/internal/domain"
)

// dataAttrs returns the data-* attributes shared by cards and rows.
func dataAttrs(r domain.Resort) string {
	return fmt.Sprintf(`data-resort="%s" data-pass="%s" data-access="%s"`,
		esc(strings.ToLower(r.Name)), esc(r.Pass.String()), r.Access())
}

// Card renders the card view of one resort. The button row only appears
// when the resort has a policy link or a trail map.
func Card(r domain.Resort) template.HTML {
	p := r.Policy()
	name := esc(r.Name)

	var b strings.Builder
	fmt.Fprintf(&b, `
      <article class="card mb-3 rounded-4" aria-label="%s uphill policy" %s>
        <div class="card-body">
          <div class="d-flex justify-content-between align-items-start mb-3">
            <div class="d-flex align-items-center gap-2">
              %s
              <div>
                <h2 class="card-title h5 mb-1">%s</h2>
                <a href="%s" target="_blank" rel="noopener noreferrer" class="small text-decoration-none">
                  %s
                </a>
              </div>
            </div>
            <div class="flex-shrink-0">
              %s
            </div>
          </div>
          <div class="row g-2 small">
            <div class="col-12 d-flex">
              <span class="text-muted text-uppercase fw-semibold me-2 card-label">During Ops</span>
              <span>%s</span>
            </div>
            <div class="col-12 d-flex">
              <span class="text-muted text-uppercase fw-semibold me-2 card-label">Schedule</span>
              <span>%s</span>
            </div>
            <div class="col-12 d-flex">
              <span class="text-muted text-uppercase fw-semibold me-2 card-label">Cost</span>
              <span>%s</span>
            </div>
          </div>`,
		name, dataAttrs(r),
		RankBadge(p.Rank),
		name,
		esc(r.Website),
		esc(Hostname(r.Website)),
		PassBadge(r.Pass, true),
		AccessBadge(p.OperationalHoursAccess),
		orDash(p.Schedule),
		orDash(p.Cost),
	)

	if p.Link != "" || p.TrailMap != "" {
		b.WriteString(`
          <div class="d-flex gap-2 mt-3 pt-3 border-top">`)
		if p.Link != "" {
			fmt.Fprintf(&b, `
            <a href="%s" target="_blank" rel="noopener noreferrer" class="btn btn-primary btn-sm flex-fill rounded-pill" aria-label="View %s uphill policy">
              Policy
            </a>`, esc(p.Link), name)
		}
		if p.TrailMap != "" {
			fmt.Fprintf(&b, `
            <a href="%s" target="_blank" rel="noopener noreferrer" class="btn btn-outline-secondary btn-sm flex-fill rounded-pill" aria-label="View %s trail map">
              Trail Map
            </a>`, esc(p.TrailMap), name)
		}
		b.WriteString(`
          </div>`)
	}

	b.WriteString(`
        </div>
      </article>`)

	return template.HTML(b.String())
}

// TableRow renders the table view of one resort.
func TableRow(r domain.Resort) template.HTML {
	p := r.Policy()
	name := esc(r.Name)

	var policy template.HTML
	switch {
	case p.Link != "":
		policy = template.HTML(fmt.Sprintf(
			`<a href="%s" target="_blank" rel="noopener noreferrer" class="btn btn-sm btn-outline-primary rounded-pill" aria-label="View %s uphill policy">View</a>`,
			esc(p.Link), name))
	case p.Note != "":
		policy = template.HTML(fmt.Sprintf(
			`<span class="small text-muted" title="%s">See notes</span>`, noteTitle(p.Note)))
	default:
		policy = placeholder
	}

	trailMap := placeholder
	if p.TrailMap != "" {
		trailMap = template.HTML(fmt.Sprintf(
			`<a href="%s" target="_blank" rel="noopener noreferrer" class="btn btn-sm btn-outline-secondary rounded-pill" aria-label="View %s trail map">Map</a>`,
			esc(p.TrailMap), name))
	}

	return template.HTML(fmt.Sprintf(`
      <tr %s>
        <td class="text-center align-middle">
          %s
        </td>
        <td class="align-middle">
          <div class="fw-semibold">%s</div>
          <a href="%s" target="_blank" rel="noopener noreferrer" class="small text-muted text-decoration-none">
            %s
          </a>
        </td>
        <td class="align-middle">
          %s
        </td>
        <td class="text-center align-middle">
          %s
        </td>
        <td class="small align-middle" style="max-width: 250px;">
          %s
        </td>
        <td class="small align-middle" style="max-width: 200px;">
          %s
        </td>
        <td class="align-middle">
          %s
        </td>
        <td class="align-middle">
          %s
        </td>
      </tr>`,
		dataAttrs(r),
		RankBadge(p.Rank),
		name,
		esc(r.Website),
		esc(Hostname(r.Website)),
		PassBadge(r.Pass, false),
		AccessBadge(p.OperationalHoursAccess),
		orDash(p.Schedule),
		orDash(p.Cost),
		policy,
		trailMap,
	))
}

// Cards renders the card grid for a list of resorts.
func Cards(resorts []domain.Resort) template.HTML {
	var b strings.Builder
	for _, r := range resorts {
		b.WriteString(string(Card(r)))
	}
	return template.HTML(b.String())
}

// TableRows renders the table body for a list of resorts.
func TableRows(resorts []domain.Resort) template.HTML {
	var b strings.Builder
	for _, r := range resorts {
		b.WriteString(string(TableRow(r)))
	}
	return template.HTML(b.String())
}

// ResortCount renders the "{n} of {total} resorts" line.
func ResortCount(n, total int) string {
	return fmt.Sprintf("%d of %d resorts", n, total)
}
