package render

import (
	"fmt"
	"html/template"
	"strconv"

	"github.com/DukeRupert/uphill/internal/domain"
)

// OptionID is the element id of the idx-th suggestion; the search input's
// aria-activedescendant points at it.
func OptionID(idx int) string {
	return "autocomplete-option-" + strconv.Itoa(idx)
}

func suggestion(idx int, name, rank, query, trailing, trailingClass string) template.HTML {
	return template.HTML(fmt.Sprintf(`
    <li class="list-group-item list-group-item-action autocomplete-item" role="option" id="%s" data-index="%d" data-name="%s">
      <span class="autocomplete-item-rank">%s</span>
      <span class="autocomplete-item-name">%s</span>
      <span class="%s">%s</span>
    </li>`,
		OptionID(idx), idx, esc(name),
		rank,
		HighlightMatch(name, query),
		trailingClass, esc(trailing),
	))
}

// ResortSuggestion renders one resort entry of the autocomplete list with
// the matched part of the name highlighted.
func ResortSuggestion(r domain.Resort, idx int, query string) template.HTML {
	rank := "#-"
	if p := r.Rank(); p != nil && *p > 0 {
		rank = "#" + strconv.Itoa(*p)
	}
	return suggestion(idx, r.Name, rank, query, r.Pass.String(), "autocomplete-item-pass")
}

// TrailMapSuggestion renders one trail-map entry of the autocomplete list.
func TrailMapSuggestion(m domain.TrailMap, idx int, query string) template.HTML {
	rank := "-"
	if m.Rank != nil && *m.Rank > 0 {
		rank = "#" + strconv.Itoa(*m.Rank)
	}
	return suggestion(idx, m.Name, rank, query, string(m.Type), "autocomplete-item-type")
}

// SuggestionEmpty renders the single item shown when nothing matches.
func SuggestionEmpty(message string) template.HTML {
	return template.HTML(`<li class="list-group-item text-center text-muted py-3">` + esc(message) + `</li>`)
}
