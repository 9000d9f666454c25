package render

import "html/template"

// Marker comments delimiting the regions the site generator fills in.
const (
	CardsStart  = "<!-- STATIC_CARDS_START -->"
	CardsEnd    = "<!-- STATIC_CARDS_END -->"
	TableStart  = "<!-- STATIC_TABLE_START -->"
	TableEnd    = "<!-- STATIC_TABLE_END -->"
	CountMarker = "<!-- STATIC_COUNT -->"
)

// Region is a marker-delimited block of a page.
type Region struct {
	Name  string
	Start string
	End   string
	// Indent precedes the end marker so the filled block lines up with the
	// surrounding markup.
	Indent string
}

var (
	CardsRegion = Region{Name: "cards", Start: CardsStart, End: CardsEnd, Indent: "          "}
	TableRegion = Region{Name: "table", Start: TableStart, End: TableEnd, Indent: "              "}
)

// Fill returns the region with content between its markers. A page rendered
// with filled regions is byte-identical to the same page rendered with empty
// regions and filled afterwards by the generator.
func (r Region) Fill(content template.HTML) template.HTML {
	return template.HTML(r.Start + "\n" + string(content) + "\n" + r.Indent + r.End)
}

// Empty returns the bare markers, ready for the generator.
func (r Region) Empty() template.HTML {
	return template.HTML(r.Start + r.End)
}
