package sitegen

import (
	"bytes"
	"html/template"
	"log/slog"
	"regexp"

	"github.com/DukeRupert/uphill/internal/render"
)

// regionPattern matches a region's markers and everything between them,
// non-greedily so repeated regions are replaced one by one.
func regionPattern(r render.Region) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(r.Start) + `[\s\S]*?` + regexp.QuoteMeta(r.End))
}

var (
	cardsPattern = regionPattern(render.CardsRegion)
	tablePattern = regionPattern(render.TableRegion)
)

// Inject fills the marker regions of a rendered page: every cards and table
// region gets its content, and the first count marker becomes count.
// Missing markers are logged and skipped.
func Inject(page []byte, cards, table template.HTML, count string, logger *slog.Logger) []byte {
	if logger == nil {
		logger = slog.Default()
	}

	page = fill(page, cardsPattern, render.CardsRegion, cards, logger)
	page = fill(page, tablePattern, render.TableRegion, table, logger)

	marker := []byte(render.CountMarker)
	if !bytes.Contains(page, marker) {
		logger.Warn("count marker not found")
		return page
	}
	return bytes.Replace(page, marker, []byte(template.HTMLEscapeString(count)), 1)
}

func fill(page []byte, re *regexp.Regexp, r render.Region, content template.HTML, logger *slog.Logger) []byte {
	if !re.Match(page) {
		logger.Warn("region markers not found", "region", r.Name)
		return page
	}
	return re.ReplaceAllLiteral(page, []byte(r.Fill(content)))
}
