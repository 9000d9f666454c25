package render

import (
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DukeRupert/uphill/internal/domain"
)

// TrailMapPath is the URL prefix trail-map images are served under.
const TrailMapPath = "/trailmaps/"

// TrailMapImage renders the image of a gallery tile. Avif sources get a
// <picture> wrapper so browsers without avif support load the fallback.
// thumb, when set, replaces the full image as the displayed source.
func TrailMapImage(m domain.TrailMap, thumb string) template.HTML {
	src := TrailMapPath + m.File
	alt := esc(m.Name + " trail map")
	display := src
	if thumb != "" {
		display = thumb
	}

	if m.Type == domain.ImageAVIF {
		fallback := display
		if m.Fallback != "" {
			fallback = TrailMapPath + m.Fallback
		}
		return template.HTML(fmt.Sprintf(`
      <picture>
        <source srcset="%s" type="image/avif">
        <img src="%s" alt="%s" loading="lazy" decoding="async" class="card-img-top object-fit-cover rounded-top-4">
      </picture>`, esc(src), esc(fallback), alt))
	}

	return template.HTML(fmt.Sprintf(
		`<img src="%s" alt="%s" loading="lazy" decoding="async" class="card-img-top object-fit-cover rounded-top-4">`,
		esc(display), alt))
}

// TypeLabel returns the upper-cased image type shown on a tile.
// Casers carry state, so each call gets its own.
func TypeLabel(t domain.ImageType) string {
	return cases.Upper(language.Und).String(string(t))
}

// TrailMapCard renders one gallery tile linking to the full-size image.
func TrailMapCard(m domain.TrailMap, thumb string) template.HTML {
	return template.HTML(fmt.Sprintf(`
      <div class="col">
        <a href="%s" target="_blank" rel="noopener noreferrer" class="card h-100 text-decoration-none rounded-4">
          <div class="ratio ratio-4x3 bg-light rounded-4">
            %s
          </div>
          <div class="card-body py-2 px-3 d-flex justify-content-between align-items-center">
            <div class="d-flex align-items-center gap-2 text-truncate">
              %s
              <span class="fw-semibold text-truncate">%s</span>
            </div>
            <span class="badge bg-success text-uppercase small type-%s">%s</span>
          </div>
        </a>
      </div>`,
		esc(TrailMapPath+m.File),
		TrailMapImage(m, thumb),
		RankBadge(m.Rank),
		esc(m.Name),
		esc(string(m.Type)), esc(TypeLabel(m.Type)),
	))
}

// Thumbnails maps a trail-map file name to the URL of its thumbnail.
// A nil map renders full-size images.
type Thumbnails map[string]string

// TrailMapGallery renders the tiles of every map in order.
func TrailMapGallery(maps []domain.TrailMap, thumbs Thumbnails) template.HTML {
	var b strings.Builder
	for _, m := range maps {
		b.WriteString(string(TrailMapCard(m, thumbs[m.File])))
	}
	return template.HTML(b.String())
}

// TrailMapCount renders the gallery count: "{n} trail maps" when nothing is
// filtered out, "{n} of {total} trail maps" otherwise.
func TrailMapCount(n, total int) string {
	if n == total {
		return fmt.Sprintf("%d trail maps", n)
	}
	return fmt.Sprintf("%d of %d trail maps", n, total)
}

// ResortMapCount renders the count on a single resort's map page.
func ResortMapCount(n int) string {
	if n == 1 {
		return "1 trail map"
	}
	return fmt.Sprintf("%d trail maps", n)
}
