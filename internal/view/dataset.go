package view

import (
	"html/template"

	"github.com/DukeRupert/uphill/internal/domain"
	"github.com/DukeRupert/uphill/internal/filter"
	"github.com/DukeRupert/uphill/internal/render"
)

// Rendering is the output of one recompute.
type Rendering struct {
	Primary template.HTML
	// Secondary renders the alternate layout on demand. Nil when the
	// dataset has only one layout.
	Secondary func() template.HTML
	Count     string
	Matched   int
	Total     int
}

// Dataset filters a catalogue and renders the result.
type Dataset interface {
	// Name labels the dataset in logs and metrics.
	Name() string
	Render(c filter.Criteria) Rendering
}

// ResortDataset renders resorts as cards (primary) and table rows (secondary).
type ResortDataset struct {
	Resorts []domain.Resort
}

func (ResortDataset) Name() string { return "resorts" }

func (d ResortDataset) Render(c filter.Criteria) Rendering {
	list := filter.Resorts(d.Resorts, c)
	return Rendering{
		Primary:   render.Cards(list),
		Secondary: func() template.HTML { return render.TableRows(list) },
		Count:     render.ResortCount(len(list), len(d.Resorts)),
		Matched:   len(list),
		Total:     len(d.Resorts),
	}
}

// TrailMapDataset renders the trail-map gallery. Only the search term applies.
type TrailMapDataset struct {
	Maps   []domain.TrailMap
	Thumbs render.Thumbnails
}

func (TrailMapDataset) Name() string { return "trailmaps" }

func (d TrailMapDataset) Render(c filter.Criteria) Rendering {
	list := filter.TrailMaps(d.Maps, c.Search)
	return Rendering{
		Primary: render.TrailMapGallery(list, d.Thumbs),
		Count:   render.TrailMapCount(len(list), len(d.Maps)),
		Matched: len(list),
		Total:   len(d.Maps),
	}
}
