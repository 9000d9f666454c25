// Package catalog loads the resort and trail-map datasets once at startup and
// serves them read-only for the lifetime of the process.
//
// The datasets ship embedded in the binary. A data directory containing
// resorts.json and trailmaps.yaml can replace them without a rebuild.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/DukeRupert/uphill/internal/domain"
)

const (
	// ResortsFile is the resort dataset file name.
	ResortsFile = "resorts.json"

	// TrailMapsFile is the trail-map dataset file name.
	TrailMapsFile = "trailmaps.yaml"
)

//go:embed data/resorts.json data/trailmaps.yaml
var embedded embed.FS

// EmbeddedFS returns the datasets compiled into the binary.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return sub
}

// Source picks the dataset filesystem: dataDir when set, the embedded copy otherwise.
func Source(dataDir string) fs.FS {
	if dataDir == "" {
		return EmbeddedFS()
	}
	return os.DirFS(dataDir)
}

// Store is the immutable in-memory catalogue.
type Store struct {
	resorts   []domain.Resort
	trailMaps []domain.TrailMap
	groups    map[string]domain.ResortGroup
	byName    map[string]int
}

type trailMapFile struct {
	Maps   []domain.TrailMap    `yaml:"maps"`
	Groups []domain.ResortGroup `yaml:"groups"`
}

// Load reads and validates both datasets from fsys.
func Load(fsys fs.FS, logger *slog.Logger) (*Store, error) {
	const op = "catalog.load"

	rawResorts, err := fs.ReadFile(fsys, ResortsFile)
	if err != nil {
		return nil, domain.Internal(err, op, fmt.Sprintf("read %s", ResortsFile))
	}
	rawMaps, err := fs.ReadFile(fsys, TrailMapsFile)
	if err != nil {
		return nil, domain.Internal(err, op, fmt.Sprintf("read %s", TrailMapsFile))
	}

	var resorts []domain.Resort
	if err := json.Unmarshal(rawResorts, &resorts); err != nil {
		return nil, domain.Wrap(err, domain.EINVALID, op, fmt.Sprintf("decode %s", ResortsFile))
	}

	var maps trailMapFile
	if err := yaml.Unmarshal(rawMaps, &maps); err != nil {
		return nil, domain.Wrap(err, domain.EINVALID, op, fmt.Sprintf("decode %s", TrailMapsFile))
	}

	store, err := New(resorts, maps.Maps, maps.Groups)
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("catalog loaded",
			"resorts", len(store.resorts),
			"trail_maps", len(store.trailMaps),
			"groups", len(store.groups),
		)
	}

	return store, nil
}

// New validates the records and builds a Store. The slices are copied so the
// caller cannot mutate the catalogue afterwards.
func New(resorts []domain.Resort, trailMaps []domain.TrailMap, groups []domain.ResortGroup) (*Store, error) {
	const op = "catalog.new"

	s := &Store{
		resorts:   make([]domain.Resort, len(resorts)),
		trailMaps: make([]domain.TrailMap, len(trailMaps)),
		groups:    make(map[string]domain.ResortGroup, len(groups)),
		byName:    make(map[string]int, len(resorts)),
	}
	copy(s.resorts, resorts)
	copy(s.trailMaps, trailMaps)

	for i, r := range s.resorts {
		if err := r.Validate(); err != nil {
			return nil, domain.FromValidation(op, r.Name, err)
		}
		if _, dup := s.byName[r.Name]; dup {
			return nil, domain.Conflict(op, fmt.Sprintf("resort %q listed twice", r.Name))
		}
		s.byName[r.Name] = i
	}

	for _, m := range s.trailMaps {
		if err := m.Validate(); err != nil {
			return nil, domain.FromValidation(op, m.Name, err)
		}
	}

	for _, g := range groups {
		if g.Slug == "" {
			return nil, domain.Invalid(op, "trail-map group without slug")
		}
		s.groups[g.Slug] = g
	}

	return s, nil
}

// Resorts returns every resort in dataset order. The returned slice must not
// be modified.
func (s *Store) Resorts() []domain.Resort {
	return s.resorts[:len(s.resorts):len(s.resorts)]
}

// TrailMaps returns every trail map in dataset order. The returned slice must
// not be modified.
func (s *Store) TrailMaps() []domain.TrailMap {
	return s.trailMaps[:len(s.trailMaps):len(s.trailMaps)]
}

// Resort looks a resort up by its exact name.
func (s *Store) Resort(name string) (domain.Resort, bool) {
	i, ok := s.byName[name]
	if !ok {
		return domain.Resort{}, false
	}
	return s.resorts[i], true
}

// MapsByResort returns the trail maps grouped under slug, in dataset order.
func (s *Store) MapsByResort(slug string) []domain.TrailMap {
	var out []domain.TrailMap
	for _, m := range s.trailMaps {
		if m.Resort == slug {
			out = append(out, m)
		}
	}
	return out
}

// Group returns the metadata of an intermediate trail-map page.
func (s *Store) Group(slug string) (domain.ResortGroup, error) {
	g, ok := s.groups[slug]
	if !ok {
		return domain.ResortGroup{}, domain.NotFound("catalog.group", "trail map group", slug)
	}
	return g, nil
}

// Groups returns the slugs of every intermediate trail-map page.
func (s *Store) Groups() []domain.ResortGroup {
	out := make([]domain.ResortGroup, 0, len(s.groups))
	for _, m := range s.trailMaps {
		if g, ok := s.groups[m.Resort]; ok && !containsGroup(out, g.Slug) {
			out = append(out, g)
		}
	}
	return out
}

func containsGroup(groups []domain.ResortGroup, slug string) bool {
	for _, g := range groups {
		if g.Slug == slug {
			return true
		}
	}
	return false
}
