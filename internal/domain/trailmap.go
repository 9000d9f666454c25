package domain

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ImageType is the encoding of a trail-map image file.
type ImageType string

const (
	ImageWebP  ImageType = "webp"
	ImageAVIF  ImageType = "avif"
	ImageOther ImageType = "other"
)

// ParseImageType maps a raw type onto a known ImageType.
func ParseImageType(raw string) ImageType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "webp":
		return ImageWebP
	case "avif":
		return ImageAVIF
	default:
		return ImageOther
	}
}

// UnmarshalYAML decodes the type tolerantly; unrecognised encodings become "other".
func (t *ImageType) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*t = ParseImageType(raw)
	return nil
}

// TrailMap is one image in the trail-map gallery.
type TrailMap struct {
	Name string    `yaml:"name"`
	File string    `yaml:"file"`
	Type ImageType `yaml:"type"`
	Rank *int      `yaml:"rank"`
	// Resort groups maps of the same ski area by slug. It is loosely related
	// to Resort.Name and not enforced.
	Resort string `yaml:"resort"`
	// Fallback is an optional webp/jpeg sibling served to browsers without avif support.
	Fallback string `yaml:"fallback"`
}

// Validate checks the fields every gallery tile needs.
func (m TrailMap) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.File, validation.Required),
		validation.Field(&m.Rank, validation.NilOrNotEmpty, validation.Min(1)),
	)
}

// ResortGroup describes an intermediate page listing every map of one ski area.
type ResortGroup struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}
