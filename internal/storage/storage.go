// Package storage publishes files of the generated site.
//
// Two backends implement Storage:
//   - LocalStorage writes below a directory, for development and for serving
//     the generated site straight from disk.
//   - R2Storage uploads to a Cloudflare R2 bucket (S3-compatible) fronted by
//     a public URL.
//
// Keys are slash-separated paths relative to the site root, such as
// "index.html" or "trailmaps/thumbs/Vail.jpg".
package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"time"
)

// Storage is a flat key/value store for site files.
type Storage interface {
	// Put writes data at key. Without opts.Overwrite an existing key fails
	// with ErrKeyExists.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get opens the object at key. The caller closes the reader. A missing
	// key yields ErrNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public address of key.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)
}

// PutOptions configures a write.
type PutOptions struct {
	// ContentType is detected from the key's extension when empty.
	ContentType string

	// CacheControl is sent with the object by backends that serve it.
	CacheControl string

	// MaxSize rejects larger payloads with ErrTooLarge. Zero means no limit.
	MaxSize int64

	// Overwrite replaces an existing object.
	Overwrite bool

	// Public marks the object world-readable where the backend has ACLs.
	Public bool
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

// LocalConfig configures LocalStorage.
type LocalConfig struct {
	// BasePath is the output directory, e.g. "./dist".
	BasePath string

	// BaseURL prefixes keys in URL, e.g. "http://localhost:8080".
	BaseURL string
}

// R2Config configures R2Storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// PublicURL is the custom domain serving the bucket. When empty, URL
	// returns presigned links.
	PublicURL string

	// Region defaults to "auto".
	Region string
}

const (
	ProviderLocal = "local"
	ProviderR2    = "r2"
)

// Cache policies for generated files.
const (
	CachePages  = "public, max-age=300"
	CacheImages = "public, max-age=31536000, immutable"
)

// Well-known keys of the generated site.
const (
	IndexKey     = "index.html"
	TrailMapsKey = "trailmaps.html"
)

// TrailMapKey returns the key of a full-size trail-map image.
func TrailMapKey(file string) string {
	return path.Join("trailmaps", file)
}

// ThumbnailKey returns the key of a trail-map thumbnail. Thumbnails are
// always JPEG, whatever the source encoding.
func ThumbnailKey(file string) string {
	base := strings.TrimSuffix(file, path.Ext(file))
	return path.Join("trailmaps", "thumbs", base+".jpg")
}

// GroupPageKey returns the key of the intermediate page listing one ski
// area's maps.
func GroupPageKey(slug string) string {
	return path.Join("trailmaps", slug+".html")
}
