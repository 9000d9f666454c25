package storage

import (
	"path"
	"strings"
)

// siteTypes covers every extension the generator writes. The mime package's
// table depends on the host, so these are pinned.
var siteTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".avif": "image/avif",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".ico":  "image/x-icon",
}

// DetectContentType returns provided when set, otherwise the type implied by
// key's extension, otherwise application/octet-stream.
func DetectContentType(provided, key string) string {
	if provided != "" {
		return provided
	}
	if t, ok := siteTypes[strings.ToLower(path.Ext(key))]; ok {
		return t
	}
	return "application/octet-stream"
}

// IsImage reports whether contentType is an image type.
func IsImage(contentType string) bool {
	base := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	return strings.HasPrefix(base, "image/")
}
