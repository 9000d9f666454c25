package sitegen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	// Registers the webp decoder with image.Decode.
	_ "golang.org/x/image/webp"

	"github.com/DukeRupert/uphill/internal/domain"
	"github.com/DukeRupert/uphill/internal/metrics"
	"github.com/DukeRupert/uphill/internal/render"
	"github.com/DukeRupert/uphill/internal/storage"
)

// Thumbnail bounds. Gallery tiles are 4:3.
const (
	ThumbnailMaxWidth    = 640
	ThumbnailMaxHeight   = 480
	ThumbnailJPEGQuality = 85

	thumbnailWorkers = 4
)

// errUndecodable marks a source the image decoders cannot read, such as avif.
var errUndecodable = errors.New("no decoder for image format")

// Thumbnail decodes an image and returns it resized to fit the thumbnail
// bounds, encoded as JPEG.
func Thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUndecodable, err)
	}

	thumb := imaging.Fit(img, ThumbnailMaxWidth, ThumbnailMaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(ThumbnailJPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// thumbnailSource picks the file a map's thumbnail is made from. Avif has no
// decoder, so its fallback is used when there is one.
func thumbnailSource(m domain.TrailMap) (string, bool) {
	if m.Type != domain.ImageAVIF {
		return m.File, true
	}
	if m.Fallback != "" {
		return m.Fallback, true
	}
	return "", false
}

// thumbnails publishes a thumbnail for every map whose image is available
// under trailmaps/ in assets, and returns the URLs of those it wrote. Maps
// without a usable source are skipped with a warning.
func (g *Generator) thumbnails(ctx context.Context, assets fs.FS, maps []domain.TrailMap) (render.Thumbnails, error) {
	var (
		mu     sync.Mutex
		thumbs = render.Thumbnails{}
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(thumbnailWorkers)

	for _, m := range maps {
		src, ok := thumbnailSource(m)
		if !ok {
			g.logger.Warn("skipping thumbnail", "map", m.Name, "file", m.File, "reason", "avif without fallback")
			metrics.ThumbnailsTotal.WithLabelValues("skipped").Inc()
			continue
		}

		eg.Go(func() error {
			data, err := fs.ReadFile(assets, path.Join("trailmaps", src))
			if err != nil {
				g.logger.Warn("skipping thumbnail", "map", m.Name, "file", src, "error", err)
				metrics.ThumbnailsTotal.WithLabelValues("skipped").Inc()
				return nil
			}

			thumb, err := Thumbnail(data)
			if errors.Is(err, errUndecodable) {
				g.logger.Warn("skipping thumbnail", "map", m.Name, "file", src, "error", err)
				metrics.ThumbnailsTotal.WithLabelValues("skipped").Inc()
				return nil
			}
			if err != nil {
				metrics.ThumbnailsTotal.WithLabelValues("failed").Inc()
				return fmt.Errorf("thumbnail %s: %w", src, err)
			}

			key := storage.ThumbnailKey(m.File)
			if err := g.files.Put(ctx, key, bytes.NewReader(thumb), storage.PutOptions{
				ContentType:  "image/jpeg",
				CacheControl: storage.CacheImages,
				Overwrite:    true,
				Public:       true,
			}); err != nil {
				metrics.ThumbnailsTotal.WithLabelValues("failed").Inc()
				return fmt.Errorf("publish thumbnail %s: %w", key, err)
			}
			metrics.ThumbnailsTotal.WithLabelValues("generated").Inc()

			mu.Lock()
			thumbs[m.File] = "/" + key
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return thumbs, nil
}

// ExistingThumbnails reports the published thumbnails of maps, for servers
// that render galleries from a site the generator already wrote.
func ExistingThumbnails(ctx context.Context, files storage.Storage, maps []domain.TrailMap) (render.Thumbnails, error) {
	thumbs := render.Thumbnails{}
	for _, m := range maps {
		key := storage.ThumbnailKey(m.File)
		ok, err := files.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("check thumbnail %s: %w", key, err)
		}
		if ok {
			thumbs[m.File] = "/" + key
		}
	}
	return thumbs, nil
}
