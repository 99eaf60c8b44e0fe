// Package covers derives BlurHash placeholders from book cover thumbnails.
// The placeholder is stored alongside the liked book record so shelf
// listings can paint covers before (or without) the real image loading.
package covers

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// hashSize is the target size for BlurHash computation. BlurHash is a
// low-resolution placeholder, so a small thumbnail produces nearly
// identical results at a fraction of the cost.
const hashSize = 64

// maxThumbnailBytes caps cover downloads. Provider thumbnails are tens
// of kilobytes; anything larger is not a thumbnail.
const maxThumbnailBytes = 5 << 20

// Fetcher downloads cover thumbnails and computes their BlurHash.
type Fetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFetcher creates a cover fetcher.
func NewFetcher(logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// BlurhashFromURL downloads the thumbnail and computes its BlurHash.
// Failures are returned, not cached: a missing placeholder is cosmetic
// and callers treat it as best-effort.
func (f *Fetcher) BlurhashFromURL(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("no thumbnail url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch thumbnail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch thumbnail: status %d", resp.StatusCode)
	}

	hash, err := Compute(io.LimitReader(resp.Body, maxThumbnailBytes))
	if err != nil {
		return "", err
	}

	f.logger.Debug("computed cover blurhash", "url", url, "hash", hash)
	return hash, nil
}

// Compute decodes an image and returns its BlurHash.
// 4x3 components keep the hash around 20-30 characters while still
// capturing enough structure for a book cover.
func Compute(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	hash, err := blurhash.Encode(4, 3, shrink(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// shrink scales the image down to at most hashSize on its longer edge.
// Nearest-neighbor is fine here; the output feeds a blur.
func shrink(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= hashSize && srcHeight <= hashSize {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = hashSize
		dstHeight = max((srcHeight*hashSize)/srcWidth, 1)
	} else {
		dstHeight = hashSize
		dstWidth = max((srcWidth*hashSize)/srcHeight, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for y := 0; y < dstHeight; y++ {
		for x := 0; x < dstWidth; x++ {
			srcX := int(float64(x) * xRatio)
			srcY := int(float64(y) * yRatio)
			dst.Set(x, y, img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}
	return dst
}
