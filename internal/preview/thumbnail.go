package preview

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"mime"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/avirbig/cohen-services-hub/internal/apperrors"
	"github.com/avirbig/cohen-services-hub/internal/model"
)

const defaultMaxPixels = 40_000_000

// Decoder turns an attachment into something an <img> can show.
type Decoder interface {
	Thumbnail(a model.Attachment) (string, error)
}

// Thumbnailer scales images down to fit a square box and returns them as
// JPEG data URLs. Image types it cannot decode are passed through as a data
// URL of the original bytes.
type Thumbnailer struct {
	maxPx     int
	maxPixels int
	quality   int
}

func NewThumbnailer(maxPx int) *Thumbnailer {
	if maxPx <= 0 {
		maxPx = 160
	}
	return &Thumbnailer{maxPx: maxPx, maxPixels: defaultMaxPixels, quality: 80}
}

// WithPixelLimit caps width*height of images the thumbnailer will decode.
// Non-positive n keeps the default.
func (t *Thumbnailer) WithPixelLimit(n int) *Thumbnailer {
	if n > 0 {
		t.maxPixels = n
	}
	return t
}

func (t *Thumbnailer) Thumbnail(a model.Attachment) (string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(a.Data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			if mt, ok := imageType(a.Type); ok {
				return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(a.Data), nil
			}
			return "", apperrors.ErrNotAnImage.WithError(err).WithContext("type", a.Type)
		}
		return "", apperrors.ErrUnsupportedImage.WithError(err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(t.maxPixels) {
		return "", apperrors.ErrImageTooLarge.
			WithContext("width", cfg.Width).
			WithContext("height", cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(a.Data))
	if err != nil {
		return "", apperrors.ErrUnsupportedImage.WithError(err)
	}

	dst := image.NewRGBA(fit(src.Bounds(), t.maxPx))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: t.quality}); err != nil {
		return "", apperrors.ErrThumbnailEncode.WithError(err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// imageType returns the bare media type of t when it is an image/* type.
func imageType(t string) (string, bool) {
	mt, _, err := mime.ParseMediaType(t)
	if err != nil || !strings.HasPrefix(mt, "image/") {
		return "", false
	}
	return mt, true
}

// fit returns the largest rectangle with b's aspect ratio inside a
// maxPx square. Images already small enough keep their size.
func fit(b image.Rectangle, maxPx int) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if w <= maxPx && h <= maxPx {
		return image.Rect(0, 0, max(w, 1), max(h, 1))
	}
	if w >= h {
		return image.Rect(0, 0, maxPx, max(h*maxPx/w, 1))
	}
	return image.Rect(0, 0, max(w*maxPx/h, 1), maxPx)
}
