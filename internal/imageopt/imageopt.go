// Package imageopt downsizes and re-encodes uploaded images.
package imageopt

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	_ "image/gif"

	"thai-travel-portal/internal/apperr"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth  = 1920
	DefaultMaxHeight = 1080
	DefaultQuality   = 80
	// DefaultMaxPixels bounds the decoded size, 40 megapixels.
	DefaultMaxPixels = 40_000_000
)

type Options struct {
	MaxWidth  int
	MaxHeight int
	// Quality is the jpeg quality, 1..100.
	Quality int
	// MaxPixels rejects sources whose declared width*height is larger.
	MaxPixels int
}

func (o Options) normalized() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = DefaultMaxHeight
	}
	if o.Quality <= 0 {
		o.Quality = DefaultQuality
	}
	if o.Quality > 100 {
		o.Quality = 100
	}
	if o.MaxPixels <= 0 {
		o.MaxPixels = DefaultMaxPixels
	}
	return o
}

// Result is a re-encoded image.
type Result struct {
	Data           []byte
	ContentType    string
	Format         string
	OriginalSize   int
	OriginalWidth  int
	OriginalHeight int
	Width          int
	Height         int
}

// Optimize decodes jpeg, png, gif or webp data, scales it down to fit
// within the bounds and encodes png when any pixel is translucent, jpeg
// otherwise. Images are never scaled up.
func Optimize(data []byte, opts Options) (*Result, error) {
	opts = opts.normalized()

	// the header is checked first; a few bytes can declare a huge canvas
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Validation("unsupported or corrupt image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, apperr.Validation("image has no pixels")
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(opts.MaxPixels) {
		return nil, apperr.TooLarge(fmt.Sprintf("image is %dx%d, above the %d pixel limit", cfg.Width, cfg.Height, opts.MaxPixels))
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Validation("unsupported or corrupt image")
	}
	b := src.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), opts.MaxWidth, opts.MaxHeight)

	out := src
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
		out = dst
	}

	res := &Result{
		OriginalSize:   len(data),
		OriginalWidth:  b.Dx(),
		OriginalHeight: b.Dy(),
		Width:          w,
		Height:         h,
	}

	var buf bytes.Buffer
	// scaling never introduces transparency, so test the source
	if HasAlpha(src) {
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, out); err != nil {
			return nil, apperr.Upstream("encode png", err)
		}
		res.Format, res.ContentType = "png", "image/png"
	} else {
		if err := jpeg.Encode(&buf, flatten(out), &jpeg.Options{Quality: opts.Quality}); err != nil {
			return nil, apperr.Upstream("encode jpeg", err)
		}
		res.Format, res.ContentType = "jpeg", "image/jpeg"
	}
	res.Data = buf.Bytes()
	return res, nil
}

// Fit scales w x h down, keeping the aspect ratio, until it fits inside
// maxW x maxH. Sizes already inside the box are returned unchanged.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 || (w <= maxW && h <= maxH) {
		return w, h
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))
	return min(nw, maxW), min(nh, maxH)
}

// HasAlpha reports whether any pixel of img is not fully opaque.
func HasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

// flatten draws img on white so paletted or gray sources encode as jpeg.
func flatten(img image.Image) image.Image {
	switch img.(type) {
	case *image.YCbCr, *image.Gray, *image.RGBA, *image.NRGBA:
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

// Headers returns the informational response headers for res.
func (r *Result) Headers() map[string]string {
	return map[string]string{
		"X-Original-Size":        fmt.Sprint(r.OriginalSize),
		"X-Optimized-Size":       fmt.Sprint(len(r.Data)),
		"X-Original-Dimensions":  fmt.Sprintf("%dx%d", r.OriginalWidth, r.OriginalHeight),
		"X-Optimized-Dimensions": fmt.Sprintf("%dx%d", r.Width, r.Height),
	}
}
