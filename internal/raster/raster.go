// Package raster is the last-resort extraction path: capture the screen,
// crop to where the offer card anchors, binarize, and run text recognition.
// Some vendor screens render with no readable text elements at all; this is
// the only way to see them.
package raster

import (
	"context"
	"image"
	"image/color"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CaptureProvider produces a raster image of the current screen.
type CaptureProvider interface {
	Capture(ctx context.Context) (image.Image, error)
}

// Recognizer turns an image into text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// ErrCoolingDown is returned when the cooldown gate refuses a capture.
// Capture plus recognition is by far the most expensive thing the pipeline
// does; the cooldown is the only thing bounding its cost.
var ErrCoolingDown = eris.New("raster: cooling down")

// Fallback coordinates capture, preprocessing, and recognition.
type Fallback struct {
	capture  CaptureProvider
	rec      Recognizer
	cooldown *rate.Limiter
}

// New builds a Fallback allowing at most one capture per cooldown interval.
func New(capture CaptureProvider, rec Recognizer, cooldown time.Duration) *Fallback {
	return &Fallback{
		capture:  capture,
		rec:      rec,
		cooldown: rate.NewLimiter(rate.Every(cooldown), 1),
	}
}

// Recognize captures the screen, crops from cropStart (a vertical fraction;
// offer cards anchor near the bottom), binarizes, and recognizes text.
// Returns ErrCoolingDown without capturing when invoked inside the cooldown.
func (f *Fallback) Recognize(ctx context.Context, cropStart float64) (string, error) {
	if !f.cooldown.Allow() {
		return "", ErrCoolingDown
	}

	img, err := f.captureWithRetry(ctx)
	if err != nil {
		return "", eris.Wrap(err, "raster: capture")
	}

	cropped := CropBottom(img, cropStart)
	bin := Binarize(cropped)

	text, err := f.rec.Recognize(ctx, bin)
	if err != nil {
		return "", eris.Wrap(err, "raster: recognize")
	}

	zap.L().Debug("raster: recognized",
		zap.Int("chars", len(text)),
		zap.Float64("crop_start", cropStart),
	)
	return text, nil
}

// Capture retry parameters. Screenshot bridges fail transiently when the
// compositor is mid-frame; a couple of short backoffs ride that out.
const (
	captureAttempts = 3
	captureBackoff  = 100 * time.Millisecond
)

func (f *Fallback) captureWithRetry(ctx context.Context) (image.Image, error) {
	var lastErr error
	for attempt := 0; attempt < captureAttempts; attempt++ {
		img, err := f.capture.Capture(ctx)
		if err == nil {
			return img, nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt >= captureAttempts-1 {
			break
		}
		zap.L().Debug("raster: capture retry",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		timer := time.NewTimer(captureBackoff << attempt)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
	}
	return nil, lastErr
}

// CropBottom returns the portion of img from the given vertical fraction to
// the bottom edge. Out-of-range fractions return the full image.
func CropBottom(img image.Image, fraction float64) image.Image {
	b := img.Bounds()
	if fraction <= 0 || fraction >= 1 {
		return img
	}
	top := b.Min.Y + int(float64(b.Dy())*fraction)
	return cropped{Image: img, rect: image.Rect(b.Min.X, top, b.Max.X, b.Max.Y)}
}

type cropped struct {
	image.Image
	rect image.Rectangle
}

func (c cropped) Bounds() image.Rectangle { return c.rect }

// Binarize converts the image to black-and-white using a threshold at the
// mean luminance. Recognition accuracy on low-contrast cards improves
// substantially with the background flattened out.
func Binarize(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(b)

	var sum uint64
	var count uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			// Rec. 601 luma, 16-bit channels down to 8 bits.
			lum := (299*r + 587*g + 114*bl) / 1000 >> 8
			gray.SetGray(x, y, color.Gray{Y: uint8(lum)})
			sum += uint64(lum)
			count++
		}
	}
	if count == 0 {
		return gray
	}

	threshold := uint8(sum / count)
	for i, v := range gray.Pix {
		if v > threshold {
			gray.Pix[i] = 0xFF
		} else {
			gray.Pix[i] = 0x00
		}
	}
	return gray
}
