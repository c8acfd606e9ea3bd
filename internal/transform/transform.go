// Package transform produces cropped, rotated rasters from uploaded photos.
package transform

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"photo-prints-backend/internal/models"
)

// Rect is a crop rectangle in the coordinate space of the rotated image.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// InvalidSourceError means the source bytes could not be decoded as an image.
type InvalidSourceError struct {
	Err error
}

func (e *InvalidSourceError) Error() string {
	return "invalid source image: " + e.Err.Error()
}

func (e *InvalidSourceError) Unwrap() error { return e.Err }

// EmptyResultError means the requested crop produced no pixels.
type EmptyResultError struct {
	Reason string
}

func (e *EmptyResultError) Error() string {
	return "empty crop result: " + e.Reason
}

var background = color.NRGBA{A: 255}

// CropRotate rotates the source image about its center by rotationDeg
// (degrees clockwise, normalized mod 360), then copies the sub-rectangle
// rect from the rotated bounding box into a new image of exactly
// rect.Width x rect.Height, encoded as JPEG. The source is never mutated
// and the function is safe for concurrent use on independent images.
func CropRotate(src []byte, rect Rect, rotationDeg int) ([]byte, error) {
	if rect.Width <= 0 || rect.Height <= 0 {
		return nil, &EmptyResultError{Reason: "crop rectangle has no area"}
	}

	img, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, &InvalidSourceError{Err: err}
	}

	// The rotated bounding box is w*|cos|+h*|sin| by w*|sin|+h*|cos|,
	// which imaging.Rotate produces exactly. imaging rotates
	// counter-clockwise, the storefront's angles are clockwise.
	angle := ((rotationDeg % 360) + 360) % 360
	rotated := img
	if angle != 0 {
		rotated = imaging.Rotate(img, -float64(angle), background)
	}

	region := image.Rect(rect.X, rect.Y, rect.X+rect.Width, rect.Y+rect.Height)
	visible := region.Intersect(rotated.Bounds())
	if visible.Empty() {
		return nil, &EmptyResultError{Reason: "crop rectangle lies outside the rotated image"}
	}

	out := imaging.New(rect.Width, rect.Height, background)
	part := imaging.Crop(rotated, visible)
	out = imaging.Paste(out, part, image.Pt(visible.Min.X-rect.X, visible.Min.Y-rect.Y))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG); err != nil {
		return nil, &EmptyResultError{Reason: "encoding failed: " + err.Error()}
	}
	if buf.Len() == 0 {
		return nil, &EmptyResultError{Reason: "encoded image is zero bytes"}
	}

	return buf.Bytes(), nil
}

// ValidateSource reports whether the bytes decode as a supported raster image.
func ValidateSource(src []byte) error {
	if _, err := imaging.Decode(bytes.NewReader(src)); err != nil {
		return &InvalidSourceError{Err: err}
	}
	return nil
}

// AspectRatio returns the stencil aspect ratio implied by a print size.
func AspectRatio(size models.PrintSize) float64 {
	switch size {
	case models.Size3x5:
		return 3.5 / 5
	case models.Size4x6:
		return 4.0 / 6
	case models.Size5x7:
		return 5.0 / 7
	case models.Size8x10:
		return 8.0 / 10
	case models.Size4x4, models.Size8x8:
		return 1
	default:
		return 4.0 / 6
	}
}
