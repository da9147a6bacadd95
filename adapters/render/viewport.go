package render

import (
	"fmt"
	"strconv"
	"strings"

	"bayesview/domain/core"

	"gonum.org/v1/gonum/spatial/r2"
)

// Viewport maps device pixels onto the normalized [-1, 1] layout square.
// Pixel y grows downward; layout y grows upward.
type Viewport struct {
	Width  float64
	Height float64
}

// ParseViewport reads "WxH", e.g. "800x600"
func ParseViewport(s string) (Viewport, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Viewport{}, core.NewInvalidInputError("viewport %q is not WxH", s)
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return Viewport{}, core.NewInvalidInputError("viewport width: %v", err)
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return Viewport{}, core.NewInvalidInputError("viewport height: %v", err)
	}
	v := Viewport{Width: width, Height: height}
	return v, v.validate()
}

func (v Viewport) validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return core.NewInvalidInputError("viewport must have positive size, got %vx%v", v.Width, v.Height)
	}
	return nil
}

// ToLayout converts a pixel position to layout coordinates
func (v Viewport) ToLayout(px, py float64) r2.Vec {
	return r2.Vec{
		X: 2*px/v.Width - 1,
		Y: 1 - 2*py/v.Height,
	}
}

// ToPixels is the inverse of ToLayout
func (v Viewport) ToPixels(p r2.Vec) (float64, float64) {
	return (p.X + 1) * v.Width / 2, (1 - p.Y) * v.Height / 2
}

func (v Viewport) String() string {
	return fmt.Sprintf("%gx%g", v.Width, v.Height)
}
