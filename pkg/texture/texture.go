// Package texture implements the Texture external-collaborator contract
// (spec.md §6.1): eval(uv), eval_alpha(uv), has_alpha(). Decoding image
// formats is out of scope (spec.md §1); Image wraps an already-decoded
// image.Image, matching the teacher's ColorSource split between a solid
// color and an image-backed source (pkg/material/color_source.go,
// pkg/material/image_texture.go).
package texture

import (
	"image"
	"image/color"

	"github.com/df07/lightmetrica-go/pkg/core"
)

// Texture is the contract materials sample against for spatially-varying
// reflectance and alpha.
type Texture interface {
	Eval(uv core.Vec2) core.Vec3
	EvalAlpha(uv core.Vec2) float64
	HasAlpha() bool
}

// Constant is a uniform texture, used for solid-color materials and as the
// default for MTL records with no mapKd.
type Constant struct {
	Color core.Vec3
	Alpha float64 // 1 unless explicitly overridden
}

// NewConstant creates a fully opaque constant texture.
func NewConstant(c core.Vec3) *Constant { return &Constant{Color: c, Alpha: 1} }

func (c *Constant) Eval(core.Vec2) core.Vec3    { return c.Color }
func (c *Constant) EvalAlpha(core.Vec2) float64 { return c.Alpha }
func (c *Constant) HasAlpha() bool              { return c.Alpha < 1 }

// Image wraps a decoded image.Image with nearest-neighbor UV sampling and
// wraparound addressing, and an optional separately-decoded alpha channel.
type Image struct {
	Img       image.Image
	AlphaImg  image.Image // optional; nil means opaque
	hasAlphaF bool
}

// NewImage wraps a decoded color image with no alpha channel.
func NewImage(img image.Image) *Image {
	return &Image{Img: img}
}

// NewImageWithAlpha wraps a decoded color image and a separately decoded
// alpha mask (as produced by, e.g., a PNG loader returning an RGBA image
// whose alpha channel is used as the mask).
func NewImageWithAlpha(img, alpha image.Image) *Image {
	return &Image{Img: img, AlphaImg: alpha, hasAlphaF: alpha != nil}
}

func (im *Image) sample(img image.Image, uv core.Vec2) color.Color {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return color.Black
	}
	u := uv.X - float64Floor(uv.X)
	v := 1 - (uv.Y - float64Floor(uv.Y)) // flip V to match typical OBJ/MTL raster convention
	x := b.Min.X + int(u*float64(w))
	y := b.Min.Y + int(v*float64(h))
	x = clampInt(x, b.Min.X, b.Max.X-1)
	y = clampInt(y, b.Min.Y, b.Max.Y-1)
	return img.At(x, y)
}

func (im *Image) Eval(uv core.Vec2) core.Vec3 {
	r, g, b, _ := im.sample(im.Img, uv).RGBA()
	const maxU16 = 65535.0
	return core.Vec3{X: float64(r) / maxU16, Y: float64(g) / maxU16, Z: float64(b) / maxU16}
}

func (im *Image) EvalAlpha(uv core.Vec2) float64 {
	if im.AlphaImg == nil {
		return 1
	}
	_, _, _, a := im.sample(im.AlphaImg, uv).RGBA()
	return float64(a) / 65535.0
}

func (im *Image) HasAlpha() bool { return im.hasAlphaF }

func float64Floor(x float64) float64 {
	i := int64(x)
	if x < 0 && float64(i) != x {
		i--
	}
	return float64(i)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
