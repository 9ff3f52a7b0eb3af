package texture

import (
	"image"
	"image/color"
	"testing"

	"github.com/df07/lightmetrica-go/pkg/core"
)

func TestConstantEvalIsUniform(t *testing.T) {
	c := NewConstant(core.Vec3{X: 0.2, Y: 0.4, Z: 0.6})
	got := c.Eval(core.Vec2{X: 0.9, Y: 0.1})
	if got != (core.Vec3{X: 0.2, Y: 0.4, Z: 0.6}) {
		t.Fatalf("expected the constant color regardless of uv, got %v", got)
	}
	if c.EvalAlpha(core.Vec2{}) != 1 {
		t.Fatal("expected a default constant texture to be fully opaque")
	}
	if c.HasAlpha() {
		t.Fatal("expected a fully-opaque constant to report HasAlpha false")
	}
}

func TestConstantWithAlphaReportsHasAlpha(t *testing.T) {
	c := &Constant{Color: core.Vec3{X: 1, Y: 1, Z: 1}, Alpha: 0.5}
	if !c.HasAlpha() {
		t.Fatal("expected a partially-transparent constant to report HasAlpha true")
	}
	if c.EvalAlpha(core.Vec2{}) != 0.5 {
		t.Fatalf("expected alpha 0.5, got %v", c.EvalAlpha(core.Vec2{}))
	}
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestImageEvalSamplesSolidColor(t *testing.T) {
	img := solidImage(4, 4, color.RGBA{R: 255, G: 128, B: 0, A: 255})
	tex := NewImage(img)
	got := tex.Eval(core.Vec2{X: 0.5, Y: 0.5})
	if got.X != 1 {
		t.Fatalf("expected full red channel, got %v", got.X)
	}
	if tex.HasAlpha() {
		t.Fatal("expected an image with no alpha mask to report HasAlpha false")
	}
	if tex.EvalAlpha(core.Vec2{}) != 1 {
		t.Fatal("expected an image with no alpha mask to be fully opaque")
	}
}

func TestImageWithAlphaMaskUsesSeparateChannel(t *testing.T) {
	color1 := solidImage(2, 2, color.RGBA{R: 255, A: 255})
	alpha := solidImage(2, 2, color.RGBA{A: 64})
	tex := NewImageWithAlpha(color1, alpha)
	if !tex.HasAlpha() {
		t.Fatal("expected an image with an alpha mask to report HasAlpha true")
	}
	got := tex.EvalAlpha(core.Vec2{X: 0.5, Y: 0.5})
	want := 64.0 / 255.0
	if got < want-0.01 || got > want+0.01 {
		t.Fatalf("expected alpha near %v, got %v", want, got)
	}
}

func TestImageUVWrapsAround(t *testing.T) {
	img := solidImage(2, 2, color.RGBA{G: 255, A: 255})
	tex := NewImage(img)
	inRange := tex.Eval(core.Vec2{X: 0.25, Y: 0.25})
	wrapped := tex.Eval(core.Vec2{X: 1.25, Y: -0.75})
	if inRange != wrapped {
		t.Fatalf("expected wrapped uv to sample the same pixel, got %v vs %v", inRange, wrapped)
	}
}
