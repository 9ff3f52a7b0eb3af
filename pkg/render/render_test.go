package render

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`{"scene":"scene.obj","spp":4,"max_length":5}`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Mode != "mis" || cfg.ImageMode != "pixel" || cfg.Scheduler != "spp" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Width != 640 || cfg.Height != 480 {
		t.Fatalf("expected default resolution 640x480, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestLoadConfigRejectsMissingScene(t *testing.T) {
	if _, err := LoadConfig(strings.NewReader(`{"spp":4,"max_length":5}`)); err == nil {
		t.Fatal("expected an error for a config missing scene")
	}
}

func TestLoadConfigRejectsZeroMaxLength(t *testing.T) {
	if _, err := LoadConfig(strings.NewReader(`{"scene":"scene.obj","spp":4}`)); err == nil {
		t.Fatal("expected max_length <= 0 to be rejected")
	}
}

func TestLoadConfigDefaultsSchedulerFromImageMode(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`{"scene":"scene.obj","spi":100,"image_sample_mode":"image","max_length":5}`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Scheduler != "spi" {
		t.Fatalf("expected image_sample_mode=image to default the scheduler to spi, got %s", cfg.Scheduler)
	}
}

func TestLoadConfigParsesHeterogeneousMedium(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`{
		"scene":"scene.obj","spp":4,"max_length":5,
		"medium":{"heterogeneous":{"sigma":1.5,"amplitude":2,"bound_max":[2,2,2],"albedo":[0.9,0.9,0.9]}}
	}`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Medium == nil || cfg.Medium.Heterogeneous == nil {
		t.Fatal("expected a heterogeneous medium block to be parsed")
	}
	if cfg.Medium.Heterogeneous.Amplitude != 2 {
		t.Fatalf("expected amplitude 2, got %v", cfg.Medium.Heterogeneous.Amplitude)
	}
}

func TestLoadConfigRejectsUnknownMode(t *testing.T) {
	if _, err := LoadConfig(strings.NewReader(`{"scene":"scene.obj","spp":1,"max_length":5,"mode":"bogus"}`)); err == nil {
		t.Fatal("expected an unknown mode to be rejected")
	}
}

func writeTestScene(t *testing.T, dir string) string {
	t.Helper()
	objSrc := `
mtllib scene.mtl
v -5 -1 -5
v  5 -1 -5
v  0 -1  5
v -2  3 -2
v  2  3 -2
v  0  3  2
usemtl floor
f 1 2 3
usemtl emitter
f 4 5 6
`
	mtlSrc := `
newmtl floor
Kd 0.7 0.7 0.7
illum 2
newmtl emitter
Kd 0 0 0
Ke 8 8 8
illum 2
`
	objPath := filepath.Join(dir, "scene.obj")
	if err := os.WriteFile(objPath, []byte(objSrc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scene.mtl"), []byte(mtlSrc), 0o644); err != nil {
		t.Fatal(err)
	}
	return objPath
}

func TestRenderProducesAPNGAndProcessesSamples(t *testing.T) {
	dir := t.TempDir()
	objPath := writeTestScene(t, dir)
	outPath := filepath.Join(dir, "out.png")

	cfg := Config{
		Scene:     objPath,
		Output:    outPath,
		MaxLength: 4,
		Mode:      "mis",
		ImageMode: "pixel",
		Scheduler: "spp",
		SPP:       2,
		Workers:   2,
		Width:     8,
		Height:    8,
		Camera: CameraJSON{
			LookFrom: [3]float64{0, 0, 8},
			LookAt:   [3]float64{0, 0, 0},
			VFovDeg:  50,
		},
	}
	seed := int64(1)
	cfg.Seed = &seed
	rrProb := 0.2
	cfg.RRProb = &rrProb

	var logBuf bytes.Buffer
	logger := NewStdLogger(&logBuf)

	res, err := Render(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := uint64(8 * 8 * 2)
	if res.Processed != want {
		t.Fatalf("expected %d processed samples, got %d", want, res.Processed)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("expected an output PNG to exist: %v", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		t.Fatalf("expected a decodable PNG: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
		t.Fatalf("expected an 8x8 image, got %v", img.Bounds())
	}
}

func TestRenderWithHeterogeneousMediumProducesAPNG(t *testing.T) {
	dir := t.TempDir()
	objPath := writeTestScene(t, dir)
	outPath := filepath.Join(dir, "out.png")

	cfg := Config{
		Scene:     objPath,
		Output:    outPath,
		MaxLength: 4,
		Mode:      "mis",
		ImageMode: "pixel",
		Scheduler: "spp",
		SPP:       2,
		Workers:   2,
		Width:     6,
		Height:    6,
		Camera: CameraJSON{
			LookFrom: [3]float64{0, 0, 8},
			LookAt:   [3]float64{0, 0, 0},
			VFovDeg:  50,
		},
		Medium: &MediumJSON{
			Heterogeneous: &HeterogeneousMediumJSON{
				Sigma:     2,
				Amplitude: 1,
				BoundMin:  [3]float64{-10, -10, -10},
				BoundMax:  [3]float64{10, 10, 10},
				Albedo:    [3]float64{0.9, 0.9, 0.9},
			},
		},
	}
	seed := int64(2)
	cfg.Seed = &seed
	rrProb := 0.2
	cfg.RRProb = &rrProb

	var logBuf bytes.Buffer
	logger := NewStdLogger(&logBuf)

	res, err := Render(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := uint64(6 * 6 * 2)
	if res.Processed != want {
		t.Fatalf("expected %d processed samples, got %d", want, res.Processed)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("expected an output PNG to exist: %v", err)
	}
}
