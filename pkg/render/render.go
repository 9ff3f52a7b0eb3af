package render

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/df07/lightmetrica-go/pkg/core"
	"github.com/df07/lightmetrica-go/pkg/film"
	"github.com/df07/lightmetrica-go/pkg/integrator"
	"github.com/df07/lightmetrica-go/pkg/lmerr"
	"github.com/df07/lightmetrica-go/pkg/loader"
	"github.com/df07/lightmetrica-go/pkg/medium"
	"github.com/df07/lightmetrica-go/pkg/monitor"
	"github.com/df07/lightmetrica-go/pkg/scheduler"
)

// Result mirrors spec.md §6.2's render() return value.
type Result struct {
	Processed uint64
}

// Render builds the scene named by cfg.Scene, wires the appropriate
// integrator (VolPT when cfg.Medium is set, otherwise PT) to a scheduler
// and film, runs the configured number of samples, and writes a linear PNG
// to cfg.Output.
func Render(ctx context.Context, cfg Config, logger core.Logger) (Result, error) {
	logger.Printf("building scene from %s", cfg.Scene)

	opts := loader.BuildOptions{
		ObjPath: cfg.Scene,
		Camera: loader.CameraConfig{
			LookFrom: vec3From(cfg.Camera.LookFrom),
			LookAt:   vec3From(cfg.Camera.LookAt),
			Up:       upOrDefault(cfg.Camera.Up),
			VFovDeg:  cfg.CameraVFov(),
			Aspect:   float64(cfg.Width) / float64(cfg.Height),
		},
		SkipSpecular: cfg.SkipSpecularMat,
	}
	if cfg.Medium != nil {
		opts.Medium = buildMedium(*cfg.Medium)
	}
	if cfg.Environment != nil {
		opts.Environment = &loader.EnvironmentConfig{
			Texture:  cfg.Environment.Texture,
			Radiance: vec3From(cfg.Environment.Radiance),
		}
	}

	sc, err := loader.BuildScene(opts)
	if err != nil {
		return Result{}, err
	}
	if err := lmerr.RequireRenderable(sc); err != nil {
		return Result{}, err
	}

	f := film.New(cfg.Width, cfg.Height)
	aspect := float64(cfg.Width) / float64(cfg.Height)
	progress := scheduler.NewProgress(cfg.expectedSamples())
	schedCfg := scheduler.Config{Workers: cfg.Workers, Seed: cfg.seedOrEntropy(), Progress: progress}

	if cfg.MonitorAddr != "" {
		mon := monitor.New(progress, 0)
		if err := mon.Start(cfg.MonitorAddr); err != nil {
			return Result{}, lmerr.Wrap(lmerr.IOError, "starting monitor", err)
		}
		defer mon.Close()
		logger.Printf("progress monitor listening on %s", cfg.MonitorAddr)
	}

	var res scheduler.Result
	if cfg.Medium != nil {
		vp := &integrator.VolPT{Scene: sc, Film: f, Aspect: aspect, MaxVerts: maxVertsOrDefault(cfg), RRProb: *cfg.RRProb}
		res = runScheduler(ctx, cfg, schedCfg, f, vp.SamplePixel, vp.SampleImage)
	} else {
		pt := &integrator.PT{Scene: sc, Film: f, Aspect: aspect, MaxLength: cfg.MaxLength, Mode: cfg.integratorMode(), ImageMode: cfg.imageSampleMode()}
		res = runScheduler(ctx, cfg, schedCfg, f, pt.SamplePixel, pt.SampleImage)
	}

	logger.Printf("rendered %d samples", res.Processed)
	rescaleFilm(cfg, f, res.Processed)

	if err := writePNG(cfg.Output, f); err != nil {
		return Result{}, err
	}
	logger.Printf("wrote %s", cfg.Output)
	return Result{Processed: res.Processed}, nil
}

func runScheduler(ctx context.Context, cfg Config, schedCfg scheduler.Config, f *film.Film, pixelFn scheduler.PixelSampleFunc, imageFn scheduler.ImageSampleFunc) scheduler.Result {
	if cfg.Scheduler == "spi" {
		return scheduler.RunSPI(ctx, schedCfg, cfg.SPI, imageFn)
	}
	return scheduler.RunSPP(ctx, schedCfg, cfg.Width, cfg.Height, cfg.SPP, pixelFn)
}

// rescaleFilm normalizes an SPP render by its per-pixel sample count, and an
// SPI render by the total sample count divided across every pixel — the
// image-sample-mode analogue of spec.md §4.7's "rescale is a single-threaded
// phase operation" contract.
func rescaleFilm(cfg Config, f *film.Film, processed uint64) {
	if cfg.Scheduler == "spp" {
		if cfg.SPP > 0 {
			f.Rescale(1 / float64(cfg.SPP))
		}
		return
	}
	total := float64(cfg.Width * cfg.Height)
	if processed > 0 {
		f.Rescale(total / float64(processed))
	}
}

// buildMedium constructs the scene's participating medium from config: a
// Gaussian-blob heterogeneous field when cfg.Heterogeneous is set,
// otherwise a homogeneous medium with constant coefficients.
func buildMedium(cfg MediumJSON) medium.Medium {
	if cfg.Heterogeneous == nil {
		return medium.NewHomogeneous(vec3From(cfg.SigmaA), vec3From(cfg.SigmaS))
	}
	h := cfg.Heterogeneous
	density := &medium.GaussianDensity{
		Center:    vec3From(h.Center),
		Sigma:     h.Sigma,
		Amplitude: h.Amplitude,
		BoundMin:  vec3From(h.BoundMin),
		BoundMax:  vec3From(h.BoundMax),
	}
	albedo := medium.ConstantColor{C: vec3From(h.Albedo)}
	return medium.NewHeterogeneous(density, albedo)
}

func maxVertsOrDefault(cfg Config) int {
	if cfg.MaxVerts > 0 {
		return cfg.MaxVerts
	}
	return cfg.MaxLength
}

func vec3From(a [3]float64) core.Vec3 { return core.Vec3{X: a[0], Y: a[1], Z: a[2]} }

func upOrDefault(a [3]float64) core.Vec3 {
	if a == ([3]float64{}) {
		return core.Vec3{X: 0, Y: 1, Z: 0}
	}
	return vec3From(a)
}

func writePNG(path string, f *film.Film) error {
	img := image.NewRGBA(image.Rect(0, 0, f.Width(), f.Height()))
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			c := f.At(x, f.Height()-1-y)
			img.SetRGBA(x, y, color.RGBA{
				R: toneMap8(c.X), G: toneMap8(c.Y), B: toneMap8(c.Z), A: 255,
			})
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return lmerr.Wrap(lmerr.IOError, "creating output file", err)
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		return lmerr.Wrap(lmerr.IOError, "encoding png", err)
	}
	return nil
}

// toneMap8 applies a gamma-2.2 encode and clamps to 8 bits; spec.md §4.7
// explicitly puts further tone-mapping out of scope, so this is the minimal
// linear-to-display conversion needed to write a viewable PNG at all.
func toneMap8(v float64) uint8 {
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	v = math.Pow(v, 1/2.2)
	if v > 1 {
		v = 1
	}
	return uint8(v*255 + 0.5)
}
