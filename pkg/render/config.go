// Package render is the driver-facing entry point (spec.md §6.2): a JSON
// Config, a stdlib StdLogger in the teacher's DefaultLogger style, and a
// Render function that builds a scene, wires an integrator to a scheduler
// and film, and returns { processed: u64 }.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/df07/lightmetrica-go/pkg/core"
	"github.com/df07/lightmetrica-go/pkg/integrator"
	"github.com/df07/lightmetrica-go/pkg/lmerr"
)

// Config is the plain JSON-decoded configuration spec.md §6.2 names.
type Config struct {
	Scene  string `json:"scene"`
	Output string `json:"output"`

	MaxLength int    `json:"max_length"`
	Seed      *int64 `json:"seed"`
	Mode      string `json:"mode"`              // "naive" | "nee" | "mis", default "mis"
	ImageMode string `json:"image_sample_mode"` // "pixel" | "image", default "pixel"

	Scheduler string `json:"scheduler"` // "spp" | "spi"
	SPP       int    `json:"spp"`
	SPI       int    `json:"spi"`
	Workers   int    `json:"workers"`

	// VolPT-specific.
	MaxVerts int      `json:"max_verts"`
	RRProb   *float64 `json:"rr_prob"`

	Width  int `json:"width"`
	Height int `json:"height"`

	SkipSpecularMat bool `json:"skip_specular_mat"`

	Camera CameraJSON `json:"camera"`

	Medium      *MediumJSON `json:"medium"`
	Environment *EnvJSON    `json:"environment"`

	// MonitorAddr, when non-empty, starts a pkg/monitor websocket server at
	// this address (e.g. "localhost:8090") broadcasting render progress.
	MonitorAddr string `json:"monitor_addr"`
}

// CameraJSON is the look-at camera block of the scene config.
type CameraJSON struct {
	LookFrom [3]float64 `json:"look_from"`
	LookAt   [3]float64 `json:"look_at"`
	Up       [3]float64 `json:"up"`
	VFovDeg  float64    `json:"vfov_deg"`
}

// MediumJSON configures the scene's single participating medium. Its
// presence switches the render driver from PT to VolPT. With Heterogeneous
// unset it's a homogeneous medium with the given constant coefficients;
// with Heterogeneous set, sigma_a/sigma_s are ignored in favor of the
// Gaussian density/albedo field (spec.md §SUPPLEMENTED, grounded in the
// original engine's Volume_Multi).
type MediumJSON struct {
	SigmaA [3]float64 `json:"sigma_a"`
	SigmaS [3]float64 `json:"sigma_s"`

	Heterogeneous *HeterogeneousMediumJSON `json:"heterogeneous"`
}

// HeterogeneousMediumJSON configures a Gaussian-blob density field bounded
// by an axis-aligned box, and a constant single-scattering albedo.
type HeterogeneousMediumJSON struct {
	Center    [3]float64 `json:"center"`
	Sigma     float64    `json:"sigma"`
	Amplitude float64    `json:"amplitude"`
	BoundMin  [3]float64 `json:"bound_min"`
	BoundMax  [3]float64 `json:"bound_max"`
	Albedo    [3]float64 `json:"albedo"`
}

// EnvJSON configures the scene's environment light: either a texture file
// (importance-sampled) or a uniform radiance.
type EnvJSON struct {
	Texture   string     `json:"texture"`
	Radiance  [3]float64 `json:"radiance"`
}

// LoadConfig decodes a Config from r, applying spec.md §6.2's defaults for
// any key the caller omitted.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, lmerr.Wrap(lmerr.InvalidArgument, "decoding config", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "mis"
	}
	if c.ImageMode == "" {
		c.ImageMode = "pixel"
	}
	if c.Scheduler == "" {
		if c.ImageMode == "image" {
			c.Scheduler = "spi"
		} else {
			c.Scheduler = "spp"
		}
	}
	if c.RRProb == nil {
		v := 0.2
		c.RRProb = &v
	}
	if c.Width == 0 {
		c.Width = 640
	}
	if c.Height == 0 {
		c.Height = 480
	}
	if c.CameraVFov() == 0 {
		c.Camera.VFovDeg = 40
	}
}

// CameraVFov returns the configured vertical FOV in degrees.
func (c Config) CameraVFov() float64 { return c.Camera.VFovDeg }

func (c Config) validate() error {
	if c.Scene == "" {
		return lmerr.New(lmerr.InvalidArgument, "config missing \"scene\"")
	}
	switch c.Mode {
	case "naive", "nee", "mis":
	default:
		return lmerr.New(lmerr.InvalidArgument, "unknown mode: "+c.Mode)
	}
	switch c.ImageMode {
	case "pixel", "image":
	default:
		return lmerr.New(lmerr.InvalidArgument, "unknown image_sample_mode: "+c.ImageMode)
	}
	switch c.Scheduler {
	case "spp", "spi":
	default:
		return lmerr.New(lmerr.InvalidArgument, "unknown scheduler: "+c.Scheduler)
	}
	if c.Scheduler == "spp" && c.SPP <= 0 {
		return lmerr.New(lmerr.InvalidArgument, "spp scheduler requires spp > 0")
	}
	if c.Scheduler == "spi" && c.SPI <= 0 {
		return lmerr.New(lmerr.InvalidArgument, "spi scheduler requires spi > 0")
	}
	if c.MaxLength <= 0 {
		return lmerr.New(lmerr.InvalidArgument, "max_length must be > 0")
	}
	return nil
}

func (c Config) integratorMode() integrator.Mode {
	switch c.Mode {
	case "naive":
		return integrator.Naive
	case "nee":
		return integrator.NEE
	default:
		return integrator.MIS
	}
}

func (c Config) imageSampleMode() integrator.ImageSampleMode {
	if c.ImageMode == "image" {
		return integrator.Image
	}
	return integrator.Pixel
}

// expectedSamples estimates the total sample count for a monitor's Frame.Total,
// mirroring the same spp/spi split rescaleFilm uses.
func (c Config) expectedSamples() uint64 {
	if c.Scheduler == "spi" {
		return uint64(c.SPI)
	}
	return uint64(c.Width) * uint64(c.Height) * uint64(c.SPP)
}

func (c Config) seedOrEntropy() int64 {
	if c.Seed != nil {
		return *c.Seed
	}
	return core.EntropySeed()
}

func (c Config) String() string {
	return fmt.Sprintf("Config{scene=%s output=%s mode=%s scheduler=%s}", c.Scene, c.Output, c.Mode, c.Scheduler)
}
