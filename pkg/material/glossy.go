package material

import (
	"math"

	"github.com/df07/lightmetrica-go/pkg/core"
	"github.com/df07/lightmetrica-go/pkg/texture"
)

// GlossyAnisotropic is an anisotropic GGX microfacet BSDF with Smith
// masking-shadowing, parameterized by roughness (ax, ay) along the local
// tangent/bitangent axes (spec.md §4.2). Ks tints the Schlick-Fresnel term.
type GlossyAnisotropic struct {
	Ks     texture.Texture
	Ax, Ay float64
}

// NewGlossyAnisotropic creates a glossy material. ax, ay must be > 0; use
// MTLToMaterial's derivation (spec.md §6.2) to compute them from Ns/an.
func NewGlossyAnisotropic(ks core.Vec3, ax, ay float64) *GlossyAnisotropic {
	return &GlossyAnisotropic{Ks: texture.NewConstant(ks), Ax: math.Max(1e-3, ax), Ay: math.Max(1e-3, ay)}
}

func (g *GlossyAnisotropic) IsSpecular(core.Geometry, int) bool { return false }

// ggxD evaluates the anisotropic GGX normal distribution in local space (h.Z
// is the up axis aligned with the shading normal).
func (g *GlossyAnisotropic) ggxD(h core.Vec3) float64 {
	if h.Z <= 0 {
		return 0
	}
	hx2 := (h.X * h.X) / (g.Ax * g.Ax)
	hy2 := (h.Y * h.Y) / (g.Ay * g.Ay)
	hz2 := h.Z * h.Z
	denom := hx2 + hy2 + hz2
	return 1 / (math.Pi * g.Ax * g.Ay * denom * denom)
}

// smithLambda is the anisotropic Smith Lambda function for a local-space
// direction w.
func (g *GlossyAnisotropic) smithLambda(w core.Vec3) float64 {
	if w.Z == 0 {
		return 0
	}
	num := g.Ax*g.Ax*w.X*w.X + g.Ay*g.Ay*w.Y*w.Y
	tan2 := num / (w.Z * w.Z)
	return (-1 + math.Sqrt(1+tan2)) / 2
}

func (g *GlossyAnisotropic) smithG1(w core.Vec3) float64 {
	return 1 / (1 + g.smithLambda(w))
}

func (g *GlossyAnisotropic) smithG(wiL, woL core.Vec3) float64 {
	return g.smithG1(wiL) * g.smithG1(woL)
}

func (g *GlossyAnisotropic) SampleDirection(rng core.RNG, geom core.Geometry, wi core.Vec3, _ core.TransportDir) (Sample, bool) {
	basis := core.NewBasis(geom.N)
	wiL := basis.ToLocal(wi)
	if wiL.Z <= 0 {
		return Sample{}, false
	}

	u := rng.U2()
	phi := math.Atan2(g.Ay*math.Sin(2*math.Pi*u.X), g.Ax*math.Cos(2*math.Pi*u.X))
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)
	invA2 := cosPhi*cosPhi/(g.Ax*g.Ax) + sinPhi*sinPhi/(g.Ay*g.Ay)
	tanTheta2 := u.Y / (1 - u.Y) / invA2
	cosTheta := 1 / math.Sqrt(1+tanTheta2)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))

	hL := core.Vec3{X: sinTheta * cosPhi, Y: sinTheta * sinPhi, Z: cosTheta}
	woL := core.Reflect(wiL, hL)
	if woL.Z <= 0 {
		return Sample{}, false
	}

	pdf := g.pdfLocal(wiL, woL, hL)
	if pdf <= 0 {
		return Sample{}, false
	}
	f := g.evalLocal(wiL, woL, hL, geom)
	weight := f.Multiply(woL.Z / pdf)
	return Sample{Wo: basis.ToWorld(woL), Comp: 0, Weight: weight}, true
}

func (g *GlossyAnisotropic) pdfLocal(wiL, woL, hL core.Vec3) float64 {
	if wiL.Z <= 0 || woL.Z <= 0 {
		return 0
	}
	dotWoH := woL.Dot(hL)
	if dotWoH <= 0 {
		return 0
	}
	pdfH := g.ggxD(hL) * hL.Z
	return pdfH / (4 * dotWoH)
}

func (g *GlossyAnisotropic) evalLocal(wiL, woL, hL core.Vec3, geom core.Geometry) core.Vec3 {
	if wiL.Z <= 0 || woL.Z <= 0 {
		return core.Vec3{}
	}
	d := g.ggxD(hL)
	smithGVal := g.smithG(wiL, woL)
	fresnel := core.SchlickFresnel(wiL.Dot(hL), 1.5)
	ks := g.Ks.Eval(geom.T)
	brdf := d * smithGVal / (4 * wiL.Z * woL.Z)
	return ks.Multiply(brdf * fresnel)
}

func (g *GlossyAnisotropic) PdfDirection(geom core.Geometry, wi, wo core.Vec3, _ int, _ bool) float64 {
	basis := core.NewBasis(geom.N)
	wiL, woL := basis.ToLocal(wi), basis.ToLocal(wo)
	h := wiL.Add(woL).Normalize()
	return g.pdfLocal(wiL, woL, h)
}

func (g *GlossyAnisotropic) Eval(geom core.Geometry, wi, wo core.Vec3, _ int, _ core.TransportDir, _ bool) core.Vec3 {
	basis := core.NewBasis(geom.N)
	wiL, woL := basis.ToLocal(wi), basis.ToLocal(wo)
	h := wiL.Add(woL).Normalize()
	return g.evalLocal(wiL, woL, h, geom)
}

func (g *GlossyAnisotropic) Reflectance(geom core.Geometry) (core.Vec3, bool) {
	return g.Ks.Eval(geom.T), true
}
