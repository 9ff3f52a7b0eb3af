package loader

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/df07/lightmetrica-go/pkg/core"
	"github.com/df07/lightmetrica-go/pkg/lmerr"
	"github.com/df07/lightmetrica-go/pkg/material"
	"github.com/df07/lightmetrica-go/pkg/texture"
)

// MTLMaterial is the per-face material record the OBJ/MTL loader hands to
// Scene construction (spec.md §6.1): { name, Kd, Ks, Ke, Ns, Ni, illum,
// mapKd, an }.
type MTLMaterial struct {
	Name  string
	Kd    core.Vec3
	Ks    core.Vec3
	Ke    core.Vec3
	Ns    float64 // Phong exponent, converted to GGX roughness
	Ni    float64 // index of refraction
	Illum int
	MapKd string  // texture file name, empty if none
	MapD  string  // dissolve/alpha texture file name, empty if none
	An    float64 // anisotropy in [0,1), 0 = isotropic
}

// ParseMTL parses a Wavefront MTL library into a name-keyed set of records.
func ParseMTL(r io.Reader) (map[string]*MTLMaterial, error) {
	mats := make(map[string]*MTLMaterial)
	var cur *MTLMaterial

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "newmtl":
			if len(fields) < 2 {
				continue
			}
			cur = &MTLMaterial{Name: fields[1], Ni: 1.5}
			mats[cur.Name] = cur
		case "Kd":
			if cur == nil {
				continue
			}
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, lmerr.New(lmerr.IOError, fmt.Sprintf("mtl line %d: bad Kd", lineNo))
			}
			cur.Kd = v
		case "Ks":
			if cur == nil {
				continue
			}
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, lmerr.New(lmerr.IOError, fmt.Sprintf("mtl line %d: bad Ks", lineNo))
			}
			cur.Ks = v
		case "Ke":
			if cur == nil {
				continue
			}
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, lmerr.New(lmerr.IOError, fmt.Sprintf("mtl line %d: bad Ke", lineNo))
			}
			cur.Ke = v
		case "Ns":
			if cur == nil || len(fields) < 2 {
				continue
			}
			f, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, lmerr.New(lmerr.IOError, fmt.Sprintf("mtl line %d: bad Ns", lineNo))
			}
			cur.Ns = f
		case "Ni":
			if cur == nil || len(fields) < 2 {
				continue
			}
			f, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, lmerr.New(lmerr.IOError, fmt.Sprintf("mtl line %d: bad Ni", lineNo))
			}
			cur.Ni = f
		case "illum":
			if cur == nil || len(fields) < 2 {
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, lmerr.New(lmerr.IOError, fmt.Sprintf("mtl line %d: bad illum", lineNo))
			}
			cur.Illum = n
		case "map_Kd":
			if cur == nil || len(fields) < 2 {
				continue
			}
			cur.MapKd = fields[len(fields)-1]
		case "map_d":
			if cur == nil || len(fields) < 2 {
				continue
			}
			cur.MapD = fields[len(fields)-1]
		case "an", "aniso":
			if cur == nil || len(fields) < 2 {
				continue
			}
			f, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, lmerr.New(lmerr.IOError, fmt.Sprintf("mtl line %d: bad anisotropy", lineNo))
			}
			cur.An = f
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, lmerr.Wrap(lmerr.IOError, "reading mtl", err)
	}
	return mats, nil
}

// MTLToMaterial maps an MTL record to a concrete Material per spec.md §6.2:
// illum 5 -> Mirror, illum 7 -> Glass(Ni), otherwise -> Mixture (or
// MixtureWithAlpha, when kdTex carries a map_d alpha channel) derived from
// Kd/Ks/Ns/An. kdTex overrides Kd when map_Kd names a resolved texture
// (nil falls back to the constant Kd). skipSpecular replaces illum {5,7}
// with a zero-albedo diffuse and forces the marginal-without-alpha mixture
// variant (the plain Mixture, never MixtureWithAlpha).
func MTLToMaterial(m *MTLMaterial, kdTex texture.Texture, skipSpecular bool) material.Material {
	kd := kdTex
	if kd == nil {
		kd = texture.NewConstant(m.Kd)
	}

	if skipSpecular && (m.Illum == 5 || m.Illum == 7) {
		return &material.Diffuse{Kd: texture.NewConstant(core.Vec3{})}
	}

	switch m.Illum {
	case 5:
		return material.NewMirror()
	case 7:
		return material.NewGlass(m.Ni)
	default:
		ns := m.Ns
		if ns <= 0 {
			ns = 1
		}
		r := 2 / (2 + ns)
		anisoS := math.Sqrt(math.Max(0, 1-0.9*m.An))
		ax := math.Max(1e-3, r/anisoS)
		ay := math.Max(1e-3, r*anisoS)
		diffuse := &material.Diffuse{Kd: kd}
		glossy := &material.GlossyAnisotropic{Ks: texture.NewConstant(m.Ks), Ax: math.Max(1e-3, ax), Ay: math.Max(1e-3, ay)}
		if !skipSpecular && kdTex != nil && kdTex.HasAlpha() {
			return material.NewMixtureWithAlpha(diffuse, glossy, kdTex)
		}
		return material.NewMixture(diffuse, glossy)
	}
}
