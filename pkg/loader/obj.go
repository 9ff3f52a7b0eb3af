// Package loader implements the OBJ/MTL mesh and material loader consumed
// by Scene construction (spec.md §6.1, §6.2), in the teacher's
// bufio.Scanner line-parser style (pkg/loaders/pbrt.go) generalized from a
// PBRT statement grammar to OBJ/MTL's whitespace-delimited directives.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/df07/lightmetrica-go/pkg/core"
	"github.com/df07/lightmetrica-go/pkg/lmerr"
)

// Face is a triangulated OBJ face: 0-based vertex/uv/normal indices already
// fanned out from the source polygon.
type Face struct {
	V, T, N  [3]int // -1 when absent
	Material string
}

// Mesh is the raw geometric data parsed from an OBJ file, before any
// primitive-ID assignment or acceleration-structure build.
type Mesh struct {
	Positions []core.Vec3
	UVs       []core.Vec2
	Normals   []core.Vec3
	Faces     []Face
	MTLLibs   []string
}

// ParseOBJ parses Wavefront OBJ content from r. Only polygon (f), vertex
// (v/vt/vn), usemtl, and mtllib directives are recognized; unrecognized
// directives are skipped, matching the teacher's tolerant line-parser style.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	currentMaterial := ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			p, err := parseVec3(fields[1:])
			if err != nil {
				return nil, lmerr.Wrap(lmerr.IOError, fmt.Sprintf("obj line %d", lineNo), err)
			}
			m.Positions = append(m.Positions, p)
		case "vt":
			if len(fields) < 3 {
				continue
			}
			u, err1 := strconv.ParseFloat(fields[1], 64)
			v, err2 := strconv.ParseFloat(fields[2], 64)
			if err1 != nil || err2 != nil {
				return nil, lmerr.New(lmerr.IOError, fmt.Sprintf("obj line %d: bad vt", lineNo))
			}
			m.UVs = append(m.UVs, core.Vec2{X: u, Y: v})
		case "vn":
			n, err := parseVec3(fields[1:])
			if err != nil {
				return nil, lmerr.Wrap(lmerr.IOError, fmt.Sprintf("obj line %d", lineNo), err)
			}
			m.Normals = append(m.Normals, n)
		case "usemtl":
			if len(fields) < 2 {
				continue
			}
			currentMaterial = fields[1]
		case "mtllib":
			m.MTLLibs = append(m.MTLLibs, fields[1:]...)
		case "f":
			faces, err := parseFace(fields[1:], currentMaterial)
			if err != nil {
				return nil, lmerr.Wrap(lmerr.IOError, fmt.Sprintf("obj line %d", lineNo), err)
			}
			m.Faces = append(m.Faces, faces...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, lmerr.Wrap(lmerr.IOError, "reading obj", err)
	}
	return m, nil
}

func parseVec3(fields []string) (core.Vec3, error) {
	if len(fields) < 3 {
		return core.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	x, err1 := strconv.ParseFloat(fields[0], 64)
	y, err2 := strconv.ParseFloat(fields[1], 64)
	z, err3 := strconv.ParseFloat(fields[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return core.Vec3{}, fmt.Errorf("malformed vector")
	}
	return core.Vec3{X: x, Y: y, Z: z}, nil
}

// parseFace fan-triangulates an n-gon (n >= 3) into n-2 triangles.
func parseFace(tokens []string, mat string) ([]Face, error) {
	if len(tokens) < 3 {
		return nil, fmt.Errorf("face needs >= 3 vertices, got %d", len(tokens))
	}
	type idx struct{ v, t, n int }
	parsed := make([]idx, len(tokens))
	for i, tok := range tokens {
		parts := strings.Split(tok, "/")
		v, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("bad face vertex index %q", tok)
		}
		id := idx{v: v - 1, t: -1, n: -1}
		if len(parts) > 1 && parts[1] != "" {
			t, err := strconv.Atoi(parts[1])
			if err != nil {
				return nil, fmt.Errorf("bad face uv index %q", tok)
			}
			id.t = t - 1
		}
		if len(parts) > 2 && parts[2] != "" {
			n, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("bad face normal index %q", tok)
			}
			id.n = n - 1
		}
		parsed[i] = id
	}
	var faces []Face
	for i := 1; i+1 < len(parsed); i++ {
		f := Face{Material: mat}
		f.V = [3]int{parsed[0].v, parsed[i].v, parsed[i+1].v}
		f.T = [3]int{parsed[0].t, parsed[i].t, parsed[i+1].t}
		f.N = [3]int{parsed[0].n, parsed[i].n, parsed[i+1].n}
		faces = append(faces, f)
	}
	return faces, nil
}
