// Package core provides the geometric primitives, RNG, and scene-interaction
// records shared by every other Lightmetrica package.
package core

import "math"

// Vec2 is a 2-component vector, used for raster/UV coordinates and 2D samples.
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2.
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Subtract returns the difference of two vectors.
func (v Vec2) Subtract(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Multiply returns the vector scaled by a scalar.
func (v Vec2) Multiply(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Vec3 represents a 3D vector, used interchangeably for points, directions, and colors.
type Vec3 struct {
	X, Y, Z float64
}

// NewVec3 creates a new Vec3.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Subtract returns the difference of two vectors.
func (v Vec3) Subtract(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Multiply returns the vector scaled by a scalar.
func (v Vec3) Multiply(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Negate returns the negation of the vector.
func (v Vec3) Negate() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product of two vectors.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// MultiplyVec returns the component-wise (Hadamard) product of two vectors.
func (v Vec3) MultiplyVec(o Vec3) Vec3 {
	return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z}
}

// DivideVec returns the component-wise division of two vectors. Zero denominators yield zero.
func (v Vec3) DivideVec(o Vec3) Vec3 {
	div := func(a, b float64) float64 {
		if b == 0 {
			return 0
		}
		return a / b
	}
	return Vec3{div(v.X, o.X), div(v.Y, o.Y), div(v.Z, o.Z)}
}

// Length returns the magnitude of the vector.
func (v Vec3) Length() float64 { return math.Sqrt(v.LengthSquared()) }

// LengthSquared returns the squared magnitude of the vector.
func (v Vec3) LengthSquared() float64 { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }

// Normalize returns a unit vector in the same direction, or the zero vector if v is zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Multiply(1 / l)
}

// MaxComponent returns the largest of the three components.
func (v Vec3) MaxComponent() float64 { return math.Max(v.X, math.Max(v.Y, v.Z)) }

// IsZero reports whether every component of v is exactly zero.
func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// IsFinite reports whether every component of v is finite (not NaN or +/-Inf).
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// Luminance returns the perceptual luminance of an RGB color.
func (v Vec3) Luminance() float64 { return 0.2126*v.X + 0.7152*v.Y + 0.0722*v.Z }

// Lerp linearly interpolates between two vectors: (1-t)*v + t*o.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return v.Multiply(1 - t).Add(o.Multiply(t))
}

// BarycentricMix mixes three vectors (e.g. per-vertex normals or UVs) by barycentric weights.
func BarycentricMix(a, b, c Vec3, u, v float64) Vec3 {
	w := 1 - u - v
	return a.Multiply(w).Add(b.Multiply(u)).Add(c.Multiply(v))
}

// Ray represents a ray with an origin and a (not necessarily normalized) direction.
type Ray struct {
	O Vec3
	D Vec3
}

// NewRay creates a new ray.
func NewRay(o, d Vec3) Ray { return Ray{O: o, D: d} }

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 { return r.O.Add(r.D.Multiply(t)) }
