// Package sphere lays items out on a sphere for the orbit gallery view.
package sphere

import "math"

// GoldenAngle is the azimuthal step of the Fibonacci sphere, pi * (3 - sqrt 5).
var GoldenAngle = math.Pi * (3 - math.Sqrt(5))

// Positioned pairs an item with its point on the sphere.
type Positioned[T any] struct {
	Item    T       `json:"item"`
	X, Y, Z float64 `json:"-"`
}

// Point is the JSON shape of a positioned item.
type Point[T any] struct {
	Item T       `json:"item"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// Layout distributes items uniformly over a sphere of the given radius using
// the golden-angle scheme. The mapping is a pure function of (index, count,
// radius); rotation and projection belong to the rendering layer.
//
// A single item sits on the equator (y = 0) rather than producing NaN from
// the count-1 division.
func Layout[T any](items []T, radius float64) []Positioned[T] {
	n := len(items)
	out := make([]Positioned[T], 0, n)

	for i, item := range items {
		y := 0.0
		if n > 1 {
			y = 1 - 2*float64(i)/float64(n-1)
		}
		ring := math.Sqrt(1 - y*y)
		theta := GoldenAngle * float64(i)

		out = append(out, Positioned[T]{
			Item: item,
			X:    math.Cos(theta) * ring * radius,
			Y:    y * radius,
			Z:    math.Sin(theta) * ring * radius,
		})
	}

	return out
}

// Project rotates a point around the Y then X axes and applies simple
// perspective with the given focal depth. Scale shrinks with distance; points
// behind the focal plane clamp to a minimal scale instead of flipping.
func Project[T any](p Positioned[T], rotX, rotY, depth float64) (x, y, scale float64) {
	sinY, cosY := math.Sincos(rotY)
	x1 := p.X*cosY - p.Z*sinY
	z1 := p.X*sinY + p.Z*cosY

	sinX, cosX := math.Sincos(rotX)
	y1 := p.Y*cosX - z1*sinX
	z2 := p.Y*sinX + z1*cosX

	denom := depth + z2
	if denom < 1 {
		denom = 1
	}
	scale = depth / denom
	return x1 * scale, y1 * scale, scale
}

// Points converts positioned items to their JSON shape.
func Points[T any](ps []Positioned[T]) []Point[T] {
	out := make([]Point[T], len(ps))
	for i, p := range ps {
		out[i] = Point[T]{Item: p.Item, X: p.X, Y: p.Y, Z: p.Z}
	}
	return out
}
