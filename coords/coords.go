// Package coords implements the 2D affine transforms used to map between
// page-intrinsic document coordinates and screen pixels.
package coords

import (
	"errors"
	"math"
)

// Matrix is an affine transform in the 6-parameter form (a, b, c, d, e, f),
// mapping (x, y) to (a*x + c*y + e, b*x + d*y + f). Pages carry one such
// matrix (the CTM) produced by the upstream renderer at unit scale.
type Matrix [6]float64

// Point is a position in either document or screen space.
type Point struct {
	X, Y float64
}

func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Multiply returns the composition "m then o".
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

// Transform applies m to p.
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// ErrSingular reports a matrix with no inverse. A page that supplies a
// degenerate CTM keeps it for the lifetime of its DOM node, so callers must
// treat this as a permanent per-page condition rather than retrying.
var ErrSingular = errors.New("coords: singular matrix")

// Inverse returns the matrix that maps transformed points back to their
// originals.
func (m Matrix) Inverse() (Matrix, error) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-10 {
		return Matrix{}, ErrSingular
	}
	return Matrix{
		m[3] / det,
		-m[1] / det,
		-m[2] / det,
		m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, nil
}
