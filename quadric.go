package meshdomain

import (
	"math"

	"github.com/nat-n/geom"
)

// Determinant magnitudes below this are treated as a singular system, in
// which case the collapse target falls back to the edge midpoint.
const singularDetTolerance = 1e-12

// Cross product magnitudes below this mark a face as zero-area. Such faces
// contribute nothing to any quadric sum.
const degenerateAreaTolerance = 1e-12

// facePlaneQuadric calculates the Kp fundamental error matrix of the plane
// through the three corners, i.e. the quadric of the plane. Returns false
// for zero-area faces, which must be skipped rather than accumulated.
func facePlaneQuadric(v1, v2, v3 geom.Vec3) (geom.SymMat4, bool) {
	// face normal from the two edge vectors
	ux, uy, uz := v2.X-v1.X, v2.Y-v1.Y, v2.Z-v1.Z
	wx, wy, wz := v3.X-v1.X, v3.Y-v1.Y, v3.Z-v1.Z
	nx := uy*wz - uz*wy
	ny := uz*wx - ux*wz
	nz := ux*wy - uy*wx

	norm := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if norm <= degenerateAreaTolerance {
		return geom.SymMat4{}, false
	}
	nx /= norm
	ny /= norm
	nz /= norm

	// calculate center point of the face
	center := v1.Mean(&v2, &v3)

	// use abcd variable names like in the standard explanations
	a, b, c := nx, ny, nz
	d := -(a*center.X + b*center.Y + c*center.Z)

	return geom.SymMat4{
		a * a, a * b, a * c, a * d,
		b * b, b * c, b * d,
		c * c, c * d,
		d * d,
	}, true
}

// collapseTarget finds the position minimising the quadric error of the
// combined quadric Q, by solving the 3x3 system formed by Q's upper-left
// block with the affine row substituted for [0, 0, 0, 1]. When the system is
// singular within tolerance the midpoint of the two endpoints is used
// instead; the second return value reports which case occurred.
func collapseTarget(Q *geom.SymMat4, v1, v2 geom.Vec3) (geom.Vec3, bool) {
	// Optimised determinant formula when the bottom row of Q is substituted
	// for [0, 0, 0, 1]
	det := -Q[2]*Q[4]*Q[2] + Q[1]*Q[5]*Q[2] + Q[2]*Q[1]*Q[5] -
		Q[0]*Q[5]*Q[5] - Q[1]*Q[1]*Q[7] + Q[0]*Q[4]*Q[7]

	if math.Abs(det) > singularDetTolerance {
		// Optimised implementation of Q^-1 * {{0},{0},{0},{1}}
		target := geom.Vec3{X: (Q[3]*Q[5]*Q[5] - Q[2]*Q[6]*Q[5] - Q[3]*Q[4]*Q[7] +
			Q[1]*Q[6]*Q[7] + Q[2]*Q[4]*Q[8] - Q[1]*Q[5]*Q[8]) / det, Y: (Q[2]*Q[6]*Q[2] - Q[3]*Q[5]*Q[2] + Q[3]*Q[1]*Q[7] -
			Q[0]*Q[6]*Q[7] - Q[2]*Q[1]*Q[8] + Q[0]*Q[5]*Q[8]) / det, Z: (Q[3]*Q[4]*Q[2] - Q[1]*Q[6]*Q[2] - Q[3]*Q[1]*Q[5] +
			Q[0]*Q[6]*Q[5] + Q[1]*Q[1]*Q[8] - Q[0]*Q[4]*Q[8]) / det}

		return target, true
	}

	return v1.Mean(&v2), false
}
