package meshdomain

import (
	"math"
	"strconv"
)

// Mesh Verification:
// ------------------
// The Verify method checks the structural invariants a merged mesh is
// expected to satisfy: every face references in-range vertices, no face has
// fewer than three distinct corners, no two faces cover the same vertex
// triple, and no position is NaN or infinite. It is used by the mdtool
// verify command and after merging in tests.
func (m *Mesh) Verify() (err error) {
	for vi, v := range m.Vertices {
		for _, coord := range [3]float64{v.X, v.Y, v.Z} {
			if math.IsNaN(coord) || math.IsInf(coord, 0) {
				err = &MalformedMeshError{
					"vertex " + strconv.Itoa(vi) + " has a non-finite coordinate",
				}
				return
			}
		}
	}

	seen_faces := make(map[[3]int]int)
	for fi, f := range m.Faces {
		for _, v := range f {
			if v < 0 || v >= len(m.Vertices) {
				err = &MalformedMeshError{
					"face " + strconv.Itoa(fi) + " references out-of-range vertex " +
						strconv.Itoa(v),
				}
				return
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			err = &MalformedMeshError{
				"face " + strconv.Itoa(fi) + " has fewer than 3 distinct vertices",
			}
			return
		}
		key := sortedTriple(f)
		if other, exists := seen_faces[key]; exists {
			err = &MalformedMeshError{
				"faces " + strconv.Itoa(other) + " and " + strconv.Itoa(fi) +
					" cover the same vertex triple",
			}
			return
		}
		seen_faces[key] = fi
	}

	return
}
