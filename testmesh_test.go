package meshdomain

import (
	"github.com/nat-n/geom"
)

// cubeMesh builds the unit cube: 8 vertices, 12 faces, 18 edges.
func cubeMesh() *Mesh {
	return &Mesh{
		Vertices: []geom.Vec3{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
		},
		Faces: [][3]int{
			{0, 2, 1}, {0, 3, 2},
			{4, 5, 6}, {4, 6, 7},
			{0, 1, 5}, {0, 5, 4},
			{1, 2, 6}, {1, 6, 5},
			{2, 3, 7}, {2, 7, 6},
			{3, 0, 4}, {3, 4, 7},
		},
	}
}

// subdividedCubeMesh builds a unit cube with every side divided into an nxn
// quad grid, two triangles per quad: 6n²+2 vertices, 12n² faces, 18n² edges.
// n=5 gives the 152/300/450 mesh.
func subdividedCubeMesh(n int) *Mesh {
	m := &Mesh{}
	index := make(map[[3]int]int)

	// vertices live on the integer lattice of side n, scaled to the unit
	// cube; side-sharing corners and edges deduplicate naturally
	vertex := func(p [3]int) int {
		if vi, exists := index[p]; exists {
			return vi
		}
		vi := len(m.Vertices)
		index[p] = vi
		m.Vertices = append(m.Vertices, geom.Vec3{X: float64(p[0]) / float64(n), Y: float64(p[1]) / float64(n), Z: float64(p[2]) / float64(n)})
		return vi
	}

	quad := func(a, b, c, d [3]int) {
		m.Faces = append(m.Faces, [3]int{vertex(a), vertex(b), vertex(c)})
		m.Faces = append(m.Faces, [3]int{vertex(a), vertex(c), vertex(d)})
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			quad([3]int{i, j, 0}, [3]int{i, j + 1, 0}, [3]int{i + 1, j + 1, 0}, [3]int{i + 1, j, 0})
			quad([3]int{i, j, n}, [3]int{i + 1, j, n}, [3]int{i + 1, j + 1, n}, [3]int{i, j + 1, n})
			quad([3]int{i, 0, j}, [3]int{i + 1, 0, j}, [3]int{i + 1, 0, j + 1}, [3]int{i, 0, j + 1})
			quad([3]int{i, n, j}, [3]int{i, n, j + 1}, [3]int{i + 1, n, j + 1}, [3]int{i + 1, n, j})
			quad([3]int{0, i, j}, [3]int{0, i, j + 1}, [3]int{0, i + 1, j + 1}, [3]int{0, i + 1, j})
			quad([3]int{n, i, j}, [3]int{n, i + 1, j}, [3]int{n, i + 1, j + 1}, [3]int{n, i, j + 1})
		}
	}

	return m
}

// twoCubesMesh builds two disconnected unit cubes, the second offset along x.
func twoCubesMesh() *Mesh {
	m := cubeMesh()
	second := cubeMesh()
	offset := len(m.Vertices)
	for _, v := range second.Vertices {
		m.Vertices = append(m.Vertices, geom.Vec3{X: v.X + 5, Y: v.Y, Z: v.Z})
	}
	for _, f := range second.Faces {
		m.Faces = append(m.Faces, [3]int{f[0] + offset, f[1] + offset, f[2] + offset})
	}
	return m
}
