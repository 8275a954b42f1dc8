package meshdomain

import (
	"sort"
	"strconv"
)

// VertexPair identifies an undirected edge between two vertex indices.
// Edges are derived from faces, never stored as independent entities.
type VertexPair struct {
	V1, V2 int
}

// MakeVertexPair normalises the vertex order so that a pair can be used as a
// map key regardless of the winding it was encountered with.
func MakeVertexPair(v1, v2 int) VertexPair {
	if v1 < v2 {
		return VertexPair{v1, v2}
	}
	return VertexPair{v2, v1}
}

// Topology indexes vertex to face and edge to face adjacency for a triangle
// mesh. It is built once, then shared read-only between all partition
// workers.
type Topology struct {
	NumVertices int
	Faces       [][3]int
	EdgeFaces   map[VertexPair][]int
	VertexFaces [][]int

	// Edges that are referenced by more than two faces. Tolerated, but
	// reported since the input is then not a manifold.
	NonManifoldEdges int
}

// NewTopology builds the adjacency index in a single pass over the faces.
// Faces referencing out-of-range vertices or with fewer than three distinct
// corners are rejected with a MalformedMeshError.
func NewTopology(num_vertices int, faces [][3]int) (*Topology, error) {
	t := &Topology{
		NumVertices: num_vertices,
		Faces:       faces,
		EdgeFaces:   make(map[VertexPair][]int, len(faces)*3/2),
		VertexFaces: make([][]int, num_vertices),
	}

	for fi, f := range faces {
		for _, v := range f {
			if v < 0 || v >= num_vertices {
				return nil, &MalformedMeshError{
					"face " + strconv.Itoa(fi) + " references out-of-range vertex " +
						strconv.Itoa(v),
				}
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			return nil, &MalformedMeshError{
				"face " + strconv.Itoa(fi) + " has fewer than 3 distinct vertices",
			}
		}

		for _, v := range f {
			t.VertexFaces[v] = append(t.VertexFaces[v], fi)
		}
		for _, pair := range FaceEdges(f) {
			t.EdgeFaces[pair] = append(t.EdgeFaces[pair], fi)
			if len(t.EdgeFaces[pair]) == 3 {
				t.NonManifoldEdges++
			}
		}
	}

	return t, nil
}

// FaceEdges returns the three undirected edges of a face.
func FaceEdges(f [3]int) [3]VertexPair {
	return [3]VertexPair{
		MakeVertexPair(f[0], f[1]),
		MakeVertexPair(f[1], f[2]),
		MakeVertexPair(f[2], f[0]),
	}
}

// FaceNeighbors returns the indices of faces sharing an edge with the given
// face, in ascending order.
func (t *Topology) FaceNeighbors(fi int) []int {
	neighbors := make([]int, 0, 3)
	for _, pair := range FaceEdges(t.Faces[fi]) {
		for _, other := range t.EdgeFaces[pair] {
			if other != fi && !intInSlice(other, neighbors) {
				neighbors = append(neighbors, other)
			}
		}
	}
	sort.Ints(neighbors)
	return neighbors
}

// VertexNeighbors returns the vertices sharing an edge with the given
// vertex, in ascending order.
func (t *Topology) VertexNeighbors(v int) []int {
	seen := make(map[int]bool)
	for _, fi := range t.VertexFaces[v] {
		for _, u := range t.Faces[fi] {
			if u != v {
				seen[u] = true
			}
		}
	}
	neighbors := make([]int, 0, len(seen))
	for u := range seen {
		neighbors = append(neighbors, u)
	}
	sort.Ints(neighbors)
	return neighbors
}

// ExpandFaceSet grows a face set by k hops of shared-edge adjacency and
// returns the union of the input set and everything reached. The input set
// is not modified. Disconnected remainders of the mesh are simply never
// reached.
func (t *Topology) ExpandFaceSet(faces map[int]bool, k int) map[int]bool {
	expanded := make(map[int]bool, len(faces))
	frontier := make([]int, 0, len(faces))
	for fi := range faces {
		expanded[fi] = true
		frontier = append(frontier, fi)
	}
	sort.Ints(frontier)

	for hop := 0; hop < k; hop++ {
		next_frontier := make([]int, 0)
		for _, fi := range frontier {
			for _, other := range t.FaceNeighbors(fi) {
				if !expanded[other] {
					expanded[other] = true
					next_frontier = append(next_frontier, other)
				}
			}
		}
		if len(next_frontier) == 0 {
			break
		}
		sort.Ints(next_frontier)
		frontier = next_frontier
	}

	return expanded
}
