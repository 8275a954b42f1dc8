package meshdomain

import (
	"testing"
)

func TestTopologyCubeAdjacency(t *testing.T) {
	m := cubeMesh()
	topo, err := NewTopology(len(m.Vertices), m.Faces)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(topo.EdgeFaces) != 18 {
		t.Errorf("expected 18 edges, got %d", len(topo.EdgeFaces))
	}
	for pair, faces := range topo.EdgeFaces {
		if len(faces) != 2 {
			t.Errorf("edge %v has %d faces, expected 2 on a closed mesh",
				pair, len(faces))
		}
	}
	if topo.NonManifoldEdges != 0 {
		t.Errorf("expected no non-manifold edges, got %d", topo.NonManifoldEdges)
	}

	total_incidences := 0
	for _, faces := range topo.VertexFaces {
		total_incidences += len(faces)
	}
	if total_incidences != 3*len(m.Faces) {
		t.Errorf("expected %d vertex-face incidences, got %d",
			3*len(m.Faces), total_incidences)
	}

	// every face of a closed triangulated cube has exactly 3 edge neighbors
	for fi := range m.Faces {
		if neighbors := topo.FaceNeighbors(fi); len(neighbors) != 3 {
			t.Errorf("face %d has %d neighbors, expected 3", fi, len(neighbors))
		}
	}
}

func TestTopologyVertexNeighbors(t *testing.T) {
	m := cubeMesh()
	topo, err := NewTopology(len(m.Vertices), m.Faces)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	neighbors := topo.VertexNeighbors(0)
	want := []int{1, 2, 3, 4, 5}
	if len(neighbors) != len(want) {
		t.Fatalf("expected neighbors %v, got %v", want, neighbors)
	}
	for i, v := range neighbors {
		if v != want[i] {
			t.Fatalf("expected neighbors %v, got %v", want, neighbors)
		}
	}
}

func TestTopologyRejectsOutOfRangeFace(t *testing.T) {
	m := cubeMesh()
	m.Faces[4] = [3]int{0, 1, 99}
	_, err := NewTopology(len(m.Vertices), m.Faces)
	if err == nil {
		t.Fatal("expected an error for an out-of-range vertex reference")
	}
	if _, ok := err.(*MalformedMeshError); !ok {
		t.Errorf("expected MalformedMeshError, got %T", err)
	}
}

func TestTopologyRejectsDegenerateFace(t *testing.T) {
	m := cubeMesh()
	m.Faces[0] = [3]int{1, 1, 2}
	_, err := NewTopology(len(m.Vertices), m.Faces)
	if _, ok := err.(*MalformedMeshError); !ok {
		t.Errorf("expected MalformedMeshError, got %v", err)
	}
}

func TestTopologyFlagsNonManifoldEdge(t *testing.T) {
	m := cubeMesh()
	// a fin: third face hanging off the edge (0, 1)
	m.Faces = append(m.Faces, [3]int{0, 1, 6})
	topo, err := NewTopology(len(m.Vertices), m.Faces)
	if err != nil {
		t.Fatalf("non-manifold input must be tolerated, got error: %v", err)
	}
	if topo.NonManifoldEdges != 1 {
		t.Errorf("expected 1 non-manifold edge, got %d", topo.NonManifoldEdges)
	}
}

func TestTopologySubdividedCubeCounts(t *testing.T) {
	m := subdividedCubeMesh(5)
	if len(m.Vertices) != 152 {
		t.Fatalf("expected 152 vertices, got %d", len(m.Vertices))
	}
	if len(m.Faces) != 300 {
		t.Fatalf("expected 300 faces, got %d", len(m.Faces))
	}
	topo, err := NewTopology(len(m.Vertices), m.Faces)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(topo.EdgeFaces) != 450 {
		t.Errorf("expected 450 edges, got %d", len(topo.EdgeFaces))
	}
	for _, faces := range topo.EdgeFaces {
		if len(faces) != 2 {
			t.Fatalf("closed mesh edge with %d faces", len(faces))
		}
	}
}

func TestExpandFaceSet(t *testing.T) {
	m := subdividedCubeMesh(5)
	topo, err := NewTopology(len(m.Vertices), m.Faces)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seed := map[int]bool{0: true}

	zero := topo.ExpandFaceSet(seed, 0)
	if len(zero) != 1 || !zero[0] {
		t.Errorf("0-ring expansion must be the set itself, got %v", zero)
	}

	one := topo.ExpandFaceSet(seed, 1)
	if len(one) != 4 {
		t.Errorf("1-ring of an interior face should hold 4 faces, got %d", len(one))
	}

	two := topo.ExpandFaceSet(seed, 2)
	// 2-ring contains the 1-ring plus every neighbor of it
	for fi := range one {
		if !two[fi] {
			t.Errorf("2-ring is missing 1-ring face %d", fi)
		}
		for _, other := range topo.FaceNeighbors(fi) {
			if !two[other] {
				t.Errorf("2-ring is missing face %d adjacent to 1-ring face %d",
					other, fi)
			}
		}
	}

	// the seed set must not be mutated
	if len(seed) != 1 {
		t.Errorf("input set was modified: %v", seed)
	}
}

func TestTopologyDisconnectedComponents(t *testing.T) {
	m := twoCubesMesh()
	topo, err := NewTopology(len(m.Vertices), m.Faces)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// expansion never crosses between components
	all := topo.ExpandFaceSet(map[int]bool{0: true}, 100)
	if len(all) != 12 {
		t.Errorf("expected expansion to stay within one cube (12 faces), got %d",
			len(all))
	}
}
