package meshdomain

import (
	"github.com/nat-n/geom"
)

// SubMesh is the working copy of one partition: its core and padding faces
// re-indexed into a private local vertex space. It is the unit handed to a
// simplifier worker, and later to the reconciler and merger. Each worker
// owns its SubMesh exclusively.
type SubMesh struct {
	Partition int

	Vertices []geom.Vec3
	Faces    [][3]int

	// CoreFace is true for faces originating from the partition's core.
	// Padding-origin faces provide quadric context only and are dropped by
	// the merger.
	CoreFace []bool

	// GlobalID maps a local vertex back to its pre-partition global index,
	// or -1 for vertices created by collapses.
	GlobalID []int

	// Lineage holds, per local vertex, the sorted set of original global
	// vertex indices it descends from. Initially the singleton {GlobalID}.
	Lineage [][]int

	Classes []VertexClass

	// ClusterID is assigned by the boundary reconciler: border vertices of
	// the same reconciliation cluster share an id. -1 for everything else.
	ClusterID []int

	// Diagnostics filled in by the local simplifier.
	AchievedRatio     float64
	TargetReached     bool
	SingularFallbacks int
}

// ExtractSubMesh copies one partition's core and padding faces out of the
// shared mesh into a private, locally indexed sub-mesh. Core faces come
// first in BFS order, then padding faces in ascending order; local vertex
// ids are assigned in order of first appearance, so extraction is
// deterministic.
func ExtractSubMesh(m *Mesh, topo *Topology, p *Partition) *SubMesh {
	sm := &SubMesh{
		Partition: p.Index,
	}

	local := make(map[int]int)
	add_vertex := func(global int) int {
		if li, exists := local[global]; exists {
			return li
		}
		li := len(sm.Vertices)
		local[global] = li
		sm.Vertices = append(sm.Vertices, m.Vertices[global])
		sm.GlobalID = append(sm.GlobalID, global)
		sm.Lineage = append(sm.Lineage, []int{global})
		sm.Classes = append(sm.Classes, p.Classes[global])
		sm.ClusterID = append(sm.ClusterID, -1)
		return li
	}

	add_face := func(fi int, core bool) {
		f := topo.Faces[fi]
		sm.Faces = append(sm.Faces, [3]int{
			add_vertex(f[0]),
			add_vertex(f[1]),
			add_vertex(f[2]),
		})
		sm.CoreFace = append(sm.CoreFace, core)
	}

	for _, fi := range p.CoreFaces {
		add_face(fi, true)
	}
	for _, fi := range p.PaddingFaces {
		add_face(fi, false)
	}

	return sm
}

// unionLineage merges two sorted lineage sets into a new sorted set.
func unionLineage(a, b []int) []int {
	merged := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			merged = append(merged, a[i])
			i++
		case a[i] > b[j]:
			merged = append(merged, b[j])
			j++
		default:
			merged = append(merged, a[i])
			i++
			j++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)
	return merged
}

// lineagesIntersect reports whether two sorted lineage sets share an
// ancestor.
func lineagesIntersect(a, b []int) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			return true
		}
	}
	return false
}
