package meshdomain

import (
	"fmt"
	"sort"
)

// Vertex classification within one partition. Exactly one class holds for
// every vertex touched by a partition's core or padding faces.
type VertexClass int

const (
	// ClassInterior vertices touch only this partition's core. Freely
	// simplifiable, no cross-partition bookkeeping needed.
	ClassInterior VertexClass = iota
	// ClassBorder vertices touch core faces of two or more partitions.
	// Simplifiable, but their final positions must be reconciled.
	ClassBorder
	// ClassExtension vertices touch only this partition's padding. Frozen;
	// they exist to give the simplifier correct quadric context at the
	// partition boundary.
	ClassExtension
)

func (c VertexClass) String() string {
	switch c {
	case ClassBorder:
		return "border"
	case ClassExtension:
		return "extension"
	}
	return "interior"
}

// Partition is one simplification domain: a core face set which this
// partition owns exclusively, a 2-ring padding face set providing
// topological context, and a classification for every vertex either touches.
type Partition struct {
	Index int

	// Core faces in BFS discovery order. The cores of all partitions cover
	// the mesh's face set exactly once.
	CoreFaces []int

	// Padding faces in ascending order. May overlap other partitions' cores.
	PaddingFaces []int

	// Number of edges this partition's BFS claimed. Every mesh edge is
	// claimed by exactly the first partition that reaches it, so these sum
	// to the mesh's total edge count.
	CoreEdgeCount int

	Classes map[int]VertexClass
}

// Thresholds of the BFS expansion taper, as fractions of the target edge
// count per partition.
const (
	partitionLowerFraction = 0.8
	partitionUpperFraction = 1.2
)

// PartitionFaces divides the face set into partitions of roughly
// target_edges edges each, by repeated breadth-first traversal over the
// shared-edge face adjacency graph, then pads each partition with its 2-ring
// neighborhood and classifies the touched vertices.
//
// Seeds are chosen in ascending face index order, and neighbors are enqueued
// in ascending order, so the result is deterministic for a fixed input.
func PartitionFaces(topo *Topology, target_edges int) ([]*Partition, error) {
	if target_edges <= 0 {
		return nil, &ConfigurationError{"target edges per partition must be > 0"}
	}

	lower_threshold := int(partitionLowerFraction * float64(target_edges))
	assigned := make([]bool, len(topo.Faces))
	edge_claimed := make(map[VertexPair]bool, len(topo.EdgeFaces))
	partitions := make([]*Partition, 0)

	for seed := 0; seed < len(topo.Faces); seed++ {
		if assigned[seed] {
			continue
		}

		p := &Partition{Index: len(partitions)}
		queue := []int{seed}
		assigned[seed] = true

		for len(queue) > 0 {
			fi := queue[0]
			queue = queue[1:]
			p.CoreFaces = append(p.CoreFaces, fi)

			// Claim this face's edges for the partition. Edges already
			// claimed by an earlier partition stay theirs.
			for _, pair := range FaceEdges(topo.Faces[fi]) {
				if !edge_claimed[pair] {
					edge_claimed[pair] = true
					p.CoreEdgeCount++
				}
			}

			// Taper: grow the frontier only while under the lower threshold.
			// Between the thresholds queued faces still drain into the core,
			// which bounds the overshoot at roughly the upper threshold.
			if p.CoreEdgeCount < lower_threshold {
				for _, other := range topo.FaceNeighbors(fi) {
					if !assigned[other] {
						assigned[other] = true
						queue = append(queue, other)
					}
				}
			}
		}

		partitions = append(partitions, p)
	}

	if debug_level() >= 1 {
		fmt.Println("Partitioned", len(topo.Faces), "faces into",
			len(partitions), "partitions")
	}

	// Pad each partition with its 2-ring neighborhood, computed from the
	// original unpartitioned adjacency so it can reach into faces owned by
	// other partitions' cores.
	for _, p := range partitions {
		core_set := make(map[int]bool, len(p.CoreFaces))
		for _, fi := range p.CoreFaces {
			core_set[fi] = true
		}
		expanded := topo.ExpandFaceSet(core_set, 2)
		for fi := range expanded {
			if !core_set[fi] {
				p.PaddingFaces = append(p.PaddingFaces, fi)
			}
		}
		sort.Ints(p.PaddingFaces)
	}

	classifyVertices(topo, partitions)

	return partitions, nil
}

// classifyVertices assigns border/extension/interior to every vertex touched
// by each partition. A vertex is border when core faces of at least two
// partitions are incident to it, extension when only this partition's
// padding touches it, and interior otherwise.
func classifyVertices(topo *Topology, partitions []*Partition) {
	// How many distinct partition cores touch each vertex.
	core_partitions := make([][]int, topo.NumVertices)
	for _, p := range partitions {
		for _, fi := range p.CoreFaces {
			for _, v := range topo.Faces[fi] {
				n := len(core_partitions[v])
				if n == 0 || core_partitions[v][n-1] != p.Index {
					core_partitions[v] = append(core_partitions[v], p.Index)
				}
			}
		}
	}

	for _, p := range partitions {
		p.Classes = make(map[int]VertexClass)

		in_core := make(map[int]bool)
		for _, fi := range p.CoreFaces {
			for _, v := range topo.Faces[fi] {
				in_core[v] = true
			}
		}

		for v := range in_core {
			if len(core_partitions[v]) >= 2 {
				p.Classes[v] = ClassBorder
			} else {
				p.Classes[v] = ClassInterior
			}
		}
		for _, fi := range p.PaddingFaces {
			for _, v := range topo.Faces[fi] {
				if !in_core[v] {
					p.Classes[v] = ClassExtension
				}
			}
		}
	}
}
