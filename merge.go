package meshdomain

import (
	"fmt"
	"math"

	"github.com/nat-n/geom"
)

// MergeStats reports what the merger discarded on the way to the final mesh.
type MergeStats struct {
	DroppedPaddingFaces    int
	DroppedDuplicateFaces  int
	DroppedDegenerateFaces int
	DedupedVertices        int
}

// dedupKey identifies vertices that must share one output index. Border
// vertices carry their reconciliation cluster id; everything else is keyed
// by its position quantised to the spatial tolerance grid, which catches any
// remaining coincidences.
type dedupKey struct {
	cluster bool
	a, b, c int64
}

func clusterKey(id int) dedupKey {
	return dedupKey{cluster: true, a: int64(id)}
}

func positionKey(v geom.Vec3) dedupKey {
	return dedupKey{
		a: int64(math.Round(v.X / spatialTolerance)),
		b: int64(math.Round(v.Y / spatialTolerance)),
		c: int64(math.Round(v.Z / spatialTolerance)),
	}
}

// MergeSubMeshes assembles the reconciled sub-meshes into one mesh with
// densely indexed vertex and face lists. Extension vertices are skipped
// (their owning partitions emit them); the rest are deduplicated by
// reconciliation cluster, falling back to quantised position; padding-origin
// faces are dropped outright (they only duplicated a neighboring partition's
// core geometry), and the remaining faces are reindexed and set-deduplicated
// by sorted vertex triple, first occurrence kept.
//
// Sub-meshes are consumed in partition order and their contents in local
// order, so output indexing is deterministic.
func MergeSubMeshes(subs []*SubMesh) (*Mesh, MergeStats) {
	out := &Mesh{}
	stats := MergeStats{}

	global_index := make(map[dedupKey]int)
	remaps := make([][]int, len(subs))

	for si, sm := range subs {
		remap := make([]int, len(sm.Vertices))
		for v := range sm.Vertices {
			if sm.Classes[v] == ClassExtension {
				// padding-only context; the owning partition emits this
				// vertex
				remap[v] = -1
				continue
			}
			var key dedupKey
			if sm.ClusterID[v] >= 0 {
				key = clusterKey(sm.ClusterID[v])
			} else {
				key = positionKey(sm.Vertices[v])
			}
			if existing, seen := global_index[key]; seen {
				remap[v] = existing
				stats.DedupedVertices++
				continue
			}
			remap[v] = len(out.Vertices)
			global_index[key] = remap[v]
			out.Vertices = append(out.Vertices, sm.Vertices[v])
		}
		remaps[si] = remap
	}

	seen_faces := make(map[[3]int]bool)
	for si, sm := range subs {
		remap := remaps[si]
		for fi, f := range sm.Faces {
			if !sm.CoreFace[fi] {
				stats.DroppedPaddingFaces++
				continue
			}
			mapped := [3]int{remap[f[0]], remap[f[1]], remap[f[2]]}
			assert("core faces never reference extension vertices", func() bool {
				return mapped[0] >= 0 && mapped[1] >= 0 && mapped[2] >= 0
			})
			if mapped[0] == mapped[1] || mapped[1] == mapped[2] ||
				mapped[2] == mapped[0] {
				// deduplication fused this face's corners together
				stats.DroppedDegenerateFaces++
				continue
			}
			if seen_faces[sortedTriple(mapped)] {
				stats.DroppedDuplicateFaces++
				continue
			}
			seen_faces[sortedTriple(mapped)] = true
			out.Faces = append(out.Faces, mapped)
		}
	}

	if debug_level() >= 1 {
		fmt.Println("Merged", len(subs), "sub-meshes into",
			len(out.Vertices), "vertices and", len(out.Faces), "faces")
	}

	return out, stats
}

// sortedTriple orders a face's vertex indices so that faces can be compared
// as sets.
func sortedTriple(f [3]int) [3]int {
	if f[0] > f[1] {
		f[0], f[1] = f[1], f[0]
	}
	if f[1] > f[2] {
		f[1], f[2] = f[2], f[1]
	}
	if f[0] > f[1] {
		f[0], f[1] = f[1], f[0]
	}
	return f
}
