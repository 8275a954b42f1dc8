package meshdomain

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/nat-n/geom"
)

// Cost multiplier applied to edges with a border endpoint, biasing the
// greedy queue towards collapsing interior edges first.
const borderCollapsePenalty = 1.1

// collapseEntry is one candidate collapse in the priority queue. Entries
// carry generation stamps of their endpoints taken at insertion time; an
// entry whose stamp is outdated when popped is discarded rather than fixed
// up in place.
type collapseEntry struct {
	v1, v2     int
	gen1, gen2 int
	cost       float64
	target     geom.Vec3
	quadric    geom.SymMat4
	singular   bool
}

type collapseHeap []*collapseEntry

func (h collapseHeap) Len() int { return len(h) }
func (h collapseHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	// deterministic tie-break
	if h[i].v1 != h[j].v1 {
		return h[i].v1 < h[j].v1
	}
	return h[i].v2 < h[j].v2
}
func (h collapseHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *collapseHeap) Push(x interface{}) {
	*h = append(*h, x.(*collapseEntry))
}

func (h *collapseHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// lmeState is the mutable working state of one partition's simplification.
// Vertices and faces are tombstoned rather than deleted, and compacted out
// in one pass at the end.
type lmeState struct {
	sm       *SubMesh
	quadrics []geom.SymMat4

	// live face indices per vertex; may contain dead entries which are
	// filtered against faceAlive on read
	vertFaces [][]int

	generation  []int
	vertRemoved []bool
	faceAlive   []bool

	queue collapseHeap

	liveNonExtension  int
	degenerateDropped int
}

// SimplifyLocal reduces one partition's sub-mesh in place by greedy quadric
// error edge collapse until only ceil(target_ratio * n) of its n
// non-extension vertices remain, or no collapsible edges are left.
// Extension vertices are frozen throughout: they supply quadric context but
// never appear as a collapse endpoint. Collapsed-away vertices and faces are
// compacted out before returning.
//
// Running short of candidate edges is not an error; the achieved ratio is
// recorded on the sub-mesh instead.
func SimplifyLocal(sm *SubMesh, target_ratio float64) {
	if len(sm.Faces) == 0 {
		sm.AchievedRatio = 1.0
		sm.TargetReached = target_ratio >= 1.0
		return
	}

	st := &lmeState{
		sm:          sm,
		quadrics:    make([]geom.SymMat4, len(sm.Vertices)),
		vertFaces:   make([][]int, len(sm.Vertices)),
		generation:  make([]int, len(sm.Vertices)),
		vertRemoved: make([]bool, len(sm.Vertices)),
		faceAlive:   make([]bool, len(sm.Faces)),
	}

	// Vertex error quadrics as sums of incident face plane quadrics.
	// Zero-area faces contribute nothing.
	for fi, f := range sm.Faces {
		st.faceAlive[fi] = true
		for _, v := range f {
			st.vertFaces[v] = append(st.vertFaces[v], fi)
		}
		kp, ok := facePlaneQuadric(sm.Vertices[f[0]], sm.Vertices[f[1]], sm.Vertices[f[2]])
		if !ok {
			continue
		}
		for _, v := range f {
			st.quadrics[v].Add(&kp)
		}
	}

	for _, class := range sm.Classes {
		if class != ClassExtension {
			st.liveNonExtension++
		}
	}
	initial_non_extension := st.liveNonExtension
	target_count := int(math.Ceil(target_ratio * float64(initial_non_extension)))

	// Seed the queue with every collapsible edge. Edges with an extension
	// endpoint are permanently frozen and never enter the queue, which
	// preserves the padding ring exactly.
	seeded := make(map[VertexPair]bool)
	for _, f := range sm.Faces {
		for _, pair := range FaceEdges(f) {
			if seeded[pair] {
				continue
			}
			seeded[pair] = true
			st.pushCandidate(pair.V1, pair.V2)
		}
	}
	heap.Init(&st.queue)

	if debug_level() >= 1 {
		fmt.Println("Partition", sm.Partition, "simplification goal:",
			initial_non_extension, "->", target_count, "vertices")
	}

	for st.liveNonExtension > target_count && st.queue.Len() > 0 {
		entry := heap.Pop(&st.queue).(*collapseEntry)

		// discard stale entries
		if st.vertRemoved[entry.v1] || st.vertRemoved[entry.v2] {
			continue
		}
		if st.generation[entry.v1] != entry.gen1 ||
			st.generation[entry.v2] != entry.gen2 {
			continue
		}
		assert("collapse endpoints are never extension vertices", func() bool {
			return sm.Classes[entry.v1] != ClassExtension &&
				sm.Classes[entry.v2] != ClassExtension
		})

		st.collapse(entry)
	}

	sm.AchievedRatio = float64(st.liveNonExtension) /
		float64(initial_non_extension)
	sm.TargetReached = st.liveNonExtension <= target_count

	if debug_level() >= 1 && !sm.TargetReached {
		fmt.Println("Partition", sm.Partition,
			"ran out of collapsible edges at ratio", sm.AchievedRatio)
	}

	st.compact()
}

// pushCandidate computes the optimal collapse of the edge (v1, v2) and
// pushes it onto the queue, unless an endpoint is frozen.
func (st *lmeState) pushCandidate(v1, v2 int) {
	if st.sm.Classes[v1] == ClassExtension || st.sm.Classes[v2] == ClassExtension {
		return
	}

	Q := geom.SymMat4{}
	Q.Add(&st.quadrics[v1])
	Q.Add(&st.quadrics[v2])

	target, solved := collapseTarget(&Q, st.sm.Vertices[v1], st.sm.Vertices[v2])
	cost := Q.VertexError(target)
	if st.sm.Classes[v1] == ClassBorder || st.sm.Classes[v2] == ClassBorder {
		cost *= borderCollapsePenalty
	}

	heap.Push(&st.queue, &collapseEntry{
		v1:       v1,
		v2:       v2,
		gen1:     st.generation[v1],
		gen2:     st.generation[v2],
		cost:     cost,
		target:   target,
		quadric:  Q,
		singular: !solved,
	})
}

// collapse merges the entry's two endpoints into a new vertex at the
// precomputed target position, retires the degenerated faces, and reinserts
// candidates for the edges newly incident to the merged vertex.
func (st *lmeState) collapse(entry *collapseEntry) {
	sm := st.sm
	v1, v2 := entry.v1, entry.v2

	if entry.singular {
		sm.SingularFallbacks++
	}

	// the merged vertex: summed quadric, union lineage, border if either
	// parent was border
	nv := len(sm.Vertices)
	class := ClassInterior
	if sm.Classes[v1] == ClassBorder || sm.Classes[v2] == ClassBorder {
		class = ClassBorder
	}
	sm.Vertices = append(sm.Vertices, entry.target)
	sm.GlobalID = append(sm.GlobalID, -1)
	sm.Lineage = append(sm.Lineage, unionLineage(sm.Lineage[v1], sm.Lineage[v2]))
	sm.Classes = append(sm.Classes, class)
	sm.ClusterID = append(sm.ClusterID, -1)
	st.quadrics = append(st.quadrics, entry.quadric)
	st.generation = append(st.generation, 0)
	st.vertRemoved = append(st.vertRemoved, false)
	st.vertFaces = append(st.vertFaces, nil)

	st.vertRemoved[v1] = true
	st.vertRemoved[v2] = true
	st.generation[v1]++
	st.generation[v2]++
	// two non-extension vertices removed, one added
	st.liveNonExtension--

	// Rewire incident faces onto the merged vertex. Faces containing both
	// endpoints degenerate and are retired.
	for _, list := range [2][]int{st.vertFaces[v1], st.vertFaces[v2]} {
		for _, fi := range list {
			if !st.faceAlive[fi] {
				continue
			}
			f := &sm.Faces[fi]
			replaced := false
			for k := 0; k < 3; k++ {
				if f[k] == v1 || f[k] == v2 {
					f[k] = nv
					replaced = true
				}
			}
			if !replaced {
				// already rewired via the other endpoint's list
				continue
			}
			if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
				st.faceAlive[fi] = false
				st.degenerateDropped++
				continue
			}
			st.vertFaces[nv] = append(st.vertFaces[nv], fi)
		}
	}

	// Reinsert candidates for every edge newly incident to the merged
	// vertex. Costs of edges between untouched vertices are unaffected
	// since their quadrics did not change.
	neighbor_set := make(map[int]bool)
	for _, fi := range st.vertFaces[nv] {
		for _, u := range sm.Faces[fi] {
			if u != nv && !st.vertRemoved[u] {
				neighbor_set[u] = true
			}
		}
	}
	neighbors := make([]int, 0, len(neighbor_set))
	for u := range neighbor_set {
		neighbors = append(neighbors, u)
	}
	sort.Ints(neighbors)
	for _, u := range neighbors {
		st.pushCandidate(nv, u)
	}
}

// compact rewrites the sub-mesh without tombstoned vertices and faces,
// preserving relative order.
func (st *lmeState) compact() {
	sm := st.sm

	remap := make([]int, len(sm.Vertices))
	vertices := make([]geom.Vec3, 0, len(sm.Vertices))
	global_ids := make([]int, 0, len(sm.Vertices))
	lineage := make([][]int, 0, len(sm.Vertices))
	classes := make([]VertexClass, 0, len(sm.Vertices))
	cluster_ids := make([]int, 0, len(sm.Vertices))

	for v := range sm.Vertices {
		if st.vertRemoved[v] {
			remap[v] = -1
			continue
		}
		remap[v] = len(vertices)
		vertices = append(vertices, sm.Vertices[v])
		global_ids = append(global_ids, sm.GlobalID[v])
		lineage = append(lineage, sm.Lineage[v])
		classes = append(classes, sm.Classes[v])
		cluster_ids = append(cluster_ids, sm.ClusterID[v])
	}

	faces := make([][3]int, 0, len(sm.Faces))
	core_face := make([]bool, 0, len(sm.Faces))
	for fi, f := range sm.Faces {
		if !st.faceAlive[fi] {
			continue
		}
		faces = append(faces, [3]int{remap[f[0]], remap[f[1]], remap[f[2]]})
		core_face = append(core_face, sm.CoreFace[fi])
	}

	sm.Vertices = vertices
	sm.GlobalID = global_ids
	sm.Lineage = lineage
	sm.Classes = classes
	sm.ClusterID = cluster_ids
	sm.Faces = faces
	sm.CoreFace = core_face
}
