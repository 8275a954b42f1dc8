package meshdomain

import (
	"fmt"
	"sort"
)

// Two border vertices whose collapse paths diverged are still considered the
// same point when their positions agree within this tolerance, in mesh
// units.
const spatialTolerance = 1e-6

// borderRef addresses one border vertex inside one sub-mesh.
type borderRef struct {
	sub   int // index into the sub-mesh slice
	local int // local vertex index within that sub-mesh
}

// vertexMatcher wraps a border vertex for the sorted-position sweep.
type vertexMatcher struct {
	ref  borderRef
	x    float64
	y    float64
	z    float64
	root int // lineage cluster root
}

type matchersByPosition []*vertexMatcher

func (vs matchersByPosition) Len() int      { return len(vs) }
func (vs matchersByPosition) Swap(i, j int) { vs[i], vs[j] = vs[j], vs[i] }
func (vs matchersByPosition) Less(i, j int) bool {
	a := vs[i]
	b := vs[j]
	if a.x > b.x {
		return false
	} else if a.x == b.x {
		if a.y > b.y {
			return false
		} else if a.y == b.y {
			if a.z > b.z {
				return false
			} else if a.z == b.z {
				if a.ref.sub > b.ref.sub {
					return false
				} else if a.ref.sub == b.ref.sub {
					if a.ref.local > b.ref.local {
						return false
					}
				}
			}
		}
	}
	return true
}

// ancestorSets is a union-find over original global vertex ids, used to
// cluster border vertices whose lineage sets intersect.
type ancestorSets struct {
	parent map[int]int
}

func newAncestorSets() *ancestorSets {
	return &ancestorSets{parent: make(map[int]int)}
}

func (as *ancestorSets) find(id int) int {
	root, exists := as.parent[id]
	if !exists {
		as.parent[id] = id
		return id
	}
	if root == id {
		return id
	}
	root = as.find(root)
	as.parent[id] = root
	return root
}

func (as *ancestorSets) union(a, b int) {
	ra, rb := as.find(a), as.find(b)
	if ra != rb {
		as.parent[rb] = ra
	}
}

// Reconcile Borders:
// ------------------
// ReconcileBorders ensures that border vertices which were simplified
// independently in different partitions end up at identical positions, so
// the merged mesh has no cracks. Border vertices are grouped into clusters
// in two stages: first by intersecting lineage (two vertices descending from
// a shared original vertex belong together), then vertices left alone by
// lineage are swept by sorted position and grouped within a fixed spatial
// tolerance. Every cluster with two or more members has the arithmetic mean
// of its members' positions written back to all of them.
//
// Each border vertex is also stamped with its cluster id, which the merger
// uses as its deduplication key. Returns the number of clusters.
func ReconcileBorders(subs []*SubMesh) int {
	// Collect all border vertices, unioning their ancestors so that
	// lineage-intersecting vertices share a root.
	ancestors := newAncestorSets()
	refs := make([]borderRef, 0)
	for si, sm := range subs {
		for v, class := range sm.Classes {
			if class != ClassBorder {
				continue
			}
			refs = append(refs, borderRef{si, v})
			lineage := sm.Lineage[v]
			for _, id := range lineage[1:] {
				ancestors.union(lineage[0], id)
			}
		}
	}

	root_of := func(r borderRef) int {
		return ancestors.find(subs[r.sub].Lineage[r.local][0])
	}

	// Stage 1: group by lineage root.
	members := make(map[int][]borderRef)
	for _, r := range refs {
		root := root_of(r)
		members[root] = append(members[root], r)
	}

	// Stage 2: vertices not clustered by lineage may still have converged
	// spatially. Sort them by position and merge runs within tolerance,
	// chaining the roots together.
	loners := make([]*vertexMatcher, 0)
	for _, r := range refs {
		root := root_of(r)
		if len(members[root]) == 1 {
			pos := subs[r.sub].Vertices[r.local]
			loners = append(loners, &vertexMatcher{
				ref: r, x: pos.X, y: pos.Y, z: pos.Z, root: root,
			})
		}
	}
	sort.Sort(matchersByPosition(loners))
	for i := 1; i < len(loners); i++ {
		prev, cur := loners[i-1], loners[i]
		if cur.x-prev.x <= spatialTolerance &&
			abs(cur.y-prev.y) <= spatialTolerance &&
			abs(cur.z-prev.z) <= spatialTolerance {
			ancestors.union(prev.root, cur.root)
		}
	}

	// Regroup after the spatial stage and assign cluster ids in order of
	// first appearance, so the numbering is deterministic.
	members = make(map[int][]borderRef)
	cluster_ids := make(map[int]int)
	order := make([]int, 0)
	for _, r := range refs {
		root := root_of(r)
		if _, seen := cluster_ids[root]; !seen {
			cluster_ids[root] = len(order)
			order = append(order, root)
		}
		members[root] = append(members[root], r)
	}

	// Average each cluster's positions across all members and write the
	// mean back to every member, stamping cluster ids along the way.
	for _, root := range order {
		cluster := members[root]
		for _, r := range cluster {
			subs[r.sub].ClusterID[r.local] = cluster_ids[root]
		}
		if len(cluster) < 2 {
			continue
		}
		var sum_x, sum_y, sum_z float64
		for _, r := range cluster {
			pos := subs[r.sub].Vertices[r.local]
			sum_x += pos.X
			sum_y += pos.Y
			sum_z += pos.Z
		}
		n := float64(len(cluster))
		for _, r := range cluster {
			v := &subs[r.sub].Vertices[r.local]
			v.X = sum_x / n
			v.Y = sum_y / n
			v.Z = sum_z / n
		}
	}

	if debug_level() >= 1 {
		fmt.Println("Reconciled", len(refs), "border vertices into",
			len(order), "clusters")
	}

	return len(order)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
