package meshdomain

import (
	"testing"

	"github.com/nat-n/geom"
)

// borderSubMesh builds a minimal sub-mesh holding only border vertices, for
// exercising the reconciler in isolation.
func borderSubMesh(partition int, positions []geom.Vec3, lineages [][]int) *SubMesh {
	sm := &SubMesh{Partition: partition}
	for i, pos := range positions {
		sm.Vertices = append(sm.Vertices, pos)
		sm.GlobalID = append(sm.GlobalID, -1)
		sm.Lineage = append(sm.Lineage, lineages[i])
		sm.Classes = append(sm.Classes, ClassBorder)
		sm.ClusterID = append(sm.ClusterID, -1)
	}
	return sm
}

func TestReconcileByLineageIntersection(t *testing.T) {
	// the two vertices share ancestor 5 but drifted apart during
	// independent simplification
	a := borderSubMesh(0, []geom.Vec3{{X: 1, Y: 0, Z: 0}}, [][]int{{2, 5}})
	b := borderSubMesh(1, []geom.Vec3{{X: 1.2, Y: 0.4, Z: 0}}, [][]int{{5, 9}})

	clusters := ReconcileBorders([]*SubMesh{a, b})
	if clusters != 1 {
		t.Fatalf("expected 1 cluster, got %d", clusters)
	}

	for _, sm := range []*SubMesh{a, b} {
		pos := sm.Vertices[0]
		if abs(pos.X-1.1) > 1e-12 || abs(pos.Y-0.2) > 1e-12 || pos.Z != 0 {
			t.Errorf("partition %d: expected averaged position (1.1, 0.2, 0), got (%v, %v, %v)",
				sm.Partition, pos.X, pos.Y, pos.Z)
		}
	}
	if a.ClusterID[0] != b.ClusterID[0] || a.ClusterID[0] < 0 {
		t.Errorf("cluster ids differ: %d vs %d", a.ClusterID[0], b.ClusterID[0])
	}
}

func TestReconcileBySpatialProximity(t *testing.T) {
	// disjoint lineages (collapse paths diverged) but positions within the
	// spatial tolerance
	a := borderSubMesh(0, []geom.Vec3{{X: 2, Y: 2, Z: 2}}, [][]int{{1}})
	b := borderSubMesh(1, []geom.Vec3{{X: 2 + 5e-7, Y: 2, Z: 2 - 5e-7}}, [][]int{{8}})

	clusters := ReconcileBorders([]*SubMesh{a, b})
	if clusters != 1 {
		t.Fatalf("expected 1 cluster, got %d", clusters)
	}

	ax, bx := a.Vertices[0], b.Vertices[0]
	if ax.X != bx.X || ax.Y != bx.Y || ax.Z != bx.Z {
		t.Error("spatially matched vertices must end at the same position")
	}
	if a.ClusterID[0] != b.ClusterID[0] {
		t.Error("spatially matched vertices must share a cluster id")
	}
}

func TestReconcileLeavesDistantSingletonsAlone(t *testing.T) {
	a := borderSubMesh(0, []geom.Vec3{{X: 0, Y: 0, Z: 0}}, [][]int{{1}})
	b := borderSubMesh(1, []geom.Vec3{{X: 10, Y: 0, Z: 0}}, [][]int{{2}})

	clusters := ReconcileBorders([]*SubMesh{a, b})
	if clusters != 2 {
		t.Fatalf("expected 2 singleton clusters, got %d", clusters)
	}
	if a.Vertices[0].X != 0 || b.Vertices[0].X != 10 {
		t.Error("singleton cluster positions must be untouched")
	}
	if a.ClusterID[0] < 0 || b.ClusterID[0] < 0 {
		t.Error("singletons still need cluster ids for the merger")
	}
	if a.ClusterID[0] == b.ClusterID[0] {
		t.Error("distinct clusters must have distinct ids")
	}
}

func TestReconcileIgnoresNonBorderVertices(t *testing.T) {
	a := borderSubMesh(0, []geom.Vec3{{X: 0, Y: 0, Z: 0}}, [][]int{{1}})
	a.Classes[0] = ClassInterior
	b := borderSubMesh(1, []geom.Vec3{{X: 0, Y: 0, Z: 0}}, [][]int{{1}})
	b.Classes[0] = ClassExtension

	clusters := ReconcileBorders([]*SubMesh{a, b})
	if clusters != 0 {
		t.Fatalf("expected no clusters, got %d", clusters)
	}
	if a.ClusterID[0] != -1 || b.ClusterID[0] != -1 {
		t.Error("non-border vertices must not receive cluster ids")
	}
}

func TestReconcileThreeWayCorner(t *testing.T) {
	// a corner where three partitions meet: all three share ancestor 7
	a := borderSubMesh(0, []geom.Vec3{{X: 0, Y: 0, Z: 0}}, [][]int{{7}})
	b := borderSubMesh(1, []geom.Vec3{{X: 0.3, Y: 0, Z: 0}}, [][]int{{7, 11}})
	c := borderSubMesh(2, []geom.Vec3{{X: 0, Y: 0.3, Z: 0}}, [][]int{{4, 7}})

	clusters := ReconcileBorders([]*SubMesh{a, b, c})
	if clusters != 1 {
		t.Fatalf("expected 1 cluster, got %d", clusters)
	}
	for _, sm := range []*SubMesh{a, b, c} {
		pos := sm.Vertices[0]
		if abs(pos.X-0.1) > 1e-12 || abs(pos.Y-0.1) > 1e-12 {
			t.Errorf("partition %d: expected (0.1, 0.1, 0), got (%v, %v, %v)",
				sm.Partition, pos.X, pos.Y, pos.Z)
		}
	}
}
