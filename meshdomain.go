// Package meshdomain simplifies large triangle meshes by partitioning them
// into bounded-size domains, reducing each domain independently with quadric
// error edge collapse, and reassembling the results into one watertight
// mesh.
//
// The pipeline runs in strict order: topology indexing, BFS edge-count
// partitioning, per-partition local simplification (the only parallel
// stage), cross-partition border reconciliation, and a final merge that
// deduplicates vertices and faces.
package meshdomain

import (
	"fmt"
	"sync"

	"github.com/nat-n/geom"
)

// Mesh is a triangle mesh as flat position and index lists. Vertex identity
// is the index; positions may be retargeted in place but indices are only
// ever renumbered by the merger.
type Mesh struct {
	Vertices []geom.Vec3
	Faces    [][3]int
}

// Options configures a simplification run.
type Options struct {
	// TargetRatio is the fraction of each partition's simplifiable vertices
	// to retain, in (0, 1].
	TargetRatio float64

	// TargetEdgesPerPartition is the edge count each partition's core aims
	// for. Cores land within roughly [0.8x, 1.2x] of it, except possibly one
	// undersized remainder per connected component.
	TargetEdgesPerPartition int
}

// DefaultOptions mirror the parameters the original pipeline was run with.
func DefaultOptions() Options {
	return Options{
		TargetRatio:             0.5,
		TargetEdgesPerPartition: 2000,
	}
}

func (o Options) validate() error {
	if o.TargetRatio <= 0 || o.TargetRatio > 1 {
		return &ConfigurationError{"target ratio must be in (0, 1]"}
	}
	if o.TargetEdgesPerPartition <= 0 {
		return &ConfigurationError{"target edges per partition must be > 0"}
	}
	return nil
}

// Stats reports what one simplification run did. Degradations that are not
// failures (unreached ratios, singular-system fallbacks, non-manifold input
// edges) surface here rather than as errors.
type Stats struct {
	InputVertices  int
	InputFaces     int
	OutputVertices int
	OutputFaces    int

	PartitionCount   int
	NonManifoldEdges int
	BorderClusters   int

	// AchievedRatios holds the per-partition retention ratio actually
	// reached; UnreachedPartitions counts those that ran out of collapsible
	// edges before reaching the target.
	AchievedRatios      []float64
	UnreachedPartitions int
	SingularFallbacks   int

	Merge MergeStats
}

// Simplify reduces a mesh given as flat vertex and face lists, retaining
// roughly target_ratio of each partition's vertices, with partitions sized
// at target_edges edges. The only failures are malformed input and invalid
// configuration.
func Simplify(vertices []geom.Vec3, faces [][3]int, target_ratio float64,
	target_edges int) ([]geom.Vec3, [][3]int, error) {
	out, _, err := SimplifyMesh(
		&Mesh{Vertices: vertices, Faces: faces},
		Options{TargetRatio: target_ratio, TargetEdgesPerPartition: target_edges},
	)
	if err != nil {
		return nil, nil, err
	}
	return out.Vertices, out.Faces, nil
}

// SimplifyMesh runs the full pipeline and additionally reports run
// statistics. The input mesh is not modified.
func SimplifyMesh(m *Mesh, opts Options) (*Mesh, *Stats, error) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}

	topo, err := NewTopology(len(m.Vertices), m.Faces)
	if err != nil {
		return nil, nil, err
	}

	partitions, err := PartitionFaces(topo, opts.TargetEdgesPerPartition)
	if err != nil {
		return nil, nil, err
	}

	stats := &Stats{
		InputVertices:    len(m.Vertices),
		InputFaces:       len(m.Faces),
		PartitionCount:   len(partitions),
		NonManifoldEdges: topo.NonManifoldEdges,
		AchievedRatios:   make([]float64, len(partitions)),
	}

	// Simplify all partitions independently. Workers share the topology
	// read-only and each owns its extracted sub-mesh exclusively; the
	// reconciler requires every worker's output, so this is a plain
	// fan-out/fan-in.
	subs := make([]*SubMesh, len(partitions))
	var wg sync.WaitGroup
	results := make(chan *SubMesh, 16)
	for _, p := range partitions {
		wg.Add(1)
		go func(p *Partition) {
			sm := ExtractSubMesh(m, topo, p)
			SimplifyLocal(sm, opts.TargetRatio)
			results <- sm
		}(p)
	}

	// Receive results until they're all done
	go func() {
		wg.Wait()
		close(results)
	}()
	for sm := range results {
		if debug_level() >= 2 {
			fmt.Println("Partition", sm.Partition, "simplified to",
				len(sm.Vertices), "vertices,", len(sm.Faces), "faces")
		}
		subs[sm.Partition] = sm
		wg.Done()
	}

	for _, sm := range subs {
		stats.AchievedRatios[sm.Partition] = sm.AchievedRatio
		stats.SingularFallbacks += sm.SingularFallbacks
		if !sm.TargetReached {
			stats.UnreachedPartitions++
		}
	}

	stats.BorderClusters = ReconcileBorders(subs)

	out, merge_stats := MergeSubMeshes(subs)
	stats.Merge = merge_stats
	stats.OutputVertices = len(out.Vertices)
	stats.OutputFaces = len(out.Faces)

	return out, stats, nil
}
