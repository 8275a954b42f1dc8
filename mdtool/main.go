package main

import (
	"errors"
	"fmt"
	"github.com/nat-n/meshdomain"
	"github.com/nat-n/piper"
	"os"
	"strconv"
	"strings"
)

/* Commands:
 * simplify
 * batch
 * verify
 */

func parseOptions(ratio_str, edges_str string) (opts meshdomain.Options, err error) {
	opts.TargetRatio, err = strconv.ParseFloat(ratio_str, 64)
	if err != nil {
		err = errors.New("Couldn't parse target ratio from: " + ratio_str)
		return
	}
	opts.TargetEdgesPerPartition, err = strconv.Atoi(edges_str)
	if err != nil {
		err = errors.New("Couldn't parse target edges per partition from: " + edges_str)
		return
	}
	return
}

func reportStats(stats *meshdomain.Stats) {
	fmt.Println("  partitions:        ", stats.PartitionCount)
	fmt.Println("  border clusters:   ", stats.BorderClusters)
	fmt.Println("  vertices:          ", stats.InputVertices, "->", stats.OutputVertices)
	fmt.Println("  faces:             ", stats.InputFaces, "->", stats.OutputFaces)
	if stats.NonManifoldEdges > 0 {
		fmt.Println("  non-manifold edges:", stats.NonManifoldEdges)
	}
	if stats.UnreachedPartitions > 0 {
		fmt.Println("  partitions short of target ratio:", stats.UnreachedPartitions)
	}
	if stats.SingularFallbacks > 0 {
		fmt.Println("  singular-system midpoint fallbacks:", stats.SingularFallbacks)
	}
}

func simplifyFile(input_path, output_path string, opts meshdomain.Options, verbose bool) (err error) {
	m, err := meshdomain.ReadPLYFile(input_path)
	if err != nil {
		return
	}

	simplified, stats, err := meshdomain.SimplifyMesh(m, opts)
	if err != nil {
		return
	}

	if verbose {
		fmt.Println("Simplified " + input_path)
		reportStats(stats)
	}

	err = simplified.WritePLYFile(output_path)
	return
}

func simplify(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	_, verbose := flags["verbose"]

	opts, err := parseOptions(args[2], args[3])
	if err != nil {
		return
	}

	err = simplifyFile(args[0], args[1], opts, verbose)
	result = data
	return
}

func batch(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	_, verbose := flags["verbose"]

	input_dir := args[0]
	output_dir := args[1]
	opts, err := parseOptions(args[2], args[3])
	if err != nil {
		return
	}

	// ensure directory paths end with a slash
	if input_dir[len(input_dir)-1] != 47 {
		input_dir += "/"
	}
	if output_dir[len(output_dir)-1] != 47 {
		output_dir += "/"
	}

	path_stat, err := os.Stat(output_dir)
	if os.IsNotExist(err) || !path_stat.Mode().IsDir() {
		err = errors.New("Provided output path is not a directory")
		return
	}

	files, err := os.ReadDir(input_dir)
	if err != nil {
		return
	}

	processed := 0
	for _, f := range files {
		if !strings.HasSuffix(f.Name(), ".ply") {
			continue
		}
		if verbose {
			fmt.Println("Processing " + f.Name())
		}
		err = simplifyFile(input_dir+f.Name(), output_dir+f.Name(), opts, verbose)
		if err != nil {
			return
		}
		processed++
	}

	if verbose {
		fmt.Println("Processed", processed, "meshes")
	}

	result = data
	return
}

func verify(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	if _, verbose := flags["verbose"]; verbose {
		fmt.Println("Verifying " + args[0])
	}

	m, err := meshdomain.ReadPLYFile(args[0])
	if err != nil {
		return
	}
	err = m.Verify()
	if err != nil {
		return
	}

	fmt.Println(args[0], "ok:", len(m.Vertices), "vertices,", len(m.Faces), "faces")
	result = data
	return
}

func main() {
	cli := piper.CLIApp{
		Name:        "mdtool",
		Description: "partitioned quadric simplification of triangle meshes",
	}

	cli.RegisterFlag(piper.Flag{
		Name:        "verbose",
		Symbol:      "v",
		Description: "Verbose mode",
	})

	cli.RegisterCommand(piper.Command{
		Name: "simplify",
		Description: ("simplify a single ply mesh, retaining the given " +
			"fraction of vertices, with partitions of roughly the given " +
			"edge count"),
		Args: []string{"input ply file", "output ply file", "target ratio",
			"edges per partition"},
		Task: simplify,
	})

	cli.RegisterCommand(piper.Command{
		Name: "batch",
		Description: ("simplify every ply mesh in a directory, writing " +
			"results under the same names into the output directory"),
		Args: []string{"input directory", "output directory", "target ratio",
			"edges per partition"},
		Task: batch,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "verify",
		Description: "check the structural integrity of a ply mesh",
		Args:        []string{"input ply file"},
		Task:        verify,
	})

	err := cli.Run()

	if err != nil {
		fmt.Println(err)
		cli.PrintHelp()
	}
}
