package meshdomain

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nat-n/geom"
)

// plyElement is one element declaration from a PLY header, with the indices
// of the properties we care about.
type plyElement struct {
	name       string
	count      int
	properties []string
}

// ReadPLY parses a mesh from an ASCII PLY stream. Vertex x/y/z properties
// are located by name, extra per-vertex properties are ignored, and faces
// must be triangles referencing in-range vertices; anything else is rejected
// with a MalformedMeshError.
func ReadPLY(r io.Reader) (m *Mesh, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	next_line := func() (string, bool) {
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if len(line) == 0 || strings.HasPrefix(line, "comment") {
				continue
			}
			return line, true
		}
		return "", false
	}

	// parse header
	line, ok := next_line()
	if !ok || line != "ply" {
		err = &MalformedMeshError{"missing ply magic line"}
		return
	}
	line, ok = next_line()
	if !ok || !strings.HasPrefix(line, "format ascii") {
		err = &MalformedMeshError{"only ascii ply format is supported"}
		return
	}

	elements := make([]*plyElement, 0, 2)
	for {
		line, ok = next_line()
		if !ok {
			err = &MalformedMeshError{"unexpected end of ply header"}
			return
		}
		if line == "end_header" {
			break
		}
		words := strings.Fields(line)
		switch words[0] {
		case "element":
			if len(words) != 3 {
				err = &MalformedMeshError{"malformed element declaration: " + line}
				return
			}
			var count int
			count, err = strconv.Atoi(words[2])
			if err != nil {
				err = &MalformedMeshError{"malformed element count: " + line}
				return
			}
			elements = append(elements, &plyElement{name: words[1], count: count})
		case "property":
			if len(elements) == 0 {
				err = &MalformedMeshError{"property before any element: " + line}
				return
			}
			current := elements[len(elements)-1]
			current.properties = append(current.properties, words[len(words)-1])
		default:
			// obj_info and other ignorable header lines
		}
	}

	m = &Mesh{}
	for _, element := range elements {
		switch element.name {
		case "vertex":
			xi := stringIndex("x", element.properties)
			yi := stringIndex("y", element.properties)
			zi := stringIndex("z", element.properties)
			if xi < 0 || yi < 0 || zi < 0 {
				err = &MalformedMeshError{"vertex element lacks x/y/z properties"}
				return
			}
			m.Vertices = make([]geom.Vec3, 0, element.count)
			for i := 0; i < element.count; i++ {
				line, ok = next_line()
				if !ok {
					err = &MalformedMeshError{"unexpected end of vertex data"}
					return
				}
				words := strings.Fields(line)
				if len(words) < len(element.properties) {
					err = &MalformedMeshError{"truncated vertex line: " + line}
					return
				}
				x, err_x := strconv.ParseFloat(words[xi], 64)
				y, err_y := strconv.ParseFloat(words[yi], 64)
				z, err_z := strconv.ParseFloat(words[zi], 64)
				if err_x != nil || err_y != nil || err_z != nil {
					err = &MalformedMeshError{"unparsable vertex line: " + line}
					return
				}
				m.Vertices = append(m.Vertices, geom.Vec3{X: x, Y: y, Z: z})
			}
		case "face":
			m.Faces = make([][3]int, 0, element.count)
			for i := 0; i < element.count; i++ {
				line, ok = next_line()
				if !ok {
					err = &MalformedMeshError{"unexpected end of face data"}
					return
				}
				words := strings.Fields(line)
				var count int
				count, err = strconv.Atoi(words[0])
				if err != nil || len(words) < count+1 {
					err = &MalformedMeshError{"unparsable face line: " + line}
					return
				}
				if count != 3 {
					err = &MalformedMeshError{"face is not a triangle: " + line}
					return
				}
				var face [3]int
				for k := 0; k < 3; k++ {
					face[k], err = strconv.Atoi(words[k+1])
					if err != nil {
						err = &MalformedMeshError{"unparsable face line: " + line}
						return
					}
					if face[k] < 0 || face[k] >= len(m.Vertices) {
						err = &MalformedMeshError{
							"face references out-of-range vertex " +
								strconv.Itoa(face[k]),
						}
						return
					}
				}
				m.Faces = append(m.Faces, face)
			}
		default:
			// skip data of unknown elements
			for i := 0; i < element.count; i++ {
				if _, ok = next_line(); !ok {
					err = &MalformedMeshError{"unexpected end of ply data"}
					return
				}
			}
		}
	}

	if err = scanner.Err(); err != nil {
		return
	}
	return
}

// WritePLY serializes a mesh as ASCII PLY.
func WritePLY(w io.Writer, m *Mesh) (err error) {
	bw := bufio.NewWriter(w)

	lines := []string{
		"ply",
		"format ascii 1.0",
		"element vertex " + strconv.Itoa(len(m.Vertices)),
		"property float x",
		"property float y",
		"property float z",
		"element face " + strconv.Itoa(len(m.Faces)),
		"property list uchar int vertex_indices",
		"end_header",
	}
	for _, line := range lines {
		if _, err = bw.WriteString(line + "\n"); err != nil {
			return
		}
	}

	for _, v := range m.Vertices {
		_, err = bw.WriteString(
			strconv.FormatFloat(v.X, 'g', -1, 64) + " " +
				strconv.FormatFloat(v.Y, 'g', -1, 64) + " " +
				strconv.FormatFloat(v.Z, 'g', -1, 64) + "\n")
		if err != nil {
			return
		}
	}
	for _, f := range m.Faces {
		_, err = bw.WriteString(
			"3 " + strconv.Itoa(f[0]) + " " + strconv.Itoa(f[1]) + " " +
				strconv.Itoa(f[2]) + "\n")
		if err != nil {
			return
		}
	}

	return bw.Flush()
}

// ReadPLYFile loads a mesh from an ASCII PLY file.
func ReadPLYFile(ply_file_path string) (m *Mesh, err error) {
	input_file, err := os.Open(ply_file_path)
	if err != nil {
		return
	}
	defer input_file.Close()

	m, err = ReadPLY(input_file)
	return
}

// WritePLYFile writes a mesh to an ASCII PLY file.
func (m *Mesh) WritePLYFile(ply_file_path string) (err error) {
	output_file, err := os.Create(ply_file_path)
	if err != nil {
		return
	}
	defer output_file.Close()

	err = WritePLY(output_file, m)
	return
}

// stringIndex returns the index of s in strs, or -1.
func stringIndex(s string, strs []string) int {
	for i, str := range strs {
		if s == str {
			return i
		}
	}
	return -1
}
