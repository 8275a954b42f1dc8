package meshdomain

// MalformedMeshError indicates input geometry that cannot be processed:
// faces referencing out-of-range vertices, faces with fewer than three
// distinct corners, or unparsable mesh files. It aborts the whole pipeline
// since a corrupt region cannot be skipped without leaving a hole after the
// merge.
type MalformedMeshError struct {
	Reason string
}

func (e *MalformedMeshError) Error() string {
	return "malformed mesh: " + e.Reason
}

// ConfigurationError indicates simplification parameters outside their valid
// ranges. It is surfaced before any processing begins.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}
