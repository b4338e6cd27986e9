package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dependency manager used by a project.
type DepsType string

const (
	DepsPip   DepsType = "pip"
	DepsConda DepsType = "conda"
	DepsNone  DepsType = "none"
)

// Immutable description of a project to containerize.
type Descriptor struct {
	Dir               string         `yaml:"dir"`                // Project directory, copied into the build context.
	PythonVersion     string         `yaml:"python_version"`     // Pinned interpreter version. Empty uses the host version.
	DepsType          DepsType       `yaml:"deps_type"`          // Dependency manager. Empty means no manifest was found.
	DockerImage       string         `yaml:"docker_image"`       // Pre-built image to run instead of building one.
	CUDA              bool           `yaml:"cuda"`               // Whether the image needs an accelerator runtime.
	CUDAVersion       string         `yaml:"cuda_version"`       // Accelerator runtime version. Empty uses the default.
	RunID             string         `yaml:"run_id"`             // Run identifier, part of the image tag.
	ImageName         string         `yaml:"image_name"`         // Base name of the built image.
	TargetProject     string         `yaml:"target_project"`     // Project the run reports to.
	TargetEntity      string         `yaml:"target_entity"`      // Entity (user or team) the run reports to.
	OverrideConfig    map[string]any `yaml:"override_config"`    // Run configuration overrides.
	OverrideArtifacts map[string]any `yaml:"override_artifacts"` // Artifact overrides.
	OverrideArgs      []string       `yaml:"override_args"`      // Extra arguments appended to the entry point.
	UserID            *int           `yaml:"user_id"`            // Fixed uid for the container user. Nil uses the host euid.
}

// Reads a descriptor from a YAML project file.
//
// A relative Dir is resolved against the directory containing the file. An
// empty Dir means the file's own directory.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}

	var desc Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDescriptor, path, err)
	}

	base := filepath.Dir(path)
	switch {
	case desc.Dir == "":
		desc.Dir = base
	case !filepath.IsAbs(desc.Dir):
		desc.Dir = filepath.Join(base, desc.Dir)
	}

	return &desc, nil
}

// Checks that the descriptor can be built.
//
// The project directory must exist unless a pre-built image is given, and
// the run identifier must be set since it is part of every image tag.
func (d *Descriptor) Validate() error {
	if strings.TrimSpace(d.RunID) == "" {
		return fmt.Errorf("%w: run id is required", ErrInvalidDescriptor)
	}

	switch d.DepsType {
	case "", DepsPip, DepsConda, DepsNone:
	default:
		return fmt.Errorf("%w: unsupported deps type %q", ErrInvalidDescriptor, d.DepsType)
	}

	if d.UserID != nil && *d.UserID < 0 {
		return fmt.Errorf("%w: negative user id %d", ErrInvalidDescriptor, *d.UserID)
	}

	if d.DockerImage != "" {
		return nil
	}

	info, err := os.Stat(d.Dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidDescriptor, d.Dir)
	}

	return nil
}

// Returns the entry point command with the descriptor's override arguments
// appended.
func (d *Descriptor) EntryCommand(command string) string {
	parts := append([]string{strings.TrimSpace(command)}, d.OverrideArgs...)
	return strings.TrimSpace(strings.Join(parts, " "))
}
