package launch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/cruciblehq/cruxlaunch/internal/environ"
	"github.com/cruciblehq/cruxlaunch/internal/paths"
)

// Record of a build, written next to the run's other state.
type Metadata struct {
	RunID            string            `json:"run_id"`
	Image            string            `json:"image"`
	Backend          string            `json:"backend"`
	EntryCommand     string            `json:"entry_command"`      // Sanitized.
	EngineArgs       map[string]any    `json:"engine_args"`        // Extra engine run arguments.
	Dockerfile       string            `json:"dockerfile"`         // Sanitized build file text.
	DockerfileDigest digest.Digest     `json:"dockerfile_digest"`  // Digest of the unsanitized build file.
	Platform         *ocispec.Platform `json:"platform,omitempty"` // Platform the image was built for.
	CreatedAt        time.Time         `json:"created_at"`
}

// Writes the metadata record for a run and returns its path.
func writeMetadata(m *Metadata) (string, error) {
	path := paths.RunMetadata(m.RunID)

	m.EntryCommand = environ.Sanitize(m.EntryCommand)
	m.Dockerfile = environ.Sanitize(m.Dockerfile)

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, paths.DefaultFileMode); err != nil {
		return "", err
	}

	return path, nil
}
