package environ

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"net/url"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/cruciblehq/cruxlaunch/internal/project"
)

// Variables read by the client inside the container.
const (
	KeyBaseURL       = "WANDB_BASE_URL"
	KeyAPIKey        = "WANDB_API_KEY"
	KeyProject       = "WANDB_PROJECT"
	KeyEntity        = "WANDB_ENTITY"
	KeyLaunch        = "WANDB_LAUNCH"
	KeyRunID         = "WANDB_RUN_ID"
	KeyDocker        = "WANDB_DOCKER"
	KeyConfig        = "WANDB_CONFIG"
	KeyArtifacts     = "WANDB_ARTIFACTS"
	KeyConfigPath    = KeyConfig + "_PATH"
	KeyArtifactsPath = KeyArtifacts + "_PATH"
)

const (

	// Largest value placed directly in the environment. Larger JSON blobs
	// are written to files in the source tree instead, since many systems
	// reject environment strings above 32 KiB.
	MaxValueBytes = 32760

	// Directory, relative to the container working directory, that receives
	// values too large for the environment.
	SpillDir = ".launch"

	// Host name under which containers reach services on the host.
	containerHostAlias = "host.docker.internal"

	// Development deployment host and the port it is reachable on from
	// containers.
	devHost = "wandb.test"
	devPort = "9002"
)

// Where the in-container client reports to.
type Connection struct {
	BaseURL string // Service endpoint as seen from the host.
	APIKey  string // Credential passed through to the container.
}

// Resolved container environment.
type Environment struct {
	Vars  map[string]string // Variables to set on the container.
	Files map[string][]byte // Files to place in the source tree, keyed by relative path.
}

// Returns the variable names in sorted order.
func (e *Environment) Keys() []string {
	return slices.Sorted(maps.Keys(e.Vars))
}

// Computes the container environment for a project.
//
// The only error is a failure to JSON-encode the override maps.
func Resolve(desc *project.Descriptor, conn Connection) (*Environment, error) {
	env := &Environment{
		Vars: map[string]string{
			KeyBaseURL: containerBaseURL(conn.BaseURL),
			KeyAPIKey:  conn.APIKey,
			KeyProject: desc.TargetProject,
			KeyEntity:  desc.TargetEntity,
			KeyLaunch:  "True",
			KeyRunID:   desc.RunID,
		},
		Files: make(map[string][]byte),
	}

	if desc.DockerImage != "" {
		env.Vars[KeyDocker] = desc.DockerImage
	}

	if err := env.setJSON(KeyConfig, KeyConfigPath, "config.json", desc.OverrideConfig); err != nil {
		return nil, err
	}
	if err := env.setJSON(KeyArtifacts, KeyArtifactsPath, "artifacts.json", desc.OverrideArtifacts); err != nil {
		return nil, err
	}

	return env, nil
}

// Sets a JSON-encoded variable, or spills it to a file when it is too large
// for the environment. Nil maps are encoded as an empty object.
func (e *Environment) setJSON(key, pathKey, file string, value map[string]any) error {
	if value == nil {
		value = map[string]any{}
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if len(data) <= MaxValueBytes {
		e.Vars[key] = string(data)
		return nil
	}

	rel := path.Join(SpillDir, file)
	e.Files[rel] = data
	e.Vars[pathKey] = rel

	slog.Warn("value too large for the environment, passing it as a file",
		"key", key,
		"bytes", len(data),
		"path", rel,
	)
	return nil
}

// Rewrites a base URL that points at the host itself so that it is
// reachable from inside a container. Other URLs are returned unchanged.
func containerBaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	host := u.Hostname()
	switch {
	case host == devHost:
		return "http://" + net.JoinHostPort(containerHostAlias, devPort)
	case isLoopback(host):
		if port := u.Port(); port != "" {
			u.Host = net.JoinHostPort(containerHostAlias, port)
		} else {
			u.Host = containerHostAlias
		}
		return u.String()
	}
	return raw
}

// Returns true for "localhost" and loopback IP literals. No name resolution
// is performed.
func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

var apiKeyAssignment = regexp.MustCompile(`(` + KeyAPIKey + `=)\S+`)

// Masks API key assignments in s, for text that is logged or persisted.
func Sanitize(s string) string {
	return apiKeyAssignment.ReplaceAllString(s, "${1}...")
}
