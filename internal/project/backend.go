package project

import (
	"fmt"
	"strings"
)

// Behavior a backend imposes on the generated image.
type Capabilities struct {
	RunAsRoot        bool // The backend refuses to run containers as a non-root user.
	ScriptEntrypoint bool // The backend appends its own argument to the entrypoint, so the command is wrapped in a script.
	NeedsRegistry    bool // Images must be pushed to a registry the backend can pull from.
}

// A compute target for the built image.
//
// The zero value is not a valid backend; use one of the package-level
// variants or [ParseBackend].
type Backend struct {
	name string
	caps Capabilities
}

var (

	// Runs the image on the local container engine.
	Local = Backend{name: "local"}

	// Amazon SageMaker training jobs. SageMaker runs containers as root and
	// invokes them as "<entrypoint> train".
	SageMaker = Backend{
		name: "sagemaker",
		caps: Capabilities{RunAsRoot: true, ScriptEntrypoint: true, NeedsRegistry: true},
	}

	// Google Vertex AI custom jobs, pulled from Artifact Registry.
	Vertex = Backend{
		name: "vertex",
		caps: Capabilities{NeedsRegistry: true},
	}
)

// All known backends, in the order they are listed in help output.
var Backends = []Backend{Local, SageMaker, Vertex}

// Returns the backend with the given name. Matching is case-insensitive.
func ParseBackend(name string) (Backend, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, b := range Backends {
		if b.name == n {
			return b, nil
		}
	}
	return Backend{}, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

func (b Backend) String() string { return b.name }

// Returns the capability record of the backend.
func (b Backend) Capabilities() Capabilities { return b.caps }

// Implements [encoding.TextUnmarshaler] so backends can be read from YAML
// files and CLI flags.
func (b *Backend) UnmarshalText(text []byte) error {
	parsed, err := ParseBackend(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Implements [encoding.TextMarshaler].
func (b Backend) MarshalText() ([]byte, error) {
	return []byte(b.name), nil
}
