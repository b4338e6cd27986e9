package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Client binary used when the configuration does not name one.
const DefaultBinary = "docker"

// Engine configuration. Zero values select the defaults.
type Config struct {
	Binary string // Client binary name or path.
	Runner Runner // Executes the client. Defaults to [ExecRunner].
	Cache  *Cache // Inspection cache. Defaults to a fresh cache.
}

// Container engine driven through its command line client.
type Engine struct {
	binary string
	runner Runner
	cache  *Cache
}

// Creates an engine from the given configuration.
func New(cfg Config) *Engine {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.Runner == nil {
		cfg.Runner = ExecRunner{}
	}
	if cfg.Cache == nil {
		cfg.Cache = NewCache()
	}

	return &Engine{
		binary: cfg.Binary,
		runner: cfg.Runner,
		cache:  cfg.Cache,
	}
}

// Returns the client binary name.
func (e *Engine) Binary() string {
	return e.binary
}

// Returns the inspection cache.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Checks that the client binary can be found on the search path.
func (e *Engine) CheckInstalled() error {
	if _, err := e.runner.LookPath(e.binary); err != nil {
		return fmt.Errorf("%w: %s not found; install Docker (https://docs.docker.com/get-docker/) or set the engine binary: %w",
			ErrConfiguration, e.binary, err)
	}
	return nil
}

// Builds an image tagged uri from the build file and context directory.
//
// Cancellation or expiry of ctx is reported as a build failure.
func (e *Engine) Build(ctx context.Context, uri, file, contextDir string) error {
	slog.Info("building image", "image", uri)

	res, err := e.run(ctx, "image", "build", "--tag", uri, "--file", file, contextDir)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBuild, uri, err)
	}
	if res.ExitCode != 0 {
		return failure(ErrBuild, "image build", uri, res)
	}

	slog.Debug("image built", "image", uri, "output", strings.TrimSpace(res.Stdout))

	return nil
}

// Pulls ref from its registry.
func (e *Engine) Pull(ctx context.Context, ref string) error {
	slog.Info("pulling image", "image", ref)

	res, err := e.run(ctx, "pull", ref)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPull, ref, err)
	}
	if res.ExitCode != 0 {
		return failure(ErrPull, "pull", ref, res)
	}
	return nil
}

// Reports whether ref is available locally.
//
// A successful inspection is stored in the cache. Without strict, any
// failure reports false with a nil error; with strict, the failure is
// returned wrapping [ErrInspection].
func (e *Engine) Exists(ctx context.Context, ref string, strict bool) (bool, error) {
	rec, err := e.inspect(ctx, ref)
	if err != nil {
		if strict {
			return false, err
		}
		slog.Debug("image not found locally", "image", ref, "error", err)
		return false, nil
	}

	e.cache.put(ref, rec)
	return true, nil
}

// Returns the inspection record for ref, from the cache when present.
func (e *Engine) Inspect(ctx context.Context, ref string) (*Record, error) {
	if rec, ok := e.cache.Get(ref); ok {
		return rec, nil
	}

	if _, err := e.Exists(ctx, ref, true); err != nil {
		return nil, err
	}

	rec, _ := e.cache.Get(ref)
	return rec, nil
}

// Reports whether the engine supports BuildKit features such as cache
// mounts. Any failure to run the probe counts as unsupported.
func (e *Engine) BuildKitAvailable(ctx context.Context) bool {
	res, err := e.run(ctx, "buildx", "version")
	return err == nil && res.ExitCode == 0
}

func (e *Engine) inspect(ctx context.Context, ref string) (*Record, error) {
	res, err := e.run(ctx, "image", "inspect", ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInspection, ref, err)
	}
	if res.ExitCode != 0 {
		return nil, failure(ErrInspection, "image inspect", ref, res)
	}

	var records []*Record
	if err := json.Unmarshal([]byte(res.Stdout), &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInspection, ref, err)
	}
	if len(records) != 1 || records[0] == nil {
		return nil, fmt.Errorf("%w: %s: expected one record, got %d", ErrInspection, ref, len(records))
	}

	return records[0], nil
}

func (e *Engine) run(ctx context.Context, args ...string) (*ExecResult, error) {
	slog.Debug("running engine client", "binary", e.binary, "args", args)

	res, err := e.runner.Run(ctx, e.binary, args...)
	if err == nil && res == nil {
		err = errors.New("runner returned no result")
	}
	return res, err
}

func failure(kind error, op, ref string, res *ExecResult) *Error {
	return &Error{
		Op:       op,
		Ref:      ref,
		ExitCode: res.ExitCode,
		Stderr:   strings.TrimSpace(res.Stderr),
		kind:     kind,
	}
}
