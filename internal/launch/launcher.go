package launch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/cruciblehq/cruxlaunch/internal/buildctx"
	"github.com/cruciblehq/cruxlaunch/internal/dockerfile"
	"github.com/cruciblehq/cruxlaunch/internal/engine"
	"github.com/cruciblehq/cruxlaunch/internal/environ"
	"github.com/cruciblehq/cruxlaunch/internal/imageuri"
	"github.com/cruciblehq/cruxlaunch/internal/project"
)

// Hosted registry the image is named for.
type Registry struct {
	Repo    string // Repository within the project.
	Project string // Cloud project owning the repository.
	Host    string // Registry host, e.g. "us-docker.pkg.dev".
}

// Controls a launch build.
type Options struct {
	Descriptor *project.Descriptor // Project to containerize.
	Command    string              // Entry point command, without override arguments.
	Backend    project.Backend     // Compute target. The zero value means local.
	Connection environ.Connection  // Service connection passed to the container.
	EngineArgs map[string]any      // Extra engine arguments for the run command.
	Timeout    time.Duration       // Build deadline. Zero means no deadline.
	URI        string              // Image reference override. Empty derives one.
	Registry   *Registry           // Registry coordinates, required by backends that pull from one.
	Reuse      bool                // Skip the build when the image already exists locally.
}

// Returned after a successful launch build.
type Result struct {
	Image      string               // Reference of the runnable image.
	Built      bool                 // Whether an image was built in this call.
	Env        *environ.Environment // Container environment.
	RunCommand []string             // Shell-quoted command line that runs the image.
	Metadata   string               // Path of the metadata record, when an image was built.
	Platform   *ocispec.Platform    // Platform of the image, when it could be inspected.
}

// Builds runnable images for projects.
type Launcher struct {
	engine        *engine.Engine
	runner        engine.Runner
	buildKitOnce  sync.Once
	buildKit      bool
	pythonVersion func(context.Context) string
	user          func() dockerfile.HostUser
	writeMetadata func(*Metadata) (string, error)
}

// Creates a launcher that drives the given engine.
func New(eng *engine.Engine) *Launcher {
	l := &Launcher{
		engine:        eng,
		runner:        engine.ExecRunner{},
		user:          hostUser,
		writeMetadata: writeMetadata,
	}
	l.pythonVersion = func(ctx context.Context) string {
		return hostPythonVersion(ctx, l.runner)
	}
	return l
}

// Produces a runnable image for the project described by opts.
//
// Every error wraps [ErrLaunch] together with the sentinel of the step that
// failed, so callers can branch on either.
func (l *Launcher) Build(ctx context.Context, opts Options) (*Result, error) {
	res, err := l.build(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	return res, nil
}

func (l *Launcher) build(ctx context.Context, opts Options) (*Result, error) {
	if err := l.engine.CheckInstalled(); err != nil {
		return nil, err
	}

	desc := opts.Descriptor
	if desc == nil {
		return nil, fmt.Errorf("%w: no project descriptor", ErrConfig)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	backend := opts.Backend
	if backend == (project.Backend{}) {
		backend = project.Local
	}

	uri, err := resolveURI(desc, backend, opts)
	if err != nil {
		return nil, err
	}

	slog.Info("preparing image",
		"image", uri,
		"backend", backend,
		"run", desc.RunID,
	)

	env, err := environ.Resolve(desc, opts.Connection)
	if err != nil {
		return nil, err
	}

	res := &Result{Image: uri, Env: env}

	switch {
	case desc.DockerImage != "":
		pulled, err := l.ensurePulled(ctx, desc.DockerImage)
		if err != nil {
			return nil, err
		}
		res.Image = desc.DockerImage
		res.Platform = l.platform(ctx, res.Image, pulled)
	case opts.Reuse && l.exists(ctx, uri):
		slog.Info("reusing existing image", "image", uri)
		res.Platform = l.platform(ctx, uri, false)
	default:
		if err := l.buildImage(ctx, desc, backend, env, uri, opts, res); err != nil {
			return nil, err
		}
	}

	res.RunCommand = engine.RunCommand(l.engine.Binary(), res.Image, env.Vars, opts.EngineArgs)

	slog.Debug("container environment", "keys", env.Keys())
	slog.Debug("inspection cache", "records", l.engine.Cache().Len())

	return res, nil
}

// Returns the image reference for a build, validated.
func resolveURI(desc *project.Descriptor, backend project.Backend, opts Options) (string, error) {
	uri := opts.URI
	if uri == "" {
		uri = imageuri.Local(desc)
		if opts.Registry != nil {
			uri = imageuri.Registry(uri, opts.Registry.Repo, opts.Registry.Project, opts.Registry.Host)
		} else if backend.Capabilities().NeedsRegistry && desc.DockerImage == "" {
			return "", fmt.Errorf("%w: backend %s needs registry coordinates", ErrConfig, backend)
		}
	}

	if err := imageuri.Validate(uri); err != nil {
		return "", err
	}
	return uri, nil
}

// Makes a pre-built image available locally. Reports whether it had to be
// pulled.
func (l *Launcher) ensurePulled(ctx context.Context, ref string) (bool, error) {
	if l.exists(ctx, ref) {
		slog.Info("using local copy of image", "image", ref)
		return false, nil
	}
	if err := l.engine.Pull(ctx, ref); err != nil {
		return false, err
	}
	return true, nil
}

// Returns the platform of a local image, or nil when it cannot be inspected.
// With refresh the image is inspected again instead of read from the cache.
func (l *Launcher) platform(ctx context.Context, ref string, refresh bool) *ocispec.Platform {
	if refresh {
		if _, err := l.engine.Exists(ctx, ref, true); err != nil {
			slog.Warn("failed to inspect image", "image", ref, "error", err)
			return nil
		}
	}

	rec, err := l.engine.Inspect(ctx, ref)
	if err != nil {
		slog.Warn("failed to inspect image", "image", ref, "error", err)
		return nil
	}

	p := rec.Platform()
	slog.Info("image platform", "image", ref, "os", p.OS, "arch", p.Architecture, "variant", p.Variant)
	return &p
}

func (l *Launcher) exists(ctx context.Context, ref string) bool {
	if _, ok := l.engine.Cache().Get(ref); ok {
		return true
	}
	ok, _ := l.engine.Exists(ctx, ref, false)
	return ok
}

// Renders, assembles and builds an image, recording the outcome in res.
func (l *Launcher) buildImage(ctx context.Context, desc *project.Descriptor, backend project.Backend, env *environ.Environment, uri string, opts Options, res *Result) error {
	entryCmd := desc.EntryCommand(opts.Command)

	doc, err := dockerfile.Render(desc, entryCmd, backend, dockerfile.Options{
		BuildKit:          l.probeBuildKit(ctx),
		HostPythonVersion: l.pythonVersion(ctx),
		User:              l.user(),
	})
	if err != nil {
		return err
	}

	bc, err := buildctx.Assemble(desc, doc, env.Files)
	if err != nil {
		return err
	}
	defer bc.Remove()

	buildCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		buildCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if err := l.engine.Build(buildCtx, uri, bc.Dockerfile(), bc.Dir); err != nil {
		return err
	}

	res.Built = true
	res.Platform = l.platform(ctx, uri, true)

	path, err := l.writeMetadata(&Metadata{
		RunID:            desc.RunID,
		Image:            uri,
		Backend:          backend.String(),
		EntryCommand:     entryCmd,
		EngineArgs:       opts.EngineArgs,
		Dockerfile:       doc.String(),
		DockerfileDigest: doc.Digest(),
		Platform:         res.Platform,
		CreatedAt:        time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("failed to write run metadata", "run", desc.RunID, "error", err)
		return nil
	}
	res.Metadata = path

	slog.Info("image built", "image", uri, "metadata", path)

	return nil
}

// Returns whether the engine supports BuildKit. The probe runs once per
// launcher, and the missing-BuildKit warning is logged at most once.
func (l *Launcher) probeBuildKit(ctx context.Context) bool {
	l.buildKitOnce.Do(func() {
		l.buildKit = l.engine.BuildKitAvailable(ctx)
		if !l.buildKit {
			slog.Warn("BuildKit not available, dependency caching is disabled; install docker buildx for faster rebuilds")
		}
	})
	return l.buildKit
}
