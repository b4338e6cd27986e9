package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cruciblehq/cruxlaunch/internal/engine"
	"github.com/cruciblehq/cruxlaunch/internal/environ"
	"github.com/cruciblehq/cruxlaunch/internal/launch"
	"github.com/cruciblehq/cruxlaunch/internal/project"
)

// Flags shared by commands that derive an image reference.
type RegistryFlags struct {
	RegistryHost    string `help:"Registry host the image is pushed to." placeholder:"HOST"`
	RegistryProject string `help:"Cloud project owning the registry repository." placeholder:"PROJECT"`
	RegistryRepo    string `help:"Registry repository name." placeholder:"REPO"`
}

// Returns the registry coordinates from flags, falling back to the
// configuration file. Nil means no registry.
func (f *RegistryFlags) registry(cfg *Config) *launch.Registry {
	if f.RegistryHost == "" && f.RegistryProject == "" && f.RegistryRepo == "" {
		return cfg.Registry
	}
	return &launch.Registry{
		Repo:    f.RegistryRepo,
		Project: f.RegistryProject,
		Host:    f.RegistryHost,
	}
}

// Represents the 'cruxlaunch build' command.
type BuildCmd struct {
	Project    string            `arg:"" help:"Path to the project file." type:"existingfile"`
	Entrypoint string            `short:"e" required:"" help:"Command that starts the run inside the container." placeholder:"CMD"`
	Backend    project.Backend   `short:"b" default:"${backend}" help:"Compute target (local, sagemaker, vertex)."`
	RunID      string            `name:"run-id" help:"Run identifier. Overrides the project file; generated when neither sets one."`
	Engine     string            `help:"Container engine client binary." placeholder:"BIN"`
	EngineArg  map[string]string `name:"engine-arg" help:"Extra argument for the run command, as name=value." placeholder:"NAME=VALUE"`
	Timeout    time.Duration     `help:"Build deadline."`
	URI        string            `name:"uri" help:"Image reference to build instead of the derived one."`
	Reuse      bool              `help:"Skip the build when the image already exists locally."`
	BaseURL    string            `name:"base-url" help:"Service endpoint reported to the run." placeholder:"URL"`
	APIKey     string            `name:"api-key" help:"Service credential passed to the run." placeholder:"KEY"`
	Registry   RegistryFlags     `embed:""`
}

// Executes the build command.
//
// Builds (or reuses, or pulls) the image and prints the shell command that
// runs it.
func (c *BuildCmd) Run(ctx context.Context) error {
	cfg, err := loadConfig(RootCmd.Config)
	if err != nil {
		return err
	}

	desc, err := project.Load(c.Project)
	if err != nil {
		return err
	}

	if c.RunID != "" {
		desc.RunID = c.RunID
	}
	if desc.RunID == "" {
		desc.RunID = launch.NewRunID()
		slog.Info("generated run id", "run", desc.RunID)
	}

	conn, err := environ.LoadConnection(environ.Connection{
		BaseURL: first(c.BaseURL, cfg.BaseURL),
		APIKey:  first(c.APIKey, cfg.APIKey),
	}, cfg.EnvFile)
	if err != nil {
		return err
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = cfg.Timeout
	}

	eng := engine.New(engine.Config{Binary: first(c.Engine, cfg.Engine, defaultEngine)})

	result, err := launch.New(eng).Build(ctx, launch.Options{
		Descriptor: desc,
		Command:    c.Entrypoint,
		Backend:    c.Backend,
		Connection: conn,
		EngineArgs: engineArgs(cfg.EngineArgs, c.EngineArg),
		Timeout:    timeout,
		URI:        c.URI,
		Registry:   c.Registry.registry(cfg),
		Reuse:      c.Reuse,
	})
	if err != nil {
		return err
	}

	slog.Info("image ready", "image", result.Image, "built", result.Built)

	fmt.Println(strings.Join(result.RunCommand, " "))
	return nil
}

// Merges engine arguments from the configuration file and flags, later
// layers winning. "true" and "false" become boolean flags.
func engineArgs(layers ...map[string]string) map[string]any {
	args := make(map[string]any)
	for _, layer := range layers {
		for k, v := range layer {
			switch v {
			case "true":
				args[k] = true
			case "false":
				args[k] = false
			default:
				args[k] = v
			}
		}
	}
	return args
}
