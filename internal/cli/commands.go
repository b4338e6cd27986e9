package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cruciblehq/cruxlaunch/internal"
	"github.com/cruciblehq/cruxlaunch/internal/engine"
	"github.com/cruciblehq/cruxlaunch/internal/imageuri"
	"github.com/cruciblehq/cruxlaunch/internal/project"
)

// Represents the 'cruxlaunch run-command' command.
type RunCommandCmd struct {
	Image     string            `arg:"" help:"Image to run."`
	Env       map[string]string `short:"E" help:"Environment variable for the container, as KEY=VALUE." placeholder:"KEY=VALUE"`
	EngineArg map[string]string `name:"engine-arg" help:"Extra argument for the run command, as name=value." placeholder:"NAME=VALUE"`
	Engine    string            `default:"${engine}" help:"Container engine client binary." placeholder:"BIN"`
}

// Executes the run-command command.
func (c *RunCommandCmd) Run(ctx context.Context) error {
	cmd := engine.RunCommand(c.Engine, c.Image, c.Env, engineArgs(c.EngineArg))
	fmt.Println(strings.Join(cmd, " "))
	return nil
}

// Represents the 'cruxlaunch inspect' command.
type InspectCmd struct {
	Ref    string `arg:"" help:"Image reference."`
	Engine string `default:"${engine}" help:"Container engine client binary." placeholder:"BIN"`
}

// Executes the inspect command.
func (c *InspectCmd) Run(ctx context.Context) error {
	eng := engine.New(engine.Config{Binary: c.Engine})
	if err := eng.CheckInstalled(); err != nil {
		return err
	}

	rec, err := eng.Inspect(ctx, c.Ref)
	if err != nil {
		return err
	}

	p := rec.Platform()
	slog.Debug("image inspected", "image", c.Ref, "os", p.OS, "arch", p.Architecture, "variant", p.Variant)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

// Represents the 'cruxlaunch uri' command.
type URICmd struct {
	Project  string        `arg:"" help:"Path to the project file." type:"existingfile"`
	RunID    string        `name:"run-id" help:"Run identifier. Overrides the project file."`
	Registry RegistryFlags `embed:""`
}

// Executes the uri command.
func (c *URICmd) Run(ctx context.Context) error {
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

	uri := imageuri.Local(desc)
	if reg := c.Registry.registry(cfg); reg != nil {
		uri = imageuri.Registry(uri, reg.Repo, reg.Project, reg.Host)
	}

	if err := imageuri.Validate(uri); err != nil {
		return err
	}

	fmt.Println(uri)
	return nil
}

// Represents the 'cruxlaunch version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
