package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/cruciblehq/cruxlaunch/internal"
	"github.com/cruciblehq/cruxlaunch/internal/paths"
)

// Represents the root command for cruxlaunch.
var RootCmd struct {
	Quiet      bool          `short:"q" help:"Suppress informational output."`
	Verbose    bool          `short:"v" help:"Enable verbose output."`
	Debug      bool          `short:"d" help:"Enable debug output."`
	Config     string        `help:"Path to the configuration file." default:"${config}" placeholder:"PATH" type:"path"`
	Build      BuildCmd      `cmd:"" help:"Build a runnable image for a project."`
	RunCommand RunCommandCmd `cmd:"" name:"run-command" help:"Print the command that runs an image."`
	Inspect    InspectCmd    `cmd:"" help:"Print the inspection record of a local image."`
	URI        URICmd        `cmd:"" name:"uri" help:"Print the image reference a project builds to."`
	Version    VersionCmd    `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Builds container images for training projects.\n\nRenders a build file for the project, builds it with the local container engine, and prints the command that runs it."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
			"config":  paths.ConfigFile(),
			"engine":  defaultEngine,
			"backend": defaultBackend,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	if RootCmd.Debug {
		internal.SetDebug(true)
	}
	if RootCmd.Quiet {
		internal.SetQuiet(true)
	}
	if RootCmd.Verbose {
		internal.SetVerbose(true)
	}

	slog.SetDefault(internal.NewLogger(os.Stderr))
}
