// Package launch turns a project descriptor into a runnable image.
//
// A [Launcher] sequences the other packages: it validates the descriptor,
// names the image, and then either reuses an existing image, pulls a
// pre-built one, or renders a build file, assembles a build context and
// builds. The result carries the image reference, the container environment
// and the command line that runs the image.
//
// A launcher owns the engine's inspection cache for its lifetime, so one
// launcher should be reused across builds in the same process.
//
// Example usage:
//
//	l := launch.New(engine.New(engine.Config{}))
//
//	result, err := l.Build(ctx, launch.Options{
//	    Descriptor: desc,
//	    Command:    "python train.py",
//	    Backend:    project.Local,
//	    Connection: conn,
//	    Timeout:    30 * time.Minute,
//	})
//	if err != nil {
//	    return err
//	}
//
//	fmt.Println(strings.Join(result.RunCommand, " "))
package launch
