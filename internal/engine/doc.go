// Package engine drives a container engine through its command line client.
//
// An [Engine] wraps a client binary (docker by default) and exposes the few
// operations the launcher needs: building an image from a context
// directory, pulling a pre-built image, inspecting local images, and probing
// for BuildKit. Inspection results are kept in a [Cache] owned by the caller
// so repeated lookups of the same reference do not shell out again.
//
// Commands are executed through a [Runner]. The default runner uses os/exec;
// tests substitute their own.
//
// Example usage:
//
//	eng := engine.New(engine.Config{})
//	if err := eng.CheckInstalled(); err != nil {
//	    return err
//	}
//
//	if err := eng.Build(ctx, "my-image:abc", "Dockerfile", "."); err != nil {
//	    return err
//	}
//
//	rec, err := eng.Inspect(ctx, "my-image:abc")
//	if err != nil {
//	    return err
//	}
package engine
