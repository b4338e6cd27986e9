// Package buildctx materializes the directory an image build runs against.
//
// The context has a fixed layout: the project source tree is copied under
// src/, the dependency bootstrap script and the generated build file sit at
// the root, and any files produced during rendering or environment
// resolution are written into src/ next to the user's code.
//
// Example usage:
//
//	bc, err := buildctx.Assemble(desc, doc, env.Files)
//	if err != nil {
//	    return err
//	}
//	defer bc.Remove()
//
//	err = eng.Build(ctx, uri, bc.Dockerfile(), bc.Dir)
package buildctx
