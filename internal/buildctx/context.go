package buildctx

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cruciblehq/cruxlaunch/internal/dockerfile"
	"github.com/cruciblehq/cruxlaunch/internal/project"
)

const (

	// Directory within the context that holds the project source tree.
	SourceDir = "src"

	// Interpreter pin read by hosted build systems.
	runtimeFile = "runtime.txt"

	tempPattern = "cruxlaunch-ctx-"
)

//go:embed bootstrap.py
var bootstrapScript []byte

// An assembled build context on disk.
type Context struct {
	Dir string // Root of the context.
}

// Returns the path of the build file within the context.
func (c *Context) Dockerfile() string {
	return filepath.Join(c.Dir, dockerfile.GeneratedName)
}

// Deletes the context directory.
//
// Failure is logged and otherwise ignored; the directory is left behind in
// the system temp area.
func (c *Context) Remove() {
	if err := os.RemoveAll(c.Dir); err != nil {
		slog.Warn("failed to remove build context", "dir", c.Dir, "error", err)
	}
}

// Creates a fresh build context for the given project and rendered document.
//
// Extra files are written into the source tree after the copy, keyed by
// slash-separated paths relative to it. Every failure removes the partial
// directory and returns an error wrapping [ErrAssembly].
func Assemble(desc *project.Descriptor, doc *dockerfile.Document, extra map[string][]byte) (*Context, error) {
	dir, err := os.MkdirTemp("", tempPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssembly, err)
	}

	c := &Context{Dir: dir}
	if err := c.populate(desc, doc, extra); err != nil {
		c.Remove()
		return nil, fmt.Errorf("%w: %w", ErrAssembly, err)
	}

	slog.Debug("build context assembled", "dir", dir)

	return c, nil
}

func (c *Context) populate(desc *project.Descriptor, doc *dockerfile.Document, extra map[string][]byte) error {
	src := filepath.Join(c.Dir, SourceDir)

	if desc.Dir != "" {
		if err := copyTree(desc.Dir, src); err != nil {
			return err
		}
	} else if err := os.Mkdir(src, 0755); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(c.Dir, dockerfile.BootstrapScript), bootstrapScript, 0644); err != nil {
		return err
	}

	if desc.PythonVersion != "" {
		pin := []byte("python-" + desc.PythonVersion)
		if err := writeFile(src, runtimeFile, pin, 0644); err != nil {
			return err
		}
	}

	for _, f := range doc.Files() {
		if err := writeFile(src, f.Path, f.Content, f.Mode); err != nil {
			return err
		}
	}

	for rel, content := range extra {
		if err := writeFile(src, rel, content, 0644); err != nil {
			return err
		}
	}

	return os.WriteFile(c.Dockerfile(), doc.Bytes(), 0644)
}
