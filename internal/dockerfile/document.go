package dockerfile

import (
	"io/fs"
	"slices"

	"github.com/opencontainers/go-digest"
)

// Name of the generated build file at the root of the build context. The
// prefix keeps it from clobbering a Dockerfile the project already has.
const GeneratedName = "Dockerfile.wandb-autogenerated"

// A file the build file expects to find in the copied source tree.
type GeneratedFile struct {
	Path    string      // Path relative to the source tree.
	Content []byte      // File contents.
	Mode    fs.FileMode // Permission bits.
}

// A rendered build file. Documents are never modified after rendering.
type Document struct {
	text  string
	files []GeneratedFile
}

// Returns the build file text.
func (d *Document) String() string { return d.text }

// Returns the build file text as bytes.
func (d *Document) Bytes() []byte { return []byte(d.text) }

// Returns the auxiliary files referenced by the build file.
func (d *Document) Files() []GeneratedFile { return slices.Clone(d.files) }

// Returns the content digest of the build file text.
func (d *Document) Digest() digest.Digest { return digest.FromString(d.text) }
