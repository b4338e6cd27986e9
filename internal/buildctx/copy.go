package buildctx

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Copies the directory tree at src to dest.
//
// A symlink at src itself is resolved, and the tree it points to is copied.
// Symlinks below the root are recreated with their original targets and
// never followed. Destination paths are resolved inside dest, so no entry
// can be written outside it. Irregular files such as sockets are skipped.
func copyTree(src, dest string) error {
	root, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}

	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if rel == "." {
			return os.MkdirAll(dest, 0755)
		}

		target, err := securejoin.SecureJoin(dest, rel)
		if err != nil {
			return err
		}

		return copyEntry(path, target, d)
	})
}

// Copies a single file, directory or symlink entry.
func copyEntry(path, target string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	switch mode := info.Mode(); {
	case mode.IsDir():
		return os.Mkdir(target, mode.Perm()|0700)
	case mode&fs.ModeSymlink != 0:
		link, err := os.Readlink(path)
		if err != nil {
			return err
		}
		return os.Symlink(link, target)
	case mode.IsRegular():
		return copyFile(path, target, mode.Perm())
	}

	return nil
}

func copyFile(src, dest string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if err == nil {
		err = out.Chmod(perm)
	}
	if err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Writes content to a slash-separated path under root, creating parent
// directories as needed. An existing file is replaced.
func writeFile(root, rel string, content []byte, perm fs.FileMode) error {
	path, err := securejoin.SecureJoin(root, filepath.FromSlash(rel))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	if err := os.WriteFile(path, content, perm); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}

	// WriteFile leaves the mode of an existing file alone.
	return os.Chmod(path, perm)
}
