package imageuri

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/distribution/reference"
	"github.com/go-git/go-git/v5"

	"github.com/cruciblehq/cruxlaunch/internal/project"
)

// Image name used when the project does not set one.
const DefaultName = "wandb-launch"

// Length of the abbreviated revision in tags.
const shortHashLen = 7

// Returns the local image URI for a project.
//
// The tag is the abbreviated HEAD revision of the project directory followed
// by the run identifier, or the run identifier alone when the directory is
// not inside a repository.
func Local(desc *project.Descriptor) string {
	name := strings.ReplaceAll(strings.TrimSpace(desc.ImageName), " ", "-")
	if name == "" {
		name = DefaultName
	}

	return name + ":" + revision(desc.Dir) + desc.RunID
}

// Returns the URI of a local image pushed to a hosted registry.
func Registry(local, repo, project, host string) string {
	return strings.Join([]string{host, project, repo, local}, "/")
}

// Checks that uri is a well-formed image reference.
func Validate(uri string) error {
	if _, err := reference.ParseNormalizedNamed(uri); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidReference, uri, err)
	}
	return nil
}

// Returns the abbreviated HEAD revision of the repository containing dir, or
// "" when there is none.
func revision(dir string) string {
	if dir == "" {
		return ""
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		slog.Debug("no repository for project", "dir", dir, "error", err)
		return ""
	}

	head, err := repo.Head()
	if err != nil {
		slog.Debug("repository has no head revision", "dir", dir, "error", err)
		return ""
	}

	return head.Hash().String()[:shortHashLen]
}
