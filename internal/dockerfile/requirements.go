package dockerfile

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/alessio/shellescape"
)

const (
	requirementsFile       = "requirements.txt"
	frozenRequirementsFile = "requirements.frozen.txt"

	// Installer copied to the build context root. It installs the frozen
	// requirements, restricted to the packages named in WANDB_ONLY_INCLUDE.
	BootstrapScript = "_wandb_bootstrap.py"
)

// Leading distribution name of a requirement specifier, followed by
// whatever may legally come after it.
var requirementName = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*(?:$|[\[(<>=!~;@,\s])`)

// Returns true if the project carries a previously resolved requirements file.
func hasFrozenRequirements(dir string) bool {
	return isRegularFile(filepath.Join(dir, frozenRequirementsFile))
}

// Returns true if the project carries an unfrozen requirements file.
func hasRequirements(dir string) bool {
	return isRegularFile(filepath.Join(dir, requirementsFile))
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Returns the environment assignment that narrows the bootstrap installer to
// the project's top-level packages, including the trailing space. Returns an
// empty string when the project has no unfrozen requirements file.
func onlyIncludePrefix(dir string) string {
	path := filepath.Join(dir, requirementsFile)
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("unable to read requirements", "path", path, "error", err)
		}
		return ""
	}
	defer f.Close()

	names := requirementNames(f)
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = shellescape.Quote(n)
	}
	return "WANDB_ONLY_INCLUDE=" + strings.Join(quoted, ",") + " "
}

// Returns the sorted, lower-cased, de-duplicated package names listed in a
// pip requirements file.
//
// Comments, blank lines and pip options (-r, -e, --index-url, ...) are
// ignored. Entries whose name cannot be parsed are skipped with a warning.
func requirementNames(r io.Reader) []string {
	seen := make(map[string]struct{})

	for _, line := range requirementLines(r) {
		m := requirementName.FindStringSubmatch(line.text)
		if m == nil {
			slog.Warn("unable to parse requirement, skipping", "line", line.number, "entry", line.text)
			continue
		}
		seen[strings.ToLower(m[1])] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// A specifier line and the line number it starts on.
type specLine struct {
	number int
	text   string
}

// Returns the specifier lines of a requirements file in file order.
// Continuation lines are joined.
func requirementLines(r io.Reader) []specLine {
	var lines []specLine
	scanner := bufio.NewScanner(r)

	var pending strings.Builder
	start, n := 0, 0

	for scanner.Scan() {
		n++
		raw := scanner.Text()
		if pending.Len() == 0 {
			start = n
		}

		if strings.HasSuffix(raw, `\`) {
			pending.WriteString(strings.TrimSuffix(raw, `\`))
			continue
		}
		pending.WriteString(raw)

		line := stripComment(pending.String())
		pending.Reset()

		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		lines = append(lines, specLine{number: start, text: line})
	}

	if err := scanner.Err(); err != nil {
		slog.Warn("unable to read requirements", "error", err)
	}
	return lines
}

// Removes a trailing comment. A "#" only starts a comment at the beginning
// of a line or after whitespace; URL fragments are left alone.
func stripComment(line string) string {
	if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return ""
	}
	for i := 1; i < len(line); i++ {
		if line[i] == '#' && (line[i-1] == ' ' || line[i-1] == '\t') {
			line = line[:i]
			break
		}
	}
	return strings.TrimSpace(line)
}
