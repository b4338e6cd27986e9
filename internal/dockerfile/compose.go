package dockerfile

import (
	"fmt"
	"strings"

	"github.com/moby/buildkit/frontend/dockerfile/parser"
)

// Joins the sections into a document after validating each of them.
//
// Empty sections are dropped. The joined document must contain exactly two
// stages and a single entrypoint.
func compose(sections []section) (string, error) {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if strings.TrimSpace(s.text) == "" {
			continue
		}
		if _, err := parser.Parse(strings.NewReader(s.text)); err != nil {
			return "", fmt.Errorf("%w: section %s: %w", ErrRender, s.name, err)
		}
		parts = append(parts, strings.TrimRight(s.text, "\n")+"\n")
	}

	text := strings.Join(parts, "\n")
	if err := checkStructure(text); err != nil {
		return "", err
	}
	return text, nil
}

// Checks the instruction layout of a full document.
func checkStructure(text string) error {
	result, err := parser.Parse(strings.NewReader(text))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}

	counts := make(map[string]int)
	for _, node := range result.AST.Children {
		counts[strings.ToLower(node.Value)]++
	}

	if counts["from"] != 2 {
		return fmt.Errorf("%w: expected 2 stages, got %d", ErrRender, counts["from"])
	}
	if counts["entrypoint"] != 1 {
		return fmt.Errorf("%w: expected 1 entrypoint, got %d", ErrRender, counts["entrypoint"])
	}
	return nil
}
