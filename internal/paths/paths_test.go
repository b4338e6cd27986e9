package paths

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestRunMetadata(t *testing.T) {
	got := RunMetadata("abc123")

	if !strings.HasPrefix(got, State()) {
		t.Fatalf("expected %q to be under %q", got, State())
	}
	if want := filepath.Join("runs", "abc123", "metadata.json"); !strings.HasSuffix(got, want) {
		t.Fatalf("expected %q to end with %q", got, want)
	}
}

func TestConfigFiles(t *testing.T) {
	for _, p := range []string{ConfigFile(), EnvFile()} {
		if filepath.Dir(p) != Config() {
			t.Fatalf("expected %q to be in %q", p, Config())
		}
	}
}
