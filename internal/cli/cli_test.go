package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/cruciblehq/cruxlaunch/internal/launch"
	"github.com/cruciblehq/cruxlaunch/internal/paths"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `base_url: http://localhost:8080
engine: podman
timeout: 15m
env_file: /etc/launch.env
engine_args:
  gpus: all
registry:
  host: us-docker.pkg.dev
  project: proj
  repo: repo
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &Config{
		BaseURL:    "http://localhost:8080",
		EnvFile:    "/etc/launch.env",
		Engine:     "podman",
		Timeout:    15 * time.Minute,
		EngineArgs: map[string]string{"gpus": "all"},
		Registry:   &launch.Registry{Repo: "repo", Project: "proj", Host: "us-docker.pkg.dev"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.EnvFile != paths.EnvFile() {
		t.Fatalf("expected default env file, got %q", cfg.EnvFile)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("timeout: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestEngineArgs(t *testing.T) {
	got := engineArgs(
		map[string]string{"gpus": "all", "t": "true"},
		map[string]string{"gpus": "0", "privileged": "false"},
	)

	want := map[string]any{"gpus": "0", "t": true, "privileged": false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryFlags(t *testing.T) {
	fromConfig := &launch.Registry{Repo: "cfg"}

	tests := []struct {
		name  string
		flags RegistryFlags
		want  *launch.Registry
	}{
		{"config fallback", RegistryFlags{}, fromConfig},
		{"flags", RegistryFlags{RegistryHost: "h", RegistryProject: "p", RegistryRepo: "r"}, &launch.Registry{Repo: "r", Project: "p", Host: "h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.flags.registry(&Config{Registry: fromConfig})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("registry mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFirst(t *testing.T) {
	if got := first("", "b", "c"); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	if got := first("", ""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
