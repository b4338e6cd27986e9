package environ

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cruciblehq/cruxlaunch/internal/project"
)

func testDescriptor() *project.Descriptor {
	return &project.Descriptor{
		RunID:         "abc123",
		TargetProject: "proj",
		TargetEntity:  "team",
	}
}

func TestResolveKeys(t *testing.T) {
	desc := testDescriptor()
	desc.OverrideConfig = map[string]any{"lr": 0.1}

	env, err := Resolve(desc, Connection{BaseURL: "https://api.wandb.ai", APIKey: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		KeyBaseURL:   "https://api.wandb.ai",
		KeyAPIKey:    "secret",
		KeyProject:   "proj",
		KeyEntity:    "team",
		KeyLaunch:    "True",
		KeyRunID:     "abc123",
		KeyConfig:    `{"lr":0.1}`,
		KeyArtifacts: "{}",
	}
	if diff := cmp.Diff(want, env.Vars); diff != "" {
		t.Fatalf("vars mismatch (-want +got):\n%s", diff)
	}
	if len(env.Files) != 0 {
		t.Fatalf("expected no files, got %v", env.Files)
	}
}

func TestResolveDockerImage(t *testing.T) {
	desc := testDescriptor()
	desc.DockerImage = "my/image:1"

	env, err := Resolve(desc, Connection{APIKey: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Vars[KeyDocker] != "my/image:1" {
		t.Fatalf("expected %s to be set, got %q", KeyDocker, env.Vars[KeyDocker])
	}
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://api.wandb.ai", "https://api.wandb.ai"},
		{"http://localhost:8080", "http://host.docker.internal:8080"},
		{"http://LOCALHOST", "http://host.docker.internal"},
		{"http://127.0.0.1:8080/path", "http://host.docker.internal:8080/path"},
		{"http://[::1]:9000", "http://host.docker.internal:9000"},
		{"http://wandb.test", "http://host.docker.internal:9002"},
		{"https://wandb.test:443", "http://host.docker.internal:9002"},
		{"http://10.0.0.5:8080", "http://10.0.0.5:8080"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			env, err := Resolve(testDescriptor(), Connection{BaseURL: tt.in, APIKey: "k"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := env.Vars[KeyBaseURL]; got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolveSpillsLargeValues(t *testing.T) {
	desc := testDescriptor()
	desc.OverrideConfig = map[string]any{"blob": strings.Repeat("x", MaxValueBytes)}

	env, err := Resolve(desc, Connection{APIKey: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := env.Vars[KeyConfig]; ok {
		t.Fatalf("expected %s to be absent", KeyConfig)
	}
	rel := env.Vars[KeyConfigPath]
	if rel != ".launch/config.json" {
		t.Fatalf("unexpected path %q", rel)
	}

	var decoded map[string]any
	if err := json.Unmarshal(env.Files[rel], &decoded); err != nil {
		t.Fatalf("spilled file is not JSON: %v", err)
	}
	if diff := cmp.Diff(desc.OverrideConfig, decoded); diff != "" {
		t.Fatalf("spilled content mismatch (-want +got):\n%s", diff)
	}

	if env.Vars[KeyArtifacts] != "{}" {
		t.Fatalf("expected small artifacts value to stay inline, got %q", env.Vars[KeyArtifacts])
	}
}

func TestResolveEncodeError(t *testing.T) {
	desc := testDescriptor()
	desc.OverrideArtifacts = map[string]any{"bad": make(chan int)}

	if _, err := Resolve(desc, Connection{APIKey: "k"}); err == nil {
		t.Fatal("expected error for unencodable value")
	}
}

func TestKeysSorted(t *testing.T) {
	env := &Environment{Vars: map[string]string{"B": "", "A": "", "C": ""}}
	if diff := cmp.Diff([]string{"A", "B", "C"}, env.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"WANDB_API_KEY=abc123", "WANDB_API_KEY=..."},
		{"docker run -e WANDB_API_KEY=abc -e X=1 img", "docker run -e WANDB_API_KEY=... -e X=1 img"},
		{"'WANDB_API_KEY=abc' other", "'WANDB_API_KEY=... other"},
		{"no secrets here", "no secrets here"},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Fatalf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadConnectionPrecedence(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "WANDB_BASE_URL=http://from-file\nWANDB_API_KEY=file-key\n"
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("file", func(t *testing.T) {
		t.Setenv(KeyBaseURL, "")
		t.Setenv(KeyAPIKey, "")

		conn, err := LoadConnection(Connection{}, envFile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := Connection{BaseURL: "http://from-file", APIKey: "file-key"}
		if conn != want {
			t.Fatalf("expected %+v, got %+v", want, conn)
		}
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv(KeyBaseURL, "")
		t.Setenv(KeyAPIKey, "env-key")

		conn, err := LoadConnection(Connection{}, envFile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := Connection{BaseURL: "http://from-file", APIKey: "env-key"}
		if conn != want {
			t.Fatalf("expected %+v, got %+v", want, conn)
		}
	})

	t.Run("explicit", func(t *testing.T) {
		t.Setenv(KeyAPIKey, "env-key")

		conn, err := LoadConnection(Connection{BaseURL: "http://explicit", APIKey: "flag-key"}, envFile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := Connection{BaseURL: "http://explicit", APIKey: "flag-key"}
		if conn != want {
			t.Fatalf("expected %+v, got %+v", want, conn)
		}
	})
}

func TestLoadConnectionDefaults(t *testing.T) {
	t.Setenv(KeyBaseURL, "")
	t.Setenv(KeyAPIKey, "k")

	conn, err := LoadConnection(Connection{}, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conn.BaseURL != DefaultBaseURL {
		t.Fatalf("expected default base URL, got %q", conn.BaseURL)
	}
}

func TestLoadConnectionMissingKey(t *testing.T) {
	t.Setenv(KeyBaseURL, "")
	t.Setenv(KeyAPIKey, "")

	_, err := LoadConnection(Connection{}, "")
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}
