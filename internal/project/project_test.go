package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseBackend(t *testing.T) {
	tests := []struct {
		input   string
		want    Backend
		wantErr bool
	}{
		{input: "local", want: Local},
		{input: "SageMaker", want: SageMaker},
		{input: " vertex ", want: Vertex},
		{input: "kubernetes", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBackend(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownBackend) {
					t.Fatalf("err = %v, want ErrUnknownBackend", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("backend = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackendCapabilities(t *testing.T) {
	if !SageMaker.Capabilities().RunAsRoot || !SageMaker.Capabilities().ScriptEntrypoint {
		t.Fatal("sagemaker must run as root with a script entrypoint")
	}
	if Local.Capabilities().RunAsRoot || Vertex.Capabilities().RunAsRoot {
		t.Fatal("local and vertex must not mandate root")
	}
	if Local.Capabilities().NeedsRegistry {
		t.Fatal("local backend must not need a registry")
	}
}

func TestBackendUnmarshalText(t *testing.T) {
	var b Backend
	if err := b.UnmarshalText([]byte("vertex")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b != Vertex {
		t.Fatalf("backend = %v, want vertex", b)
	}
	if err := b.UnmarshalText([]byte("nope")); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "launch.yaml")
	body := `
dir: code
python_version: "3.9.7"
deps_type: pip
run_id: abc123
image_name: my project
user_id: 1001
override_config:
  lr: 0.1
override_args: ["--epochs", "3"]
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	desc, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if desc.Dir != filepath.Join(dir, "code") {
		t.Errorf("Dir = %q, want %q", desc.Dir, filepath.Join(dir, "code"))
	}
	if desc.DepsType != DepsPip {
		t.Errorf("DepsType = %q, want pip", desc.DepsType)
	}
	if desc.UserID == nil || *desc.UserID != 1001 {
		t.Errorf("UserID = %v, want 1001", desc.UserID)
	}
	if desc.OverrideConfig["lr"] != 0.1 {
		t.Errorf("OverrideConfig = %v, want lr=0.1", desc.OverrideConfig)
	}
	if got := desc.EntryCommand("python train.py"); got != "python train.py --epochs 3" {
		t.Errorf("EntryCommand = %q", got)
	}
}

func TestLoadDefaultsDirToFileDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "launch.yaml")
	if err := os.WriteFile(path, []byte("run_id: x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	desc, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if desc.Dir != dir {
		t.Fatalf("Dir = %q, want %q", desc.Dir, dir)
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "launch.yaml")
	if err := os.WriteFile(path, []byte("run_id: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidDescriptor) {
		t.Fatalf("err = %v, want ErrInvalidDescriptor", err)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	neg := -1

	tests := []struct {
		name    string
		desc    Descriptor
		wantErr bool
	}{
		{name: "valid", desc: Descriptor{Dir: dir, RunID: "r"}},
		{name: "missing run id", desc: Descriptor{Dir: dir}, wantErr: true},
		{name: "bad deps type", desc: Descriptor{Dir: dir, RunID: "r", DepsType: "poetry"}, wantErr: true},
		{name: "negative uid", desc: Descriptor{Dir: dir, RunID: "r", UserID: &neg}, wantErr: true},
		{name: "missing dir", desc: Descriptor{Dir: filepath.Join(dir, "nope"), RunID: "r"}, wantErr: true},
		{name: "prebuilt image skips dir", desc: Descriptor{RunID: "r", DockerImage: "alpine"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDescriptor) {
					t.Fatalf("err = %v, want ErrInvalidDescriptor", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
