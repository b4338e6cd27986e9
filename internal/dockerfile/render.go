package dockerfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cruciblehq/cruxlaunch/internal/project"
)

const (

	// Interpreter version used when neither the descriptor nor the host
	// provides one.
	DefaultPythonVersion = "3.10"

	// Accelerator runtime version used when the descriptor does not pin one.
	DefaultCUDAVersion = "10.0"

	// Name and uid given to the container user when the host user is
	// unknown or is root.
	defaultUserName = "launch"
	defaultUID      = 1000

	rootUserName = "root"

	// Script written into the source tree for backends that wrap the
	// entrypoint. SageMaker appends "train" to the command, which is why the
	// script carries that name.
	launcherScript = "train"
)

// Host facts and capabilities injected into rendering.
type Options struct {
	BuildKit          bool     // Whether the engine supports RUN --mount cache directives.
	HostPythonVersion string   // Interpreter version on the host, used when the project does not pin one.
	User              HostUser // Host user the container user is derived from.
}

// The host user the container user mirrors.
type HostUser struct {
	Name string // Login name, also used for the home directory.
	UID  int    // Effective uid on the host.
}

// A named piece of the build file.
type section struct {
	name string
	text string
}

// Holds the resolved inputs shared by all sections.
type renderer struct {
	desc      *project.Descriptor
	caps      project.Capabilities
	opts      Options
	pyVersion string
	pyMajor   string
	user      string
	uid       int
	workdir   string
	entryCmd  string
	generated []GeneratedFile
}

// Renders the build file for a project.
//
// The entry command is the fully resolved command line, override arguments
// included. The only error returned is [ErrRender], which indicates that a
// section produced text the Dockerfile parser rejects.
func Render(desc *project.Descriptor, entryCmd string, backend project.Backend, opts Options) (*Document, error) {
	r := newRenderer(desc, entryCmd, backend, opts)

	sections := []section{
		{name: "build", text: r.buildStage()},
		{name: "requirements", text: r.requirementsSection()},
		{name: "base", text: r.baseStage()},
		{name: "env", text: r.envSection()},
		{name: "user", text: r.userSection()},
		{name: "workdir", text: r.workdirSection()},
		{name: "source", text: r.sourceSection()},
		{name: "entrypoint", text: r.entrypointSection()},
	}

	text, err := compose(sections)
	if err != nil {
		return nil, err
	}

	return &Document{text: text, files: r.generated}, nil
}

func newRenderer(desc *project.Descriptor, entryCmd string, backend project.Backend, opts Options) *renderer {
	caps := backend.Capabilities()
	version, major := pythonVersion(desc.PythonVersion, opts.HostPythonVersion)

	user := opts.User.Name
	if user == "" {
		user = defaultUserName
	}

	uid := opts.User.UID
	if desc.UserID != nil {
		uid = *desc.UserID
	}

	// A host root user cannot be recreated with useradd.
	if caps.RunAsRoot {
		uid = 0
	} else if uid == 0 || user == rootUserName {
		slog.Warn("host user is root, using an unprivileged container user",
			"user", defaultUserName,
			"uid", defaultUID,
		)
		user = defaultUserName
		uid = defaultUID
	}

	return &renderer{
		desc:      desc,
		caps:      caps,
		opts:      opts,
		pyVersion: version,
		pyMajor:   major,
		user:      user,
		uid:       uid,
		workdir:   "/home/" + user,
		entryCmd:  entryCmd,
	}
}

// Returns the interpreter version truncated to major.minor, and the major
// version on its own.
//
// The pinned version wins over the host version. Patch releases are dropped
// so the version always names an image tag that exists, and a bare major
// version gets a ".0" minor.
func pythonVersion(pinned, host string) (string, string) {
	v := strings.TrimSpace(pinned)
	if v == "" {
		v = strings.TrimSpace(host)
	}
	if v == "" {
		v = DefaultPythonVersion
	}

	parts := strings.Split(v, ".")
	if len(parts) == 1 {
		return parts[0] + ".0", parts[0]
	}
	return strings.Join(parts[:2], "."), parts[0]
}

func (r *renderer) buildStage() string {
	image := "python:" + r.pyVersion
	if r.desc.DepsType == project.DepsConda {
		image = "continuumio/miniconda:latest"
		if r.pyMajor == "3" {
			image = "continuumio/miniconda3:latest"
		}
	}

	return fmt.Sprintf("# ----- stage 1: build -----\nFROM %s AS build\n", image)
}

func (r *renderer) requirementsSection() string {
	var b strings.Builder
	b.WriteString("# requirements section depends on pip vs conda, and presence of buildkit\n")

	switch r.desc.DepsType {
	case project.DepsPip:
		b.WriteString(venvSetup)
		b.WriteString(r.pipInstall())
	case project.DepsConda:
		b.WriteString(r.condaInstall())
	default:
		// No manifest: the environment exists so the base stage can copy
		// it, but nothing is installed into it.
		b.WriteString(venvSetup)
	}

	return b.String()
}

const venvSetup = `RUN python -m venv /env
# make sure we install into the env
ENV PATH="/env/bin:$PATH"
`

// Renders the pip installation. With frozen requirements the bootstrap
// installer runs, and requirements.txt is copied only when the project has
// one, since COPY fails on a missing source.
func (r *renderer) pipInstall() string {
	files := []string{"src/" + requirementsFile}
	install := "pip install -r " + requirementsFile

	if hasFrozenRequirements(r.desc.Dir) {
		files = files[:0]
		if hasRequirements(r.desc.Dir) {
			files = append(files, "src/"+requirementsFile)
		}
		files = append(files, "src/"+frozenRequirementsFile, BootstrapScript)
		install = onlyIncludePrefix(r.desc.Dir) + "python " + BootstrapScript
	}

	return fmt.Sprintf("COPY %s ./\n%s %s\n",
		strings.Join(files, " "),
		r.runPrefix(pipCacheDir),
		install,
	)
}

func (r *renderer) condaInstall() string {
	return fmt.Sprintf(`COPY src/environment.yml ./
%s conda env create -f environment.yml -n env

# pack the environment so that we can transfer to the base image
RUN conda install -c conda-forge conda-pack
RUN conda pack -n env -o /tmp/env.tar && \
    mkdir /env && cd /env && tar xf /tmp/env.tar && \
    rm /tmp/env.tar
RUN /env/bin/conda-unpack
`, r.runPrefix(condaCacheDir))
}

const (
	pipCacheDir   = "/root/.cache/pip"
	condaCacheDir = "/opt/conda/pkgs"
)

// Returns the RUN prefix for dependency installation. With BuildKit the
// package manager cache is mounted across builds; without it the bootstrap
// script is told not to cache.
func (r *renderer) runPrefix(cacheDir string) string {
	if r.opts.BuildKit {
		return "RUN --mount=type=cache,mode=0777,target=" + cacheDir
	}
	return "RUN WANDB_DISABLE_CACHE=true"
}

func (r *renderer) baseStage() string {
	if !r.desc.CUDA {
		return fmt.Sprintf("# ----- stage 2: base -----\nFROM python:%s-buster AS base\n", r.pyVersion)
	}

	cudaVersion := r.desc.CUDAVersion
	if cudaVersion == "" {
		cudaVersion = DefaultCUDAVersion
	}

	// Accelerator images ship without an interpreter.
	return fmt.Sprintf(`# ----- stage 2: base -----
FROM nvidia/cuda:%s-runtime AS base
RUN apt-get update -qq && apt-get install -y software-properties-common && add-apt-repository -y ppa:deadsnakes/ppa

# install python
RUN apt-get update -qq && apt-get install --no-install-recommends -y \
    %s \
    && apt-get -qq purge && apt-get -qq clean \
    && rm -rf /var/lib/apt/lists/*

# make sure `+"`python`"+` points at the right version
RUN update-alternatives --install /usr/bin/python python /usr/bin/python%s 1 \
    && update-alternatives --install /usr/local/bin/python python /usr/bin/python%s 1
`, cudaVersion, strings.Join(r.cudaPythonPackages(), " \\\n    "), r.pyVersion, r.pyVersion)
}

// Returns the OS packages that provide the interpreter on an accelerator
// image.
func (r *renderer) cudaPythonPackages() []string {
	if r.pyMajor == "2" {
		return []string{
			"python" + r.pyVersion,
			"libpython" + r.pyVersion,
			"python-pip",
			"python-setuptools",
		}
	}
	return []string{
		"python" + r.pyVersion,
		"libpython" + r.pyVersion,
		"python3-pip",
		"python3-setuptools",
	}
}

func (r *renderer) envSection() string {
	return `COPY --from=build /env /env
ENV PATH="/env/bin:$PATH"

ENV SHELL=/bin/bash
`
}

func (r *renderer) userSection() string {
	if r.caps.RunAsRoot {
		return "# some resources (eg sagemaker) must run on root\nUSER root\n"
	}

	return fmt.Sprintf(`RUN useradd \
    --create-home \
    --no-log-init \
    --shell /bin/bash \
    --gid 0 \
    --uid %d \
    %s
USER %s
`, r.uid, r.user, r.user)
}

func (r *renderer) workdirSection() string {
	return fmt.Sprintf(`WORKDIR %[1]s
RUN chown -R %[2]d %[1]s

# make artifacts cache dir unrelated to build
RUN mkdir -p %[1]s/.cache && chown -R %[2]d %[1]s/.cache
`, r.workdir, r.uid)
}

func (r *renderer) sourceSection() string {
	return fmt.Sprintf("# copy code/etc\nCOPY --chown=%d src/ %s\n\nENV PYTHONUNBUFFERED=1\n", r.uid, r.workdir)
}

// Renders the entrypoint.
//
// Backends that append their own argument get a launcher script so the
// extra argument does not reach the user's argument parser. Everything else
// gets an exec-form entrypoint; JSON encoding takes care of quoting.
func (r *renderer) entrypointSection() string {
	if r.caps.ScriptEntrypoint {
		r.generated = append(r.generated, GeneratedFile{
			Path:    launcherScript,
			Content: []byte(r.entryCmd),
			Mode:    0755,
		})
		return fmt.Sprintf(`COPY ./src/%[2]s %[1]s
RUN chmod +x %[1]s/%[2]s
ENTRYPOINT ["sh", %[3]s]
`, r.workdir, launcherScript, strconv.Quote(launcherScript))
	}

	return "ENTRYPOINT " + jsonArray(strings.Fields(r.entryCmd)) + "\n"
}

// Encodes tokens as a JSON array without HTML escaping.
func jsonArray(tokens []string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if tokens == nil {
		tokens = []string{}
	}
	enc.Encode(tokens) // []string always encodes
	return strings.TrimSuffix(buf.String(), "\n")
}
