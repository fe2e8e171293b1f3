package toolchain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Engine identifies how the compile toolchain is hosted.
type Engine string

const (
	// EngineAuto picks the first available container engine, docker first.
	EngineAuto Engine = "auto"
	// EngineDocker runs the toolchain image via docker.
	EngineDocker Engine = "docker"
	// EnginePodman runs the toolchain image via podman.
	EnginePodman Engine = "podman"
	// EngineLocal invokes pandoc directly on the host, no container.
	EngineLocal Engine = "local"
)

// Sentinel errors for engine resolution.
var (
	ErrNoEngine          = errors.New("no container engine (docker or podman) is available")
	ErrEngineUnavailable = errors.New("container engine is not available")
	ErrUnknownEngine     = errors.New("unknown container engine")
)

// versionProbes holds the version query that cheaply confirms a responsive
// engine. Docker needs the server version so a stopped daemon counts as
// unavailable even when the client binary exists.
var versionProbes = map[Engine][]string{
	EngineDocker: {"version", "--format", "{{.Server.Version}}"},
	EnginePodman: {"version", "--format", "{{.Version}}"},
}

// Valid reports whether the engine name is one this package understands.
func (e Engine) Valid() bool {
	switch e {
	case EngineAuto, EngineDocker, EnginePodman, EngineLocal:
		return true
	}
	return false
}

// Available reports whether the container engine answers its version probe.
// A missing binary and a stopped daemon both fail the probe, so no separate
// PATH lookup is needed.
func Available(ctx context.Context, runner CommandRunner, engine Engine) bool {
	probe, ok := versionProbes[engine]
	if !ok {
		return false
	}
	_, _, err := runner.Run(ctx, string(engine), probe...)
	return err == nil
}

// Version returns the engine's reported version string.
func Version(ctx context.Context, runner CommandRunner, engine Engine) (string, error) {
	probe, ok := versionProbes[engine]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownEngine, engine)
	}
	out, _, err := runner.Run(ctx, string(engine), probe...)
	if err != nil {
		return "", fmt.Errorf("querying %s version: %w", engine, err)
	}
	return strings.TrimSpace(out), nil
}

// Detect resolves the configured engine to a concrete one. EngineAuto tries
// docker then podman. A named engine is verified but never substituted: a
// build configured for one engine should not silently run on another where
// the toolchain image may be missing.
func Detect(ctx context.Context, runner CommandRunner, preferred Engine) (Engine, error) {
	switch preferred {
	case EngineLocal:
		return EngineLocal, nil
	case EngineDocker, EnginePodman:
		if !Available(ctx, runner, preferred) {
			return "", fmt.Errorf("%w: %s", ErrEngineUnavailable, preferred)
		}
		return preferred, nil
	case EngineAuto:
		for _, engine := range []Engine{EngineDocker, EnginePodman} {
			if Available(ctx, runner, engine) {
				return engine, nil
			}
		}
		return "", ErrNoEngine
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownEngine, preferred)
	}
}

// ImageExists reports whether the toolchain image is present in the engine's
// local store.
func ImageExists(ctx context.Context, runner CommandRunner, engine Engine, image string) bool {
	_, _, err := runner.Run(ctx, string(engine), "image", "inspect", image)
	return err == nil
}

// RunSpec describes one containerized tool invocation. The host Workdir is
// mounted at /data and used as the working directory, so the command sees
// the same relative paths the pipeline computed.
type RunSpec struct {
	Image   string
	Workdir string
	Memory  string // engine memory limit, e.g. "2g"; empty disables it
	User    string // uid:gid to run as; empty keeps the image default
	Command []string
}

// ContainerMount is the in-container path the host working directory is
// mounted at.
const ContainerMount = "/data"

// RunArgs assembles the engine CLI arguments for one run. Podman mounts get
// the :z suffix so SELinux relabels the volume.
func RunArgs(engine Engine, spec RunSpec) []string {
	args := []string{"run", "--rm"}
	if spec.Workdir != "" {
		mount := spec.Workdir + ":" + ContainerMount
		if engine == EnginePodman {
			mount += ":z"
		}
		args = append(args, "-v", mount, "-w", ContainerMount)
	}
	if spec.Memory != "" {
		args = append(args, "--memory", spec.Memory)
	}
	if spec.User != "" {
		args = append(args, "--user", spec.User)
	}
	args = append(args, spec.Image)
	args = append(args, spec.Command...)
	return args
}
