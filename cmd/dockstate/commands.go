package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/artpar/dockstate/internal/core/module"
	"github.com/artpar/dockstate/internal/core/reconcile"
	"github.com/artpar/dockstate/internal/shell/docker"
	"github.com/artpar/dockstate/internal/shell/reconciler"
)

// RuntimeFactory connects to the container runtime.
type RuntimeFactory func(cfg docker.ClientConfig) (docker.Client, error)

// app carries what a single command invocation needs.
type app struct {
	configPath string
	command    string
	deps       Dependencies
	out        *output
}

func newApp(configPath, command string, deps Dependencies, out *output) *app {
	return &app{
		configPath: configPath,
		command:    command,
		deps:       deps,
		out:        out,
	}
}

// setup loads config and builds the logger and reconciler for this invocation.
// The runtime connects lazily so a missing descriptor never touches Docker.
func (a *app) setup() (*reconciler.Reconciler, *lazyRuntime, *slog.Logger, error) {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := SetupLogger(cfg, a.deps.Stderr).With(
		"invocation_id", uuid.NewString(),
		"command", a.command,
	)

	rt := &lazyRuntime{connect: func() (docker.Client, error) {
		return a.deps.NewRuntime(cfg.Docker.ClientConfig())
	}}

	r := reconciler.New(rt, reconciler.Options{
		Descriptor:  cfg.Descriptor.ResolveOptions(),
		MatchPolicy: cfg.MatchPolicy(),
		Logger:      logger,
	})
	return r, rt, logger, nil
}

// checkRunning handles the "check-running" command.
func (a *app) checkRunning(argsFile string) int {
	r, rt, logger, err := a.setup()
	if err != nil {
		a.out.failure(module.NewFailure(a.command, module.ErrCodeInternal, "configuration error: "+err.Error(), ""))
		return ExitFailure
	}
	defer rt.Close()

	raw, err := readParams(argsFile, a.deps.Stdin)
	if err != nil {
		return a.fail(logger, err)
	}
	params, err := module.DecodeCheckRunningParams(raw)
	if err != nil {
		return a.fail(logger, err)
	}

	running, err := r.CheckAnyRunning(context.Background(), params.Path, params.ProjectName)
	if err != nil {
		return a.fail(logger, err)
	}

	logger.Info("check-running completed", "path", params.Path, "project", params.ProjectName, "any_container_running", running)
	if err := a.out.success(module.NewCheckRunningResult(running)); err != nil {
		return ExitFailure
	}
	return ExitSuccess
}

// imagePlan handles the "image-plan" command.
func (a *app) imagePlan(argsFile string) int {
	r, rt, logger, err := a.setup()
	if err != nil {
		a.out.failure(module.NewFailure(a.command, module.ErrCodeInternal, "configuration error: "+err.Error(), ""))
		return ExitFailure
	}
	defer rt.Close()

	raw, err := readParams(argsFile, a.deps.Stdin)
	if err != nil {
		return a.fail(logger, err)
	}
	params, err := module.DecodeImagePlanParams(raw)
	if err != nil {
		return a.fail(logger, err)
	}

	plan, err := r.BuildPlan(context.Background(), params.Requests())
	if err != nil {
		return a.fail(logger, err)
	}

	logger.Info("image-plan completed", "identifiers", len(plan))
	if err := a.out.success(module.NewImagePlanResult(plan)); err != nil {
		return ExitFailure
	}
	return ExitSuccess
}

// fail logs err and writes the matching failure payload.
func (a *app) fail(logger *slog.Logger, err error) int {
	f := failureFor(a.command, err)
	logger.Warn("command failed", "code", f.Code, "error", err)
	a.out.failure(f)
	return ExitFailure
}

// failureFor converts an operation error into the payload the caller sees.
// image-plan runtime failures use a fixed message and carry the trace in
// detail; everything else reports the underlying message verbatim.
func failureFor(command string, err error) *module.Failure {
	var rErr *reconcile.Error
	if !errors.As(err, &rErr) {
		return module.NewFailure(command, module.ErrCodeInternal, err.Error(), fmt.Sprintf("%+v", err))
	}

	code := module.CodeFor(rErr.Public())
	switch {
	case rErr.Kind == reconcile.KindInvalidInput:
		return module.NewFailure(command, code, rErr.Error(), "")
	case command == module.CommandImagePlan && code == module.ErrCodeRuntime:
		return module.NewFailure(command, code, module.PlanFailureMessage, traceOf(rErr))
	default:
		return module.NewFailure(command, code, rErr.Message, "")
	}
}

func traceOf(rErr *reconcile.Error) string {
	if rErr.Err == nil {
		return rErr.Error()
	}
	return fmt.Sprintf("%+v", rErr.Err)
}

// readParams reads the params document from argsFile, or stdin when empty.
func readParams(argsFile string, stdin io.Reader) ([]byte, error) {
	if argsFile != "" {
		data, err := os.ReadFile(argsFile)
		if err != nil {
			return nil, reconcile.NewError(reconcile.KindInvalidInput, "params", "read args file: "+err.Error(), err)
		}
		return data, nil
	}
	if stdin == nil {
		return nil, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, reconcile.NewError(reconcile.KindInvalidInput, "params", "read stdin: "+err.Error(), err)
	}
	return data, nil
}

// =============================================================================
// Lazy Runtime
// =============================================================================

// lazyRuntime connects on first use and remembers the outcome.
// A daemon that does not answer Ping counts as a failed connection.
type lazyRuntime struct {
	connect func() (docker.Client, error)
	rt      docker.Client
	err     error
	tried   bool
}

var _ reconciler.Runtime = (*lazyRuntime)(nil)

func (l *lazyRuntime) get(ctx context.Context) (docker.Client, error) {
	if l.tried {
		return l.rt, l.err
	}
	l.tried = true

	rt, err := l.connect()
	if err != nil {
		l.err = err
		return nil, err
	}
	if err := rt.Ping(ctx); err != nil {
		rt.Close()
		l.err = err
		return nil, err
	}
	l.rt = rt
	return rt, nil
}

func (l *lazyRuntime) ListContainers(ctx context.Context, opts docker.ListOptions) ([]docker.ContainerInfo, error) {
	rt, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return rt.ListContainers(ctx, opts)
}

func (l *lazyRuntime) ListImageTags(ctx context.Context) ([]string, error) {
	rt, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return rt.ListImageTags(ctx)
}

// Close closes the underlying runtime if it was ever opened.
func (l *lazyRuntime) Close() error {
	if l.rt == nil {
		return nil
	}
	return l.rt.Close()
}
