// Package main provides the dockstate binary invoked by orchestration tools.
//
// dockstate reads module params (JSON or YAML, optionally wrapped in
// ANSIBLE_MODULE_ARGS) from an args file or stdin and writes exactly one JSON
// object to stdout. Logs go to stderr.
//
// Usage:
//
//	dockstate [--config FILE] <command> [ARGS_FILE]
//
// Commands:
//
//	check-running [ARGS_FILE]  - Report whether any service container is running
//	                             params: path, project_name
//	image-plan [ARGS_FILE]     - Compute pull/remove actions for desired images
//	                             params: images
//	version                    - Show version information
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/artpar/dockstate/internal/core/module"
	"github.com/artpar/dockstate/internal/shell/docker"
)

// Version information (set by build flags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// CLI defines the command-line interface parsed by Kong.
type CLI struct {
	Config string `help:"Path to config file." env:"DOCKSTATE_CONFIG"`

	CheckRunning CheckRunningCmd `cmd:"" name:"check-running" help:"Report whether any container of a compose project is running."`
	ImagePlan    ImagePlanCmd    `cmd:"" name:"image-plan" help:"Compute image pull and remove actions for desired tags."`
	Version      VersionCmd      `cmd:"" help:"Show version information."`
}

// CheckRunningCmd reads path and project_name params.
type CheckRunningCmd struct {
	ArgsFile string `arg:"" optional:"" name:"args-file" help:"Params file; stdin when omitted."`
}

// ImagePlanCmd reads the images param.
type ImagePlanCmd struct {
	ArgsFile string `arg:"" optional:"" name:"args-file" help:"Params file; stdin when omitted."`
}

// VersionCmd prints version information.
type VersionCmd struct{}

// Dependencies holds the process boundary so tests can replace it.
type Dependencies struct {
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	NewRuntime RuntimeFactory
}

func main() {
	os.Exit(run(os.Args[1:], Dependencies{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		NewRuntime: newDockerRuntime,
	}))
}

// kongExit carries the exit code kong asks for (after --help) out of Parse.
type kongExit int

func run(args []string, deps Dependencies) (code int) {
	out := newOutput(deps.Stdout, deps.Stderr)

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if exit, ok := r.(kongExit); ok {
			code = int(exit)
			return
		}
		out.failure(module.NewFailure("", module.ErrCodeInternal, fmt.Sprintf("internal error: %v", r), string(debug.Stack())))
		code = ExitFailure
	}()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("dockstate"),
		kong.Description("Reconciliation helper for Docker compose deployments."),
		// stdout carries only the JSON result, so help and usage go to stderr.
		kong.Writers(deps.Stderr, deps.Stderr),
		kong.Exit(func(code int) { panic(kongExit(code)) }),
	)
	if err != nil {
		out.failure(module.NewFailure("usage", module.ErrCodeInternal, err.Error(), ""))
		return ExitUsage
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		out.failure(module.NewFailure("usage", module.ErrCodeInvalidInput, err.Error(), ""))
		return ExitUsage
	}

	switch commandName(kctx.Command()) {
	case "version":
		return versionCmd(out)
	case module.CommandCheckRunning:
		return newApp(cli.Config, module.CommandCheckRunning, deps, out).checkRunning(cli.CheckRunning.ArgsFile)
	case module.CommandImagePlan:
		return newApp(cli.Config, module.CommandImagePlan, deps, out).imagePlan(cli.ImagePlan.ArgsFile)
	default:
		out.failure(module.NewFailure(kctx.Command(), module.ErrCodeInvalidInput, "unknown command: "+kctx.Command(), ""))
		return ExitUsage
	}
}

// commandName strips positional placeholders such as "<args-file>".
func commandName(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// versionCmd handles the "version" command.
func versionCmd(out *output) int {
	err := out.success(module.VersionInfo{
		Version:         Version,
		ProtocolVersion: module.Version,
		BuildTime:       BuildTime,
		GoVersion:       runtime.Version(),
	})
	if err != nil {
		return ExitFailure
	}
	return ExitSuccess
}

// newDockerRuntime connects to Docker using the SDK.
func newDockerRuntime(cfg docker.ClientConfig) (docker.Client, error) {
	cli, err := docker.NewDockerClient(cfg)
	if err != nil {
		return nil, err
	}
	return cli, nil
}
