// Package module defines the protocol between the orchestration tool and
// the dockstate binary.
//
// The orchestration tool invokes dockstate with a params document (JSON or
// YAML, optionally wrapped in ANSIBLE_MODULE_ARGS) and reads a single JSON
// object from stdout: a result payload or a failure payload.
//
// This package contains pure types with no I/O - following ADR-002.
package module

import (
	"github.com/artpar/dockstate/internal/core/reconcile"
)

// =============================================================================
// Version Info
// =============================================================================

// Version is the current module protocol version.
// Bump MAJOR for breaking changes, MINOR for new commands, PATCH for fixes.
const Version = "1.0.0"

// VersionInfo is returned by the "version" command.
type VersionInfo struct {
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	BuildTime       string `json:"build_time"`
	GoVersion       string `json:"go_version"`
}

// =============================================================================
// Commands
// =============================================================================

const (
	CommandCheckRunning = "check-running"
	CommandImagePlan    = "image-plan"
)

// PlanFailureMessage is the fixed message reported when image-plan fails.
const PlanFailureMessage = "Failed to retrieve Docker image tags."

// =============================================================================
// Params
// =============================================================================

// CheckRunningParams are the params of the "check-running" command.
type CheckRunningParams struct {
	Path        string `json:"path"`
	ProjectName string `json:"project_name"`
}

// ImageSpec is one entry of the "images" param.
type ImageSpec struct {
	Name string     `json:"name"`
	Tag  flexString `json:"tag,omitempty"`
}

// ImagePlanParams are the params of the "image-plan" command.
type ImagePlanParams struct {
	Images map[string]ImageSpec `json:"images"`
}

// Requests converts the params into reconcile requests.
func (p ImagePlanParams) Requests() reconcile.ImageRequests {
	requests := make(reconcile.ImageRequests, len(p.Images))
	for id, img := range p.Images {
		requests[id] = reconcile.ImageRequest{Name: img.Name, Tag: string(img.Tag)}
	}
	return requests
}

// =============================================================================
// Results
// =============================================================================

// CheckRunningResult is the success payload of "check-running".
type CheckRunningResult struct {
	Changed             bool `json:"changed"`
	AnyContainerRunning bool `json:"any_container_running"`
}

// ImagePlanResult is the success payload of "image-plan".
type ImagePlanResult struct {
	Changed bool           `json:"changed"`
	Plans   reconcile.Plan `json:"plans"`
}

// NewCheckRunningResult creates a check-running success payload.
func NewCheckRunningResult(running bool) *CheckRunningResult {
	return &CheckRunningResult{AnyContainerRunning: running}
}

// NewImagePlanResult creates an image-plan success payload.
func NewImagePlanResult(plan reconcile.Plan) *ImagePlanResult {
	return &ImagePlanResult{Plans: plan}
}

// =============================================================================
// Failures
// =============================================================================

// Standard failure codes.
const (
	ErrCodeNotFound     = "not_found"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeRuntime      = "runtime"
	ErrCodeInternal     = "internal"
)

// Failure is the payload written when a command fails.
type Failure struct {
	Failed  bool   `json:"failed"`
	Command string `json:"command,omitempty"`
	Code    string `json:"code,omitempty"`
	Msg     string `json:"msg"`
	Detail  string `json:"detail,omitempty"`
}

// NewFailure creates a failure payload.
func NewFailure(command, code, msg, detail string) *Failure {
	return &Failure{
		Failed:  true,
		Command: command,
		Code:    code,
		Msg:     msg,
		Detail:  detail,
	}
}

// CodeFor maps a reconcile error kind to its public failure code.
func CodeFor(kind reconcile.ErrorKind) string {
	switch kind {
	case reconcile.KindNotFound:
		return ErrCodeNotFound
	case reconcile.KindInvalidInput:
		return ErrCodeInvalidInput
	case reconcile.KindRuntime, reconcile.KindDescriptor:
		return ErrCodeRuntime
	default:
		return ErrCodeInternal
	}
}
