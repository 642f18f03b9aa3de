// Package reconciler runs the dockstate operations against a live runtime.
//
// It is the imperative shell around internal/core: it reads the descriptor
// from disk, queries the runtime, and hands the observations to the pure
// reconcile functions. Every failure leaves as a *reconcile.Error.
package reconciler

import (
	"context"
	"io/fs"
	"log/slog"
	"os"

	"github.com/pkg/errors"

	"github.com/artpar/dockstate/internal/core/compose"
	"github.com/artpar/dockstate/internal/core/reconcile"
	"github.com/artpar/dockstate/internal/shell/docker"
)

// Runtime is the read-only capability the operations need from Docker.
// *docker.DockerClient implements it.
type Runtime interface {
	ListContainers(ctx context.Context, opts docker.ListOptions) ([]docker.ContainerInfo, error)
	ListImageTags(ctx context.Context) ([]string, error)
}

// Options configures a Reconciler.
type Options struct {
	Descriptor  compose.ResolveOptions
	MatchPolicy reconcile.MatchPolicy
	Logger      *slog.Logger
}

// Reconciler answers liveness and image-plan questions for one runtime.
type Reconciler struct {
	runtime Runtime
	opts    Options
	logger  *slog.Logger
}

// New creates a Reconciler over rt.
func New(rt Runtime, opts Options) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MatchPolicy == "" {
		opts.MatchPolicy = reconcile.MatchRepository
	}
	return &Reconciler{
		runtime: rt,
		opts:    opts,
		logger:  logger,
	}
}

// =============================================================================
// Service Liveness
// =============================================================================

// CheckAnyRunning reports whether any container of any service declared in
// the descriptor at path is running under project.
//
// Services are checked in declaration order and the first one with a running
// container ends the search. A missing descriptor fails with KindNotFound
// before any runtime query is made.
func (r *Reconciler) CheckAnyRunning(ctx context.Context, path, project string) (bool, error) {
	if project == "" {
		return false, reconcile.NewError(reconcile.KindInvalidInput, "CheckAnyRunning", "project name is required", reconcile.ErrInvalidInput)
	}

	descriptorPath := compose.ResolveDescriptorPath(path, r.opts.Descriptor)
	logger := r.logger.With("descriptor", descriptorPath, "project", project)

	services, err := r.readServices(descriptorPath)
	if err != nil {
		return false, err
	}
	logger.Debug("descriptor parsed", "services", len(services))

	for _, service := range services {
		filter := reconcile.ContainerFilter(project, service)

		containers, err := r.runtime.ListContainers(ctx, docker.ListOptions{
			All:     true,
			Filters: map[string]string{"name": filter},
		})
		if err != nil {
			return false, reconcile.NewError(reconcile.KindRuntime, "CheckAnyRunning", err.Error(),
				errors.Wrapf(err, "list containers for %s", filter))
		}

		observations := make([]reconcile.ContainerObservation, 0, len(containers))
		for _, c := range containers {
			observations = append(observations, c.Observation())
		}

		if reconcile.AnyRunning(observations) {
			logger.Debug("running container found", "service", service, "filter", filter,
				"container_id", firstRunningID(containers))
			return true, nil
		}
	}

	logger.Debug("no running containers", "services", len(services))
	return false, nil
}

func firstRunningID(containers []docker.ContainerInfo) string {
	for _, c := range containers {
		if c.Observation().IsRunning() {
			return c.ID
		}
	}
	return ""
}

// readServices loads and parses the descriptor file.
func (r *Reconciler) readServices(descriptorPath string) (compose.ServiceSet, error) {
	content, err := os.ReadFile(descriptorPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, reconcile.NewError(reconcile.KindNotFound, "", reconcile.DescriptorNotFoundMessage, reconcile.ErrDescriptorNotFound)
		}
		return nil, reconcile.NewError(reconcile.KindDescriptor, "ReadDescriptor", err.Error(), errors.WithStack(err))
	}

	services, err := compose.ParseServiceNames(string(content))
	if err != nil {
		return nil, reconcile.NewError(reconcile.KindDescriptor, "ParseDescriptor", err.Error(), errors.WithStack(err))
	}
	return services, nil
}

// =============================================================================
// Image Plan
// =============================================================================

// BuildPlan computes the pull/remove plan for requests against the local
// image inventory. The inventory is read once; if that fails no plan is
// returned at all.
func (r *Reconciler) BuildPlan(ctx context.Context, requests reconcile.ImageRequests) (reconcile.Plan, error) {
	if len(requests) == 0 {
		return nil, reconcile.NewError(reconcile.KindInvalidInput, "BuildPlan", "at least one image is required", reconcile.ErrInvalidInput)
	}

	tags, err := r.runtime.ListImageTags(ctx)
	if err != nil {
		return nil, reconcile.NewError(reconcile.KindRuntime, "BuildPlan", err.Error(),
			errors.Wrap(err, "list local image tags"))
	}
	r.logger.Debug("image inventory loaded", "tags", len(tags), "requests", len(requests))

	plan, err := reconcile.BuildImagePlan(requests, tags, r.opts.MatchPolicy)
	if err != nil {
		return nil, err
	}

	for id, actions := range plan {
		r.logger.Debug("image plan computed",
			"identifier", id,
			"to_pull", len(actions.ToPull),
			"to_remove", len(actions.ToRemove),
		)
	}
	return plan, nil
}
