// Package reconcile provides pure functions for reconciling observed Docker
// state against a declared desired state.
//
// This package contains the functional core logic behind dockstate. All
// functions are pure (no I/O, no side effects) and comply with ADR-002
// "Values as Boundaries": observed state is passed in as values, results are
// returned as values.
//
// # Functions
//
//   - Naming: Build the container name filter for a service (ContainerFilter)
//   - Liveness: Decide whether any observed container is running (AnyRunning)
//   - Images: Compute the pull/remove plan for desired images (BuildImagePlan)
//
// # Usage
//
// The imperative shell (internal/shell/reconciler) queries Docker, then
// hands the observations to these functions:
//
//	tags, err := runtime.ListImageTags(ctx)
//	plan, err := reconcile.BuildImagePlan(requests, tags, reconcile.MatchRepository)
//	for id, actions := range plan {
//	    // caller pulls actions.ToPull and removes actions.ToRemove
//	}
package reconcile
