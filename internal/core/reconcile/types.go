package reconcile

// =============================================================================
// Container Observations
// =============================================================================

// ContainerStatus is the runtime state of an observed container.
type ContainerStatus string

const (
	ContainerStatusCreated    ContainerStatus = "created"
	ContainerStatusRunning    ContainerStatus = "running"
	ContainerStatusPaused     ContainerStatus = "paused"
	ContainerStatusRestarting ContainerStatus = "restarting"
	ContainerStatusRemoving   ContainerStatus = "removing"
	ContainerStatusExited     ContainerStatus = "exited"
	ContainerStatusDead       ContainerStatus = "dead"
)

// ContainerObservation is a container as seen by the runtime at query time.
// Observations are never cached or mutated.
type ContainerObservation struct {
	Name   string
	Status ContainerStatus
}

// =============================================================================
// Image Requests and Plans
// =============================================================================

// DefaultTag is used when an ImageRequest carries no tag.
const DefaultTag = "latest"

// ImageRequest is the desired name and tag for one logical image.
type ImageRequest struct {
	Name string `json:"name"`
	Tag  string `json:"tag,omitempty"`
}

// ResolvedTag returns the requested tag, or DefaultTag when none was given.
func (r ImageRequest) ResolvedTag() string {
	if r.Tag == "" {
		return DefaultTag
	}
	return r.Tag
}

// FullyQualified returns the "name:tag" string the request converges to.
func (r ImageRequest) FullyQualified() string {
	return r.Name + ":" + r.ResolvedTag()
}

// ImageRequests maps a logical identifier to its desired image.
type ImageRequests map[string]ImageRequest

// ImageTagInventory is the flattened list of "name:tag" strings present locally.
type ImageTagInventory []string

// Actions is the work needed to converge one identifier.
// Both slices are always non-nil so they encode as [] rather than null.
type Actions struct {
	ToPull   []string `json:"to_pull"`
	ToRemove []string `json:"to_remove"`
}

// Plan maps each requested identifier to its Actions.
type Plan map[string]Actions
