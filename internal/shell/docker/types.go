// Package docker provides the Docker runtime adapter used to observe
// containers and local images.
package docker

import (
	"context"
	"time"

	"github.com/artpar/dockstate/internal/core/reconcile"
)

// =============================================================================
// Container Info
// =============================================================================

// ContainerStatus represents the container status.
type ContainerStatus = reconcile.ContainerStatus

// ContainerInfo contains information about a container.
type ContainerInfo struct {
	ID     string
	Name   string
	Status ContainerStatus
}

// Observation converts the info into the reconcile core's observation value.
func (c ContainerInfo) Observation() reconcile.ContainerObservation {
	return reconcile.ContainerObservation{Name: c.Name, Status: c.Status}
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines options for listing containers.
type ListOptions struct {
	All     bool              // Include stopped containers
	Filters map[string]string // e.g., {"name": "shop_web"}
}

// ClientConfig configures how the Docker client connects.
type ClientConfig struct {
	Host       string        // "" uses DOCKER_HOST or the default socket
	APIVersion string        // "" negotiates with the daemon
	Timeout    time.Duration // per-call timeout, 0 for none
	TLS        TLSConfig
}

// TLSConfig holds client certificate settings for tcp:// hosts.
type TLSConfig struct {
	Enabled            bool
	CAFile             string
	CertFile           string
	KeyFile            string
	InsecureSkipVerify bool
}

// =============================================================================
// Client Interface
// =============================================================================

// Client defines the Docker operations dockstate needs. It only reads.
type Client interface {
	ListContainers(ctx context.Context, opts ListOptions) ([]ContainerInfo, error)
	ListImageTags(ctx context.Context) ([]string, error)

	Ping(ctx context.Context) error
	Close() error
}

// danglingTag is what the daemon reports for untagged images.
const danglingTag = "<none>:<none>"
