package docker

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/tlsconfig"
)

// =============================================================================
// Docker Client Implementation
// =============================================================================

// apiClient is the subset of the Docker SDK used by DockerClient.
// *client.Client satisfies it; tests substitute a fake.
type apiClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	Ping(ctx context.Context) (types.Ping, error)
	Close() error
}

// DockerClient implements the Client interface using the Docker SDK.
type DockerClient struct {
	cli     apiClient
	timeout time.Duration
}

var _ Client = (*DockerClient)(nil)

// NewDockerClient creates a new Docker client.
// If cfg.Host is empty, it uses the default Docker host from environment.
// On macOS with Docker Desktop, it automatically detects the correct socket.
func NewDockerClient(cfg ClientConfig) (*DockerClient, error) {
	var opts []client.Opt
	opts = append(opts, client.FromEnv)

	if cfg.APIVersion != "" {
		opts = append(opts, client.WithVersion(cfg.APIVersion))
	} else {
		opts = append(opts, client.WithAPIVersionNegotiation())
	}

	if cfg.TLS.Enabled {
		httpClient, err := newTLSHTTPClient(cfg.TLS)
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithHTTPClient(httpClient))
	}

	if cfg.Host != "" {
		opts = append(opts, client.WithHost(cfg.Host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, NewDockerError("NewDockerClient", "", "", "failed to create client: "+err.Error(), ErrConnectionFailed)
	}

	// Only probe for Docker Desktop when nothing was configured explicitly.
	if cfg.Host == "" && os.Getenv(client.EnvOverrideHost) == "" {
		if alt := dockerDesktopClient(cli); alt != nil {
			cli.Close()
			cli = alt
		}
	}

	return &DockerClient{cli: cli, timeout: cfg.Timeout}, nil
}

// dockerDesktopClient returns a client for the Docker Desktop socket when the
// default socket does not answer but Docker Desktop does.
func dockerDesktopClient(cli *client.Client) *client.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := cli.Ping(ctx); err == nil {
		return nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	dockerDesktopSocket := "unix://" + homeDir + "/.docker/run/docker.sock"

	cli2, err := client.NewClientWithOpts(
		client.WithHost(dockerDesktopSocket),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil
	}
	if _, err := cli2.Ping(ctx); err != nil {
		cli2.Close()
		return nil
	}
	return cli2
}

// newTLSHTTPClient builds an HTTP client carrying the configured certificates.
func newTLSHTTPClient(cfg TLSConfig) (*http.Client, error) {
	tlsc, err := tlsconfig.Client(tlsconfig.Options{
		CAFile:             cfg.CAFile,
		CertFile:           cfg.CertFile,
		KeyFile:            cfg.KeyFile,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		ExclusiveRootPools: true,
	})
	if err != nil {
		return nil, NewDockerError("NewDockerClient", "", "", "failed to load TLS config: "+err.Error(), ErrInvalidTLS)
	}
	return &http.Client{
		Transport: &http.Transport{TLSClientConfig: tlsc},
	}, nil
}

// withTimeout applies the configured per-call timeout, if any.
func (d *DockerClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.timeout)
}

// wrapErr converts an SDK failure into a DockerError, flagging timeouts.
func wrapErr(op, entity string, kind, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		kind = ErrTimeout
	}
	return NewDockerError(op, entity, "", err.Error(), errors.Join(kind, err))
}

// Ping checks if Docker daemon is reachable.
func (d *DockerClient) Ping(ctx context.Context) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	if _, err := d.cli.Ping(ctx); err != nil {
		return wrapErr("Ping", "", ErrConnectionFailed, err)
	}
	return nil
}

// Close closes the Docker client connection.
func (d *DockerClient) Close() error {
	return d.cli.Close()
}

// =============================================================================
// Container Operations
// =============================================================================

// ListContainers returns a list of containers matching the given options.
func (d *DockerClient) ListContainers(ctx context.Context, opts ListOptions) ([]ContainerInfo, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	listOpts := container.ListOptions{
		All: opts.All,
	}

	if len(opts.Filters) > 0 {
		f := filters.NewArgs()
		for k, v := range opts.Filters {
			f.Add(k, v)
		}
		listOpts.Filters = f
	}

	containers, err := d.cli.ContainerList(ctx, listOpts)
	if err != nil {
		return nil, wrapErr("ListContainers", "container", ErrListFailed, err)
	}

	result := make([]ContainerInfo, 0, len(containers))
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}

		result = append(result, ContainerInfo{
			ID:     c.ID,
			Name:   name,
			Status: ContainerStatus(c.State),
		})
	}

	return result, nil
}

// =============================================================================
// Image Operations
// =============================================================================

// ListImageTags returns every "name:tag" carried by a local image, in the
// order the daemon reports them. Untagged images contribute nothing.
func (d *DockerClient) ListImageTags(ctx context.Context) ([]string, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	images, err := d.cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return nil, wrapErr("ListImageTags", "image", ErrListFailed, err)
	}

	tags := make([]string, 0, len(images))
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == "" || tag == danglingTag {
				continue
			}
			tags = append(tags, tag)
		}
	}
	return tags, nil
}
