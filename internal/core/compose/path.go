package compose

import (
	"path/filepath"
	"strings"
)

// ResolveDescriptorPath returns the descriptor file for path.
// A path ending in a recognized extension is used as is; anything else is
// treated as a directory and opts.DefaultFile is joined onto it.
// Zero-valued options fall back to the defaults.
//
// Example:
//
//	ResolveDescriptorPath("/srv/shop", DefaultResolveOptions())
//	// returns "/srv/shop/docker-compose.yaml"
func ResolveDescriptorPath(path string, opts ResolveOptions) string {
	if opts.DefaultFile == "" {
		opts.DefaultFile = DefaultDescriptorFile
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}

	for _, ext := range opts.Extensions {
		if ext != "" && strings.HasSuffix(path, ext) {
			return path
		}
	}
	return filepath.Join(path, opts.DefaultFile)
}
