package compose

// ServiceSet is the ordered list of service names declared in a descriptor.
// Order follows the "services" mapping in the document.
type ServiceSet []string

// ResolveOptions controls how a descriptor path is resolved.
type ResolveOptions struct {
	// DefaultFile is appended when the path is treated as a directory.
	DefaultFile string
	// Extensions are the suffixes recognized as descriptor files.
	Extensions []string
}

const (
	// DefaultDescriptorFile is the file looked up inside a directory path.
	DefaultDescriptorFile = "docker-compose.yaml"
)

// DefaultExtensions are the recognized descriptor file extensions.
var DefaultExtensions = []string{".yaml", ".yml"}

// DefaultResolveOptions returns the stock resolution options.
func DefaultResolveOptions() ResolveOptions {
	return ResolveOptions{
		DefaultFile: DefaultDescriptorFile,
		Extensions:  append([]string(nil), DefaultExtensions...),
	}
}
