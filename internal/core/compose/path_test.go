package compose

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDescriptorPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"yaml file", "/srv/shop/docker-compose.yaml", "/srv/shop/docker-compose.yaml"},
		{"yml file", "/srv/shop/compose.yml", "/srv/shop/compose.yml"},
		{"directory", "/srv/shop", filepath.Join("/srv/shop", "docker-compose.yaml")},
		{"directory trailing slash", "/srv/shop/", filepath.Join("/srv/shop", "docker-compose.yaml")},
		{"relative directory", "deploy", filepath.Join("deploy", "docker-compose.yaml")},
		{"json is not a descriptor", "/srv/shop/compose.json", filepath.Join("/srv/shop/compose.json", "docker-compose.yaml")},
		{"uppercase extension", "/srv/shop/compose.YAML", filepath.Join("/srv/shop/compose.YAML", "docker-compose.yaml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDescriptorPath(tt.path, DefaultResolveOptions()))
		})
	}
}

func TestResolveDescriptorPath_CustomOptions(t *testing.T) {
	opts := ResolveOptions{DefaultFile: "compose.yml", Extensions: []string{".yml"}}

	assert.Equal(t, filepath.Join("/srv/shop", "compose.yml"), ResolveDescriptorPath("/srv/shop", opts))
	assert.Equal(t, filepath.Join("/srv/a.yaml", "compose.yml"), ResolveDescriptorPath("/srv/a.yaml", opts))
}

func TestResolveDescriptorPath_ZeroOptions(t *testing.T) {
	assert.Equal(t, filepath.Join("/srv", DefaultDescriptorFile), ResolveDescriptorPath("/srv", ResolveOptions{}))
	assert.Equal(t, "/srv/x.yml", ResolveDescriptorPath("/srv/x.yml", ResolveOptions{}))
}
