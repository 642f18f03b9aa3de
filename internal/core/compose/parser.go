package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// loadProjectName is only used to satisfy compose-go; it never reaches Docker.
const loadProjectName = "dockstate-descriptor"

// =============================================================================
// Parser Functions
// =============================================================================

// ParseServiceNames extracts the declared service names from a compose
// descriptor, in declaration order.
// This is a pure function - no I/O, no side effects.
//
// A descriptor without a "services" key declares no services and yields an
// empty set. Only the key set is consumed; service bodies are checked by
// compose-go for shape but are otherwise ignored. Keys follow YAML 1.1
// loader rules: "<<" merges are expanded, a repeated key keeps its first
// position, and non-string keys are used in their text form.
func ParseServiceNames(yamlContent string) (ServiceSet, error) {
	if strings.TrimSpace(yamlContent) == "" {
		return nil, ErrEmptyInput
	}

	root, err := parseRoot(yamlContent)
	if err != nil {
		return nil, err
	}

	rootEntries, err := mappingEntries(root, "")
	if err != nil {
		return nil, err
	}

	services := lookupEntry(rootEntries, "services")
	if services == nil {
		return ServiceSet{}, nil
	}
	services = resolveAlias(services)
	if services.Kind != yaml.MappingNode {
		return nil, NewParseError("services", "services must be a mapping", ErrInvalidServices)
	}

	serviceEntries, err := mappingEntries(services, "services")
	if err != nil {
		return nil, err
	}
	if len(serviceEntries) == 0 {
		return ServiceSet{}, nil
	}

	dict, err := composeDict(rootEntries, serviceEntries)
	if err != nil {
		return nil, err
	}
	project, err := loadComposeProject(dict)
	if err != nil {
		return nil, err
	}

	names := make(ServiceSet, 0, len(serviceEntries))
	for _, e := range serviceEntries {
		if !projectDeclares(project, e.key) {
			return nil, NewParseError("services."+e.key, "service not recognized by compose loader", ErrInvalidCompose)
		}
		names = append(names, e.key)
	}
	return names, nil
}

// parseRoot returns the top-level mapping node of the document.
func parseRoot(yamlContent string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(yamlContent), &doc); err != nil {
		return nil, NewParseError("", "invalid YAML syntax: "+err.Error(), ErrInvalidYAML)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptyInput
	}

	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, NewParseError("", "compose descriptor must be a mapping", ErrNotMapping)
	}
	return root, nil
}

// =============================================================================
// Mapping Helpers
// =============================================================================

// entry is one key of a flattened mapping.
type entry struct {
	key   string
	value *yaml.Node
}

// mappingEntries flattens a mapping node the way a YAML 1.1 loader builds a
// dict: merged keys come first, explicit keys after, and a repeated key keeps
// its first position while taking its last value.
func mappingEntries(mapping *yaml.Node, field string) ([]entry, error) {
	var merged, explicit []entry
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		if !isMergeKey(key) {
			explicit = append(explicit, entry{key: key.Value, value: value})
			continue
		}

		sources, err := mergeSources(value, field)
		if err != nil {
			return nil, err
		}
		// Earlier sources win, so they are applied last.
		for j := len(sources) - 1; j >= 0; j-- {
			inner, err := mappingEntries(sources[j], field)
			if err != nil {
				return nil, err
			}
			merged = append(merged, inner...)
		}
	}
	return dedupeEntries(append(merged, explicit...)), nil
}

func isMergeKey(key *yaml.Node) bool {
	if key.Kind != yaml.ScalarNode || key.Value != "<<" {
		return false
	}
	return key.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) == 0
}

// mergeSources returns the mappings referenced by a "<<" value.
func mergeSources(value *yaml.Node, field string) ([]*yaml.Node, error) {
	value = resolveAlias(value)
	switch value.Kind {
	case yaml.MappingNode:
		return []*yaml.Node{value}, nil
	case yaml.SequenceNode:
		sources := make([]*yaml.Node, 0, len(value.Content))
		for _, item := range value.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.MappingNode {
				return nil, NewParseError(field, "merge sources must be mappings", ErrInvalidYAML)
			}
			sources = append(sources, item)
		}
		return sources, nil
	default:
		return nil, NewParseError(field, "merge value must be a mapping", ErrInvalidYAML)
	}
}

func dedupeEntries(entries []entry) []entry {
	index := make(map[string]int, len(entries))
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		if i, ok := index[e.key]; ok {
			out[i].value = e.value
			continue
		}
		index[e.key] = len(out)
		out = append(out, e)
	}
	return out
}

func lookupEntry(entries []entry, key string) *yaml.Node {
	for _, e := range entries {
		if e.key == key {
			return e.value
		}
	}
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	n = resolveAlias(n)
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// =============================================================================
// compose-go Loading
// =============================================================================

// composeDict builds the document compose-go sees. Service keys are the
// flattened string keys and a null service body becomes an empty mapping.
func composeDict(rootEntries, serviceEntries []entry) (map[string]interface{}, error) {
	services := make(map[string]interface{}, len(serviceEntries))
	for _, e := range serviceEntries {
		if isNull(e.value) {
			services[e.key] = map[string]interface{}{}
			continue
		}
		var body interface{}
		if err := e.value.Decode(&body); err != nil {
			return nil, NewParseError("services."+e.key, "invalid YAML syntax: "+err.Error(), ErrInvalidYAML)
		}
		services[e.key] = body
	}

	dict := make(map[string]interface{}, len(rootEntries))
	for _, e := range rootEntries {
		if e.key == "services" {
			dict[e.key] = services
			continue
		}
		var value interface{}
		if err := e.value.Decode(&value); err != nil {
			return nil, NewParseError(e.key, "invalid YAML syntax: "+err.Error(), ErrInvalidYAML)
		}
		dict[e.key] = value
	}
	return dict, nil
}

// loadComposeProject loads the descriptor with compose-go. Validation,
// interpolation and anything that would touch the filesystem are skipped.
// A panic inside the loader is reported as an invalid descriptor.
func loadComposeProject(dict map[string]interface{}) (project *types.Project, err error) {
	content, err := yaml.Marshal(dict)
	if err != nil {
		return nil, NewParseError("", "encode descriptor: "+err.Error(), ErrInvalidCompose)
	}

	defer func() {
		if r := recover(); r != nil {
			project = nil
			err = NewParseError("", fmt.Sprintf("compose load failed: %v", r), ErrInvalidCompose)
		}
	}()

	project, err = loader.LoadWithContext(context.Background(), types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: content,
				Config:  dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName(loadProjectName, false)
		opts.SkipValidation = true
		opts.SkipConsistencyCheck = true
		opts.SkipInterpolation = true
		opts.SkipNormalization = true
		opts.SkipResolveEnvironment = true
		opts.SkipExtends = true
		opts.SkipInclude = true
		// Services behind profiles still count as declared.
		opts.Profiles = []string{"*"}
	})
	if err != nil {
		return nil, NewParseError("", fmt.Sprintf("compose load failed: %v", err), ErrInvalidCompose)
	}
	return project, nil
}

func projectDeclares(project *types.Project, name string) bool {
	if _, ok := project.Services[name]; ok {
		return true
	}
	_, ok := project.DisabledServices[name]
	return ok
}
