package reconcile

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/distribution/reference"
)

// =============================================================================
// Match Policy
// =============================================================================

// MatchPolicy decides which local tags belong to a requested image name.
type MatchPolicy string

const (
	// MatchRepository compares normalized repository names, so "app" owns
	// "app:1" and "docker.io/library/app:1" but not "app-worker:1".
	MatchRepository MatchPolicy = "repository"

	// MatchPrefix owns every tag string that starts with the name.
	// "app" also owns "app-worker:1". Kept for compatibility.
	MatchPrefix MatchPolicy = "prefix"

	// MatchPrefixBoundary owns tag strings that start with "name:".
	MatchPrefixBoundary MatchPolicy = "prefix-boundary"
)

// ParseMatchPolicy converts a configuration value into a MatchPolicy.
// An empty value selects MatchRepository.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch MatchPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchRepository:
		return MatchRepository, nil
	case MatchPrefix:
		return MatchPrefix, nil
	case MatchPrefixBoundary:
		return MatchPrefixBoundary, nil
	default:
		return "", NewError(KindInvalidInput, "ParseMatchPolicy",
			fmt.Sprintf("unknown match policy %q", s), ErrInvalidInput)
	}
}

// =============================================================================
// Plan Builder
// =============================================================================

// BuildImagePlan computes, for every requested identifier, which tags to pull
// and which to remove so that local images converge to the request.
//
// For each identifier the inventory is filtered to the tags owned by the
// requested name (see MatchPolicy). The desired "name:tag" is pulled when it
// is not among them; every other owned tag is removed. Identifiers are
// computed independently, so two identifiers for the same name never remove
// their own desired tag.
//
// This is a pure function: it never pulls or removes anything.
//
// Example:
//
//	plan, _ := BuildImagePlan(
//	    ImageRequests{"a": {Name: "web", Tag: "v2"}},
//	    ImageTagInventory{"web:v1", "web:v2", "other:v1"},
//	    MatchRepository,
//	)
//	// plan["a"] == Actions{ToPull: []string{}, ToRemove: []string{"web:v1"}}
func BuildImagePlan(requests ImageRequests, inventory ImageTagInventory, policy MatchPolicy) (Plan, error) {
	if len(requests) == 0 {
		return nil, NewError(KindInvalidInput, "BuildImagePlan", "at least one image is required", ErrInvalidInput)
	}
	if policy == "" {
		policy = MatchRepository
	}

	entries := indexInventory(inventory, policy)

	plan := make(Plan, len(requests))
	for _, id := range slices.Sorted(maps.Keys(requests)) {
		m, err := newImageMatcher(id, requests[id], policy)
		if err != nil {
			return nil, err
		}
		plan[id] = m.actions(entries)
	}
	return plan, nil
}

// inventoryEntry is a local tag with its normalized forms precomputed.
type inventoryEntry struct {
	raw  string
	repo string // familiar repository name, "" when unparseable
	key  string // familiar name:tag, "" when unparseable
}

func indexInventory(inventory ImageTagInventory, policy MatchPolicy) []inventoryEntry {
	entries := make([]inventoryEntry, 0, len(inventory))
	for _, tag := range inventory {
		e := inventoryEntry{raw: tag}
		if policy == MatchRepository {
			if named, err := reference.ParseNormalizedNamed(tag); err == nil {
				e.repo = reference.FamiliarName(named)
				e.key = reference.FamiliarString(named)
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// imageMatcher answers ownership questions for one request.
type imageMatcher struct {
	policy     MatchPolicy
	name       string
	desired    string // fully qualified, verbatim as requested
	repo       string // normalized repository (MatchRepository only)
	desiredKey string // normalized desired reference (MatchRepository only)
}

func newImageMatcher(id string, req ImageRequest, policy MatchPolicy) (*imageMatcher, error) {
	field := "images." + id
	if strings.TrimSpace(req.Name) == "" {
		return nil, NewError(KindInvalidInput, field, "image name is required", ErrInvalidInput)
	}

	m := &imageMatcher{
		policy:  policy,
		name:    req.Name,
		desired: req.FullyQualified(),
	}

	switch policy {
	case MatchPrefix, MatchPrefixBoundary:
		return m, nil
	case MatchRepository:
	default:
		return nil, NewError(KindInvalidInput, field, fmt.Sprintf("unknown match policy %q", policy), ErrInvalidInput)
	}

	named, err := reference.ParseNormalizedNamed(req.Name)
	if err != nil {
		return nil, NewError(KindInvalidInput, field+".name", fmt.Sprintf("invalid image name %q: %v", req.Name, err), ErrInvalidInput)
	}
	if !reference.IsNameOnly(named) {
		return nil, NewError(KindInvalidInput, field+".name", fmt.Sprintf("image name %q must not carry a tag or digest", req.Name), ErrInvalidInput)
	}
	desired, err := reference.ParseNormalizedNamed(m.desired)
	if err != nil {
		return nil, NewError(KindInvalidInput, field+".tag", fmt.Sprintf("invalid image tag %q: %v", req.ResolvedTag(), err), ErrInvalidInput)
	}

	m.repo = reference.FamiliarName(named)
	m.desiredKey = reference.FamiliarString(desired)
	return m, nil
}

func (m *imageMatcher) owns(e inventoryEntry) bool {
	switch m.policy {
	case MatchPrefix:
		return strings.HasPrefix(e.raw, m.name)
	case MatchPrefixBoundary:
		return strings.HasPrefix(e.raw, m.name+":")
	default:
		return e.repo != "" && e.repo == m.repo
	}
}

func (m *imageMatcher) isDesired(e inventoryEntry) bool {
	if e.raw == m.desired {
		return true
	}
	return m.policy == MatchRepository && e.key != "" && e.key == m.desiredKey
}

func (m *imageMatcher) actions(entries []inventoryEntry) Actions {
	a := Actions{ToPull: []string{}, ToRemove: []string{}}
	present := false
	for _, e := range entries {
		if !m.owns(e) {
			continue
		}
		if m.isDesired(e) {
			present = true
			continue
		}
		a.ToRemove = append(a.ToRemove, e.raw)
	}
	if !present {
		a.ToPull = append(a.ToPull, m.desired)
	}
	return a
}
