package module

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/dockstate/internal/core/reconcile"
)

// =============================================================================
// check-running Params Tests
// =============================================================================

func TestDecodeCheckRunningParams_JSON(t *testing.T) {
	params, err := DecodeCheckRunningParams([]byte(`{"path":"/srv/shop","project_name":"shop"}`))
	require.NoError(t, err)

	assert.Equal(t, "/srv/shop", params.Path)
	assert.Equal(t, "shop", params.ProjectName)
}

func TestDecodeCheckRunningParams_YAML(t *testing.T) {
	params, err := DecodeCheckRunningParams([]byte("path: /srv/shop\nproject_name: shop\n"))
	require.NoError(t, err)

	assert.Equal(t, "/srv/shop", params.Path)
	assert.Equal(t, "shop", params.ProjectName)
}

func TestDecodeCheckRunningParams_AnsibleEnvelope(t *testing.T) {
	raw := `{"ANSIBLE_MODULE_ARGS":{"path":"/srv","project_name":"shop","_ansible_check_mode":true,"_ansible_verbosity":0}}`

	params, err := DecodeCheckRunningParams([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "/srv", params.Path)
	assert.Equal(t, "shop", params.ProjectName)
}

func TestDecodeCheckRunningParams_MissingProjectName(t *testing.T) {
	_, err := DecodeCheckRunningParams([]byte(`{"path":"/srv"}`))
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrInvalidParams))
	assert.Equal(t, reconcile.KindInvalidInput, reconcile.KindOf(err))
	assert.Contains(t, err.Error(), "project_name")
}

func TestDecodeCheckRunningParams_EmptyProjectName(t *testing.T) {
	_, err := DecodeCheckRunningParams([]byte(`{"path":"/srv","project_name":""}`))
	assert.True(t, errors.Is(err, ErrInvalidParams))
}

func TestDecodeCheckRunningParams_UnsupportedParam(t *testing.T) {
	_, err := DecodeCheckRunningParams([]byte(`{"path":"/srv","project_name":"shop","force":true}`))
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrInvalidParams))
	assert.Contains(t, err.Error(), "force")
}

func TestDecodeCheckRunningParams_Empty(t *testing.T) {
	_, err := DecodeCheckRunningParams([]byte("  \n"))

	assert.True(t, errors.Is(err, ErrEmptyParams))
	assert.Equal(t, reconcile.KindInvalidInput, reconcile.KindOf(err))
}

func TestDecodeCheckRunningParams_NotObject(t *testing.T) {
	_, err := DecodeCheckRunningParams([]byte(`["path"]`))
	require.Error(t, err)

	assert.Contains(t, err.Error(), "params must be an object")
}

func TestDecodeCheckRunningParams_EnvelopeNotObject(t *testing.T) {
	_, err := DecodeCheckRunningParams([]byte(`{"ANSIBLE_MODULE_ARGS":"nope"}`))
	require.Error(t, err)

	assert.Contains(t, err.Error(), "ANSIBLE_MODULE_ARGS must be an object")
}

// =============================================================================
// image-plan Params Tests
// =============================================================================

func TestDecodeImagePlanParams(t *testing.T) {
	raw := `{"images":{"web":{"name":"nginx","tag":"1.25"},"cache":{"name":"redis"}}}`

	params, err := DecodeImagePlanParams([]byte(raw))
	require.NoError(t, err)

	requests := params.Requests()
	assert.Equal(t, reconcile.ImageRequest{Name: "nginx", Tag: "1.25"}, requests["web"])
	assert.Equal(t, reconcile.ImageRequest{Name: "redis"}, requests["cache"])
	assert.Equal(t, "redis:latest", requests["cache"].FullyQualified())
}

func TestDecodeImagePlanParams_NumericAndNullTags(t *testing.T) {
	raw := "images:\n  db:\n    name: postgres\n    tag: 15\n  app:\n    name: app\n    tag: null\n"

	params, err := DecodeImagePlanParams([]byte(raw))
	require.NoError(t, err)

	requests := params.Requests()
	assert.Equal(t, "postgres:15", requests["db"].FullyQualified())
	assert.Equal(t, "app:latest", requests["app"].FullyQualified())
}

func TestDecodeImagePlanParams_ExtraImageKeysIgnored(t *testing.T) {
	raw := `{"images":{"web":{"name":"nginx","pull_policy":"always"}}}`

	params, err := DecodeImagePlanParams([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "nginx", params.Images["web"].Name)
}

func TestDecodeImagePlanParams_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing images", `{}`},
		{"empty images", `{"images":{}}`},
		{"images not object", `{"images":["nginx"]}`},
		{"missing name", `{"images":{"web":{"tag":"1"}}}`},
		{"empty name", `{"images":{"web":{"name":""}}}`},
		{"boolean tag", `{"images":{"web":{"name":"nginx","tag":true}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeImagePlanParams([]byte(tt.raw))
			assert.True(t, errors.Is(err, ErrInvalidParams))
		})
	}
}

// =============================================================================
// Envelope Tests
// =============================================================================

func TestNewFailure(t *testing.T) {
	f := NewFailure(CommandImagePlan, ErrCodeRuntime, PlanFailureMessage, "trace")

	assert.True(t, f.Failed)
	assert.Equal(t, "image-plan", f.Command)
	assert.Equal(t, ErrCodeRuntime, f.Code)
	assert.Equal(t, "Failed to retrieve Docker image tags.", f.Msg)
	assert.Equal(t, "trace", f.Detail)
}

func TestCodeFor(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, CodeFor(reconcile.KindNotFound))
	assert.Equal(t, ErrCodeInvalidInput, CodeFor(reconcile.KindInvalidInput))
	assert.Equal(t, ErrCodeRuntime, CodeFor(reconcile.KindRuntime))
	assert.Equal(t, ErrCodeRuntime, CodeFor(reconcile.KindDescriptor))
	assert.Equal(t, ErrCodeInternal, CodeFor(""))
}

func TestResults(t *testing.T) {
	r := NewCheckRunningResult(true)
	assert.False(t, r.Changed)
	assert.True(t, r.AnyContainerRunning)

	plan := reconcile.Plan{"a": {ToPull: []string{"web:v2"}, ToRemove: []string{}}}
	p := NewImagePlanResult(plan)
	assert.False(t, p.Changed)
	assert.Equal(t, plan, p.Plans)
}
