package reconcile

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := NewError(KindRuntime, "ListContainers", "connection refused", nil)
	assert.Equal(t, "ListContainers: connection refused", err.Error())

	err = NewError(KindNotFound, "", DescriptorNotFoundMessage, nil)
	assert.Equal(t, DescriptorNotFoundMessage, err.Error())
}

func TestError_IsKindSentinel(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(KindRuntime, "ListImageTags", "boom", cause)

	assert.ErrorIs(t, err, ErrRuntime)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrDescriptorNotFound)
}

func TestError_Public(t *testing.T) {
	assert.Equal(t, KindRuntime, NewError(KindDescriptor, "", "bad yaml", nil).Public())
	assert.Equal(t, KindRuntime, NewError(KindRuntime, "", "down", nil).Public())
	assert.Equal(t, KindNotFound, NewError(KindNotFound, "", "missing", nil).Public())
	assert.Equal(t, KindInvalidInput, NewError(KindInvalidInput, "", "bad", nil).Public())
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("check: %w", NewError(KindNotFound, "", DescriptorNotFoundMessage, ErrDescriptorNotFound))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsRuntime(err))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}
