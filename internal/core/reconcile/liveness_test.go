package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// AnyRunning Tests
// =============================================================================

func TestAnyRunning_Empty(t *testing.T) {
	assert.False(t, AnyRunning(nil))
	assert.False(t, AnyRunning([]ContainerObservation{}))
}

func TestAnyRunning_OneRunning(t *testing.T) {
	observations := []ContainerObservation{
		{Name: "shop_web_1", Status: ContainerStatusExited},
		{Name: "shop_web_2", Status: ContainerStatusRunning},
	}

	assert.True(t, AnyRunning(observations))
}

func TestAnyRunning_NoneRunning(t *testing.T) {
	observations := []ContainerObservation{
		{Name: "shop_web_1", Status: ContainerStatusExited},
		{Name: "shop_web_2", Status: ContainerStatusCreated},
		{Name: "shop_web_3", Status: ContainerStatusRestarting},
		{Name: "shop_web_4", Status: ContainerStatusPaused},
	}

	assert.False(t, AnyRunning(observations))
}
