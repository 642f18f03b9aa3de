package reconcile

// =============================================================================
// Service Liveness
// =============================================================================

// IsRunning reports whether the observation is in the running state.
func (o ContainerObservation) IsRunning() bool {
	return o.Status == ContainerStatusRunning
}

// AnyRunning reports whether at least one observed container is running.
// An empty observation set is not running.
func AnyRunning(observations []ContainerObservation) bool {
	for _, o := range observations {
		if o.IsRunning() {
			return true
		}
	}
	return false
}
