package reconcile

import "fmt"

// ContainerFilter generates the container name filter for a service in a project.
// Pattern: {project}_{service}
//
// Example:
//
//	ContainerFilter("shop", "web") // returns "shop_web"
func ContainerFilter(project, service string) string {
	return fmt.Sprintf("%s_%s", project, service)
}
