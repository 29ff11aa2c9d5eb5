package domain

import "strings"

// DeploymentMode decides whether raw verification codes may leave the service.
type DeploymentMode int

const (
	Production DeploymentMode = iota
	Development
)

// ParseDeploymentMode maps an ENVIRONMENT value to a mode. Anything other than
// "development" (or "dev") is treated as Production.
func ParseDeploymentMode(s string) DeploymentMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "development", "dev":
		return Development
	default:
		return Production
	}
}

func (m DeploymentMode) String() string {
	if m == Development {
		return "development"
	}
	return "production"
}
