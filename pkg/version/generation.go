package version

// Generation is a docker-compose schema era
type Generation int

const (
	V1 Generation = iota + 1
	V2
	V3
	Latest
)

func (g Generation) String() string {
	switch g {
	case V1:
		return "1"
	case V2:
		return "2"
	case V3:
		return "3"
	case Latest:
		return "latest"
	}
	return "unknown"
}

// ServicesAtRoot reports whether services live at the document root instead of under "services"
func (g Generation) ServicesAtRoot() bool {
	return g == V1
}

// DependencyKey is the service key listing the services it depends on
func (g Generation) DependencyKey() string {
	switch g {
	case V1:
		return "links"
	default:
		return "depends_on"
	}
}

// SupportsLabels reports whether service and top-level labels are legal
func (g Generation) SupportsLabels() bool {
	switch g {
	case V2, V3, Latest:
		return true
	default:
		return false
	}
}

// SupportsNetworks reports whether service networks and the top-level networks section are legal
func (g Generation) SupportsNetworks() bool {
	switch g {
	case V2, V3, Latest:
		return true
	default:
		return false
	}
}

// SupportsBuildOptions reports whether build may be a mapping rather than a context string
func (g Generation) SupportsBuildOptions() bool {
	switch g {
	case V2, V3, Latest:
		return true
	default:
		return false
	}
}

// SupportsEnvFile reports whether env_file is emitted
func (g Generation) SupportsEnvFile() bool {
	switch g {
	case V2, V3, Latest:
		return true
	default:
		return false
	}
}

// SupportsDeploy reports whether the swarm deploy section is legal
func (g Generation) SupportsDeploy() bool {
	switch g {
	case V3, Latest:
		return true
	default:
		return false
	}
}

// SupportsProfiles reports whether service profiles are emitted
func (g Generation) SupportsProfiles() bool {
	switch g {
	case V3, Latest:
		return true
	default:
		return false
	}
}
