// Package graph holds the canvas graph model exchanged with the compose engine: services,
// volumes and networks, the connections between them, and their canvas positions.
package graph

// NodeKind identifies what a canvas node draws
type NodeKind string

const (
	KindService NodeKind = "SERVICE"
	KindVolume  NodeKind = "VOLUME"
	KindNetwork NodeKind = "NETWORK"
)

// ReservedKeyLabel is the service label whose value is a secondary address for connections.
// It never reaches the generated compose labels.
const ReservedKeyLabel = "key"

// KeyValue is a single ordered label/environment entry. Unset marks an entry without a
// value (`KEY:` or a bare `KEY`), which compose passes through from the host environment.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Unset bool   `json:"unset,omitempty"`
}

// KeyValues is an ordered list of key/value entries
type KeyValues []KeyValue

// Get returns the value of the first entry with the given key
func (kv KeyValues) Get(key string) (string, bool) {
	for _, entry := range kv {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return "", false
}

// Without returns a copy without the entries matching key
func (kv KeyValues) Without(key string) KeyValues {
	var out KeyValues
	for _, entry := range kv {
		if entry.Key != key {
			out = append(out, entry)
		}
	}
	return out
}

// Port is a published port of a service
type Port struct {
	Published Scalar `json:"published"`
	Target    Scalar `json:"target,omitempty"`
	Protocol  string `json:"protocol,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

// VolumeMount mounts either a top-level volume (by uuid) or a host path into a service
type VolumeMount struct {
	Volume             string `json:"volume,omitempty"`
	RelativePathSource string `json:"relativePathSource,omitempty"`
	Destination        string `json:"destination,omitempty"`
	Mode               string `json:"mode,omitempty"`
}

// BuildSpec describes how a service image is built.
// A build given as a plain string is kept in Build.
type BuildSpec struct {
	Build      string         `json:"build,omitempty"`
	Context    string         `json:"context,omitempty"`
	Dockerfile string         `json:"dockerfile,omitempty"`
	Args       KeyValues      `json:"args,omitempty"`
	CacheFrom  StringList     `json:"cache_from,omitempty"`
	Labels     KeyValues      `json:"labels,omitempty"`
	Network    string         `json:"network,omitempty"`
	ShmSize    Scalar         `json:"shm_size,omitempty"`
	Target     string         `json:"target,omitempty"`
	Extra      map[string]any `json:"-"`
}

// ServiceSpec is a service node of the graph
type ServiceSpec struct {
	UUID          string         `json:"uuid" validate:"required"`
	Name          string         `json:"name" validate:"required"`
	Image         string         `json:"image,omitempty"`
	Tag           string         `json:"tag,omitempty"`
	Build         *BuildSpec     `json:"build,omitempty"`
	Command       *Command       `json:"command,omitempty"`
	Entrypoint    *Command       `json:"entrypoint,omitempty"`
	Environment   KeyValues      `json:"environment,omitempty"`
	EnvFile       StringList     `json:"env_file,omitempty"`
	Labels        KeyValues      `json:"labels,omitempty"`
	Ports         []Port         `json:"ports,omitempty"`
	VolumeMounts  []VolumeMount  `json:"volumes,omitempty"`
	NetworkRefs   []string       `json:"networks,omitempty"`
	DependsOn     []string       `json:"depends_on,omitempty"`
	Links         []string       `json:"links,omitempty"`
	Deploy        map[string]any `json:"deploy,omitempty"`
	Profiles      StringList     `json:"profiles,omitempty"`
	ContainerName string         `json:"container_name,omitempty"`
	Restart       string         `json:"restart,omitempty"`
	WorkingDir    string         `json:"working_dir,omitempty"`
}

// Tokens returns every identifier a connection may use to address the service:
// its uuid and, when set, the value of the reserved "key" label.
func (s ServiceSpec) Tokens() []string {
	tokens := []string{s.UUID}
	if key, ok := s.Labels.Get(ReservedKeyLabel); ok && key != "" && key != s.UUID {
		tokens = append(tokens, key)
	}
	return tokens
}

// VolumeSpec is a top-level volume
type VolumeSpec struct {
	UUID             string    `json:"uuid" validate:"required"`
	Name             string    `json:"name" validate:"required"`
	VolumeCustomName string    `json:"volume_name,omitempty"`
	Driver           string    `json:"driver,omitempty"`
	DriverOpts       KeyValues `json:"driver_opts,omitempty"`
	External         bool      `json:"external,omitempty"`
	ExternalName     string    `json:"external_name,omitempty"`
	Labels           KeyValues `json:"labels,omitempty"`
}

// NetworkSpec is a top-level network
type NetworkSpec struct {
	UUID         string    `json:"uuid" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	ObjectName   string    `json:"object_name,omitempty"`
	Driver       string    `json:"driver,omitempty"`
	DriverOpts   KeyValues `json:"driver_opts,omitempty"`
	External     bool      `json:"external,omitempty"`
	ExternalName string    `json:"external_name,omitempty"`
	Labels       KeyValues `json:"labels,omitempty"`
}

// Connection is an ordered (from, to) pair: from depends on, or mounts, to.
type Connection [2]string

// NewConnection builds a connection from one node to another
func NewConnection(from, to string) Connection {
	return Connection{from, to}
}

func (c Connection) From() string { return c[0] }
func (c Connection) To() string   { return c[1] }

// Position is a canvas coordinate
type Position struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

// CanvasNode places a service, volume or network on the canvas
type CanvasNode struct {
	UUID     string   `json:"uuid"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
}

// Viewport is the canvas pan/zoom state
type Viewport struct {
	Top   float64 `json:"top"`
	Left  float64 `json:"left"`
	Scale float64 `json:"scale"`
}

// DefaultViewport is the viewport of a fresh canvas
func DefaultViewport() Viewport {
	return Viewport{Top: 0, Left: 0, Scale: 1}
}

// Graph is the whole canvas model
type Graph struct {
	Version     string         `json:"version"`
	Services    []ServiceSpec  `json:"services" validate:"unique=Name,dive"`
	Volumes     []VolumeSpec   `json:"volumes" validate:"unique=Name,dive"`
	Networks    []NetworkSpec  `json:"networks" validate:"unique=Name,dive"`
	Secrets     map[string]any `json:"secrets,omitempty"`
	Configs     map[string]any `json:"configs,omitempty"`
	Connections []Connection   `json:"connections"`
	Canvas      []CanvasNode   `json:"canvas"`
	Viewport    Viewport       `json:"viewport"`
}

// New returns an empty graph with the default viewport
func New(version string) *Graph {
	return &Graph{
		Version:     version,
		Services:    []ServiceSpec{},
		Volumes:     []VolumeSpec{},
		Networks:    []NetworkSpec{},
		Connections: []Connection{},
		Canvas:      []CanvasNode{},
		Viewport:    DefaultViewport(),
	}
}

// ServiceByUUID looks a service up by uuid
func (g *Graph) ServiceByUUID(id string) (*ServiceSpec, bool) {
	for i := range g.Services {
		if g.Services[i].UUID == id {
			return &g.Services[i], true
		}
	}
	return nil, false
}

// ServiceByToken looks a service up by any of its addressing tokens
func (g *Graph) ServiceByToken(token string) (*ServiceSpec, bool) {
	for i := range g.Services {
		for _, t := range g.Services[i].Tokens() {
			if t == token {
				return &g.Services[i], true
			}
		}
	}
	return nil, false
}

// VolumeByUUID looks a volume up by uuid
func (g *Graph) VolumeByUUID(id string) (*VolumeSpec, bool) {
	for i := range g.Volumes {
		if g.Volumes[i].UUID == id {
			return &g.Volumes[i], true
		}
	}
	return nil, false
}

// NetworkByUUID looks a network up by uuid
func (g *Graph) NetworkByUUID(id string) (*NetworkSpec, bool) {
	for i := range g.Networks {
		if g.Networks[i].UUID == id {
			return &g.Networks[i], true
		}
	}
	return nil, false
}

// NodeName returns the name of the service, volume or network owning a canvas uuid
func (g *Graph) NodeName(id string) (string, NodeKind, bool) {
	if s, ok := g.ServiceByUUID(id); ok {
		return s.Name, KindService, true
	}
	if v, ok := g.VolumeByUUID(id); ok {
		return v.Name, KindVolume, true
	}
	if n, ok := g.NetworkByUUID(id); ok {
		return n.Name, KindNetwork, true
	}
	return "", "", false
}
