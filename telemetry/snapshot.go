package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 2

// Snapshot holds the complete simulation state for replay.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`

	WorldWidth  float32 `json:"world_width"`
	WorldHeight float32 `json:"world_height"`

	Frame     uint64     `json:"frame"`
	Time      float64    `json:"time"`
	NoiseMode string     `json:"noise_mode"`
	Params    ParamState `json:"params"`

	// Spawn stream positions, so spawns after a restore match the original run
	FieldSerial uint64 `json:"field_serial"`
	FieldDraws  uint64 `json:"field_draws"`
	SpawnDraws  uint64 `json:"spawn_draws"`

	Particles []ParticleState `json:"particles"`
	Fields    []FieldState    `json:"fields"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ParamState holds the live parameters a run may have changed since start.
type ParamState struct {
	RespawnRate float32 `json:"respawn_rate"`
	NoiseScale  float64 `json:"noise_scale"`
	NoiseSpeed  float64 `json:"noise_speed"`
	Zones       bool    `json:"zones"`

	Speed              float32 `json:"speed"`
	BackgroundStrength float32 `json:"background_strength"`
	ForceFieldStrength float32 `json:"force_field_strength"`
	Brownian           float32 `json:"brownian"`
	BrownianEnabled    bool    `json:"brownian_enabled"`
	Gravity            float32 `json:"gravity"`
	Swirl              float32 `json:"swirl"`
	Friction           float32 `json:"friction"`
	FlowBlend          float32 `json:"flow_blend"`
	DT                 float32 `json:"dt"`

	FieldCapacity int  `json:"field_capacity"`
	SpawnInterval int  `json:"spawn_interval"`
	ShowFields    bool `json:"show_fields"`

	Interaction         string  `json:"interaction"`
	InteractionStrength float32 `json:"interaction_strength"`
	Probes              int     `json:"probes"`
	ProbeSpread         float32 `json:"probe_spread"`
	CellSize            float32 `json:"cell_size"`

	MouseRadius   float32 `json:"mouse_radius"`
	MouseStrength float32 `json:"mouse_strength"`
	MouseMode     string  `json:"mouse_mode"`

	Fade        float32 `json:"fade"`
	PointSize   float32 `json:"point_size"`
	Opacity     float32 `json:"opacity"`
	ColorScheme int     `json:"color_scheme"`
}

// ParticleState holds one particle.
type ParticleState struct {
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
	VelX float32 `json:"vel_x"`
	VelY float32 `json:"vel_y"`
}

// FieldState holds one force field.
type FieldState struct {
	ID       uint64  `json:"id"`
	Type     uint8   `json:"type"`
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	VelX     float32 `json:"vel_x"`
	VelY     float32 `json:"vel_y"`
	Strength float32 `json:"strength"`
	Radius   float32 `json:"radius"`
	Rotation float32 `json:"rotation"`
	Seed     float64 `json:"seed"`
	Angle    float32 `json:"angle"`
	Life     int32   `json:"life"`
	MaxLife  int32   `json:"max_life"`
	Phase    float32 `json:"phase"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Frame)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Frame, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot %s: unsupported version %d", path, snapshot.Version)
	}
	if len(snapshot.Particles) == 0 {
		return nil, fmt.Errorf("snapshot %s: no particles", path)
	}

	return &snapshot, nil
}
