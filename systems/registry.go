package systems

// SystemInfo describes a simulation system for UI display.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping (e.g., "physics", "story", "engine")
}

// SystemRegistry holds metadata about all systems.
// This centralizes system naming so the UI and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known systems to the registry in frame order.
// Update this when adding new systems.
func (r *SystemRegistry) registerDefaults() {
	// External events
	r.Register(SystemInfo{ID: "input_morph", Name: "Input Morph", Description: "Starts the morph and applies state changes", Category: "input"})
	r.Register(SystemInfo{ID: "input_camera", Name: "Input Camera", Description: "Attaches and moves the camera", Category: "input"})

	// Physics synchronization
	r.Register(SystemInfo{ID: "physic_sync", Name: "Physic Sync", Description: "Admits and evicts bodies", Category: "physics"})
	r.Register(SystemInfo{ID: "physic_force", Name: "Physic Force", Description: "Integrates gravity and acceleration", Category: "physics"})
	r.Register(SystemInfo{ID: "physic_read", Name: "Physic Read", Description: "Pushes components into the engine", Category: "physics"})
	r.Register(SystemInfo{ID: "physic_update", Name: "Physic Update", Description: "Steps the engine", Category: "physics"})
	r.Register(SystemInfo{ID: "physic_follow", Name: "Physic Follow", Description: "Moves followers towards their target", Category: "physics"})
	r.Register(SystemInfo{ID: "physic_interaction", Name: "Physic Interaction", Description: "Rebuilds interaction records", Category: "physics"})
	r.Register(SystemInfo{ID: "physic_write", Name: "Physic Write", Description: "Pulls simulated state into components", Category: "physics"})

	// Gameplay
	r.Register(SystemInfo{ID: "story_interaction", Name: "Story Interaction", Description: "Classifies interactions into gameplay tags", Category: "story"})
	r.Register(SystemInfo{ID: "story_object", Name: "Story Object", Description: "Shatters breakable groups", Category: "story"})
	r.Register(SystemInfo{ID: "story_morph", Name: "Story Morph", Description: "Reacts to morph gameplay tags", Category: "story"})
	r.Register(SystemInfo{ID: "story_morph_animation", Name: "Morph Animation", Description: "Morph effects and face", Category: "visual"})
	r.Register(SystemInfo{ID: "story_object_animation", Name: "Object Animation", Description: "Debris fade out", Category: "visual"})

	// Engine
	r.Register(SystemInfo{ID: "animation", Name: "Animation", Description: "Samples and advances animations", Category: "engine"})
	r.Register(SystemInfo{ID: "lifetime", Name: "Lifetime", Description: "Expires entities and deferred mutations", Category: "engine"})
	r.Register(SystemInfo{ID: "output", Name: "Output", Description: "Derives the scene result", Category: "engine"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns system info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a system ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered systems.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns systems filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories.
func (r *SystemRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.systems {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// IDs returns all system IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
