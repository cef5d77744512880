// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Morph state keys used by the morph profile table.
const (
	StateMetal  = "metal"
	StateRubber = "rubber"
	StateWater  = "water"
	StateBubble = "bubble"
)

// MaxGroup is the highest physics group index a collision mask can hold.
const MaxGroup = 31

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig                  `yaml:"screen"`
	Sim       SimConfig                     `yaml:"sim"`
	Level     LevelConfig                   `yaml:"level"`
	Physic    PhysicConfig                  `yaml:"physic"`
	Morph     map[string]MorphProfileConfig `yaml:"morph"`
	Story     StoryConfig                   `yaml:"story"`
	Telemetry TelemetryConfig               `yaml:"telemetry"`
	Log       LogConfig                     `yaml:"log"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimConfig holds frame stepping parameters.
type SimConfig struct {
	DT           float64 `yaml:"dt"`             // Fixed frame time for headless runs
	MaxFrameTime float64 `yaml:"max_frame_time"` // Frame times above this are clamped
	Seed         int64   `yaml:"seed"`           // 0 = time-based
}

// LevelConfig holds scene construction parameters.
type LevelConfig struct {
	CameraZoom    float64     `yaml:"camera_zoom"`
	CameraFollow  float64     `yaml:"camera_follow"` // Retained fraction per frame (FollowLag)
	CameraSpeed   float64     `yaml:"camera_speed"`
	CameraDamping float64     `yaml:"camera_damping"`
	MorphSize     float64     `yaml:"morph_size"`
	TargetSize    float64     `yaml:"target_size"`
	Planes        PlaneConfig `yaml:"planes"`
	PackagesDir   string      `yaml:"packages_dir"`
}

// PlaneConfig holds render depth and parallax per plane.
type PlaneConfig struct {
	FarLayer     float64 `yaml:"far_layer"`
	MidLayer     float64 `yaml:"mid_layer"`
	ViewLayer    float64 `yaml:"view_layer"`
	NearLayer    float64 `yaml:"near_layer"`
	FarParallax  float64 `yaml:"far_parallax"`
	MidParallax  float64 `yaml:"mid_parallax"`
	ViewParallax float64 `yaml:"view_parallax"`
	NearParallax float64 `yaml:"near_parallax"`
}

// PhysicConfig holds collision groups and gameplay physics thresholds.
type PhysicConfig struct {
	GroupMetal       int     `yaml:"group_metal"`
	GroupRubber      int     `yaml:"group_rubber"`
	GroupWater       int     `yaml:"group_water"`
	GroupBubble      int     `yaml:"group_bubble"`
	GroupObject      int     `yaml:"group_object"`
	GroupParticle    int     `yaml:"group_particle"`
	GridMaxVelocity  float64 `yaml:"grid_max_velocity"`
	BreakImpulse     float64 `yaml:"break_impulse"`
	Iterations       int     `yaml:"iterations"`
	ContactRetention float64 `yaml:"contact_retention"` // Seconds a Contact tag survives
}

// MorphProfileConfig holds the physics profile of one morph state.
type MorphProfileConfig struct {
	AirFriction        float64 `yaml:"air_friction"`
	GroundFriction     float64 `yaml:"ground_friction"`
	Gravity            float64 `yaml:"gravity"`
	AngularInertia     float64 `yaml:"angular_inertia"`
	Mass               float64 `yaml:"mass"`
	Bounce             float64 `yaml:"bounce"`
	MaxVelocity        float64 `yaml:"max_velocity"`
	MaxAngularVelocity float64 `yaml:"max_angular_velocity"`
	AngularDamping     float64 `yaml:"angular_damping"`
}

// StoryConfig holds gameplay reaction timings.
type StoryConfig struct {
	FinishSpringStiffness float64 `yaml:"finish_spring_stiffness"`
	FinishSpringDamping   float64 `yaml:"finish_spring_damping"`
	SuccessDelay          float64 `yaml:"success_delay"`
	BubbleBurstDelay      float64 `yaml:"bubble_burst_delay"`
	RubberBurstDelay      float64 `yaml:"rubber_burst_delay"`
	OutsideDelay          float64 `yaml:"outside_delay"`
	DebrisLifetime        float64 `yaml:"debris_lifetime"`
	DebrisFadeDelay       float64 `yaml:"debris_fade_delay"`
	DebrisFadeDuration    float64 `yaml:"debris_fade_duration"`
	MorphEffectDuration   float64 `yaml:"morph_effect_duration"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfCollectorWindow int    `yaml:"perf_collector_window"`
	FrameInterval       int    `yaml:"frame_interval"` // Write a frame record every N frames
	OutputDir           string `yaml:"output_dir"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ObjectMask uint // Bit mask of the object group
	MorphMask  uint // Bit mask of all four morph groups
	States     []string
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks ranges that the simulation relies on.
func (c *Config) Validate() error {
	groups := map[string]int{
		"group_metal":    c.Physic.GroupMetal,
		"group_rubber":   c.Physic.GroupRubber,
		"group_water":    c.Physic.GroupWater,
		"group_bubble":   c.Physic.GroupBubble,
		"group_object":   c.Physic.GroupObject,
		"group_particle": c.Physic.GroupParticle,
	}
	for name, g := range groups {
		if g < 0 || g > MaxGroup {
			return fmt.Errorf("physic.%s: %d out of range [0, %d]", name, g, MaxGroup)
		}
	}
	if c.Level.MorphSize <= 0 {
		return fmt.Errorf("level.morph_size must be positive, got %g", c.Level.MorphSize)
	}
	if c.Level.TargetSize <= 0 {
		return fmt.Errorf("level.target_size must be positive, got %g", c.Level.TargetSize)
	}
	for _, state := range []string{StateMetal, StateRubber, StateWater, StateBubble} {
		if _, ok := c.Morph[state]; !ok {
			return fmt.Errorf("morph.%s: missing profile", state)
		}
	}
	for state := range c.Morph {
		switch state {
		case StateMetal, StateRubber, StateWater, StateBubble:
		default:
			return fmt.Errorf("morph.%s: unknown morph state", state)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ObjectMask = 1 << uint(c.Physic.GroupObject)
	c.Derived.MorphMask = 1<<uint(c.Physic.GroupMetal) |
		1<<uint(c.Physic.GroupRubber) |
		1<<uint(c.Physic.GroupWater) |
		1<<uint(c.Physic.GroupBubble)
	c.Derived.States = []string{StateMetal, StateRubber, StateWater, StateBubble}
	if c.Sim.MaxFrameTime <= 0 {
		c.Sim.MaxFrameTime = 0.1
	}
	if c.Physic.Iterations <= 0 {
		c.Physic.Iterations = 10
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
