// Package level describes level packages: the textures a package ships and
// the levels built from them.
//
// A package lives in its own directory under the packages root and is
// described by an info file in yaml, json or toml.
package level

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
)

// Vec is a 2D vector stored as a two-element list.
type Vec [2]float64

// R2 converts to a gonum vector.
func (v Vec) R2() r2.Vec {
	return r2.Vec{X: v[0], Y: v[1]}
}

// Package is a named set of levels sharing a texture list. Each texture is a
// list of images forming one texture array.
type Package struct {
	Name     string     `yaml:"name" toml:"name"`
	Textures [][]string `yaml:"textures" toml:"textures"`
	Levels   []Level    `yaml:"levels" toml:"levels"`

	Dir string `yaml:"-" toml:"-"` // Directory the package was loaded from
}

// Level is one playable scene.
type Level struct {
	Dimension       Vec            `yaml:"dimension" toml:"dimension"`
	AvailableMorphs map[string]int `yaml:"available_morphs" toml:"available_morphs"`
	Morph           Morph          `yaml:"morph" toml:"morph"`
	Target          Target         `yaml:"target" toml:"target"`
	Objects         []Object       `yaml:"objects" toml:"objects"`
}

// Morph is the start of the player body.
type Morph struct {
	Position Vec                   `yaml:"position" toml:"position"`
	State    components.MorphState `yaml:"state" toml:"state"`
	Layer    uint8                 `yaml:"layer" toml:"layer"`
}

// Target is the portal the morph has to reach.
type Target struct {
	Position Vec   `yaml:"position" toml:"position"`
	Layer    uint8 `yaml:"layer" toml:"layer"`
}

// Object is a piece of level geometry.
type Object struct {
	Position    Vec             `yaml:"position" toml:"position"`
	Size        Vec             `yaml:"size" toml:"size"`
	Rotation    float64         `yaml:"rotation" toml:"rotation"`
	Role        components.Role `yaml:"role" toml:"role"`
	Texture     *int            `yaml:"texture" toml:"texture"` // Negative or absent: not drawn
	TextureInfo *TextureInfo    `yaml:"texture_info" toml:"texture_info"`
	Block       *Block          `yaml:"block" toml:"block"`
	Accelerator *Accelerator    `yaml:"accelerator" toml:"accelerator"`
	Breakable   *Breakable      `yaml:"breakable" toml:"breakable"`
}

// TextureIndex returns the package texture drawn for the object.
func (o *Object) TextureIndex() (int, bool) {
	if o.Texture == nil || *o.Texture < 0 {
		return 0, false
	}
	return *o.Texture, true
}

// TextureInfo places a textured object in depth and animates it.
type TextureInfo struct {
	Layer     uint8            `yaml:"layer" toml:"layer"`
	Plane     components.Plane `yaml:"plane" toml:"plane"`
	Animation float64          `yaml:"animation" toml:"animation"` // Seconds per texture cycle; 0 is static
}

// Block lists the particle textures a block emits.
type Block struct {
	Particles []int `yaml:"particles" toml:"particles"`
}

// Accelerator pushes the enabled morph states along Direction.
type Accelerator struct {
	Direction components.Direction `yaml:"direction" toml:"direction"`
	Amplitude float64              `yaml:"amplitude" toml:"amplitude"`
	Morph     map[string]bool      `yaml:"morph" toml:"morph"`
}

// Force returns the acceleration applied to intersecting morphs.
func (a *Accelerator) Force() r2.Vec {
	return r2.Scale(a.Amplitude, a.Direction.Vec())
}

// Enabled returns the morph states the accelerator affects.
func (a *Accelerator) Enabled() ([]components.MorphState, error) {
	return enabledStates(a.Morph)
}

// Breakable groups objects that shatter together.
type Breakable struct {
	Group int `yaml:"group" toml:"group"`
}

// Morphs returns how often the player may switch to each state.
func (l *Level) Morphs() (map[components.MorphState]int, error) {
	out := make(map[components.MorphState]int, len(l.AvailableMorphs))
	for name, n := range l.AvailableMorphs {
		s, err := components.ParseMorphState(name)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: %s count %d", ErrInvalidValue, name, n)
		}
		out[s] = n
	}
	return out, nil
}

func enabledStates(m map[string]bool) ([]components.MorphState, error) {
	var out []components.MorphState
	for name, on := range m {
		s, err := components.ParseMorphState(name)
		if err != nil {
			return nil, err
		}
		if on {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
