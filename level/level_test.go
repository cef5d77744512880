package level

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
)

const introYAML = `
name: intro
textures:
  - [wall.png]
  - [spikes_0.png, spikes_1.png]
levels:
  - dimension: [20.0, 10.0]
    available_morphs: {Metal: 1, Rubber: 2}
    morph: {position: [0.0, 0.0], state: Rubber, layer: 1}
    target: {position: [5.0, 0.0], layer: 2}
    objects:
      - position: [0.0, -3.0]
        size: [10.0, 1.0]
        rotation: 0.0
        role: Block
        texture: 0
        texture_info: {layer: 1, plane: View, animation: 0.0}
      - position: [3.0, -2.0]
        size: [1.0, 1.0]
        role: Accelerator
        accelerator: {direction: Up, amplitude: 20.0, morph: {Bubble: true, Metal: false}}
`

const introJSON = `{
  "name": "intro",
  "textures": [["wall.png"], ["spikes_0.png", "spikes_1.png"]],
  "levels": [{
    "dimension": [20.0, 10.0],
    "available_morphs": {"Metal": 1, "Rubber": 2},
    "morph": {"position": [0.0, 0.0], "state": "Rubber", "layer": 1},
    "target": {"position": [5.0, 0.0], "layer": 2},
    "objects": [
      {"position": [0.0, -3.0], "size": [10.0, 1.0], "rotation": 0.0, "role": "Block",
       "texture": 0, "texture_info": {"layer": 1, "plane": "View", "animation": 0.0}},
      {"position": [3.0, -2.0], "size": [1.0, 1.0], "role": "Accelerator", "texture_info": null,
       "accelerator": {"direction": "Up", "amplitude": 20.0, "morph": {"Bubble": true, "Metal": false}}}
    ]
  }]
}`

const introTOML = `
name = "intro"
textures = [["wall.png"], ["spikes_0.png", "spikes_1.png"]]

[[levels]]
dimension = [20.0, 10.0]
available_morphs = { Metal = 1, Rubber = 2 }

[levels.morph]
position = [0.0, 0.0]
state = "Rubber"
layer = 1

[levels.target]
position = [5.0, 0.0]
layer = 2

[[levels.objects]]
position = [0.0, -3.0]
size = [10.0, 1.0]
rotation = 0.0
role = "Block"
texture = 0
texture_info = { layer = 1, plane = "View", animation = 0.0 }

[[levels.objects]]
position = [3.0, -2.0]
size = [1.0, 1.0]
role = "Accelerator"
accelerator = { direction = "Up", amplitude = 20.0, morph = { Bubble = true, Metal = false } }
`

func TestParseFormatsAgree(t *testing.T) {
	want, err := Parse([]byte(introYAML), FormatYAML)
	require.NoError(t, err)

	for _, tt := range []struct {
		format Format
		data   string
	}{
		{FormatJSON, introJSON},
		{FormatTOML, introTOML},
	} {
		t.Run(string(tt.format), func(t *testing.T) {
			got, err := Parse([]byte(tt.data), tt.format)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}

	l := want.Levels[0]
	require.Equal(t, components.StateRubber, l.Morph.State)
	require.Equal(t, components.RoleAccelerator, l.Objects[1].Role)
	require.Equal(t, r2.Vec{Y: 20}, l.Objects[1].Accelerator.Force())

	enabled, err := l.Objects[1].Accelerator.Enabled()
	require.NoError(t, err)
	require.Equal(t, []components.MorphState{components.StateBubble}, enabled)

	morphs, err := l.Morphs()
	require.NoError(t, err)
	require.Equal(t, map[components.MorphState]int{components.StateMetal: 1, components.StateRubber: 2}, morphs)

	tex, ok := l.Objects[0].TextureIndex()
	require.True(t, ok)
	require.Zero(t, tex)
	_, ok = l.Objects[1].TextureIndex()
	require.False(t, ok)
}

func TestParseRejectsUnknownKeysAndNames(t *testing.T) {
	_, err := Parse([]byte("name: x\nlevelz: []\n"), FormatYAML)
	require.Error(t, err)

	_, err = Parse([]byte("name = \"x\"\nlevelz = []\n"), FormatTOML)
	require.Error(t, err)

	_, err = Parse([]byte(`{"levels": [{"dimension": [1, 1], "morph": {"state": "Plasma"}}]}`), FormatJSON)
	require.ErrorIs(t, err, components.ErrUnknownState)

	_, err = Parse(nil, Format("xml"))
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	tex := 3
	pkg := &Package{
		Textures: [][]string{{"a.png"}, {}},
		Levels: []Level{{
			Dimension:       Vec{0, 10},
			AvailableMorphs: map[string]int{"lava": 1},
			Objects: []Object{
				{Size: Vec{1, 1}, Role: components.RoleAccelerator},
				{Size: Vec{1, 1}, Role: components.RoleBreakable},
				{Size: Vec{-1, 1}, Role: components.RoleBlock, Texture: &tex},
				{Size: Vec{1, 1}, Role: components.RolePortal},
			},
		}},
	}
	err := Validate(pkg)
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 9)
	for _, target := range []error{ErrInvalidValue, ErrMissingSection, ErrBadTexture, components.ErrUnknownState} {
		require.True(t, errors.Is(err, target), "missing %v", target)
	}

	require.ErrorIs(t, Validate(&Package{}), ErrNoLevels)
}

func TestLoadPackages(t *testing.T) {
	root := t.TempDir()
	write := func(dir, name, data string) {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, dir, name), []byte(data), 0o644))
	}
	write("b_json", "info.json", introJSON)
	write("a_toml", "info.toml", introTOML)
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), []byte("ignored"), 0o644))

	pkgs, err := LoadPackages(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	require.Equal(t, filepath.Join(root, "a_toml"), pkgs[0].Dir)
	require.Equal(t, filepath.Join(root, "b_json"), pkgs[1].Dir)
	require.Equal(t, "intro", pkgs[0].Name)

	write("c_empty", "notes.txt", "")
	_, err = LoadPackages(context.Background(), root)
	require.ErrorIs(t, err, ErrNoInfo)
}

func TestBundledPackages(t *testing.T) {
	pkgs, err := LoadPackages(context.Background(), filepath.Join("..", "packages"))
	require.NoError(t, err)
	require.NotEmpty(t, pkgs)
	for _, p := range pkgs {
		require.NoError(t, Validate(p), p.Name)
	}
}
