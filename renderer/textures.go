package renderer

import (
	"fmt"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/level"
)

// TextureCache holds the GPU textures of a level package. Each package
// texture is an array of images; a slot picks one of them.
type TextureCache struct {
	log    *zap.Logger
	arrays [][]rl.Texture2D
}

// NewTextureCache creates an empty cache.
func NewTextureCache(log *zap.Logger) *TextureCache {
	return &TextureCache{log: log}
}

// Load replaces the cached textures with those of pkg. Must be called after
// the raylib window is created. Images that fail to load are skipped and
// their entities fall back to flat colors.
func (c *TextureCache) Load(pkg *level.Package) {
	c.Unload()
	c.arrays = make([][]rl.Texture2D, len(pkg.Textures))
	for i, files := range pkg.Textures {
		for _, f := range files {
			path := filepath.Join(pkg.Dir, f)
			tex := rl.LoadTexture(path)
			if !rl.IsTextureValid(tex) {
				c.log.Warn("texture not loaded", zap.String("path", path))
				continue
			}
			rl.SetTextureFilter(tex, rl.FilterBilinear)
			c.arrays[i] = append(c.arrays[i], tex)
		}
	}
	c.log.Debug("textures loaded", zap.Int("arrays", len(c.arrays)))
}

// Lookup returns the image of tex at slot. Slots past the end of the array
// use its last image.
func (c *TextureCache) Lookup(tex components.Texture, slot int) (rl.Texture2D, bool) {
	if tex.Source != components.SourcePackage || tex.Index < 0 || tex.Index >= len(c.arrays) {
		return rl.Texture2D{}, false
	}
	arr := c.arrays[tex.Index]
	if len(arr) == 0 {
		return rl.Texture2D{}, false
	}
	return arr[min(max(slot, 0), len(arr)-1)], true
}

// Unload frees all textures.
func (c *TextureCache) Unload() {
	for _, arr := range c.arrays {
		for _, tex := range arr {
			rl.UnloadTexture(tex)
		}
	}
	c.arrays = nil
}

func (c *TextureCache) String() string {
	return fmt.Sprintf("TextureCache(%d arrays)", len(c.arrays))
}
