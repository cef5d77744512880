package level

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/pthm-cable/morph/components"
)

var (
	ErrUnknownFormat  = errors.New("unknown package format")
	ErrNoInfo         = errors.New("no package info file")
	ErrMissingSection = errors.New("missing section")
	ErrInvalidValue   = errors.New("invalid value")
	ErrBadTexture     = errors.New("texture out of range")
	ErrNoLevels       = errors.New("package has no levels")
)

// Validate checks a decoded package and reports every problem it finds.
func Validate(pkg *Package) error {
	var err error
	if len(pkg.Levels) == 0 {
		err = multierr.Append(err, ErrNoLevels)
	}
	for i, tex := range pkg.Textures {
		if len(tex) == 0 {
			err = multierr.Append(err, fmt.Errorf("textures[%d]: %w: no images", i, ErrInvalidValue))
		}
	}
	for i := range pkg.Levels {
		err = multierr.Append(err, validateLevel(pkg, &pkg.Levels[i], fmt.Sprintf("levels[%d]", i)))
	}
	return err
}

func validateLevel(pkg *Package, l *Level, path string) error {
	var err error
	if l.Dimension[0] <= 0 || l.Dimension[1] <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s.dimension: %w: %v", path, ErrInvalidValue, l.Dimension))
	}
	if _, e := l.Morphs(); e != nil {
		err = multierr.Append(err, fmt.Errorf("%s.available_morphs: %w", path, e))
	}
	for i := range l.Objects {
		err = multierr.Append(err, validateObject(pkg, &l.Objects[i], fmt.Sprintf("%s.objects[%d]", path, i)))
	}
	return err
}

func validateObject(pkg *Package, o *Object, path string) error {
	var err error
	if o.Size[0] <= 0 || o.Size[1] <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s.size: %w: %v", path, ErrInvalidValue, o.Size))
	}
	switch o.Role {
	case components.RolePortal, components.RoleParticle, components.RoleMorph:
		err = multierr.Append(err, fmt.Errorf("%s.role: %w: %s is not a level object", path, ErrInvalidValue, o.Role))
	case components.RoleAccelerator:
		if o.Accelerator == nil {
			err = multierr.Append(err, fmt.Errorf("%s.accelerator: %w", path, ErrMissingSection))
		} else if _, e := o.Accelerator.Enabled(); e != nil {
			err = multierr.Append(err, fmt.Errorf("%s.accelerator.morph: %w", path, e))
		}
	case components.RoleBreakable:
		if o.Breakable == nil {
			err = multierr.Append(err, fmt.Errorf("%s.breakable: %w", path, ErrMissingSection))
		}
	}
	if tex, ok := o.TextureIndex(); ok {
		if tex >= len(pkg.Textures) {
			err = multierr.Append(err, fmt.Errorf("%s.texture: %w: %d of %d", path, ErrBadTexture, tex, len(pkg.Textures)))
		}
		if o.TextureInfo == nil {
			err = multierr.Append(err, fmt.Errorf("%s.texture_info: %w", path, ErrMissingSection))
		}
	}
	if o.Block != nil {
		for i, p := range o.Block.Particles {
			if p < 0 || p >= len(pkg.Textures) {
				err = multierr.Append(err, fmt.Errorf("%s.block.particles[%d]: %w: %d", path, i, ErrBadTexture, p))
			}
		}
	}
	return err
}
