package game

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/level"
	"github.com/pthm-cable/morph/systems"
)

// Portal animation timings.
const (
	portalSlots        = 30.0
	portalSlotDuration = 1.5
	portalSpinDuration = 10.0
)

// Camera body limits.
const cameraMaxVelocity = 15.0

// populate creates the scene entities of lvl. The pipeline must already exist
// so its trackers see the initial components.
func populate(w *systems.World, lvl *level.Level) error {
	spawnCourt(w, lvl)
	morph := spawnMorph(w, lvl)
	portal := spawnPortal(w, lvl)
	for i := range lvl.Objects {
		if err := spawnObject(w, &lvl.Objects[i]); err != nil {
			return fmt.Errorf("objects[%d]: %w", i, err)
		}
	}
	camera := spawnCamera(w, lvl)
	w.Actors = components.Actors{Camera: camera, Morph: morph, Portal: portal}
	return nil
}

func spawnCourt(w *systems.World, lvl *level.Level) ecs.Entity {
	e := w.Store.Create()
	w.Physic.Insert(e, components.Physic{})
	w.Position.Insert(e, components.Position{})
	w.Rotation.Insert(e, components.Rotation{})
	w.Collision.Insert(e, components.RoleCourt.Collision(w.Cfg))
	w.Sensor.Insert(e, components.RoleCourt.Sensor(w.Cfg))
	w.Shape.Insert(e, components.Rect(lvl.Dimension.R2()))
	w.Court.Insert(e, components.Court{})
	return e
}

func morphRank(lvl *level.Level) uint8 {
	return max(lvl.Morph.Layer, 1)
}

func spawnMorph(w *systems.World, lvl *level.Level) ecs.Entity {
	e := w.Store.Create()
	w.Physic.Insert(e, components.Physic{})
	w.Position.Insert(e, components.PositionOf(lvl.Morph.Position.R2()))
	w.Rotation.Insert(e, components.Rotation{})
	w.Velocity.Insert(e, components.Velocity{})
	w.ApplyProfile(e, lvl.Morph.State)
	w.Layer.Insert(e, components.Layer{Plane: components.PlaneView, Rank: morphRank(lvl)})
	w.SetMorphState(e, lvl.Morph.State)
	return e
}

func spawnPortal(w *systems.World, lvl *level.Level) ecs.Entity {
	rank := morphRank(lvl)
	if rank < math.MaxUint8 {
		rank++
	}
	shape, _ := components.RolePortal.Shape(w.Cfg)

	e := w.Store.Create()
	w.Physic.Insert(e, components.Physic{})
	w.Position.Insert(e, components.PositionOf(lvl.Target.Position.R2()))
	w.Rotation.Insert(e, components.Rotation{})
	w.Collision.Insert(e, components.RolePortal.Collision(w.Cfg))
	w.Sensor.Insert(e, components.RolePortal.Sensor(w.Cfg))
	w.Shape.Insert(e, shape)
	w.Texture.Insert(e, components.TexturePortal)
	w.Layer.Insert(e, components.Layer{Plane: components.PlaneView, Rank: max(lvl.Target.Layer, rank)})
	w.Portal.Insert(e, components.Portal{})
	w.TextureSlotAnim.Insert(e, components.MustAnimation(
		[]components.TextureSlot{{Slot: 0}, {Slot: portalSlots}},
		portalSlotDuration, components.AnimationRepeat))
	w.RotationAnim.Insert(e, components.MustAnimation(
		[]components.Rotation{{Angle: 0}, {Angle: 2 * math.Pi}},
		portalSpinDuration, components.AnimationRepeat))
	return e
}

func spawnObject(w *systems.World, obj *level.Object) error {
	e := w.Store.Create()
	w.Physic.Insert(e, components.Physic{})
	w.Position.Insert(e, components.PositionOf(obj.Position.R2()))
	w.Rotation.Insert(e, components.Rotation{Angle: obj.Rotation})
	w.Collision.Insert(e, obj.Role.Collision(w.Cfg))
	w.Sensor.Insert(e, obj.Role.Sensor(w.Cfg))
	w.Shape.Insert(e, components.Rect(obj.Size.R2()))

	if tex, ok := obj.TextureIndex(); ok {
		if obj.TextureInfo == nil {
			return fmt.Errorf("texture_info: %w", level.ErrMissingSection)
		}
		w.Texture.Insert(e, components.PackageTexture(tex))
		w.Layer.Insert(e, components.Layer{Plane: obj.TextureInfo.Plane, Rank: obj.TextureInfo.Layer})
	}

	switch obj.Role {
	case components.RoleBlock:
		w.Block.Insert(e, components.Block{})
	case components.RoleSpikes:
		w.Spikes.Insert(e, components.Spikes{})
	case components.RoleGrid:
		w.Grid.Insert(e, components.Grid{})
	case components.RoleAccelerator:
		if obj.Accelerator == nil {
			return fmt.Errorf("accelerator: %w", level.ErrMissingSection)
		}
		states, err := obj.Accelerator.Enabled()
		if err != nil {
			return fmt.Errorf("accelerator: %w", err)
		}
		with := make([]int, 0, len(states))
		for _, s := range states {
			with = append(with, s.Group(w.Cfg))
		}
		w.Accelerator.Insert(e, components.Accelerator{Force: obj.Accelerator.Force()})
		w.Sensor.Insert(e, components.Sensor{Group: components.RoleAccelerator.Sensor(w.Cfg).Group, With: with})
	case components.RoleBreakable:
		if obj.Breakable == nil {
			return fmt.Errorf("breakable: %w", level.ErrMissingSection)
		}
		w.Breakable.Insert(e, components.Breakable{Group: obj.Breakable.Group})
	}
	return nil
}

func spawnCamera(w *systems.World, lvl *level.Level) ecs.Entity {
	e := w.Store.Create()
	w.Physic.Insert(e, components.Physic{})
	w.Dynamic.Insert(e, components.Dynamic{})
	w.Position.Insert(e, components.PositionOf(lvl.Morph.Position.R2()))
	w.Rotation.Insert(e, components.Rotation{})
	w.Velocity.Insert(e, components.Velocity{})
	w.VelocityLimit.Insert(e, components.VelocityLimit{Linear: cameraMaxVelocity})
	w.VelocityDamping.Insert(e, components.VelocityDamping{Linear: w.Cfg.Level.CameraDamping})
	w.Camera.Insert(e, components.Camera{Zoom: w.Cfg.Level.CameraZoom, MaxDimension: lvl.Dimension.R2()})
	return e
}
