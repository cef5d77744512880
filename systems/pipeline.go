package systems

import "fmt"

// System is one pass of the frame.
type System interface {
	Update(w *World)
}

// Pass pairs a system with its registry ID.
type Pass struct {
	ID     string
	System System
}

// Pipeline runs the passes of a frame in a fixed order.
type Pipeline struct {
	passes []Pass
}

// NewPipeline creates every pass in frame order. Build the pipeline before
// populating the world so that change trackers see the initial components.
func NewPipeline(w *World, reg *SystemRegistry) *Pipeline {
	systems := map[string]System{
		"input_morph":            NewInputMorphSystem(),
		"input_camera":           NewInputCameraSystem(),
		"physic_sync":            NewPhysicSyncSystem(w),
		"physic_force":           NewPhysicForceSystem(),
		"physic_read":            NewPhysicReadSystem(),
		"physic_update":          NewPhysicUpdateSystem(),
		"physic_follow":          NewPhysicFollowSystem(),
		"physic_interaction":     NewPhysicInteractionSystem(),
		"physic_write":           NewPhysicWriteSystem(),
		"story_interaction":      NewStoryInteractionSystem(),
		"story_object":           NewStoryObjectSystem(w),
		"story_morph":            NewStoryMorphSystem(w),
		"story_morph_animation":  NewStoryMorphAnimationSystem(w),
		"story_object_animation": NewStoryObjectAnimationSystem(w),
		"animation":              NewAnimationSystem(),
		"lifetime":               NewLifetimeSystem(),
		"output":                 NewOutputSystem(),
	}
	p := &Pipeline{}
	for _, id := range reg.IDs() {
		sys, ok := systems[id]
		if !ok {
			panic(fmt.Sprintf("systems: registry names unknown system %q", id))
		}
		p.passes = append(p.passes, Pass{ID: id, System: sys})
		delete(systems, id)
	}
	for id := range systems {
		panic(fmt.Sprintf("systems: system %q is not registered", id))
	}
	return p
}

// Passes returns the passes in run order.
func (p *Pipeline) Passes() []Pass {
	return p.passes
}

// Run executes every pass once. phase, when set, is called with the pass ID
// before the pass runs.
func (p *Pipeline) Run(w *World, phase func(id string)) {
	for _, pass := range p.passes {
		if phase != nil {
			phase(pass.ID)
		}
		pass.System.Update(w)
	}
}
