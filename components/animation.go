package components

import (
	"errors"
	"fmt"
	"math"
)

// MaxFrames is the keyframe capacity of an Animation.
const MaxFrames = 8

// Errors returned by NewAnimation and the enum parsers.
var (
	ErrTooManyFrames    = errors.New("too many animation frames")
	ErrNoFrames         = errors.New("animation has no frames")
	ErrBadDuration      = errors.New("animation duration must be positive")
	ErrUnknownState     = errors.New("unknown morph state")
	ErrUnknownRole      = errors.New("unknown role")
	ErrUnknownPlane     = errors.New("unknown plane")
	ErrUnknownDirection = errors.New("unknown direction")
)

// Interpolator is implemented by components an Animation can drive.
type Interpolator[T any] interface {
	Interpolate(to T, t float64) T
}

// AnimationKind selects what happens when playback reaches the duration.
type AnimationKind uint8

const (
	AnimationSingle AnimationKind = iota // Play once, then the animation is removed
	AnimationRepeat                      // Wrap around
)

// Animation plays keyframes of T evenly spread over Duration seconds.
type Animation[T Interpolator[T]] struct {
	Frames   []T
	Duration float64
	Current  float64
	Kind     AnimationKind
}

// NewAnimation validates the keyframes and returns a stopped-at-zero animation.
func NewAnimation[T Interpolator[T]](frames []T, duration float64, kind AnimationKind) (Animation[T], error) {
	switch {
	case len(frames) == 0:
		return Animation[T]{}, ErrNoFrames
	case len(frames) > MaxFrames:
		return Animation[T]{}, fmt.Errorf("%w: %d > %d", ErrTooManyFrames, len(frames), MaxFrames)
	case !(duration > 0):
		return Animation[T]{}, fmt.Errorf("%w: %g", ErrBadDuration, duration)
	}
	return Animation[T]{
		Frames:   append([]T(nil), frames...),
		Duration: duration,
		Kind:     kind,
	}, nil
}

// MustAnimation is like NewAnimation but panics on invalid keyframes.
// Use it for animations built from constant tables.
func MustAnimation[T Interpolator[T]](frames []T, duration float64, kind AnimationKind) Animation[T] {
	a, err := NewAnimation(frames, duration, kind)
	if err != nil {
		panic(err)
	}
	return a
}

// Index returns the keyframe pair and blend factor for the current time.
func (a *Animation[T]) Index() (lower, upper int, frac float64) {
	last := len(a.Frames) - 1
	pos := clamp(a.Current/a.Duration, 0, 1) * float64(last)
	lower = int(math.Floor(pos))
	upper = int(math.Ceil(pos))
	// guard rounding at the end of the range
	lower = min(max(lower, 0), last)
	upper = min(max(upper, 0), last)
	return lower, upper, pos - math.Floor(pos)
}

// Sample interpolates the value at the current time.
func (a *Animation[T]) Sample() T {
	lower, upper, frac := a.Index()
	return a.Frames[lower].Interpolate(a.Frames[upper], frac)
}

// Advance moves playback by dt. For Repeat animations the time wraps; it
// returns true when a Single animation has completed.
func (a *Animation[T]) Advance(dt float64) bool {
	a.Current += dt
	if a.Current < a.Duration {
		return false
	}
	if a.Kind == AnimationRepeat {
		a.Current = math.Mod(a.Current, a.Duration)
		return false
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
