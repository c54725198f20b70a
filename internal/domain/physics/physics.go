// Package physics validates received joint angles and reshapes raw
// landmark coordinates into the working representation. Angles are
// computed client-side; this package only sanity-checks them.
package physics

import "github.com/asanakit/surya/internal/domain/model"

// Engine performs frame-local input validation and landmark geometry.
type Engine struct{}

// New creates a physics engine.
func New() *Engine {
	return &Engine{}
}

// ValidateAngles reports whether every received angle lies in
// [0, 180] degrees. A single out-of-range value anywhere fails the
// whole frame.
func (e *Engine) ValidateAngles(angles model.JointAngles) bool {
	for _, v := range angles {
		if v < model.MinAngle || v > model.MaxAngle {
			return false
		}
	}
	return true
}

// ReshapeLandmarks converts raw [x,y,z] coordinate slices into typed
// landmarks. Entries without exactly three coordinates are dropped;
// landmark ranges are context-dependent and not validated here.
func (e *Engine) ReshapeLandmarks(raw map[string][]float64) model.Landmarks {
	out := make(model.Landmarks, len(raw))
	for name, coords := range raw {
		if len(coords) != 3 {
			continue
		}
		out[name] = model.Landmark{X: coords[0], Y: coords[1], Z: coords[2]}
	}
	return out
}

// Midpoint returns the midpoint of two landmarks.
func Midpoint(a, b model.Landmark) model.Landmark {
	return model.Landmark{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
		Z: (a.Z + b.Z) / 2,
	}
}

// HipShoulderHeightDiff returns the vertical distance between the
// shoulder midpoint and the hip midpoint. Positive means the hips sit
// above the shoulders in image coordinates (y grows downward). The
// second return is false when any of the four landmarks is missing.
func (e *Engine) HipShoulderHeightDiff(lm model.Landmarks) (float64, bool) {
	lh, ok1 := lm["left_hip"]
	rh, ok2 := lm["right_hip"]
	ls, ok3 := lm["left_shoulder"]
	rs, ok4 := lm["right_shoulder"]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return 0, false
	}
	midHip := Midpoint(lh, rh)
	midShoulder := Midpoint(ls, rs)
	return midShoulder.Y - midHip.Y, true
}
