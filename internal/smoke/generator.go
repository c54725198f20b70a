package smoke

import (
	"crypto/rand"
	"math/big"
)

// Jitter and degradation tuning.
const (
	randomFloatDivisor = 1000000
	angleJitter        = 2.0  // degrees of per-frame noise
	degradeStep        = 0.75 // degrees lost per frame once degradation starts
	maxDegrade         = 40.0
)

// poseTemplate is an ideal frame for one pose. Degradation subtracts
// from the listed degrade keys so the pose drifts out of alignment.
type poseTemplate struct {
	angles      map[string]float64
	landmarks   map[string][]float64
	degradeKeys []string
}

// templates holds a plausible, rule-satisfying frame per pose.
var templates = map[string]poseTemplate{
	"parvatasana": {
		angles: map[string]float64{
			"left_knee_angle":   176,
			"right_knee_angle":  177,
			"left_elbow_angle":  174,
			"right_elbow_angle": 175,
		},
		landmarks: map[string][]float64{
			"left_hip":       {0.45, 0.30, 0},
			"right_hip":      {0.55, 0.30, 0},
			"left_shoulder":  {0.40, 0.60, 0},
			"right_shoulder": {0.60, 0.60, 0},
			"left_ankle":     {0.30, 0.90, 0},
			"right_ankle":    {0.70, 0.90, 0},
			"left_heel":      {0.30, 0.91, 0},
			"right_heel":     {0.70, 0.91, 0},
		},
		degradeKeys: []string{"left_knee_angle", "left_elbow_angle"},
	},
	"hasta_uttanasana": {
		angles: map[string]float64{
			"left_elbow_angle":  174,
			"right_elbow_angle": 173,
			"spine_angle":       160,
		},
		landmarks: map[string][]float64{
			"left_wrist":  {0.45, 0.10, 0},
			"right_wrist": {0.55, 0.10, 0},
			"left_ear":    {0.47, 0.25, 0},
			"right_ear":   {0.53, 0.25, 0},
		},
		degradeKeys: []string{"left_elbow_angle", "right_elbow_angle"},
	},
	"bhujangasana": {
		angles: map[string]float64{
			"left_elbow_angle":  160,
			"right_elbow_angle": 161,
			"spine_angle":       158,
		},
		landmarks: map[string][]float64{
			"left_hip":       {0.45, 0.75, 0},
			"right_hip":      {0.55, 0.75, 0},
			"left_shoulder":  {0.42, 0.55, 0},
			"right_shoulder": {0.58, 0.55, 0},
		},
		degradeKeys: []string{"left_elbow_angle", "right_elbow_angle"},
	},
	"ashwa_sanchalanasana": {
		angles: map[string]float64{
			"left_knee_angle":  95,
			"right_knee_angle": 170,
			"spine_angle":      165,
		},
		landmarks:   map[string][]float64{},
		degradeKeys: []string{"right_knee_angle"},
	},
	"pranamasana": {
		angles: map[string]float64{
			"left_knee_angle":  178,
			"right_knee_angle": 178,
		},
		landmarks: map[string][]float64{
			"left_shoulder":  {0.48, 0.30, 0},
			"right_shoulder": {0.52, 0.30, 0},
			"left_hip":       {0.48, 0.55, 0},
			"right_hip":      {0.52, 0.55, 0},
			"left_ankle":     {0.48, 0.95, 0},
			"right_ankle":    {0.52, 0.95, 0},
		},
		degradeKeys: []string{},
	},
}

// poseNames returns the cycling order for -pose=cycle.
func poseNames() []string {
	return []string{
		"pranamasana",
		"hasta_uttanasana",
		"ashwa_sanchalanasana",
		"parvatasana",
		"bhujangasana",
	}
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateFrame produces the angles and landmarks for frame number i of
// the given pose, applying jitter and, past degradeAfter, a growing
// alignment loss. Angles are clamped to the accepted range.
func generateFrame(pose string, i, degradeAfter int) (map[string]float64, map[string][]float64) {
	tmpl, ok := templates[pose]
	if !ok {
		return map[string]float64{}, map[string][]float64{}
	}

	degrade := 0.0
	if degradeAfter > 0 && i >= degradeAfter {
		degrade = float64(i-degradeAfter) * degradeStep
		if degrade > maxDegrade {
			degrade = maxDegrade
		}
	}

	angles := make(map[string]float64, len(tmpl.angles))
	for key, value := range tmpl.angles {
		v := value + (getRandomFloat()*2-1)*angleJitter
		for _, dk := range tmpl.degradeKeys {
			if key == dk {
				v -= degrade
			}
		}
		if v < 0 {
			v = 0
		}
		if v > 180 {
			v = 180
		}
		angles[key] = v
	}

	landmarks := make(map[string][]float64, len(tmpl.landmarks))
	for name, coords := range tmpl.landmarks {
		landmarks[name] = append([]float64(nil), coords...)
	}
	return angles, landmarks
}
