package pose

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/asanakit/surya/internal/domain/model"
)

func mountainRules() RuleSet {
	rs := NewRuleSet()
	rs.Thresholds[KeyKneeAngleMin] = 170
	rs.Thresholds[KeyElbowAngleMin] = 170
	rs.Thresholds[KeyHeelHeightMax] = 0.05
	rs.Flags[KeyHipHeightAboveShoulder] = true
	return rs
}

func mountainLandmarks() model.Landmarks {
	return model.Landmarks{
		"left_hip":       {X: 0.45, Y: 0.30},
		"right_hip":      {X: 0.55, Y: 0.30},
		"left_shoulder":  {X: 0.40, Y: 0.60},
		"right_shoulder": {X: 0.60, Y: 0.60},
		"left_ankle":     {X: 0.30, Y: 0.90},
		"right_ankle":    {X: 0.70, Y: 0.90},
		"left_heel":      {X: 0.30, Y: 0.91},
		"right_heel":     {X: 0.70, Y: 0.91},
	}
}

func TestEvaluate(t *testing.T) {
	Convey("Given a rule engine", t, func() {
		e := NewEngine(map[string]RuleSet{"parvatasana": mountainRules()})

		Convey("When every rule passes", func() {
			angles := model.JointAngles{
				"left_knee_angle":   175,
				"right_knee_angle":  176,
				"left_elbow_angle":  172,
				"right_elbow_angle": 174,
			}
			eval := e.Evaluate("parvatasana", mountainLandmarks(), angles, e.Rules("parvatasana"))

			So(eval.AlignmentScore, ShouldEqual, 100.0)
			So(eval.Issues, ShouldBeEmpty)
			So(eval.PassedRules, ShouldContainKey, "knees_extended")
			So(eval.PassedRules, ShouldContainKey, "elbows_extended")
			So(eval.PassedRules, ShouldContainKey, "hip_elevation")
			So(eval.PassedRules, ShouldContainKey, "heels_grounded")
			So(eval.FailedRules, ShouldBeEmpty)
			So(eval.RiskLevel, ShouldEqual, model.RiskLow)
		})

		Convey("When one knee misses the shared minimum", func() {
			angles := model.JointAngles{
				"left_knee_angle":   165,
				"right_knee_angle":  176,
				"left_elbow_angle":  172,
				"right_elbow_angle": 174,
			}

			Convey("And no landmarks are supplied", func() {
				eval := e.Evaluate("parvatasana", nil, angles, e.Rules("parvatasana"))

				Convey("Then the whole knee pair is lost", func() {
					So(eval.AlignmentScore, ShouldEqual, 50.0)
					So(eval.Issues, ShouldResemble, model.Issues{model.IssueKneesBent})
					So(eval.FailedRules, ShouldContainKey, "knees_extended")
				})
			})

			Convey("And full landmarks are supplied", func() {
				eval := e.Evaluate("parvatasana", mountainLandmarks(), angles, e.Rules("parvatasana"))

				Convey("Then landmark groups still earn their weight", func() {
					So(eval.AlignmentScore, ShouldEqual, 66.67)
				})
			})
		})

		Convey("When a rule's inputs are missing entirely", func() {
			angles := model.JointAngles{
				"left_elbow_angle":  172,
				"right_elbow_angle": 174,
			}
			eval := e.Evaluate("parvatasana", nil, angles, e.Rules("parvatasana"))

			Convey("Then absent rules are skipped, not failed", func() {
				So(eval.AlignmentScore, ShouldEqual, 100.0)
				So(eval.Issues, ShouldBeEmpty)
			})
		})

		Convey("When no rule applies at all", func() {
			eval := e.Evaluate("parvatasana", nil, model.JointAngles{}, e.Rules("parvatasana"))

			So(eval.AlignmentScore, ShouldEqual, 0.0)
			So(eval.PassedRules, ShouldBeEmpty)
			So(eval.FailedRules, ShouldBeEmpty)
		})

		Convey("When the pose is unknown", func() {
			rs := e.Rules("crow_pose")

			So(rs.Empty(), ShouldBeTrue)
		})
	})
}

func TestEvaluateLunge(t *testing.T) {
	Convey("Given lunge knee rules", t, func() {
		rs := NewRuleSet()
		rs.Thresholds[KeyFrontKneeAngleMin] = 80
		rs.Thresholds[KeyFrontKneeAngleMax] = 110
		rs.Thresholds[KeyBackKneeAngleMin] = 160
		e := NewEngine(map[string]RuleSet{"ashwa_sanchalanasana": rs})

		Convey("When both knees satisfy their bounds", func() {
			angles := model.JointAngles{
				"left_knee_angle":  95,
				"right_knee_angle": 170,
			}
			eval := e.Evaluate("ashwa_sanchalanasana", nil, angles, rs)

			So(eval.AlignmentScore, ShouldEqual, 100.0)
		})

		Convey("When the front knee collapses past the minimum", func() {
			angles := model.JointAngles{
				"left_knee_angle":  70,
				"right_knee_angle": 170,
			}
			eval := e.Evaluate("ashwa_sanchalanasana", nil, angles, rs)

			So(eval.Issues, ShouldResemble, model.Issues{model.IssueFrontKneeTooBent})
			So(eval.AlignmentScore, ShouldEqual, 66.67)
		})

		Convey("When the front knee is too shallow", func() {
			angles := model.JointAngles{
				"left_knee_angle":  120,
				"right_knee_angle": 170,
			}
			eval := e.Evaluate("ashwa_sanchalanasana", nil, angles, rs)

			So(eval.Issues, ShouldResemble, model.Issues{model.IssueFrontKneeShallow})
		})

		Convey("When the back knee bends", func() {
			angles := model.JointAngles{
				"left_knee_angle":  95,
				"right_knee_angle": 150,
			}
			eval := e.Evaluate("ashwa_sanchalanasana", nil, angles, rs)

			So(eval.Issues, ShouldResemble, model.Issues{model.IssueBackKneeBent})
		})

		Convey("When only one knee angle arrives", func() {
			angles := model.JointAngles{"left_knee_angle": 95}
			eval := e.Evaluate("ashwa_sanchalanasana", nil, angles, rs)

			Convey("Then the lunge rules are skipped", func() {
				So(eval.AlignmentScore, ShouldEqual, 0.0)
				So(eval.Issues, ShouldBeEmpty)
			})
		})
	})
}

func TestEvaluateSpineAndPelvis(t *testing.T) {
	Convey("Given spine and pelvis rules", t, func() {
		rs := NewRuleSet()
		rs.Thresholds[KeySpineExtensionMin] = 15
		rs.Flags[KeyPelvisGrounded] = true
		e := NewEngine(map[string]RuleSet{"bhujangasana": rs})

		proneLandmarks := model.Landmarks{
			"left_hip":       {Y: 0.75},
			"right_hip":      {Y: 0.75},
			"left_shoulder":  {Y: 0.55},
			"right_shoulder": {Y: 0.55},
		}

		Convey("When the spine extends past the minimum and the pelvis stays down", func() {
			angles := model.JointAngles{"spine_angle": 160} // extension 20
			eval := e.Evaluate("bhujangasana", proneLandmarks, angles, rs)

			So(eval.AlignmentScore, ShouldEqual, 100.0)
		})

		Convey("When the spine stays too flat", func() {
			angles := model.JointAngles{"spine_angle": 170} // extension 10
			eval := e.Evaluate("bhujangasana", proneLandmarks, angles, rs)

			So(eval.Issues, ShouldResemble, model.Issues{model.IssueSpineMisaligned})
			So(eval.AlignmentScore, ShouldEqual, 50.0)
		})

		Convey("When the pelvis lifts off the mat", func() {
			lifted := model.Landmarks{
				"left_hip":       {Y: 0.40},
				"right_hip":      {Y: 0.40},
				"left_shoulder":  {Y: 0.55},
				"right_shoulder": {Y: 0.55},
			}
			angles := model.JointAngles{"spine_angle": 160}
			eval := e.Evaluate("bhujangasana", lifted, angles, rs)

			So(eval.Issues, ShouldResemble, model.Issues{model.IssuePelvisLifted})
		})
	})
}

func TestEvaluateUpright(t *testing.T) {
	Convey("Given upright posture rules", t, func() {
		rs := NewRuleSet()
		rs.Flags[KeyArmsOverhead] = true
		rs.Flags[KeySpineVertical] = true
		rs.Flags[KeyFeetTogether] = true
		e := NewEngine(map[string]RuleSet{"pranamasana": rs})

		upright := model.Landmarks{
			"left_wrist":     {X: 0.45, Y: 0.10},
			"right_wrist":    {X: 0.55, Y: 0.10},
			"left_ear":       {X: 0.47, Y: 0.25},
			"right_ear":      {X: 0.53, Y: 0.25},
			"left_shoulder":  {X: 0.48, Y: 0.30},
			"right_shoulder": {X: 0.52, Y: 0.30},
			"left_hip":       {X: 0.48, Y: 0.55},
			"right_hip":      {X: 0.52, Y: 0.55},
			"left_ankle":     {X: 0.48, Y: 0.95},
			"right_ankle":    {X: 0.52, Y: 0.95},
		}

		Convey("When the posture is stacked and closed", func() {
			eval := e.Evaluate("pranamasana", upright, nil, rs)

			So(eval.AlignmentScore, ShouldEqual, 100.0)
		})

		Convey("When the wrists drop below the ears", func() {
			lowArms := model.Landmarks{}
			for k, v := range upright {
				lowArms[k] = v
			}
			lowArms["left_wrist"] = model.Landmark{X: 0.45, Y: 0.40}
			lowArms["right_wrist"] = model.Landmark{X: 0.55, Y: 0.40}

			eval := e.Evaluate("pranamasana", lowArms, nil, rs)

			So(eval.Issues, ShouldResemble, model.Issues{model.IssueArmsLow})
		})

		Convey("When the shoulders drift off the hip line", func() {
			leaning := model.Landmarks{}
			for k, v := range upright {
				leaning[k] = v
			}
			leaning["left_shoulder"] = model.Landmark{X: 0.58, Y: 0.30}
			leaning["right_shoulder"] = model.Landmark{X: 0.62, Y: 0.30}

			eval := e.Evaluate("pranamasana", leaning, nil, rs)

			So(eval.Issues, ShouldResemble, model.Issues{model.IssueSpineMisaligned})
		})

		Convey("When the feet split apart", func() {
			wide := model.Landmarks{}
			for k, v := range upright {
				wide[k] = v
			}
			wide["left_ankle"] = model.Landmark{X: 0.35, Y: 0.95}
			wide["right_ankle"] = model.Landmark{X: 0.65, Y: 0.95}

			eval := e.Evaluate("pranamasana", wide, nil, rs)

			So(eval.Issues, ShouldResemble, model.Issues{model.IssueFeetApart})
		})
	})
}

func TestRuleSet(t *testing.T) {
	Convey("Given a rule set", t, func() {
		rs := mountainRules()

		Convey("When cloned", func() {
			clone := rs.Clone()
			clone.Thresholds[KeyKneeAngleMin] = 120
			clone.Flags[KeyHipHeightAboveShoulder] = false

			Convey("Then the original is untouched", func() {
				So(rs.Thresholds[KeyKneeAngleMin], ShouldEqual, 170)
				So(rs.Flag(KeyHipHeightAboveShoulder), ShouldBeTrue)
			})
		})

		Convey("When querying thresholds", func() {
			v, ok := rs.Threshold(KeyKneeAngleMin)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 170)

			_, ok = rs.Threshold(KeySpineExtensionMin)
			So(ok, ShouldBeFalse)
		})

		Convey("When checking emptiness", func() {
			So(rs.Empty(), ShouldBeFalse)
			So(NewRuleSet().Empty(), ShouldBeTrue)
		})
	})
}
