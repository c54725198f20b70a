package correction

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/asanakit/surya/internal/domain/model"
)

func testLibrary() Library {
	return Library{
		"parvatasana": {
			"knees_bent":   "Straighten your knees.",
			"elbows_bent":  "Extend your arms fully.",
			"hips_low":     "Lift your hips higher.",
			"heels_lifted": "Press your heels down.",
		},
	}
}

func TestCorrections(t *testing.T) {
	Convey("Given a correction mapper", t, func() {
		m := NewMapper(testLibrary())

		Convey("When there are no issues", func() {
			result := m.Corrections("parvatasana", nil)

			So(result.Phrases, ShouldResemble, []string{Affirmation})
			So(result.Priority, ShouldEqual, PriorityLow)
			So(result.Issues, ShouldBeEmpty)
		})

		Convey("When issues map to known phrases", func() {
			result := m.Corrections("parvatasana", model.Issues{model.IssueKneesBent, model.IssueHipsLow})

			So(result.Phrases, ShouldResemble, []string{"Straighten your knees.", "Lift your hips higher."})
			So(result.Issues, ShouldResemble, []string{"knees_bent", "hips_low"})
			So(result.Priority, ShouldEqual, PriorityLow)
		})

		Convey("When an issue has no phrase entry", func() {
			result := m.Corrections("parvatasana", model.Issues{model.IssueKneesBent, model.IssueFeetApart})

			Convey("Then it is dropped silently", func() {
				So(result.Phrases, ShouldResemble, []string{"Straighten your knees."})
				So(result.Issues, ShouldHaveLength, 2)
			})
		})

		Convey("When more than two issues are present", func() {
			issues := model.Issues{model.IssueKneesBent, model.IssueElbowsBent, model.IssueHipsLow}
			result := m.Corrections("parvatasana", issues)

			So(result.Priority, ShouldEqual, PriorityMedium)
			So(result.Phrases, ShouldHaveLength, 3)
		})

		Convey("When the pose is not in the library", func() {
			result := m.Corrections("crow_pose", model.Issues{model.IssueKneesBent})

			So(result.Phrases, ShouldResemble, []string{UnknownPoseHint})
		})

		Convey("When the mapper has no library at all", func() {
			empty := NewMapper(nil)
			result := empty.Corrections("parvatasana", nil)

			So(result.Phrases, ShouldResemble, []string{UnknownPoseHint})
		})
	})
}

func TestSpoken(t *testing.T) {
	Convey("Given correction results", t, func() {
		Convey("When there are no phrases", func() {
			So(Result{}.Spoken(), ShouldEqual, GenericReminder)
		})

		Convey("When there is one phrase", func() {
			r := Result{Phrases: []string{"Straighten your knees."}}

			So(r.Spoken(), ShouldEqual, "Straighten your knees.")
		})

		Convey("When there are more than two phrases", func() {
			r := Result{Phrases: []string{"Straighten your knees.", "Lift your hips higher.", "Press your heels down."}}

			Convey("Then only the first two are spoken", func() {
				So(r.Spoken(), ShouldEqual, "Straighten your knees. Lift your hips higher.")
			})
		})
	})
}
