package progress

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/asanakit/surya/internal/domain/model"
)

func steadyFrame(score float64) model.FrameMetrics {
	return model.FrameMetrics{
		PoseName:       "parvatasana",
		AlignmentScore: score,
		JointAngles: model.JointAngles{
			"left_knee_angle":  175,
			"right_knee_angle": 175,
		},
		Timestamp: time.Now(),
	}
}

func TestTrackerLifecycle(t *testing.T) {
	Convey("Given a fresh tracker", t, func() {
		tr := New()

		Convey("When idle", func() {
			So(tr.SessionID(), ShouldBeEmpty)

			Convey("Then updates are ignored", func() {
				tr.Update(steadyFrame(90))
				So(tr.Stats().Frames, ShouldEqual, 0)
			})
		})

		Convey("When started", func() {
			id := tr.Start()

			So(id, ShouldNotBeEmpty)
			So(tr.SessionID(), ShouldEqual, id)

			Convey("And frames are recorded", func() {
				tr.Update(steadyFrame(90))
				tr.Update(steadyFrame(80))

				stats := tr.Stats()
				So(stats.Frames, ShouldEqual, 2)
				So(stats.AverageAlignment, ShouldEqual, 85.0)
				So(stats.PosesPerformed, ShouldResemble, []string{"parvatasana"})
				So(stats.DurationSeconds, ShouldBeGreaterThanOrEqualTo, 0)
			})

			Convey("And restarted", func() {
				tr.Update(steadyFrame(90))
				next := tr.Start()

				So(next, ShouldNotEqual, id)
				So(tr.Stats().Frames, ShouldEqual, 0)
			})
		})
	})
}

func TestTrackerPoses(t *testing.T) {
	Convey("Given an active tracker", t, func() {
		tr := New()
		tr.Start()

		Convey("When the same pose repeats across frames", func() {
			tr.Update(steadyFrame(90))
			tr.Update(steadyFrame(90))
			fm := steadyFrame(85)
			fm.PoseName = "bhujangasana"
			tr.Update(fm)

			Convey("Then poses are listed once, in first-seen order", func() {
				So(tr.Stats().PosesPerformed, ShouldResemble, []string{"parvatasana", "bhujangasana"})
			})
		})
	})
}

func TestTrackerCapacity(t *testing.T) {
	Convey("Given a tracker with a small history capacity", t, func() {
		tr := New(WithHistoryCapacity(5))
		tr.Start()

		Convey("When more frames arrive than fit", func() {
			for i := 0; i < 8; i++ {
				tr.Update(steadyFrame(float64(i * 10)))
			}

			Convey("Then only the newest frames survive", func() {
				stats := tr.Stats()
				So(stats.Frames, ShouldEqual, 5)
				So(stats.AverageAlignment, ShouldEqual, 50.0) // mean of 30..70
			})
		})
	})
}

func TestStability(t *testing.T) {
	Convey("Given an active tracker", t, func() {
		tr := New()
		tr.Start()

		Convey("When fewer than ten frames have angles", func() {
			for i := 0; i < 9; i++ {
				tr.Update(steadyFrame(90))
			}

			So(tr.Stability(), ShouldEqual, 0.0)
		})

		Convey("When the angles never move", func() {
			for i := 0; i < 20; i++ {
				tr.Update(steadyFrame(90))
			}

			So(tr.Stability(), ShouldEqual, 100.0)
		})

		Convey("When the angles alternate", func() {
			for i := 0; i < 20; i++ {
				fm := steadyFrame(90)
				if i%2 == 0 {
					fm.JointAngles = model.JointAngles{
						"left_knee_angle":  170,
						"right_knee_angle": 170,
					}
				} else {
					fm.JointAngles = model.JointAngles{
						"left_knee_angle":  190,
						"right_knee_angle": 190,
					}
				}
				tr.Update(fm)
			}

			Convey("Then the variance lowers the score", func() {
				// population variance of alternating 170/190 is 100
				So(tr.Stability(), ShouldEqual, 0.0)
			})
		})
	})
}

func TestSymmetry(t *testing.T) {
	Convey("Given an active tracker", t, func() {
		tr := New()
		tr.Start()

		Convey("When no frames have been recorded", func() {
			So(tr.Symmetry(), ShouldEqual, 0.0)
		})

		Convey("When both sides agree exactly", func() {
			for i := 0; i < 5; i++ {
				tr.Update(steadyFrame(90))
			}

			So(tr.Symmetry(), ShouldEqual, 100.0)
		})

		Convey("When the sides diverge by a fixed offset", func() {
			for i := 0; i < 5; i++ {
				tr.Update(model.FrameMetrics{
					PoseName:       "parvatasana",
					AlignmentScore: 90,
					JointAngles: model.JointAngles{
						"left_knee_angle":  170,
						"right_knee_angle": 150,
					},
				})
			}

			So(tr.Symmetry(), ShouldEqual, 80.0)
		})

		Convey("When only one side ever appears", func() {
			for i := 0; i < 5; i++ {
				tr.Update(model.FrameMetrics{
					PoseName:       "parvatasana",
					AlignmentScore: 90,
					JointAngles:    model.JointAngles{"left_knee_angle": 170},
				})
			}

			Convey("Then there are no pairs to score", func() {
				So(tr.Symmetry(), ShouldEqual, 0.0)
			})
		})
	})
}

func TestFatigue(t *testing.T) {
	Convey("Given an active tracker", t, func() {
		tr := New()
		tr.Start()

		Convey("When a strong first half collapses in the second", func() {
			for i := 0; i < fatigueHalf; i++ {
				tr.Update(steadyFrame(85))
			}
			for i := 0; i < fatigueHalf; i++ {
				tr.Update(steadyFrame(60))
			}

			So(tr.Stats().FatigueDetected, ShouldBeTrue)

			Convey("And the flag stays set once raised", func() {
				for i := 0; i < fatigueWindowSize; i++ {
					tr.Update(steadyFrame(95))
				}
				So(tr.Stats().FatigueDetected, ShouldBeTrue)
			})
		})

		Convey("When the window never fills", func() {
			for i := 0; i < fatigueWindowSize-1; i++ {
				tr.Update(steadyFrame(20))
			}

			So(tr.Stats().FatigueDetected, ShouldBeFalse)
		})

		Convey("When scores stay high throughout", func() {
			for i := 0; i < fatigueWindowSize*2; i++ {
				tr.Update(steadyFrame(90))
			}

			So(tr.Stats().FatigueDetected, ShouldBeFalse)
		})

		Convey("When the drop starts from a weak baseline", func() {
			for i := 0; i < fatigueHalf; i++ {
				tr.Update(steadyFrame(65))
			}
			for i := 0; i < fatigueHalf; i++ {
				tr.Update(steadyFrame(40))
			}

			So(tr.Stats().FatigueDetected, ShouldBeFalse)
		})
	})
}

func TestSummary(t *testing.T) {
	Convey("Given a session with recorded frames", t, func() {
		tr := New()
		id := tr.Start()
		tr.Update(steadyFrame(90))
		tr.Update(steadyFrame(70))

		Convey("When summarized", func() {
			summary := tr.Summary()

			So(summary.SessionID, ShouldEqual, id)
			So(summary.Frames, ShouldEqual, 2)
			So(summary.AverageAlignment, ShouldEqual, 80.0)
			So(summary.PosesPerformed, ShouldResemble, []string{"parvatasana"})
			So(summary.EndedAt.After(summary.StartedAt), ShouldBeTrue)
			So(summary.DurationSeconds, ShouldBeGreaterThanOrEqualTo, 0)

			Convey("Then the tracker goes idle", func() {
				tr.Update(steadyFrame(50))
				So(tr.Stats().Frames, ShouldEqual, 2)
			})
		})
	})
}

func TestSummaryUnderConcurrentUpdates(t *testing.T) {
	Convey("Given a session being fed while it is closed", t, func() {
		tr := New()
		tr.Start()

		done := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					tr.Update(steadyFrame(90))
				}
			}
		}()

		summary := tr.Summary()
		close(done)
		wg.Wait()

		Convey("Then the summary and the final buffers agree on the frame count", func() {
			So(tr.Stats().Frames, ShouldEqual, summary.Frames)
		})
	})
}
