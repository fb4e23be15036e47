package sim_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

var _ = Describe("Sandbox", func() {
	var (
		s      *sim.Sandbox
		star   physics.Body
		planet physics.Body
	)

	BeforeEach(func() {
		var err error
		s, err = sim.New(sim.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		star, err = s.AddBody(r2.Vec{}, sim.DefaultSpec(physics.KindStar))
		Expect(err).NotTo(HaveOccurred())
		planet, err = s.AddBody(r2.Vec{X: 200}, sim.DefaultSpec(physics.KindPlanet))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("ticking", func() {
		It("keeps a circular orbit at its radius", func() {
			for i := 0; i < 600; i++ {
				f := s.Tick(time.Second / 60)
				Expect(f.Err).NotTo(HaveOccurred())
			}
			got, ok := s.Body(planet.ID)
			Expect(ok).To(BeTrue())
			Expect(r2.Norm(got.Pos)).To(BeNumerically("~", 200, 2))
		})

		It("never moves the primary with planetary forces off", func() {
			for i := 0; i < 120; i++ {
				s.Tick(time.Second / 60)
			}
			got, _ := s.Body(star.ID)
			Expect(got.Pos).To(Equal(r2.Vec{}))
		})

		It("pulls the primary once planetary forces are on", func() {
			s.SetPlanetaryForces(true)
			for i := 0; i < 120; i++ {
				s.Tick(time.Second / 60)
			}
			got, _ := s.Body(star.ID)
			Expect(r2.Norm(got.Pos)).To(BeNumerically(">", 0))
		})

		It("conserves momentum with planetary forces on", func() {
			s.SetPlanetaryForces(true)
			momentum := func() r2.Vec {
				var p r2.Vec
				for _, b := range s.Bodies() {
					p = r2.Add(p, r2.Scale(b.Mass, b.Vel))
				}
				return p
			}
			before := momentum()
			for i := 0; i < 300; i++ {
				s.Tick(time.Second / 60)
			}
			Expect(r2.Norm(r2.Sub(momentum(), before))).To(BeNumerically("<", 1e-6))
		})

		It("does not advance time at zero time scale", func() {
			Expect(s.SetTimeScale(0)).To(Succeed())
			f := s.Tick(time.Second / 60)
			Expect(f.Dt).To(BeZero())
			Expect(s.Time()).To(BeZero())
		})
	})

	Describe("prediction", func() {
		It("closes the orbit of a circular planet", func() {
			s.RefreshPaths()
			paths := s.Paths()
			Expect(paths).To(HaveKey(planet.ID))
			Expect(paths).NotTo(HaveKey(star.ID))
			Expect(paths[planet.ID].Reason.String()).To(Equal("closed"))
		})

		It("discards results from before a roster change", func() {
			job := s.PredictionJob()
			Expect(s.ToggleOrbitalMode(planet.ID)).To(Succeed())
			Expect(s.ApplyPaths(job.Run())).To(BeFalse())
			Expect(s.PathsStale()).To(BeTrue())

			Expect(s.ApplyPaths(s.PredictionJob().Run())).To(BeTrue())
			Expect(s.PathsStale()).To(BeFalse())
		})

		It("keeps paths current across G changes", func() {
			s.RefreshPaths()
			Expect(s.SetG(2)).To(Succeed())
			Expect(s.PathsStale()).To(BeFalse())
		})
	})

	Describe("commands", func() {
		It("rejects an unknown body", func() {
			Expect(s.RemoveBody(404)).To(MatchError(dynamo.ErrUnknownBody))
		})

		It("rejects a negative time scale", func() {
			Expect(s.SetTimeScale(-2)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(s.Params().TimeScale).To(Equal(dynamo.DefaultTimeScale))
		})

		It("initializes orbital velocity perpendicular to the primary", func() {
			b, err := s.AddBody(r2.Vec{X: 30, Y: -400}, sim.DefaultSpec(physics.KindMoon))
			Expect(err).NotTo(HaveOccurred())
			Expect(math.Abs(r2.Dot(b.Vel, b.Pos))).To(BeNumerically("<", 1e-9))
		})
	})
})
