package game

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/skylight/internal/engine/renderer"
	"github.com/Faultbox/skylight/internal/engine/scene"
	"github.com/Faultbox/skylight/internal/logger"
)

// meshReportEvery is how many FPS reports pass between mesh info dumps.
const meshReportEvery = 10

// frameCounter measures frames per second over a fixed interval.
type frameCounter struct {
	interval time.Duration
	start    time.Time
	frames   int
	skipped  int
	last     renderer.Stats
	reports  int
	log      *zap.Logger
}

func newFrameCounter(interval time.Duration) *frameCounter {
	return &frameCounter{interval: interval, log: logger.Named("fps")}
}

// count records one rendered or skipped frame.
func (c *frameCounter) count(s renderer.Stats) {
	c.frames++
	if s.Skipped {
		c.skipped++
	}
	c.last = s
}

// tick reports the frame rate once per interval. The first call only starts
// the clock.
func (c *frameCounter) tick(now time.Time) (fps int, ok bool) {
	if c.start.IsZero() {
		c.start = now
		return 0, false
	}
	elapsed := now.Sub(c.start)
	if elapsed < c.interval {
		return 0, false
	}

	fps = int(float64(c.frames) / elapsed.Seconds())
	c.reports++
	c.log.Debug("fps",
		zap.Int("fps", fps),
		zap.Int("skipped", c.skipped),
		zap.Int("entities", c.last.EntitiesDrawn),
		zap.Int("shadowCasters", c.last.ShadowCasters),
	)
	c.start = now
	c.frames, c.skipped = 0, 0
	return fps, true
}

// dueMeshReport reports whether the last tick should be followed by a mesh
// info dump.
func (c *frameCounter) dueMeshReport() bool {
	return c.reports%meshReportEvery == 1
}

// logMeshes logs the name and size of every mesh in s.
func logMeshes(log *zap.Logger, s *scene.Scene) {
	for _, m := range s.Meshes() {
		log.Info("mesh",
			zap.String("name", m.Name()),
			zap.Int("vertices", m.VertexCount()),
			zap.Int("indices", m.IndexCount()),
			zap.Int("triangles", m.IndexCount()/3),
		)
	}
}
