package telemetry

// Collector accumulates events within frame windows and produces WindowStats.
type Collector struct {
	windowFrames uint64

	// Current window tracking
	windowStart uint64

	// Event counters for current window
	fieldsSpawned  int
	fieldsPlaced   int
	fieldsRejected int
	fieldsCleared  int
	resets         int
}

// NewCollector creates a new stats collector flushing every windowFrames
// frames.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{windowFrames: uint64(windowFrames)}
}

// RecordFieldSpawn records an automatic or keyed spawn. ok is false when the
// set was full and the spawn was rejected.
func (c *Collector) RecordFieldSpawn(ok bool) {
	if ok {
		c.fieldsSpawned++
	} else {
		c.fieldsRejected++
	}
}

// RecordFieldPlaced records a user spawn at the pointer.
func (c *Collector) RecordFieldPlaced() {
	c.fieldsPlaced++
}

// RecordFieldsCleared records removal of n fields at once.
func (c *Collector) RecordFieldsCleared(n int) {
	c.fieldsCleared += n
}

// RecordReset records a simulation reset.
func (c *Collector) RecordReset() {
	c.resets++
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(frame uint64) bool {
	return frame-c.windowStart >= c.windowFrames
}

// FrameSample is the simulation state captured at the end of a window.
type FrameSample struct {
	Frame         uint64
	SimTime       float64
	Particles     int
	NoiseMode     string
	Speeds        []float64 // Sorted in place by Flush
	Fields        int
	FieldCapacity int
	MeanLuminance float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(sample FrameSample) WindowStats {
	mean, std, p10, p50, p90 := ComputeSpeedStats(sample.Speeds)

	stats := WindowStats{
		WindowStartFrame: c.windowStart,
		WindowEndFrame:   sample.Frame,
		SimTime:          sample.SimTime,

		Particles: sample.Particles,
		NoiseMode: sample.NoiseMode,

		SpeedMean: mean,
		SpeedStd:  std,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,

		Fields:         sample.Fields,
		FieldCapacity:  sample.FieldCapacity,
		FieldsSpawned:  c.fieldsSpawned,
		FieldsPlaced:   c.fieldsPlaced,
		FieldsRejected: c.fieldsRejected,
		FieldsCleared:  c.fieldsCleared,

		MeanLuminance: sample.MeanLuminance,
		Resets:        c.resets,
	}

	// Reset for next window
	c.windowStart = sample.Frame
	c.fieldsSpawned = 0
	c.fieldsPlaced = 0
	c.fieldsRejected = 0
	c.fieldsCleared = 0
	c.resets = 0

	return stats
}

// Restart moves the window start to frame after a reset rewinds the frame
// counter. Pending counters carry over into the new window.
func (c *Collector) Restart(frame uint64) {
	c.windowStart = frame
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() uint64 {
	return c.windowFrames
}
