package metric

import "time"

// Timer is sugar over a histogram of elapsed nanoseconds. It shares the
// underlying HistogramMetric: a timer and a histogram requested under
// the same name are the same metric, and the registry reports it as a
// Histogram.
type Timer struct {
	*HistogramMetric
}

// Record adds an elapsed duration to the untagged incarnation.
func (t *Timer) Record(d time.Duration) {
	t.HistogramMetric.Record(d.Nanoseconds())
}

// Start begins timing against the untagged incarnation.
func (t *Timer) Start() *StartedTimer {
	return t.StartWithTags(nil)
}

// StartWithTags begins timing against the incarnation for the given
// tag set.
func (t *Timer) StartWithTags(tags Tags) *StartedTimer {
	return &StartedTimer{
		histogram: t.WithTags(tags),
		start:     time.Now(),
	}
}

// StartedTimer measures one in-flight duration. Stop records the
// elapsed time; calling Stop more than once records more than once.
type StartedTimer struct {
	histogram *Histogram
	start     time.Time
}

// Stop records the time elapsed since Start.
func (s *StartedTimer) Stop() {
	s.histogram.Record(time.Since(s.start).Nanoseconds())
}
