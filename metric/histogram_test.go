package metric

import "testing"

func testRange(highest int64) DynamicRange {
	return DynamicRange{LowestDiscernible: 1, HighestTrackable: highest, SignificantDigits: 3}
}

func fixedResolver(r DynamicRange) func() DynamicRange {
	return func() DynamicRange { return r }
}

func TestHistogramRecordAndSnapshot(t *testing.T) {
	r := testRange(1000)
	h := newHistogramWithResolver("test", &r, fixedResolver(r))

	h.Record(10)
	h.Record(20)
	h.RecordN(30, 3)

	d := h.snapshot(true)
	if d.Count != 5 {
		t.Errorf("expected count 5, got %d", d.Count)
	}
	if d.Min != 10 {
		t.Errorf("expected min 10, got %d", d.Min)
	}
	if d.Max != 30 {
		t.Errorf("expected max 30, got %d", d.Max)
	}
	if d.Sum != 120 {
		t.Errorf("expected sum 120, got %d", d.Sum)
	}
	if got := d.Mean(); got != 24 {
		t.Errorf("expected mean 24, got %v", got)
	}

	// Reset leaves the next period empty.
	d2 := h.snapshot(true)
	if d2.Count != 0 {
		t.Errorf("expected empty period after reset, got count %d", d2.Count)
	}
}

func TestHistogramClampsOutOfRange(t *testing.T) {
	r := testRange(100)
	h := newHistogramWithResolver("test", &r, fixedResolver(r))

	h.Record(-5)
	h.Record(1_000_000)

	d := h.snapshot(false)
	if d.Count != 2 {
		t.Fatalf("clamped values must still be counted, got %d", d.Count)
	}
	if d.Min != 0 {
		t.Errorf("negative value should clamp to 0, got min %d", d.Min)
	}
	if d.Max != 100 {
		t.Errorf("oversized value should clamp to 100, got max %d", d.Max)
	}
}

func TestHistogramIgnoresNonPositiveCount(t *testing.T) {
	r := testRange(100)
	h := newHistogramWithResolver("test", &r, fixedResolver(r))

	h.RecordN(10, 0)
	h.RecordN(10, -4)

	if d := h.snapshot(false); d.Count != 0 {
		t.Errorf("expected no recordings, got count %d", d.Count)
	}
}

func TestHistogramDefaultRangedFollowsResolver(t *testing.T) {
	current := testRange(10_000)
	h := newHistogramWithResolver("test", nil, func() DynamicRange { return current })

	if got := h.dynamicRange(); got != current {
		t.Fatalf("initial range not resolved: %+v", got)
	}

	current = testRange(50)
	// Still mid-period: range is sticky until a reset harvest.
	h.snapshot(false)
	if got := h.dynamicRange(); got.HighestTrackable != 10_000 {
		t.Errorf("range changed without a reset: %+v", got)
	}

	h.snapshot(true)
	if got := h.dynamicRange(); got.HighestTrackable != 50 {
		t.Errorf("range not re-resolved after reset: %+v", got)
	}
}

func TestDistributionPercentiles(t *testing.T) {
	r := testRange(1000)
	h := newHistogramWithResolver("test", &r, fixedResolver(r))

	for v := int64(1); v <= 100; v++ {
		h.Record(v)
	}
	d := h.snapshot(false)

	cases := []struct {
		p    float64
		want int64
	}{
		{50, 50},
		{90, 90},
		{99, 99},
		{100, 100},
	}
	for _, c := range cases {
		if got := d.Percentile(c.p); got != c.want {
			t.Errorf("p%v: expected %d, got %d", c.p, c.want, got)
		}
	}

	var empty Distribution
	if got := empty.Percentile(99); got != 0 {
		t.Errorf("empty distribution percentile: expected 0, got %d", got)
	}
}

func TestDistributionBucketsAscending(t *testing.T) {
	r := testRange(1000)
	h := newHistogramWithResolver("test", &r, fixedResolver(r))
	h.Record(500)
	h.Record(3)
	h.Record(90)

	buckets := h.snapshot(false).Buckets()
	if len(buckets) != 3 {
		t.Fatalf("expected 3 populated buckets, got %d", len(buckets))
	}
	for i := 1; i < len(buckets); i++ {
		if buckets[i].Value <= buckets[i-1].Value {
			t.Errorf("buckets not ascending: %+v", buckets)
		}
	}
}
