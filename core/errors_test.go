package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMetricErrorFormatting(t *testing.T) {
	err := NewMetricError("registry.Counter", "requests.total", ErrInstrumentTypeMismatch)
	want := "registry.Counter [requests.total]: instrument type mismatch"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	noMetric := NewMetricError("registry.Reconfigure", "", ErrInvalidConfiguration)
	want = "registry.Reconfigure: invalid configuration"
	if noMetric.Error() != want {
		t.Errorf("expected %q, got %q", want, noMetric.Error())
	}
}

func TestMetricErrorUnwrapping(t *testing.T) {
	wrapped := NewMetricError("registry.Gauge", "g",
		fmt.Errorf("%w: registered as counter", ErrInstrumentTypeMismatch))

	if !errors.Is(wrapped, ErrInstrumentTypeMismatch) {
		t.Error("errors.Is failed to find the sentinel through the wrap")
	}
	if !IsTypeMismatch(wrapped) {
		t.Error("IsTypeMismatch failed on a wrapped mismatch")
	}
	if IsTypeMismatch(errors.New("unrelated")) {
		t.Error("IsTypeMismatch matched an unrelated error")
	}

	var me *MetricError
	if !errors.As(wrapped, &me) {
		t.Fatal("errors.As failed to extract MetricError")
	}
	if me.Op != "registry.Gauge" || me.Metric != "g" {
		t.Errorf("unexpected error context: %+v", me)
	}
}

func TestIsConfigurationError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("wrap: %w", ErrInvalidConfiguration), true},
		{fmt.Errorf("wrap: %w", ErrMissingConfiguration), true},
		{ErrInstrumentTypeMismatch, false},
		{errors.New("other"), false},
	}
	for _, c := range cases {
		if got := IsConfigurationError(c.err); got != c.want {
			t.Errorf("IsConfigurationError(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
