// Package report drives the snapshot-and-report loop: on a fixed
// cadence it harvests a snapshot from the registry and fans it out to
// every registered reporter. Reporters own their encodings; no wire
// format is mandated here.
package report

import (
	"context"

	"github.com/itsneelabh/pulse/metric"
)

// Reporter consumes registry snapshots. Implementations must tolerate
// being called from the runner's goroutine and should return quickly;
// slow backends belong behind their own buffering.
type Reporter interface {
	// Name identifies the reporter in logs.
	Name() string

	// ReportSnapshot delivers one snapshot. An error is logged by the
	// runner and does not stop the loop or affect other reporters.
	ReportSnapshot(ctx context.Context, snapshot *metric.Snapshot) error
}
