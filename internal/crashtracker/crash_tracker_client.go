package crashtracker

import (
	"context"
	"time"
)

// CrashTrackerClient reports unexpected errors and unhandled panics to an
// external tracker. FlushEvents drains buffered reports before shutdown.
type CrashTrackerClient interface {
	LogAndReportErrors(ctx context.Context, err error, msg string)
	FlushEvents(waitTime time.Duration) bool
	Recover()
}
