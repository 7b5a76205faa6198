package crashtracker

import (
	"context"
	"fmt"
	"time"

	"github.com/stellar/go/support/log"
)

// dryRunClient logs reports locally without shipping them anywhere. It is
// the default tracker outside of deployed environments.
type dryRunClient struct{}

func NewDryRunClient() (*dryRunClient, error) {
	return &dryRunClient{}, nil
}

func (c *dryRunClient) LogAndReportErrors(ctx context.Context, err error, msg string) {
	if msg != "" {
		err = fmt.Errorf("%s: %w", msg, err)
	}
	log.Ctx(ctx).Errorf("[DRY_RUN Crash Reporter] %+v", err)
}

func (c *dryRunClient) FlushEvents(time.Duration) bool {
	return false
}

func (c *dryRunClient) Recover() {}

var _ CrashTrackerClient = (*dryRunClient)(nil)
