// Package clock provides the daemon's notion of wall time, corrected by
// an offset learned from an NTP server.
package clock

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/beevik/ntp"
)

const queryTimeout = 5 * time.Second

// QueryFunc returns the offset of the local clock from host's clock.
type QueryFunc func(ctx context.Context, host string) (time.Duration, error)

// Clock returns local time adjusted by the last synchronised offset.
type Clock struct {
	mu     sync.RWMutex
	offset time.Duration
	synced bool

	local func() time.Time
	query QueryFunc
}

// New creates a Clock reading the system time and querying NTP servers.
func New() *Clock {
	return &Clock{local: time.Now, query: queryNTP}
}

// Now returns the corrected current time.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	off := c.offset
	c.mu.RUnlock()
	return c.local().Add(off)
}

// Synced reports whether a sync has ever succeeded.
func (c *Clock) Synced() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.synced
}

// Sync queries host and adopts its offset. On failure the previous offset
// is kept and the error returned; callers treat it as best-effort.
func (c *Clock) Sync(ctx context.Context, host string) error {
	off, err := c.query(ctx, host)
	if err != nil {
		return fmt.Errorf("sync with %s: %w", host, err)
	}

	c.mu.Lock()
	c.offset = off
	c.synced = true
	c.mu.Unlock()

	log.Printf("time synchronized with %s (offset %v)", host, off)
	return nil
}

func queryNTP(ctx context.Context, host string) (time.Duration, error) {
	timeout := queryTimeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d < timeout {
			timeout = d
		}
	}
	if timeout <= 0 {
		return 0, context.DeadlineExceeded
	}

	resp, err := ntp.QueryWithOptions(host, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, fmt.Errorf("invalid response: %w", err)
	}
	return resp.ClockOffset, nil
}
