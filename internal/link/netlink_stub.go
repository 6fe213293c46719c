//go:build !linux

package link

import (
	"context"
	"errors"
	"time"
)

// Netlink is not available on non-Linux platforms.
type Netlink struct {
	Poll time.Duration
}

// NewNetlink returns a Netlink whose BringUp always fails.
func NewNetlink() *Netlink {
	return &Netlink{}
}

// BringUp is not implemented on non-Linux platforms.
func (n *Netlink) BringUp(ctx context.Context, cfg Config) (string, error) {
	return "", errors.New("link: not supported on this platform (requires Linux)")
}
