//go:build linux

package link

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/vishvananda/netlink"
)

// Netlink configures interfaces through the kernel's rtnetlink API.
// DHCP itself is left to the system's DHCP client; dhcp mode only waits
// for the lease to appear.
type Netlink struct {
	// Poll is how often the address list is checked while waiting.
	Poll time.Duration
}

// NewNetlink creates a Netlink link checking for an address every second.
func NewNetlink() *Netlink {
	return &Netlink{Poll: time.Second}
}

// BringUp sets the interface up and returns its IPv4 address.
func (n *Netlink) BringUp(ctx context.Context, cfg Config) (string, error) {
	l, err := netlink.LinkByName(cfg.Iface)
	if err != nil {
		return "", fmt.Errorf("find interface %s: %w", cfg.Iface, err)
	}
	if err := netlink.LinkSetUp(l); err != nil {
		return "", fmt.Errorf("set %s up: %w", cfg.Iface, err)
	}

	if cfg.Static {
		if err := n.applyStatic(l, cfg); err != nil {
			return "", err
		}
		log.Printf("static network configured on %s", cfg.Iface)
	}
	return n.waitForAddress(ctx, l)
}

func (n *Netlink) applyStatic(l netlink.Link, cfg Config) error {
	cidr, err := staticCIDR(cfg)
	if err != nil {
		return err
	}
	addr, err := netlink.ParseAddr(cidr)
	if err != nil {
		return fmt.Errorf("parse %s: %w", cidr, err)
	}
	if err := netlink.AddrReplace(l, addr); err != nil {
		return fmt.Errorf("assign %s: %w", cidr, err)
	}

	if cfg.Gateway != "" {
		route := &netlink.Route{
			LinkIndex: l.Attrs().Index,
			Gw:        net.ParseIP(cfg.Gateway),
		}
		if err := netlink.RouteReplace(route); err != nil {
			return fmt.Errorf("default route via %s: %w", cfg.Gateway, err)
		}
	}

	if cfg.ResolvConf != "" {
		if err := os.WriteFile(cfg.ResolvConf, resolvConf(cfg.DNS), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", cfg.ResolvConf, err)
		}
	}
	return nil
}

func (n *Netlink) waitForAddress(ctx context.Context, l netlink.Link) (string, error) {
	poll := n.Poll
	if poll <= 0 {
		poll = time.Second
	}

	for attempt := 0; ; attempt++ {
		addrs, err := netlink.AddrList(l, netlink.FAMILY_V4)
		if err != nil {
			return "", fmt.Errorf("list addresses on %s: %w", l.Attrs().Name, err)
		}
		for _, a := range addrs {
			if a.IP != nil && !a.IP.IsLoopback() {
				return a.IP.String(), nil
			}
		}

		if attempt%10 == 0 {
			log.Printf("waiting for network connection on %s...", l.Attrs().Name)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(poll):
		}
	}
}
