// Command netpowerswitch drives a single power output from a momentary
// switch and a password-protected web page.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sweeney/netpowerswitch/internal/clock"
	"github.com/sweeney/netpowerswitch/internal/control"
	"github.com/sweeney/netpowerswitch/internal/gpio"
	"github.com/sweeney/netpowerswitch/internal/link"
	"github.com/sweeney/netpowerswitch/internal/logic"
	"github.com/sweeney/netpowerswitch/internal/mqtt"
	"github.com/sweeney/netpowerswitch/internal/settings"
	"github.com/sweeney/netpowerswitch/internal/status"
	"github.com/sweeney/netpowerswitch/internal/web"
)

// envPrefix namespaces the environment variables that mirror each flag,
// e.g. NETPOWERSWITCH_CONN_TIMEOUT for --conn-timeout.
const envPrefix = "NETPOWERSWITCH"

const syncTimeout = 10 * time.Second

type options struct {
	SettingsPath string
	Templates    string
	HTTPAddr     string

	Chip      string
	PinOutput int
	PinSwitch int
	PinRed    int
	PinYellow int
	PinGreen  int

	Poll           time.Duration
	Debounce       time.Duration
	ConnTimeout    time.Duration
	SessionTimeout time.Duration

	Broker    string
	Heartbeat time.Duration

	Iface       string
	ResolvConf  string
	SkipNetwork bool

	PrintState    bool
	PrintSettings bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "netpowerswitch",
		Short:         "Network power switch daemon",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), loadOptions(v), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.String("settings", "/var/lib/netpowerswitch/settings.txt", "Settings file (created with defaults if missing)")
	f.String("templates", "", "Directory overriding the built-in pages (empty for built-in)")
	f.String("http", ":80", "HTTP listen address")
	f.String("chip", gpio.DefaultChip, "GPIO chip")
	f.Int("pin-output", gpio.DefaultPinOutput, "BCM pin number for the controlled output")
	f.Int("pin-switch", gpio.DefaultPinSwitch, "BCM pin number for the momentary switch")
	f.Int("pin-red", gpio.DefaultPinRed, "BCM pin number for the red LED (-1 to disable)")
	f.Int("pin-yellow", gpio.DefaultPinYellow, "BCM pin number for the yellow LED (-1 to disable)")
	f.Int("pin-green", gpio.DefaultPinGreen, "BCM pin number for the green LED (-1 to disable)")
	f.Duration("poll", control.DefaultPoll, "Switch polling interval while idle")
	f.Duration("debounce", gpio.DefaultSettle, "Switch settle time")
	f.Duration("conn-timeout", control.DefaultConnTimeout, "Read/write deadline per connection")
	f.Duration("session-timeout", logic.DefaultSessionTimeout, "Idle time before the web session expires")
	f.String("broker", "", "MQTT broker address (empty to disable)")
	f.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	f.String("iface", "eth0", "Network interface to bring up")
	f.String("resolv-conf", "/etc/resolv.conf", "File receiving the DNS server in static mode")
	f.Bool("skip-network", false, "Do not configure the network interface")
	f.Bool("print-state", false, "Print the output line state and configuration as JSON and exit")
	f.Bool("print-settings", false, "Print loaded settings and exit")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	cobra.CheckErr(v.BindPFlags(f))

	return cmd
}

func loadOptions(v *viper.Viper) options {
	return options{
		SettingsPath:   v.GetString("settings"),
		Templates:      v.GetString("templates"),
		HTTPAddr:       v.GetString("http"),
		Chip:           v.GetString("chip"),
		PinOutput:      v.GetInt("pin-output"),
		PinSwitch:      v.GetInt("pin-switch"),
		PinRed:         v.GetInt("pin-red"),
		PinYellow:      v.GetInt("pin-yellow"),
		PinGreen:       v.GetInt("pin-green"),
		Poll:           v.GetDuration("poll"),
		Debounce:       v.GetDuration("debounce"),
		ConnTimeout:    v.GetDuration("conn-timeout"),
		SessionTimeout: v.GetDuration("session-timeout"),
		Broker:         v.GetString("broker"),
		Heartbeat:      v.GetDuration("heartbeat"),
		Iface:          v.GetString("iface"),
		ResolvConf:     v.GetString("resolv-conf"),
		SkipNetwork:    v.GetBool("skip-network"),
		PrintState:     v.GetBool("print-state"),
		PrintSettings:  v.GetBool("print-settings"),
	}
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	cfg := settings.Load(opts.SettingsPath)

	if opts.PrintSettings {
		data, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	}

	if opts.PrintState {
		return printState(opts, cfg, stdout)
	}

	// LEDs first so the yellow light covers the whole start-up.
	indicator, closeLEDs := openIndicator(opts)
	defer closeLEDs()
	indicator.Show(true, false)

	outLine, err := gpio.NewRealLine(opts.Chip, opts.PinOutput)
	if err != nil {
		return fmt.Errorf("init output: %w", err)
	}
	defer outLine.Close()

	sw, err := gpio.NewRealSwitch(opts.Chip, opts.PinSwitch)
	if err != nil {
		return fmt.Errorf("init switch: %w", err)
	}
	defer sw.Close()

	var netInfo *status.NetworkInfo
	if !opts.SkipNetwork {
		netInfo, err = bringUp(ctx, opts, cfg, link.NewNetlink())
		if err != nil {
			return err
		}
	}

	clk := clock.New()
	syncCtx, cancel := context.WithTimeout(ctx, syncTimeout)
	if err := clk.Sync(syncCtx, cfg.NTPServer); err != nil {
		log.Printf("time sync failed: %v", err)
	}
	cancel()

	tracker := status.NewTracker(clk.Now(), statusConfig(opts, cfg), clk.Now)
	tracker.SetNetwork(netInfo)
	tracker.SetClockSynced(clk.Synced())

	var (
		publisher  mqtt.Publisher
		mqttStatus mqtt.ConnectionStatus
	)
	if opts.Broker != "" {
		p := mqtt.NewRealPublisher(opts.Broker)
		defer p.Close()
		publisher, mqttStatus = p, p
		publishStartup(p, tracker)
	}

	output := logic.NewOutput(outLine)
	guard := logic.NewSessionGuard(cfg.Password, opts.SessionTimeout)
	output.OnChange(func(on bool) { indicator.Show(false, on) })

	ln, err := net.Listen("tcp", opts.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.HTTPAddr, err)
	}
	defer ln.Close()
	listener, ok := ln.(control.Listener)
	if !ok {
		return fmt.Errorf("listen %s: listener does not support deadlines", opts.HTTPAddr)
	}

	loop := control.New(control.Config{
		Listener:    listener,
		Router:      web.NewRouter(guard, output, web.NewTemplates(opts.Templates)),
		Switch:      gpio.NewDebouncer(sw, opts.Debounce),
		Output:      output,
		Guard:       guard,
		Publisher:   publisher,
		MQTTStatus:  mqttStatus,
		Tracker:     tracker,
		Now:         clk.Now,
		Poll:        opts.Poll,
		ConnTimeout: opts.ConnTimeout,
		Heartbeat:   opts.Heartbeat,
	})

	indicator.Show(false, output.Read())
	tracker.SetOutput(output.Read())
	tracker.SetReady(true)
	log.Printf("started: http=%s poll=%v debounce=%v session=%v broker=%q heartbeat=%v",
		ln.Addr(), opts.Poll, opts.Debounce, guard.Timeout(), opts.Broker, opts.Heartbeat)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return loop.Run(ctx, sigCh)
}

func printState(opts options, cfg settings.Settings, stdout io.Writer) error {
	on, err := gpio.ReadLevel(opts.Chip, opts.PinOutput)
	if err != nil {
		return fmt.Errorf("read output: %w", err)
	}
	_, err = stdout.Write(formatState(opts, cfg, on, time.Now()))
	return err
}

// formatState renders the --print-state snapshot: the output line level
// plus the configuration a running daemon would report.
func formatState(opts options, cfg settings.Settings, on bool, now time.Time) []byte {
	tracker := status.NewTracker(now, statusConfig(opts, cfg), func() time.Time { return now })
	tracker.SetOutput(on)

	info := &status.NetworkInfo{Mode: cfg.NetworkMode}
	if cfg.IsStatic() {
		info.IP = cfg.Static.IP
		info.Gateway = cfg.Static.Gateway
		info.DNS = cfg.Static.DNS
	}
	tracker.SetNetwork(info)

	return append(status.FormatJSON(tracker.Snapshot()), '\n')
}

func statusConfig(opts options, cfg settings.Settings) status.Config {
	return status.Config{
		PollMs:           opts.Poll.Milliseconds(),
		DebounceMs:       opts.Debounce.Milliseconds(),
		HeartbeatMs:      opts.Heartbeat.Milliseconds(),
		SessionTimeoutMs: opts.SessionTimeout.Milliseconds(),
		Broker:           opts.Broker,
		HTTPAddr:         opts.HTTPAddr,
		NTPServer:        cfg.NTPServer,
	}
}

// bringUp configures the interface from the settings file and blocks until
// it has an address.
func bringUp(ctx context.Context, opts options, cfg settings.Settings, l link.Link) (*status.NetworkInfo, error) {
	lc := link.Config{
		Iface:      opts.Iface,
		Static:     cfg.IsStatic(),
		IP:         cfg.Static.IP,
		Subnet:     cfg.Static.Subnet,
		Gateway:    cfg.Static.Gateway,
		DNS:        cfg.Static.DNS,
		ResolvConf: opts.ResolvConf,
	}
	ip, err := l.BringUp(ctx, lc)
	if err != nil {
		return nil, fmt.Errorf("bring up %s: %w", opts.Iface, err)
	}
	log.Printf("network up: %s %s (%s)", opts.Iface, ip, cfg.NetworkMode)

	info := &status.NetworkInfo{Mode: cfg.NetworkMode, IP: ip}
	if lc.Static {
		info.Gateway = lc.Gateway
		info.DNS = lc.DNS
	}
	return info, nil
}

func publishStartup(publisher mqtt.Publisher, tracker *status.Tracker) {
	snap := tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	switch err := publisher.PublishSystem(event); {
	case errors.Is(err, mqtt.ErrQueued):
		log.Printf("startup event queued until the broker connects")
	case err != nil:
		log.Printf("failed to publish startup event: %v", err)
	default:
		log.Printf("published startup event")
	}
}

// openIndicator requests the LED lines. An LED that cannot be opened is
// logged and left dark; the daemon runs without it.
func openIndicator(opts options) (*status.Indicator, func()) {
	var lines []gpio.Writer
	open := func(name string, pin int) status.LED {
		if pin < 0 {
			return nil
		}
		l, err := gpio.NewRealLine(opts.Chip, pin)
		if err != nil {
			log.Printf("led: %s unavailable: %v", name, err)
			return nil
		}
		lines = append(lines, l)
		return l
	}

	ind := status.NewIndicator(
		open("red", opts.PinRed),
		open("yellow", opts.PinYellow),
		open("green", opts.PinGreen),
	)
	return ind, func() {
		for _, l := range lines {
			if err := l.Close(); err != nil {
				log.Printf("led: %v", err)
			}
		}
	}
}
