// Package control runs the appliance's single-threaded control loop:
// poll the switch, accept at most one connection, route it, repeat.
package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/netpowerswitch/internal/logic"
	"github.com/sweeney/netpowerswitch/internal/mqtt"
	"github.com/sweeney/netpowerswitch/internal/status"
	"github.com/sweeney/netpowerswitch/internal/web"
)

const (
	DefaultPoll        = 50 * time.Millisecond
	DefaultConnTimeout = 5 * time.Second
)

// Listener is a net.Listener whose Accept can be bounded by a deadline.
// *net.TCPListener satisfies it.
type Listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// Switch reports debounced presses of the physical switch.
type Switch interface {
	Poll() bool
}

// Config wires the loop's collaborators. Switch, Publisher, MQTTStatus
// and Tracker may be nil.
type Config struct {
	Listener   Listener
	Router     *web.Router
	Switch     Switch
	Output     *logic.Output
	Guard      *logic.SessionGuard
	Publisher  mqtt.Publisher
	MQTTStatus mqtt.ConnectionStatus
	Tracker    *status.Tracker

	// Now is the session and event clock; nil selects time.Now.
	Now func() time.Time

	Poll        time.Duration // accept deadline per iteration
	ConnTimeout time.Duration // read/write deadline per connection
	Heartbeat   time.Duration // 0 disables
}

// Outcome is the result of serving one connection.
type Outcome struct {
	Remote  string
	Request web.Request
	Result  web.Result
	Err     error
}

// Loop is the control loop. It is the only writer of the output and the
// session while running.
type Loop struct {
	cfg Config
	now func() time.Time
}

// New creates a Loop.
func New(cfg Config) *Loop {
	if cfg.Poll <= 0 {
		cfg.Poll = DefaultPoll
	}
	if cfg.ConnTimeout <= 0 {
		cfg.ConnTimeout = DefaultConnTimeout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Loop{cfg: cfg, now: now}
}

// Run loops until a signal arrives on sig or ctx is cancelled, then
// publishes SHUTDOWN and returns nil. Any accept failure other than the
// poll deadline ends the loop with an error.
func (l *Loop) Run(ctx context.Context, sig <-chan os.Signal) error {
	hb := logic.NewHeartbeat(l.cfg.Heartbeat, l.now())

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			l.shutdown(signalName(s))
			return nil
		case <-ctx.Done():
			log.Printf("context done, shutting down")
			l.shutdown("CANCELLED")
			return nil
		default:
		}

		if l.cfg.Switch != nil && l.cfg.Switch.Poll() {
			l.applyToggle(logic.SourceSwitch, l.cfg.Output.Toggle())
		}

		if hb.Due(l.now()) {
			l.heartbeat()
		}

		conn, err := l.accept()
		if err != nil {
			if isTimeout(err) || ctx.Err() != nil {
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		l.handle(l.serve(conn))
	}
}

func (l *Loop) accept() (net.Conn, error) {
	if err := l.cfg.Listener.SetDeadline(time.Now().Add(l.cfg.Poll)); err != nil {
		return nil, fmt.Errorf("set accept deadline: %w", err)
	}
	return l.cfg.Listener.Accept()
}

// serve reads one request from conn, routes it and writes the response.
// The connection is always closed on return.
func (l *Loop) serve(conn net.Conn) Outcome {
	defer conn.Close()

	out := Outcome{Remote: conn.RemoteAddr().String()}
	if err := conn.SetDeadline(time.Now().Add(l.cfg.ConnTimeout)); err != nil {
		out.Err = fmt.Errorf("set deadline: %w", err)
		return out
	}

	req, err := web.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		out.Err = err
		return out
	}
	out.Request = req
	out.Result = l.cfg.Router.Route(req, l.now())

	if err := web.WriteResponse(conn, out.Result.Response); err != nil {
		out.Err = err
	}
	return out
}

// handle applies the bookkeeping for a served connection. A toggle made
// by the router stands even if writing the response failed.
func (l *Loop) handle(out Outcome) {
	if out.Request.Method != "" {
		log.Printf("http %s: %s %s -> %d", out.Remote, out.Request.Method, out.Request.Path, out.Result.Status)
	}
	if out.Err != nil {
		log.Printf("http %s: %v", out.Remote, out.Err)
	}

	if out.Result.Toggled {
		l.applyToggle(logic.SourceWeb, out.Result.On)
	}
	if l.cfg.Tracker != nil && l.cfg.Guard != nil {
		l.cfg.Tracker.SetSessionActive(l.cfg.Guard.Active())
	}
}

// applyToggle logs, tracks and publishes a toggle that has already been
// applied to the output.
func (l *Loop) applyToggle(src logic.Source, on bool) {
	event := logic.Event{Timestamp: l.now(), State: logic.StateOf(on), Source: src}
	log.Printf("toggle: %s (source=%s)", event.State, src)

	if l.cfg.Tracker != nil {
		l.cfg.Tracker.RecordToggle(src, on)
	}
	if l.cfg.Publisher != nil {
		if err := l.cfg.Publisher.Publish(event); errors.Is(err, mqtt.ErrQueued) {
			log.Printf("toggle event queued, broker unreachable")
		} else if err != nil {
			log.Printf("publish error: %v", err)
		}
	}
}

func (l *Loop) heartbeat() {
	snap := l.snapshot()
	log.Printf("heartbeat: output=%s switch=%d web=%d", snap.Output, snap.Counts.Switch, snap.Counts.Web)

	if l.cfg.Publisher == nil {
		return
	}
	event := mqtt.SystemEvent{Timestamp: snap.Now, Event: "HEARTBEAT"}
	if l.cfg.Tracker != nil {
		event.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
	}
	if err := l.cfg.Publisher.PublishSystem(event); err != nil && !errors.Is(err, mqtt.ErrQueued) {
		log.Printf("heartbeat publish error: %v", err)
	}
}

func (l *Loop) shutdown(reason string) {
	if l.cfg.Publisher == nil {
		return
	}
	event := mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if l.cfg.Tracker != nil {
		snap := l.snapshot()
		event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", reason)
	}
	switch err := l.cfg.Publisher.PublishSystem(event); {
	case errors.Is(err, mqtt.ErrQueued):
		log.Printf("shutdown event not sent, broker unreachable")
	case err != nil:
		log.Printf("failed to publish shutdown event: %v", err)
	default:
		log.Printf("published shutdown event")
	}
}

// snapshot refreshes the fields the loop does not push eagerly and
// returns the tracker state. Without a tracker only Now and Output are set.
func (l *Loop) snapshot() status.Snapshot {
	if l.cfg.Tracker == nil {
		return status.Snapshot{Now: l.now(), Output: logic.StateOf(l.cfg.Output.Read())}
	}
	if l.cfg.MQTTStatus != nil {
		l.cfg.Tracker.SetMQTTConnected(l.cfg.MQTTStatus.IsConnected())
	}
	if l.cfg.Guard != nil {
		l.cfg.Tracker.SetSessionActive(l.cfg.Guard.Active())
	}
	return l.cfg.Tracker.Snapshot()
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
