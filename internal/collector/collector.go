package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/nwtrace/rtcleak/internal/config"
	rtclog "github.com/nwtrace/rtcleak/internal/log"
)

// ErrCapabilityUnavailable is returned when the real-time-communication
// capability cannot be constructed at all. This is the only collection
// failure that halts the pipeline before the window runs.
var ErrCapabilityUnavailable = errors.New("collector: webrtc capability unavailable")

// peerConnection is the subset of *webrtc.PeerConnection the collector uses.
// Tests substitute a fake.
type peerConnection interface {
	OnICECandidate(func(*webrtc.ICECandidate))
	CreateDataChannel(label string, options *webrtc.DataChannelInit) (*webrtc.DataChannel, error)
	CreateOffer(options *webrtc.OfferOptions) (webrtc.SessionDescription, error)
	SetLocalDescription(desc webrtc.SessionDescription) error
	Close() error
}

// Collector gathers raw candidate strings during a bounded window.
type Collector struct {
	servers []webrtc.ICEServer
	window  time.Duration
	logger  *slog.Logger

	// newConn builds the peer connection; tests replace it.
	newConn func() (peerConnection, error)
}

// Option configures a Collector.
type Option func(*Collector)

// WithWindow sets the collection window duration.
func WithWindow(d time.Duration) Option {
	return func(c *Collector) {
		c.window = d
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// New creates a Collector for the given discovery-server endpoints.
func New(servers []config.ICEServer, opts ...Option) *Collector {
	c := &Collector{
		servers: iceServers(servers),
		window:  config.DefaultWindow,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.newConn == nil {
		c.newConn = c.dialPeerConnection
	}
	return c
}

// Collect runs one observation window and returns the raw candidate buffer.
// The buffer may be empty; that is not an error. The only error returned is
// ErrCapabilityUnavailable (wrapped) when the peer connection cannot be
// constructed.
func (c *Collector) Collect(ctx context.Context) ([]string, error) {
	pc, err := c.newConn()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapabilityUnavailable, err)
	}

	var (
		mu        sync.Mutex
		buf       []string
		torn      bool
		gathered  = make(chan struct{})
		closeOnce sync.Once
	)

	pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand == nil {
			// End-of-gathering marker.
			closeOnce.Do(func() { close(gathered) })
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if torn {
			// Late event after teardown; the handler was already
			// swapped out, but the agent may still be draining.
			return
		}
		buf = append(buf, cand.ToJSON().Candidate)
	})

	// Teardown must run on every exit path: disable the handler first so
	// late events cannot race the buffer, then close the connection.
	var teardownOnce sync.Once
	teardown := func() {
		teardownOnce.Do(func() {
			mu.Lock()
			torn = true
			mu.Unlock()

			pc.OnICECandidate(func(*webrtc.ICECandidate) {})
			if err := pc.Close(); err != nil {
				c.logger.Warn("peer connection close failed", "error", err)
			}
		})
	}
	defer teardown()

	// Trigger gathering with a data channel and a local offer. Failures
	// here are absorbed: the window still elapses and teardown still runs,
	// so the run proceeds with whatever was captured.
	if _, err := pc.CreateDataChannel("probe", nil); err != nil {
		c.logger.Warn("data channel creation failed", "error", err)
	} else if offer, err := pc.CreateOffer(nil); err != nil {
		c.logger.Warn("offer creation failed", "error", err)
	} else if err := pc.SetLocalDescription(offer); err != nil {
		c.logger.Warn("local description failed", "error", err)
	}

	timer := time.NewTimer(c.window)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		c.logger.Debug("collection cancelled", "reason", ctx.Err())
	case <-timer.C:
		c.logger.Debug("collection window elapsed", "window", c.window)
	case <-gathered:
		c.logger.Debug("gathering completed before window elapsed")
	}

	teardown()

	mu.Lock()
	defer mu.Unlock()
	out := make([]string, len(buf))
	copy(out, buf)
	return out, nil
}

// dialPeerConnection builds the real pion peer connection, routing the ICE
// stack's logs through the application's redacting handler.
func (c *Collector) dialPeerConnection() (peerConnection, error) {
	engine := webrtc.SettingEngine{
		LoggerFactory: rtclog.NewPionLoggerFactory(c.logger),
	}
	api := webrtc.NewAPI(webrtc.WithSettingEngine(engine))
	return api.NewPeerConnection(webrtc.Configuration{ICEServers: c.servers})
}

// iceServers converts configured endpoints to the webrtc form.
func iceServers(servers []config.ICEServer) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(servers))
	for _, s := range servers {
		out = append(out, webrtc.ICEServer{
			URLs:       s.URLs,
			Username:   s.Username,
			Credential: s.Credential,
		})
	}
	return out
}
