package stun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/pion/stun"
)

// Lookup errors.
var (
	// ErrNoServers is returned when no STUN server is configured.
	ErrNoServers = errors.New("stun: no servers configured")

	// ErrAllServersFailed is returned when every configured server failed.
	ErrAllServersFailed = errors.New("stun: all servers failed")
)

// Client performs primary public address lookups against a fixed server list.
type Client struct {
	servers []string
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-server exchange timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a lookup client for the given host:port server endpoints.
func NewClient(servers []string, opts ...Option) *Client {
	c := &Client{
		servers: servers,
		timeout: 5 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PublicAddress returns the externally visible address as text. Servers are
// tried in order; the first successful Binding exchange wins.
func (c *Client) PublicAddress(ctx context.Context) (string, error) {
	if len(c.servers) == 0 {
		return "", ErrNoServers
	}

	for _, server := range c.servers {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		ip, err := c.query(ctx, server)
		if err != nil {
			c.logger.Debug("stun exchange failed", "server", server, "error", err)
			continue
		}
		return ip, nil
	}

	return "", ErrAllServersFailed
}

// query performs a single Binding Request / Response exchange.
func (c *Client) query(ctx context.Context, server string) (string, error) {
	addr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", server, err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", server, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("set deadline: %w", err)
	}

	msg, err := stun.Build(stun.TransactionID, stun.BindingRequest)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if _, err := msg.WriteTo(conn); err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}

	buf := make([]byte, 1500)
	n, err := conn.Read(buf)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("read response: %w", err)
	}

	res := new(stun.Message)
	res.Raw = buf[:n]
	if err := res.Decode(); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	var xorAddr stun.XORMappedAddress
	if err := xorAddr.GetFrom(res); err == nil {
		return xorAddr.IP.String(), nil
	}

	// Fall back to MAPPED-ADDRESS for pre-RFC5389 servers.
	var mapped stun.MappedAddress
	if err := mapped.GetFrom(res); err != nil {
		return "", fmt.Errorf("no mapped address in response: %w", err)
	}
	return mapped.IP.String(), nil
}
