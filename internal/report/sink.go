package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nwtrace/rtcleak/internal/model"
)

// Sink delivers the canonical text rendering of a report to a collection
// endpoint. Delivery is one POST per run: a failure is returned to the caller
// for annotation, never retried.
type Sink struct {
	url      string
	client   *http.Client
	timeout  time.Duration
	clientID string
	logger   *slog.Logger
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithSinkHTTPClient sets a custom HTTP client.
func WithSinkHTTPClient(client *http.Client) SinkOption {
	return func(s *Sink) {
		s.client = client
	}
}

// WithSinkTimeout sets the delivery timeout.
func WithSinkTimeout(d time.Duration) SinkOption {
	return func(s *Sink) {
		s.timeout = d
	}
}

// WithSinkClientID sets the User-Agent sent with the delivery.
func WithSinkClientID(id string) SinkOption {
	return func(s *Sink) {
		s.clientID = id
	}
}

// WithSinkLogger sets a custom logger.
func WithSinkLogger(logger *slog.Logger) SinkOption {
	return func(s *Sink) {
		s.logger = logger
	}
}

// NewSink creates a Sink for the given endpoint URL.
func NewSink(url string, opts ...SinkOption) *Sink {
	s := &Sink{
		url:     url,
		client:  &http.Client{},
		timeout: 10 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deliver posts the report once. The response body is discarded; only the
// status class matters.
func (s *Sink) Deliver(ctx context.Context, r *model.ExposureReport) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, strings.NewReader(Render(r)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if s.clientID != "" {
		req.Header.Set("User-Agent", s.clientID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sink status %d", resp.StatusCode)
	}
	s.logger.Debug("report delivered", "run_id", r.RunID, "status", resp.StatusCode)
	return nil
}
