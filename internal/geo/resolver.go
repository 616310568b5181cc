package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nwtrace/rtcleak/internal/model"
)

// maxBodySize bounds lookup response bodies. Geo payloads are a few hundred
// bytes; anything near this limit is malformed.
const maxBodySize = 1 << 20

// lookupFields is the field selection requested from the endpoint. The names
// are the documented lookup contract.
const lookupFields = "status,message,country,city,zip,timezone,lat,lon,proxy,org,as"

// payload is the lookup response shape.
type payload struct {
	Status   string  `json:"status"`
	Message  string  `json:"message"`
	Country  string  `json:"country"`
	City     string  `json:"city"`
	Zip      string  `json:"zip"`
	Timezone string  `json:"timezone"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Proxy    bool    `json:"proxy"`
	Org      string  `json:"org"`
	AS       string  `json:"as"`
}

// Resolver performs concurrent per-address geolocation lookups.
type Resolver struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	clientID string
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithTimeout sets the per-lookup timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// WithClientID sets the User-Agent sent with lookups.
func WithClientID(id string) Option {
	return func(r *Resolver) {
		r.clientID = id
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver against the given lookup base URL.
func NewResolver(endpoint string, opts ...Option) *Resolver {
	r := &Resolver{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{},
		timeout:  5 * time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up every address concurrently and returns a record for each,
// keyed by literal. It returns only after all lookups have settled; the
// result always has exactly len(addrs) entries (assuming unique literals).
// A failed lookup contributes a sentinel record with an error annotation.
func (r *Resolver) Resolve(ctx context.Context, addrs []model.Address) map[string]model.GeoRecord {
	records := make([]model.GeoRecord, len(addrs))

	// Deliberately not errgroup.WithContext: one failure must not cancel
	// sibling lookups. Goroutines always return nil and report through
	// their own result slot.
	var g errgroup.Group
	for i, addr := range addrs {
		g.Go(func() error {
			rec, err := r.lookup(ctx, addr.Literal)
			if err != nil {
				r.logger.Debug("geo lookup failed", "address", addr.Literal, "error", err)
				rec = model.FailedGeoRecord(err.Error())
			}
			records[i] = rec
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Goroutines never return errors

	out := make(map[string]model.GeoRecord, len(addrs))
	for i, addr := range addrs {
		out[addr.Literal] = records[i]
	}
	return out
}

// lookup performs a single resolution request.
func (r *Resolver) lookup(ctx context.Context, literal string) (model.GeoRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	u := r.endpoint + "/" + url.PathEscape(literal) + "?fields=" + lookupFields
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.GeoRecord{}, err
	}
	if r.clientID != "" {
		req.Header.Set("User-Agent", r.clientID)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return model.GeoRecord{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return model.GeoRecord{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.GeoRecord{}, fmt.Errorf("http status %d", resp.StatusCode)
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return model.GeoRecord{}, fmt.Errorf("malformed payload: %w", err)
	}
	if p.Status != "" && p.Status != "success" {
		return model.GeoRecord{}, fmt.Errorf("lookup status %q: %s", p.Status, p.Message)
	}

	rec := model.NewGeoRecord()
	setIfPresent(&rec.Country, p.Country)
	setIfPresent(&rec.City, p.City)
	setIfPresent(&rec.PostalCode, p.Zip)
	setIfPresent(&rec.TimeZone, p.Timezone)
	rec.Latitude = p.Lat
	rec.Longitude = p.Lon
	rec.Proxy = p.Proxy
	rec.Org = p.Org
	rec.Network = p.AS
	return rec, nil
}

// setIfPresent overwrites the sentinel only when the endpoint supplied a value.
func setIfPresent(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
