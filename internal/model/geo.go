package model

// Unknown is the sentinel value for any geolocation field the resolver could
// not supply. Reports render it verbatim so that missing data is visible
// rather than silently blank.
const Unknown = "Unknown"

// GeoRecord holds the auxiliary geolocation and network data resolved for a
// single address. Every string field defaults to the Unknown sentinel; Err is
// set only when the lookup failed entirely (network error, non-success
// status, or malformed payload).
type GeoRecord struct {
	// Country is the country name.
	Country string `json:"country"`

	// City is the city name.
	City string `json:"city"`

	// PostalCode is the postal/ZIP code.
	PostalCode string `json:"postal_code"`

	// TimeZone is the IANA time zone, e.g. "America/Chicago".
	TimeZone string `json:"time_zone"`

	// Latitude and Longitude are zero when unresolved.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Proxy is true when the resolver flagged the address as a VPN, proxy,
	// or other anonymizing exit.
	Proxy bool `json:"proxy"`

	// Org is the organization name, when supplied.
	Org string `json:"org,omitempty"`

	// Network is the autonomous-system identifier, when supplied.
	Network string `json:"network,omitempty"`

	// Err annotates a lookup that failed entirely. A record with Err set
	// still carries sentinel values in all other fields so downstream
	// formatting never special-cases it.
	Err string `json:"error,omitempty"`
}

// NewGeoRecord returns a record with every field set to its sentinel.
func NewGeoRecord() GeoRecord {
	return GeoRecord{
		Country:    Unknown,
		City:       Unknown,
		PostalCode: Unknown,
		TimeZone:   Unknown,
	}
}

// FailedGeoRecord returns a sentinel record annotated with the lookup error.
func FailedGeoRecord(errMsg string) GeoRecord {
	r := NewGeoRecord()
	r.Err = errMsg
	return r
}

// Resolved reports whether the lookup succeeded.
func (g GeoRecord) Resolved() bool {
	return g.Err == ""
}
