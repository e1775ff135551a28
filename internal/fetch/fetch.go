// Package fetch defines the contract every data source implements: a lookup
// by canonical plate that resolves to a record, an affirmative "not found",
// or "unavailable". Fetchers never let failures escape as panics; the cause
// behind an Unavailable is returned for logging only.
package fetch

import "errors"

// Status is the outcome class of a single source lookup.
type Status int

const (
	// StatusFound means the source produced a record (possibly partial).
	StatusFound Status = iota
	// StatusNotFound means the source affirmatively reported the plate is
	// not in its dataset. A valid terminal answer, not an error.
	StatusNotFound
	// StatusUnavailable means the source could not be consulted: missing
	// configuration, network failure, bad status, unparseable response,
	// or timeout.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// ErrNotConfigured marks a fetcher constructed without the credentials or
// endpoints it needs. Lookups on such a fetcher report StatusUnavailable.
var ErrNotConfigured = errors.New("fetcher is not configured")
