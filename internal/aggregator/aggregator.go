// Package aggregator orchestrates the per-jurisdiction lookup pipelines and
// merges source results into one response. UK plates fan out to their
// sources concurrently; Isle of Man plates run a sequential registry query
// with an optional UK cross-reference afterwards.
package aggregator

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"vehicle-info-service/internal/domain/vehicle"
	"vehicle-info-service/internal/fetch"
	"vehicle-info-service/internal/plate"
	"vehicle-info-service/internal/sanitize"
)

// User-facing outcome messages. The handler maps these onto HTTP statuses.
const (
	MsgInvalidRegistration = "a valid registration number is required"
	MsgNotFound            = "no information could be found for this registration"
	MsgNoUsableData        = "a record exists for this registration but it contained no usable data"
	MsgSourcesUnavailable  = "vehicle information services are currently unavailable, please try again shortly"
	MsgInternalError       = "an unexpected error occurred while processing the lookup"
)

// VehicleSource is an authoritative vehicle record provider.
type VehicleSource interface {
	Configured() bool
	Lookup(ctx context.Context, canonical string) (*vehicle.VehicleRecord, fetch.Status, error)
}

// HistorySource is an authoritative inspection history provider.
type HistorySource interface {
	Configured() bool
	Lookup(ctx context.Context, canonical string) ([]vehicle.MOTTest, fetch.Status, error)
}

// SpecSource is the scraped specification provider.
type SpecSource interface {
	Lookup(ctx context.Context, canonical string) (*vehicle.RawSpecRecord, fetch.Status, error)
}

// ManxSource is the Isle of Man registry provider.
type ManxSource interface {
	Lookup(ctx context.Context, canonical string) (*vehicle.RawIoMRecord, fetch.Status, error)
}

// FallbackSource serves deterministic records when an official source is not
// configured. It substitutes for absent configuration only, never for a
// configured source that failed.
type FallbackSource interface {
	LookupVehicle(ctx context.Context, canonical string) (*vehicle.VehicleRecord, fetch.Status, error)
	LookupHistory(ctx context.Context, canonical string) ([]vehicle.MOTTest, fetch.Status, error)
}

type Aggregator struct {
	official VehicleSource
	history  HistorySource
	spec     SpecSource
	registry ManxSource
	fallback FallbackSource
	log      zerolog.Logger
}

func New(official VehicleSource, history HistorySource, spec SpecSource, registry ManxSource, fallback FallbackSource, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		official: official,
		history:  history,
		spec:     spec,
		registry: registry,
		fallback: fallback,
		log:      log,
	}
}

// GetVehicleInfo resolves everything known about a registration. It always
// returns a usable result: degraded sources shrink the response, and only
// the combination "nothing found anywhere" or "every relevant source down"
// yields an error field.
func (a *Aggregator) GetVehicleInfo(ctx context.Context, raw string) (result *vehicle.AggregateResult) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Interface("panic", r).Str("registration", raw).Msg("lookup pipeline panicked")
			result = &vehicle.AggregateResult{
				Registration: plate.Display(raw),
				Error:        MsgInternalError,
			}
		}
	}()

	canonical := plate.Normalize(raw)
	if canonical == "" {
		return &vehicle.AggregateResult{
			Registration: strings.TrimSpace(raw),
			Error:        MsgInvalidRegistration,
		}
	}

	if plate.Classify(canonical) == vehicle.JurisdictionIsleOfMan {
		return a.lookupManx(ctx, canonical)
	}
	return a.lookupUK(ctx, canonical)
}

type ukOutcome struct {
	vehicle       *vehicle.VehicleRecord
	vehicleStatus fetch.Status
	history       []vehicle.MOTTest
	historyStatus fetch.Status
	spec          *vehicle.RawSpecRecord
	specStatus    fetch.Status
}

// lookupUK is the UK pipeline: vehicle record, inspection history and the
// scraped specification page are fetched concurrently. Each slot uses its
// official source when configured and the fallback otherwise; a configured
// source that fails is reported unavailable, it is never silently swapped
// for the fallback.
func (a *Aggregator) lookupUK(ctx context.Context, canonical string) *vehicle.AggregateResult {
	var out ukOutcome

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		record, status, err := a.fetchVehicle(gctx, canonical)
		a.observe(canonical, "vehicle", status, err)
		out.vehicle, out.vehicleStatus = record, status
		return nil
	})
	g.Go(func() error {
		history, status, err := a.fetchHistory(gctx, canonical)
		a.observe(canonical, "history", status, err)
		out.history, out.historyStatus = history, status
		return nil
	})
	g.Go(func() error {
		record, status, err := a.fetchSpec(gctx, canonical)
		a.observe(canonical, "spec", status, err)
		out.spec, out.specStatus = record, status
		return nil
	})
	g.Wait()

	result := &vehicle.AggregateResult{
		Registration: ukDisplay(canonical),
		Jurisdiction: vehicle.JurisdictionUK,
		Vehicle:      out.vehicle,
		MOTHistory:   out.history,
	}

	// An authoritative record wins; otherwise a scraped page that at least
	// identified the make is promoted to a synthesized record.
	if result.Vehicle == nil && out.spec != nil && out.spec.Make != "" {
		if synthesized := synthesizeFromScrape(out.spec); synthesized.Make != "" {
			result.Vehicle = synthesized
		}
	}
	result.Extras = buildExtras(out.spec)

	if !a.anythingFound(result, out.spec) {
		if out.vehicleStatus == fetch.StatusUnavailable &&
			out.historyStatus == fetch.StatusUnavailable &&
			out.specStatus == fetch.StatusUnavailable {
			result.Error = MsgSourcesUnavailable
		} else {
			result.Error = MsgNotFound
		}
	}
	return result
}

// lookupManx is the Isle of Man pipeline. The government registry is the
// single authoritative source; when its record names a previous UK
// registration, the UK pipeline runs against that plate and its findings are
// folded in, with the registry's values taking precedence.
func (a *Aggregator) lookupManx(ctx context.Context, canonical string) *vehicle.AggregateResult {
	result := &vehicle.AggregateResult{
		Registration: plate.FormatForDisplay(canonical),
		Jurisdiction: vehicle.JurisdictionIsleOfMan,
	}

	record, status, err := a.fetchManx(ctx, canonical)
	a.observe(canonical, "registry", status, err)
	switch status {
	case fetch.StatusUnavailable:
		result.Error = MsgSourcesUnavailable
		return result
	case fetch.StatusNotFound:
		result.Error = MsgNotFound
		return result
	}

	if record.Make == "" {
		// A served page that yielded no make is unusable data, distinct from
		// the registry affirmatively not knowing the plate.
		a.log.Warn().Str("plate", canonical).Str("diagnostic", record.Diagnostic).
			Msg("registry page yielded no usable record")
		result.Error = MsgNoUsableData
		return result
	}

	result.Vehicle = vehicleFromManx(record)
	result.Extras = buildManxExtras(record)

	if previous, ok := sanitize.UKPlate(record.PreviousUKReg); ok {
		crossRef := a.lookupUK(ctx, plate.Normalize(previous))
		if crossRef.Error == "" {
			result.UKVehicle = crossRef.Vehicle
			result.MOTHistory = crossRef.MOTHistory
			result.Extras = mergeExtras(result.Extras, crossRef.Extras)
		}
	}
	return result
}

func (a *Aggregator) fetchVehicle(ctx context.Context, canonical string) (*vehicle.VehicleRecord, fetch.Status, error) {
	if a.official != nil && a.official.Configured() {
		return a.official.Lookup(ctx, canonical)
	}
	if a.fallback != nil {
		return a.fallback.LookupVehicle(ctx, canonical)
	}
	return nil, fetch.StatusUnavailable, fetch.ErrNotConfigured
}

func (a *Aggregator) fetchHistory(ctx context.Context, canonical string) ([]vehicle.MOTTest, fetch.Status, error) {
	if a.history != nil && a.history.Configured() {
		return a.history.Lookup(ctx, canonical)
	}
	if a.fallback != nil {
		return a.fallback.LookupHistory(ctx, canonical)
	}
	return nil, fetch.StatusUnavailable, fetch.ErrNotConfigured
}

func (a *Aggregator) fetchSpec(ctx context.Context, canonical string) (*vehicle.RawSpecRecord, fetch.Status, error) {
	if a.spec == nil {
		return nil, fetch.StatusUnavailable, fetch.ErrNotConfigured
	}
	return a.spec.Lookup(ctx, canonical)
}

func (a *Aggregator) fetchManx(ctx context.Context, canonical string) (*vehicle.RawIoMRecord, fetch.Status, error) {
	if a.registry == nil {
		return nil, fetch.StatusUnavailable, fetch.ErrNotConfigured
	}
	return a.registry.Lookup(ctx, canonical)
}

func (a *Aggregator) anythingFound(result *vehicle.AggregateResult, spec *vehicle.RawSpecRecord) bool {
	return result.Vehicle != nil || len(result.MOTHistory) > 0 || (spec != nil && !spec.IsEmpty())
}

func (a *Aggregator) observe(canonical, source string, status fetch.Status, err error) {
	event := a.log.Debug()
	if status == fetch.StatusUnavailable {
		event = a.log.Warn().Err(err)
	}
	event.Str("plate", canonical).Str("source", source).Stringer("status", status).Msg("source consulted")
}

// ukDisplay renders a canonical UK plate with its conventional display
// space. Shapes the formatter does not recognize pass through unchanged.
func ukDisplay(canonical string) string {
	if formatted, ok := sanitize.UKPlate(canonical); ok {
		return formatted
	}
	return canonical
}
