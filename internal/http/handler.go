package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vehicle-info-service/internal/aggregator"
	"vehicle-info-service/internal/domain/vehicle"
	"vehicle-info-service/internal/fetch/insurance"
	"vehicle-info-service/internal/plate"
	"vehicle-info-service/internal/report"
	"vehicle-info-service/internal/repository"
)

type Handler struct {
	aggregator *aggregator.Aggregator
	insurance  *insurance.Checker
	lookups    *repository.LookupRepository
	log        zerolog.Logger
}

func NewHandler(
	agg *aggregator.Aggregator,
	insuranceChecker *insurance.Checker,
	lookups *repository.LookupRepository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		aggregator: agg,
		insurance:  insuranceChecker,
		lookups:    lookups,
		log:        log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	// Public endpoints
	public := r.Group("/api/v1")
	{
		public.GET("/vehicles/:plate", h.getVehicleInfo)
		public.GET("/vehicles/:plate/insurance", h.getInsuranceStatus)
	}

	// Protected admin endpoints
	protected := r.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/lookups", h.listLookups)
		protected.GET("/lookups/export", h.exportLookups)
	}
}

func (h *Handler) getVehicleInfo(c *gin.Context) {
	raw := c.Param("plate")
	start := time.Now()

	result := h.aggregator.GetVehicleInfo(c.Request.Context(), raw)
	duration := time.Since(start)

	h.log.Info().
		Str("registration", result.Registration).
		Str("jurisdiction", string(result.Jurisdiction)).
		Str("outcome", outcomeLabel(result.Error)).
		Dur("duration", duration).
		Msg("vehicle lookup completed")

	h.recordLookup(plate.Normalize(raw), result, duration)

	switch result.Error {
	case "":
		c.JSON(http.StatusOK, successResponse(result))
	case aggregator.MsgInvalidRegistration:
		c.JSON(http.StatusBadRequest, errorResponse(result.Error))
	case aggregator.MsgNotFound, aggregator.MsgNoUsableData:
		c.JSON(http.StatusNotFound, errorResponse(result.Error))
	case aggregator.MsgSourcesUnavailable:
		c.JSON(http.StatusServiceUnavailable, errorResponse(result.Error))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse(result.Error))
	}
}

func (h *Handler) getInsuranceStatus(c *gin.Context) {
	canonical := plate.Normalize(c.Param("plate"))
	if canonical == "" {
		c.JSON(http.StatusBadRequest, errorResponse(aggregator.MsgInvalidRegistration))
		return
	}

	status := h.insurance.Check(c.Request.Context(), canonical)
	c.JSON(http.StatusOK, successResponse(gin.H{
		"registration": canonical,
		"insurance":    status,
	}))
}

// recordLookup writes the audit entry off the request path; a slow or down
// database must not delay the response.
func (h *Handler) recordLookup(canonical string, result *vehicle.AggregateResult, duration time.Duration) {
	if h.lookups == nil || canonical == "" {
		return
	}

	snapshot := *result
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var plateID *uuid.UUID
		if id, err := h.lookups.GetOrCreatePlate(ctx, canonical, snapshot.Registration, string(snapshot.Jurisdiction)); err == nil {
			plateID = &id
			if last, err := h.lookups.GetLastLookupTimeForPlate(ctx, id); err == nil && last != nil {
				h.log.Debug().Str("plate", canonical).Time("previous_lookup", *last).Msg("repeat lookup")
			}
		} else {
			h.log.Error().Err(err).Str("plate", canonical).Msg("failed to upsert plate")
		}

		if err := h.lookups.RecordLookup(ctx, plateID, canonical, &snapshot, duration); err != nil {
			h.log.Error().Err(err).Str("plate", canonical).Msg("failed to record lookup")
		}
	}()
}

func (h *Handler) listLookups(c *gin.Context) {
	if h.lookups == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("lookup audit trail is not configured"))
		return
	}

	var canonical *string
	if p := plate.Normalize(c.Query("plate")); p != "" {
		canonical = &p
	}

	from, err := parseTimeParam(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid from parameter"))
		return
	}
	to, err := parseTimeParam(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid to parameter"))
		return
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	lookups, err := h.lookups.FindLookups(c.Request.Context(), canonical, from, to, limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list lookups")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}

	c.JSON(http.StatusOK, successResponse(lookups))
}

func (h *Handler) exportLookups(c *gin.Context) {
	if h.lookups == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("lookup audit trail is not configured"))
		return
	}

	var canonical *string
	if p := plate.Normalize(c.Query("plate")); p != "" {
		canonical = &p
	}

	lookups, err := h.lookups.FindLookups(c.Request.Context(), canonical, nil, nil, 100, 0)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load lookups for export")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}

	workbook, err := report.LookupWorkbook(lookups)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to build export workbook")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}

	filename := fmt.Sprintf("lookups-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	if err := workbook.Write(c.Writer); err != nil {
		h.log.Error().Err(err).Msg("failed to stream export workbook")
	}
}

func parseTimeParam(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("unparseable time %q", value)
}

func outcomeLabel(errMessage string) string {
	if errMessage == "" {
		return "found"
	}
	return "error"
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
