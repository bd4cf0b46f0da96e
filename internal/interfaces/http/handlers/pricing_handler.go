package handlers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tradeinlabs/phoneworth/internal/domain/catalog"
	"github.com/tradeinlabs/phoneworth/internal/domain/depreciation"
	"github.com/tradeinlabs/phoneworth/internal/domain/valuation"
	"github.com/tradeinlabs/phoneworth/internal/infrastructure/monitoring/prometheus"
)

// PricingHandler serves model listings, prediction series, and current-value
// queries.
type PricingHandler struct {
	engine  *valuation.Engine
	launch  *catalog.LaunchIndex
	metrics *prometheus.AppMetrics
}

// NewPricingHandler constructs a PricingHandler.
func NewPricingHandler(engine *valuation.Engine, launch *catalog.LaunchIndex, metrics *prometheus.AppMetrics) *PricingHandler {
	return &PricingHandler{engine: engine, launch: launch, metrics: metrics}
}

// ListModels handles GET /api/v1/models.
func (h *PricingHandler) ListModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": h.engine.Registry().List()})
}

// valuationQuery is the resolved input of a predictions or sense call.
type valuationQuery struct {
	req       valuation.Request
	deviceKey string
}

// parseQuery resolves the common query parameters.  A request can identify
// the subject either by device key (release and launch price come from the
// launch registry) or by raw model/release/launch values.
func (h *PricingHandler) parseQuery(c *gin.Context, defaultCondition depreciation.Condition) (*valuationQuery, bool) {
	storage, err := strconv.Atoi(c.Query("storage"))
	if err != nil || storage <= 0 {
		respondValidation(c, "invalid or missing storage")
		return nil, false
	}

	condition := depreciation.Condition(c.DefaultQuery("condition", string(defaultCondition)))
	band := parseFloatDefault(c.Query("band"), valuation.DefaultBand)

	q := &valuationQuery{req: valuation.Request{
		StorageGB: storage,
		Condition: condition,
		Band:      band,
	}}

	if deviceKey := c.Query("device"); deviceKey != "" {
		device, err := h.launch.GetDevice(deviceKey)
		if err != nil {
			respondError(c, err)
			return nil, false
		}
		release, err := time.Parse("2006-01-02", device.Release)
		if err != nil {
			respondValidation(c, "device has an invalid release date")
			return nil, false
		}
		launchPrice, err := h.launch.ResolveLaunch(deviceKey, storage)
		if err != nil {
			respondError(c, err)
			return nil, false
		}
		q.deviceKey = deviceKey
		q.req.ModelKey = device.FamilyKey
		q.req.Release = release
		q.req.LaunchPrice = launchPrice
		return q, true
	}

	model := c.Query("model")
	if model == "" {
		respondValidation(c, "either device or model is required")
		return nil, false
	}
	release, err := time.Parse("2006-01-02", c.Query("release"))
	if err != nil {
		respondValidation(c, "invalid or missing release (want YYYY-MM-DD)")
		return nil, false
	}
	launchPrice, err := strconv.ParseFloat(c.Query("launch"), 64)
	if err != nil || launchPrice <= 0 {
		respondValidation(c, "invalid or missing launch price")
		return nil, false
	}

	q.req.ModelKey = depreciation.Family(model)
	q.req.Release = release
	q.req.LaunchPrice = launchPrice
	return q, true
}

// Predictions handles GET /api/v1/predictions.  Device-keyed requests
// default to backfilling the device's full history; raw requests default to
// the standard backfill window.
func (h *PricingHandler) Predictions(c *gin.Context) {
	q, ok := h.parseQuery(c, depreciation.ConditionExcellent)
	if !ok {
		return
	}

	q.req.HorizonMonths = parseIntDefault(c.Query("horizon"), valuation.DefaultHorizonMonths)
	defaultBackfill := valuation.DefaultBackfillMonths
	if q.deviceKey != "" {
		defaultBackfill = int(math.Ceil(math.Max(0, depreciation.MonthsBetween(q.req.Release, h.engine.Now()))))
	}
	q.req.BackfillMonths = parseIntDefault(c.Query("backfill"), defaultBackfill)

	result, err := h.engine.Evaluate(q.req)
	h.metrics.ObserveValuation(string(q.req.ModelKey), err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// senseResponse is the current-value payload: the series collapses to the
// single "today" sample.
type senseResponse struct {
	Meta  valuation.Meta   `json:"meta"`
	Value valuation.Sample `json:"value"`
}

// Sense handles GET /api/v1/sense.
func (h *PricingHandler) Sense(c *gin.Context) {
	q, ok := h.parseQuery(c, depreciation.ConditionGood)
	if !ok {
		return
	}

	result, err := h.engine.EvaluatePoint(q.req)
	h.metrics.ObserveValuation(string(q.req.ModelKey), err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, senseResponse{Meta: result.Meta, Value: result.Today()})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func parseFloatDefault(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}
