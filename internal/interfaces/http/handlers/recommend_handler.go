package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tradeinlabs/phoneworth/internal/domain/catalog"
	"github.com/tradeinlabs/phoneworth/internal/domain/recommend"
	"github.com/tradeinlabs/phoneworth/internal/infrastructure/monitoring/prometheus"
	"github.com/tradeinlabs/phoneworth/pkg/errors"
)

// RecommendHandler serves survey-driven phone recommendations.
type RecommendHandler struct {
	store   *catalog.Store
	metrics *prometheus.AppMetrics
}

// NewRecommendHandler constructs a RecommendHandler.
func NewRecommendHandler(store *catalog.Store, metrics *prometheus.AppMetrics) *RecommendHandler {
	return &RecommendHandler{store: store, metrics: metrics}
}

// Recommend handles POST /api/v1/recommendations.
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var survey recommend.Survey
	if err := c.ShouldBindJSON(&survey); err != nil {
		respondError(c, errors.Wrap(err, errors.CodeSurveyInvalid, "parsing buyer survey"))
		return
	}

	phones, err := h.store.Phones(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	start := time.Now()
	result := recommend.Rank(phones, survey)
	h.metrics.RecommendationDuration.Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, result)
}
