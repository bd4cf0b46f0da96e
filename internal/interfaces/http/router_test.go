package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeinlabs/phoneworth/internal/config"
	"github.com/tradeinlabs/phoneworth/internal/domain/catalog"
	"github.com/tradeinlabs/phoneworth/internal/domain/depreciation"
	"github.com/tradeinlabs/phoneworth/internal/domain/valuation"
	"github.com/tradeinlabs/phoneworth/internal/infrastructure/monitoring/logging"
	"github.com/tradeinlabs/phoneworth/internal/infrastructure/monitoring/prometheus"
	"github.com/tradeinlabs/phoneworth/internal/interfaces/http/handlers"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

type memSource struct {
	raws []catalog.RawPhone
	err  error
}

func (s *memSource) Load(ctx context.Context) ([]catalog.RawPhone, error) {
	return s.raws, s.err
}

func testRaws() []catalog.RawPhone {
	return []catalog.RawPhone{
		{
			Title: "Google Pixel 8",
			Specs: catalog.RawSpecs{
				Manufacturer:     "Google",
				ModelName:        "Pixel 8",
				Platform:         catalog.RawPlatform{OS: "Android 14"},
				Display:          catalog.RawDisplay{SizeIn: 6.2},
				StorageOptionsGB: []int{128, 256},
				MSRPUSD:          699,
				ReleaseDate:      "2023-10-12",
			},
		},
		{
			Title: "Apple iPhone 15 Pro",
			Specs: catalog.RawSpecs{
				Manufacturer:     "Apple",
				ModelName:        "iPhone 15 Pro",
				Platform:         catalog.RawPlatform{OS: "iOS 17"},
				Display:          catalog.RawDisplay{SizeIn: 6.1},
				StorageOptionsGB: []int{128, 256, 512},
				MSRPUSD:          999,
				ReleaseDate:      "2023-09-22",
			},
		},
	}
}

func testRouter(t *testing.T, src catalog.Source) *gin.Engine {
	t.Helper()

	engine := valuation.NewEngine(depreciation.NewRegistry(), valuation.WithClock(func() time.Time { return testNow }))
	launch := catalog.NewLaunchIndex()
	logger := logging.NewNopLogger()
	metrics := prometheus.NewAppMetrics()
	normalizer := catalog.NewNormalizer(engine, launch, logger)
	store := catalog.NewStore(src, normalizer, logger, catalog.WithStoreMetrics(metrics))

	return NewRouter(RouterConfig{
		Pricing:   handlers.NewPricingHandler(engine, launch, metrics),
		Catalog:   handlers.NewCatalogHandler(launch, store),
		Recommend: handlers.NewRecommendHandler(store, metrics),
		Health:    handlers.NewHealthHandler(store),
		Logger:    logger,
		Metrics:   metrics,
		Mode:      gin.TestMode,
	})
}

func doRequest(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func configForTest() config.ServerConfig {
	return config.ServerConfig{
		Port:            0, // ephemeral port
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: 2 * time.Second,
	}
}

func TestHealthEndpoints(t *testing.T) {
	r := testRouter(t, &memSource{raws: testRaws()})

	rec := doRequest(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(r, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phones":2`)
}

func TestReadyz_UnavailableWhenSourceFails(t *testing.T) {
	r := testRouter(t, &memSource{err: assert.AnError})
	rec := doRequest(r, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := testRouter(t, &memSource{raws: testRaws()})
	doRequest(r, http.MethodGet, "/api/v1/models", "")

	rec := doRequest(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "phoneworth_http_requests_total")
}

func TestListModels(t *testing.T) {
	r := testRouter(t, &memSource{raws: testRaws()})
	rec := doRequest(r, http.MethodGet, "/api/v1/models", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Models []depreciation.ModelInfo `json:"models"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Models, 7)
	assert.Equal(t, depreciation.FamilyIphoneBase, resp.Models[0].Key)
}

func TestPredictions_RawModelQuery(t *testing.T) {
	r := testRouter(t, &memSource{raws: testRaws()})
	rec := doRequest(r, http.MethodGet,
		"/api/v1/predictions?model=pixel&release=2023-10-12&launch=699&storage=128&condition=Good", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result valuation.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "pixel", result.Meta.ModelKey)
	assert.Equal(t, valuation.DefaultHorizonMonths, result.Meta.Horizon)
	assert.Equal(t, valuation.DefaultBackfillMonths, result.Meta.Backfill)
	assert.Len(t, result.Series, valuation.DefaultHorizonMonths+valuation.DefaultBackfillMonths+1)
}

func TestPredictions_DeviceQueryBackfillsFullHistory(t *testing.T) {
	r := testRouter(t, &memSource{raws: testRaws()})
	rec := doRequest(r, http.MethodGet, "/api/v1/predictions?device=iphone_14_pro&storage=256", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result valuation.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "iphone_pro", result.Meta.ModelKey)
	assert.Equal(t, 1099.0, result.Meta.LaunchPrice)
	// Full history back to release: series starts at (roughly) age zero.
	assert.LessOrEqual(t, result.Series[0].AgeMonths, 1.0)
}

func TestPredictions_Validation(t *testing.T) {
	r := testRouter(t, &memSource{raws: testRaws()})

	rec := doRequest(r, http.MethodGet, "/api/v1/predictions?model=pixel&release=2023-10-12&launch=699", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(r, http.MethodGet, "/api/v1/predictions?storage=128", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(r, http.MethodGet,
		"/api/v1/predictions?model=foldable&release=2023-10-12&launch=699&storage=128", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(r, http.MethodGet, "/api/v1/predictions?device=nokia_3310&storage=128", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSense(t *testing.T) {
	r := testRouter(t, &memSource{raws: testRaws()})
	rec := doRequest(r, http.MethodGet, "/api/v1/sense?device=pixel_8&storage=128", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Meta  valuation.Meta   `json:"meta"`
		Value valuation.Sample `json:"value"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pixel", resp.Meta.ModelKey)
	assert.Equal(t, "Good", resp.Meta.Condition)
	assert.Greater(t, resp.Value.PriceUSD, 0.0)
	assert.Less(t, resp.Value.PriceUSD, 699.0)
}

func TestListDevices(t *testing.T) {
	r := testRouter(t, &memSource{raws: testRaws()})

	rec := doRequest(r, http.MethodGet, "/api/v1/families/pixel/devices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Family  string `json:"family"`
		Devices []struct {
			Key      string `json:"key"`
			Storages []int  `json:"storages"`
		} `json:"devices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pixel", resp.Family)
	require.Len(t, resp.Devices, 5)
	assert.Equal(t, "pixel_6", resp.Devices[0].Key)

	rec = doRequest(r, http.MethodGet, "/api/v1/families/blackberry/devices", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDevice(t *testing.T) {
	r := testRouter(t, &memSource{raws: testRaws()})

	rec := doRequest(r, http.MethodGet, "/api/v1/families/iphone_pro/devices/iphone_15_pro", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"iPhone 15 Pro"`)

	// Right key, wrong family.
	rec = doRequest(r, http.MethodGet, "/api/v1/families/pixel/devices/iphone_15_pro", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(r, http.MethodGet, "/api/v1/families/pixel/devices/pixel_99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPhones_BrandFilter(t *testing.T) {
	r := testRouter(t, &memSource{raws: testRaws()})

	rec := doRequest(r, http.MethodGet, "/api/v1/phones", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)

	rec = doRequest(r, http.MethodGet, "/api/v1/phones?brand=google", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Contains(t, rec.Body.String(), "Pixel 8")

	rec = doRequest(r, http.MethodGet, "/api/v1/phones?brand=all", "")
	assert.Contains(t, rec.Body.String(), `"count":2`)
}

func TestRecommendations(t *testing.T) {
	r := testRouter(t, &memSource{raws: testRaws()})

	rec := doRequest(r, http.MethodPost, "/api/v1/recommendations",
		`{"ecosystem":["apple_watch"],"longevity":"2_3_years"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		TopPicks []struct {
			Phone struct {
				Brand string `json:"brand"`
			} `json:"phone"`
			Score int `json:"score"`
		} `json:"top_picks"`
		TotalMatches int `json:"total_matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotEmpty(t, result.TopPicks)
	// The Apple Watch requirement buries the Android phone.
	assert.Equal(t, "apple", result.TopPicks[0].Phone.Brand)
}

func TestRecommendations_MalformedSurvey(t *testing.T) {
	r := testRouter(t, &memSource{raws: testRaws()})
	rec := doRequest(r, http.MethodPost, "/api/v1/recommendations", `{"budget":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "REC_001")
}

func TestCatalogFailureSurfacesAs503(t *testing.T) {
	r := testRouter(t, &memSource{err: assert.AnError})
	rec := doRequest(r, http.MethodPost, "/api/v1/recommendations", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_StartStop(t *testing.T) {
	r := testRouter(t, &memSource{raws: testRaws()})
	srv := NewServer(configForTest(), r, logging.NewNopLogger())

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, srv.Stop(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
