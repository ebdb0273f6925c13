package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/b2b-portal/opscenter/services/command-center/internal/application"
	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
	"github.com/b2b-portal/opscenter/shared/pkg/errors"
	"github.com/b2b-portal/opscenter/shared/pkg/logging"
	"github.com/b2b-portal/opscenter/shared/pkg/middleware"
)

type MockSnapshotService struct {
	mock.Mock
}

func (m *MockSnapshotService) Snapshot(ctx context.Context, query application.SnapshotQuery) (*domain.CommandCenterSnapshot, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommandCenterSnapshot), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(service SnapshotService) *gin.Engine {
	router := gin.New()
	RegisterRoutes(router, NewHandlers(service, logging.NewNop()))
	router.NoRoute(middleware.NoRoute())
	return router
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func partialSnapshot() *domain.CommandCenterSnapshot {
	return &domain.CommandCenterSnapshot{
		GeneratedAt:    time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Summary:        domain.Summary{OpenOrderCount: 2, HealthScore: 75},
		ATP:            domain.Populated(domain.ATPReport{}),
		Orchestration:  domain.Populated(domain.OrchestrationPlan{}),
		CustomerIntent: domain.Populated(domain.IntentReport{}),
		Risk:           domain.Populated(domain.RiskReport{}),
		Substitution: domain.Degraded(domain.SubstitutionReport{}, domain.Issue{
			Code:    domain.IssueSourceUnavailable,
			Message: "catalog unavailable",
		}),
		DataQuality:      domain.Populated(domain.DataQualityReport{HealthScore: 75}),
		DegradedSections: []string{domain.SectionNameSubstitution},
	}
}

func TestHandlers_GetSnapshot(t *testing.T) {
	t.Run("passes parsed filters and returns the snapshot", func(t *testing.T) {
		service := new(MockSnapshotService)
		service.On("Snapshot", mock.Anything, application.SnapshotQuery{
			Series:     []string{"B", "A"},
			Warehouses: []string{"MERKEZ"},
			OrderLimit: 10,
		}).Return(partialSnapshot(), nil)

		w := get(newRouter(service), "/api/v1/operations-command-center?series=B,A&warehouse=MERKEZ&orderLimit=10")

		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(75), body["summary"].(map[string]any)["healthScore"])
		assert.Equal(t, []any{"substitution"}, body["degradedSections"])

		substitution := body["substitution"].(map[string]any)
		assert.Equal(t, "degraded", substitution["status"])
		assert.Equal(t, "SOURCE_UNAVAILABLE", substitution["degradedReason"])
		assert.Equal(t, []any{}, body["atp"].(map[string]any)["orders"])
		service.AssertExpectations(t)
	})

	t.Run("no parameters leaves defaults to the service", func(t *testing.T) {
		service := new(MockSnapshotService)
		service.On("Snapshot", mock.Anything, application.SnapshotQuery{}).Return(partialSnapshot(), nil)

		w := get(newRouter(service), "/api/v1/operations-command-center?series=")

		assert.Equal(t, http.StatusOK, w.Code)
		service.AssertExpectations(t)
	})
}

func TestHandlers_GetSnapshot_InvalidLimits(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{name: "non-integer order limit", query: "orderLimit=ten", field: "orderLimit"},
		{name: "zero customer limit", query: "customerLimit=0", field: "customerLimit"},
		{name: "negative order limit", query: "orderLimit=-5", field: "orderLimit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockSnapshotService)

			w := get(newRouter(service), "/api/v1/operations-command-center?"+tt.query)

			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp middleware.APIErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, errors.CodeInvalidFilter, resp.Code)
			assert.Contains(t, resp.Details, tt.field)
			service.AssertNotCalled(t, "Snapshot", mock.Anything, mock.Anything)
		})
	}
}

func TestHandlers_GetSnapshot_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "rejected filter",
			err:        errors.ErrInvalidFilter("invalid filter parameters").WithDetail("warehouse", "warehouse \"DEPO9\" is not an included warehouse"),
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.CodeInvalidFilter,
		},
		{
			name:       "every section degraded",
			err:        errors.ErrSourceUnavailable("all command center sources are unavailable").Wrap(domain.ErrAllSectionsDegraded),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   errors.CodeSourceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockSnapshotService)
			service.On("Snapshot", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := get(newRouter(service), "/api/v1/operations-command-center?warehouse=DEPO9")

			require.Equal(t, tt.wantStatus, w.Code)

			var resp middleware.APIErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, "/api/v1/operations-command-center", resp.Path)
		})
	}
}

func TestRegisterRoutes_UnknownRoute(t *testing.T) {
	w := get(newRouter(new(MockSnapshotService)), "/api/v1/command-center")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
