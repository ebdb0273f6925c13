package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/b2b-portal/opscenter/services/command-center/internal/application"
	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
	"github.com/b2b-portal/opscenter/shared/pkg/logging"
	"github.com/b2b-portal/opscenter/shared/pkg/middleware"
)

// SnapshotService builds command center snapshots
type SnapshotService interface {
	Snapshot(ctx context.Context, query application.SnapshotQuery) (*domain.CommandCenterSnapshot, error)
}

// Handlers contains HTTP handlers for the command center
type Handlers struct {
	service SnapshotService
	logger  *logging.Logger
}

// NewHandlers creates new HTTP handlers
func NewHandlers(service SnapshotService, logger *logging.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger,
	}
}

// GetSnapshot handles GET /api/v1/operations-command-center
func (h *Handlers) GetSnapshot() gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, h.logger.Logger)

		query, fields := parseSnapshotQuery(c)
		if len(fields) > 0 {
			responder.RespondInvalidFilter("invalid filter parameters", fields)
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"query.series":        strings.Join(query.Series, ","),
			"query.warehouses":    strings.Join(query.Warehouses, ","),
			"query.orderLimit":    query.OrderLimit,
			"query.customerLimit": query.CustomerLimit,
		})

		snapshot, err := h.service.Snapshot(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"snapshot.degradedSections": len(snapshot.DegradedSections),
		})

		c.JSON(http.StatusOK, application.ToSnapshotDTO(snapshot))
	}
}

// parseSnapshotQuery reads the raw query string. Token and range rules are
// applied later by SnapshotQuery.Normalize.
func parseSnapshotQuery(c *gin.Context) (application.SnapshotQuery, map[string]string) {
	fields := make(map[string]string)
	query := application.SnapshotQuery{
		Series:     splitCSV(c.Query("series")),
		Warehouses: splitCSV(c.Query("warehouse")),
	}

	if raw, ok := c.GetQuery("orderLimit"); ok {
		n, err := parseLimit(raw)
		if err != nil {
			fields["orderLimit"] = err.Error()
		}
		query.OrderLimit = n
	}
	if raw, ok := c.GetQuery("customerLimit"); ok {
		n, err := parseLimit(raw)
		if err != nil {
			fields["customerLimit"] = err.Error()
		}
		query.CustomerLimit = n
	}

	return query, fields
}

var (
	errLimitNotInteger  = errors.New("must be an integer")
	errLimitNotPositive = errors.New("must be a positive integer")
)

func parseLimit(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errLimitNotInteger
	}
	if n < 1 {
		return 0, errLimitNotPositive
	}
	return n, nil
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
